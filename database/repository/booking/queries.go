package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"voicedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindMany returns bookings matching the filter ordered by start time ascending.
func (repo *MongoBookingRepo) FindMany(ctx context.Context, filter models.BookingFilter, page, limit int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	timeRange := bson.M{}
	if !filter.StartFrom.IsZero() {
		timeRange["$gte"] = filter.StartFrom
	}
	if !filter.StartTo.IsZero() {
		timeRange["$lt"] = filter.StartTo
	}
	if len(timeRange) > 0 {
		query["start_time"] = timeRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
		if page > 1 {
			opts.SetSkip((page - 1) * limit)
		}
	}

	cursor, err := repo.coll.Find(ctxWithTimeout, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
