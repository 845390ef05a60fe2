package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the resulting document.
func (repo *MongoBookingRepo) Update(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.StartTime != nil {
		set["start_time"] = *patch.StartTime
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Inquiry != nil {
		set["inquiry"] = *patch.Inquiry
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err := repo.coll.FindOneAndUpdate(ctxWithTimeout, bson.M{"id": bookingID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}
	return &updated, nil
}

// FindByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) FindByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// Delete removes a booking record from the database.
func (repo *MongoBookingRepo) Delete(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.DeleteOne(ctxWithTimeout, bson.M{"id": bookingID})
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", bookingID, err)
	}
	return nil
}

// UpdateSyncState overwrites one integration's sync state via $set so that
// concurrent sync writers for other integrations are never clobbered.
func (repo *MongoBookingRepo) UpdateSyncState(ctx context.Context, bookingID, field string, state models.SyncState) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{field: state}}
	res, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"id": bookingID}, update)
	if err != nil {
		return fmt.Errorf("error updating sync state %s for booking %s: %w", field, bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found for sync state update", bookingID)
	}
	return nil
}
