package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"voicedesk/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bookingCollection = "bookings"

// MongoBookingRepo is the MongoDB-backed implementation of BookingRepository.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repo bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	repo := &MongoBookingRepo{coll: database.Collection(bookingCollection)}
	if err := repo.EnsureIndexes(); err != nil {
		panic(fmt.Sprintf("failed to ensure booking indexes: %v", err))
	}
	return repo
}

// EnsureIndexes creates the indexes list queries depend on.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}, {Key: "start_time", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	_, err := repo.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("error creating booking indexes: %w", err)
	}
	return nil
}
