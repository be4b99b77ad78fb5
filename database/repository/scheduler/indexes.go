package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingNumberIndex = "unique_booking_number"
	activeSlotIndex    = "unique_active_slot"
)

// EnsureIndexes creates the indexes the engine relies on. The two unique booking
// indexes back the booking number retry and the one-active-booking-per-start rule.
func (repo *MongoSchedulerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	plan := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{repo.providerColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		}},
		{repo.serviceColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		}},
		{repo.weeklyColl, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_provider_day"),
			},
		}},
		{repo.overrideColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
			{
				Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetName("provider_date_idx"),
			},
		}},
		{repo.bookingColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
			{
				Keys:    bson.D{{Key: "bookingNumber", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(bookingNumberIndex),
			},
			{
				Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName(activeSlotIndex).
					SetPartialFilterExpression(bson.M{"active": true}),
			},
			{
				Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("provider_date_status_idx"),
			},
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetName("user_date_idx"),
			},
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", p.coll.Name(), err)
		}
	}
	return nil
}
