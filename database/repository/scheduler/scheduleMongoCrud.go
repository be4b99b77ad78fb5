package schedulerRepo

import (
	"context"
	"fmt"

	"appointly/models"
	"appointly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetWeeklySchedule returns every weekly entry of a provider ordered by weekday.
func (repo *MongoSchedulerRepo) GetWeeklySchedule(ctx context.Context, providerID string) ([]models.WeeklyScheduleEntry, error) {
	return repo.findWeekly(ctx, bson.M{"providerId": providerID})
}

// GetActiveWeeklyEntries returns the active entries of a provider for one weekday.
func (repo *MongoSchedulerRepo) GetActiveWeeklyEntries(ctx context.Context, providerID string, dayOfWeek int) ([]models.WeeklyScheduleEntry, error) {
	return repo.findWeekly(ctx, bson.M{"providerId": providerID, "dayOfWeek": dayOfWeek, "isActive": true})
}

func (repo *MongoSchedulerRepo) findWeekly(ctx context.Context, filter bson.M) ([]models.WeeklyScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := repo.weeklyColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching weekly schedule: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.WeeklyScheduleEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding weekly schedule: %w", err)
	}
	return entries, nil
}

// CreateOverride inserts a new override document.
func (repo *MongoSchedulerRepo) CreateOverride(ctx context.Context, override *models.ScheduleOverride) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	if _, err := repo.overrideColl.InsertOne(ctx, override); err != nil {
		return fmt.Errorf("error creating override: %w", err)
	}
	return nil
}

// GetOverrideByID retrieves an override by its ID.
func (repo *MongoSchedulerRepo) GetOverrideByID(ctx context.Context, overrideID string) (*models.ScheduleOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	var override models.ScheduleOverride
	if err := repo.overrideColl.FindOne(ctx, bson.M{"id": overrideID}).Decode(&override); err != nil {
		return nil, notFoundOr(err, "error fetching override %s", overrideID)
	}
	return &override, nil
}

// GetOverridesForDate returns all overrides of a provider for one date.
func (repo *MongoSchedulerRepo) GetOverridesForDate(ctx context.Context, providerID, date string) ([]models.ScheduleOverride, error) {
	return repo.findOverrides(ctx, bson.M{"providerId": providerID, "date": date})
}

// ListOverrides returns a provider's overrides, optionally bounded by an inclusive date range.
func (repo *MongoSchedulerRepo) ListOverrides(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	filter := bson.M{"providerId": providerID}
	if dateRange := dateRangeFilter(from, to); dateRange != nil {
		filter["date"] = dateRange
	}
	return repo.findOverrides(ctx, filter)
}

func (repo *MongoSchedulerRepo) findOverrides(ctx context.Context, filter bson.M) ([]models.ScheduleOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := repo.overrideColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching overrides: %w", err)
	}
	defer cursor.Close(ctx)

	overrides := []models.ScheduleOverride{}
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("error decoding overrides: %w", err)
	}
	return overrides, nil
}

// DeleteOverride removes an override record.
func (repo *MongoSchedulerRepo) DeleteOverride(ctx context.Context, overrideID string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	res, err := repo.overrideColl.DeleteOne(ctx, bson.M{"id": overrideID})
	if err != nil {
		return fmt.Errorf("error deleting override %s: %w", overrideID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// dateRangeFilter builds an inclusive range on "YYYY-MM-DD" strings, which sort lexically.
func dateRangeFilter(from, to string) bson.M {
	if from == "" && to == "" {
		return nil
	}
	r := bson.M{}
	if from != "" {
		r["$gte"] = from
	}
	if to != "" {
		r["$lte"] = to
	}
	return r
}

// replaceWeekly swaps a provider's week inside an open session.
func (repo *MongoSchedulerRepo) replaceWeekly(sc mongo.SessionContext, providerID string, entries []models.WeeklyScheduleEntry) error {
	if _, err := repo.weeklyColl.DeleteMany(sc, bson.M{"providerId": providerID}); err != nil {
		return fmt.Errorf("clear weekly schedule failed: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	if _, err := repo.weeklyColl.InsertMany(sc, docs); err != nil {
		return fmt.Errorf("insert weekly schedule failed: %w", err)
	}
	return nil
}
