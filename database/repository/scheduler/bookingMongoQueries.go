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

// GetBookingByID retrieves a booking by its ID.
func (repo *MongoSchedulerRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking); err != nil {
		return nil, notFoundOr(err, "error fetching booking %s", bookingID)
	}
	return &booking, nil
}

// ListActiveBookings returns PENDING/CONFIRMED bookings of a provider on a date.
func (repo *MongoSchedulerRepo) ListActiveBookings(ctx context.Context, providerID, date, excludeBookingID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()
	return repo.activeBookings(ctx, providerID, date, excludeBookingID)
}

// activeBookings runs the overlap query; ctx may be a session context.
func (repo *MongoSchedulerRepo) activeBookings(ctx context.Context, providerID, date, excludeBookingID string) ([]models.Booking, error) {
	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"status":     bson.M{"$in": models.ActiveBookingStatuses},
	}
	if excludeBookingID != "" {
		filter["id"] = bson.M{"$ne": excludeBookingID}
	}

	cursor, err := repo.bookingColl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings returns bookings matching the filter, newest date first.
func (repo *MongoSchedulerRepo) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ProviderID != "" {
		filter["providerId"] = f.ProviderID
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if dateRange := dateRangeFilter(f.DateFrom, f.DateTo); dateRange != nil {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingStats counts a provider's bookings per status.
func (repo *MongoSchedulerRepo) GetBookingStats(ctx context.Context, providerID, from, to string) (*models.BookingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	match := bson.M{"providerId": providerID}
	if dateRange := dateRangeFilter(from, to); dateRange != nil {
		match["date"] = dateRange
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := repo.bookingColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating booking stats for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Status models.BookingStatus `bson:"_id"`
		Count  int                  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding booking stats: %w", err)
	}

	stats := &models.BookingStats{
		ProviderID: providerID,
		From:       from,
		To:         to,
		ByStatus:   map[models.BookingStatus]int{},
	}
	for _, r := range results {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	return stats, nil
}
