package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appointly/models"
	"appointly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// withTransaction runs fn in a snapshot transaction. The driver retries fn on
// TransientTransactionError labels, so callers must keep fn free of side effects
// outside the session.
func (repo *MongoSchedulerRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := repo.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// lockProviderDay bumps a per provider/date counter. Two transactions touching
// the same day write the same document, so the second one aborts with a write
// conflict and is retried against the committed state.
func (repo *MongoSchedulerRepo) lockProviderDay(sc mongo.SessionContext, providerID, date string) error {
	_, err := repo.lockColl.UpdateOne(sc,
		bson.M{"_id": providerID + "|" + date},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

// InsertBooking checks for overlaps and inserts the booking in one transaction.
func (repo *MongoSchedulerRepo) InsertBooking(ctx context.Context, booking *models.Booking) error {
	booking.Active = booking.Status.IsActive()
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := repo.lockProviderDay(sc, booking.ProviderID, booking.Date); err != nil {
			return err
		}
		existing, err := repo.activeBookings(sc, booking.ProviderID, booking.Date, "")
		if err != nil {
			return err
		}
		if err := CheckNoOverlap(existing, *booking); err != nil {
			return err
		}
		_, err = repo.bookingColl.InsertOne(sc, booking)
		return err
	})
	if err != nil {
		return classifyWriteError(err, "insert booking failed")
	}
	return nil
}

// RescheduleBooking moves an active booking to booking.Date/StartTime/EndTime.
func (repo *MongoSchedulerRepo) RescheduleBooking(ctx context.Context, booking *models.Booking) error {
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := repo.lockProviderDay(sc, booking.ProviderID, booking.Date); err != nil {
			return err
		}
		var current models.Booking
		if err := repo.bookingColl.FindOne(sc, bson.M{"id": booking.ID}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		if !current.Status.IsActive() {
			return ErrStatusChanged
		}
		existing, err := repo.activeBookings(sc, booking.ProviderID, booking.Date, booking.ID)
		if err != nil {
			return err
		}
		if err := CheckNoOverlap(existing, *booking); err != nil {
			return err
		}
		_, err = repo.bookingColl.UpdateOne(sc,
			bson.M{"id": booking.ID, "status": current.Status},
			bson.M{"$set": bson.M{
				"date":      booking.Date,
				"startTime": booking.StartTime,
				"endTime":   booking.EndTime,
				"updatedAt": booking.UpdatedAt,
			}},
		)
		return err
	})
	if err != nil {
		return classifyWriteError(err, "reschedule booking failed")
	}
	return nil
}

// TransitionBookingStatus updates the status only if it is still one of t.From.
func (repo *MongoSchedulerRepo) TransitionBookingStatus(ctx context.Context, t StatusTransition) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	var next models.Booking
	ApplyTransition(&next, t)
	set := bson.M{
		"status":    next.Status,
		"active":    next.Active,
		"updatedAt": next.UpdatedAt,
	}
	if next.ConfirmedAt != nil {
		set["confirmedAt"] = next.ConfirmedAt
	}
	if next.CompletedAt != nil {
		set["completedAt"] = next.CompletedAt
	}
	if next.CancelledAt != nil {
		set["cancelledAt"] = next.CancelledAt
		set["cancellationReason"] = next.CancellationReason
	}

	var updated models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctx,
		bson.M{"id": t.BookingID, "status": bson.M{"$in": t.From}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transition booking %s failed: %w", t.BookingID, err)
	}
	if _, err := repo.GetBookingByID(ctx, t.BookingID); err != nil {
		return nil, err
	}
	return nil, ErrStatusChanged
}

// ReplaceWeeklySchedule swaps all weekly entries of a provider atomically.
func (repo *MongoSchedulerRepo) ReplaceWeeklySchedule(ctx context.Context, providerID string, entries []models.WeeklyScheduleEntry) error {
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		return repo.replaceWeekly(sc, providerID, entries)
	})
	if err != nil {
		return fmt.Errorf("replace weekly schedule for provider %s: %w", providerID, err)
	}
	return nil
}

// classifyWriteError turns sentinel and duplicate-key failures into repository errors.
func classifyWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrNotFound), errors.Is(err, ErrStatusChanged):
		return err
	case mongo.IsDuplicateKeyError(err):
		if strings.Contains(err.Error(), bookingNumberIndex) {
			return ErrDuplicateBookingNumber
		}
		return fmt.Errorf("%w: %v", ErrSlotTaken, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
