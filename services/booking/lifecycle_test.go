package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"appointly/models"
)

type action struct {
	name string
	run  func(ctx context.Context, se *DefaultSchedulingEngine, id string) (*models.Booking, error)
}

var actions = map[string]action{
	"confirm": {"confirm", func(ctx context.Context, se *DefaultSchedulingEngine, id string) (*models.Booking, error) {
		return se.ConfirmBooking(ctx, id)
	}},
	"complete": {"complete", func(ctx context.Context, se *DefaultSchedulingEngine, id string) (*models.Booking, error) {
		return se.CompleteBooking(ctx, id)
	}},
	"no-show": {"no-show", func(ctx context.Context, se *DefaultSchedulingEngine, id string) (*models.Booking, error) {
		return se.MarkNoShow(ctx, id)
	}},
	"cancel": {"cancel", func(ctx context.Context, se *DefaultSchedulingEngine, id string) (*models.Booking, error) {
		return se.CancelBooking(ctx, id, "test")
	}},
}

// driveTo books a slot and walks it to status through allowed transitions.
func driveTo(t *testing.T, fx *fixture, status models.BookingStatus) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := fx.book(t, monday, "09:00")
	path := map[models.BookingStatus][]string{
		models.BookingStatusPending:   nil,
		models.BookingStatusConfirmed: {"confirm"},
		models.BookingStatusCompleted: {"confirm", "complete"},
		models.BookingStatusNoShow:    {"confirm", "no-show"},
		models.BookingStatusCancelled: {"cancel"},
	}[status]
	for _, step := range path {
		var err error
		if b, err = actions[step].run(ctx, fx.engine, b.ID); err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}
	if b.Status != status {
		t.Fatalf("drove to %s, want %s", b.Status, status)
	}
	return b
}

func TestLifecycle_Matrix(t *testing.T) {
	allowed := map[models.BookingStatus]map[string]models.BookingStatus{
		models.BookingStatusPending: {
			"confirm": models.BookingStatusConfirmed,
			"cancel":  models.BookingStatusCancelled,
		},
		models.BookingStatusConfirmed: {
			"complete": models.BookingStatusCompleted,
			"no-show":  models.BookingStatusNoShow,
			"cancel":   models.BookingStatusCancelled,
		},
		models.BookingStatusCompleted: {},
		models.BookingStatusCancelled: {},
		models.BookingStatusNoShow:    {},
	}

	for from, targets := range allowed {
		for name, act := range actions {
			t.Run(string(from)+"/"+name, func(t *testing.T) {
				fx := newFixture(t)
				ctx := context.Background()
				b := driveTo(t, fx, from)

				got, err := act.run(ctx, fx.engine, b.ID)
				want, ok := targets[name]
				if !ok {
					if !IsInvalidTransition(err) {
						t.Fatalf("expected InvalidStateTransition, got %v", err)
					}
					stored, _ := fx.engine.GetBooking(ctx, b.ID)
					if stored.Status != from || !stored.UpdatedAt.Equal(b.UpdatedAt) {
						t.Errorf("rejected transition mutated booking: %+v", stored)
					}
					return
				}
				if err != nil {
					t.Fatalf("%s from %s: %v", name, from, err)
				}
				if got.Status != want {
					t.Errorf("status = %s, want %s", got.Status, want)
				}
			})
		}
	}
}

func TestConfirmCancelledBookingIsRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	b := driveTo(t, fx, models.BookingStatusCancelled)
	before, _ := fx.engine.GetBooking(ctx, b.ID)

	_, err := fx.engine.ConfirmBooking(ctx, b.ID)
	if !IsInvalidTransition(err) {
		t.Fatalf("expected InvalidStateTransition, got %v", err)
	}
	after, _ := fx.engine.GetBooking(ctx, b.ID)
	if after.Status != models.BookingStatusCancelled || after.ConfirmedAt != nil || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("record changed: %+v", after)
	}
}

func TestLifecycle_Timestamps(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	b := fx.book(t, monday, "09:00")

	later := testNow.Add(time.Hour)
	fx.engine.Now = func() time.Time { return later }
	confirmed, err := fx.engine.ConfirmBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if confirmed.ConfirmedAt == nil || !confirmed.ConfirmedAt.Equal(later) || !confirmed.UpdatedAt.Equal(later) {
		t.Errorf("confirm timestamps wrong: %+v", confirmed)
	}

	cancelled, err := fx.engine.CancelBooking(ctx, b.ID, "double booked elsewhere")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if cancelled.CancellationReason != "double booked elsewhere" || cancelled.CancelledAt == nil {
		t.Errorf("cancel fields missing: %+v", cancelled)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	b := fx.book(t, monday, "09:00")
	if _, err := fx.engine.CancelBooking(ctx, b.ID, ""); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	again := fx.book(t, monday, "09:00")
	if again.ID == b.ID {
		t.Error("expected a new booking")
	}
}

func TestLifecycle_UnknownBooking(t *testing.T) {
	fx := newFixture(t)
	for name, act := range actions {
		if _, err := act.run(context.Background(), fx.engine, "missing"); !IsNotFound(err) {
			t.Errorf("%s: expected NotFound, got %v", name, err)
		}
	}
}

func TestConfirmSchedulesReminder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	b := fx.book(t, monday, "09:00")

	if _, err := fx.engine.ConfirmBooking(ctx, b.ID); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if len(fx.reminders.calls) != 1 {
		t.Fatalf("expected one reminder, got %d", len(fx.reminders.calls))
	}
	want := time.Date(2030, 1, 6, 9, 0, 0, 0, time.UTC)
	if got := fx.reminders.calls[0]; got.bookingID != b.ID || !got.at.Equal(want) {
		t.Errorf("reminder = %+v, want %s at %s", got, b.ID, want)
	}

	// Rescheduling a confirmed booking queues a reminder for the new slot.
	if _, err := fx.engine.RescheduleBooking(ctx, b.ID, monday, "10:20"); err != nil {
		t.Fatalf("RescheduleBooking: %v", err)
	}
	if len(fx.reminders.calls) != 2 {
		t.Errorf("expected a second reminder after reschedule, got %d", len(fx.reminders.calls))
	}
}

func TestConfirmSurvivesReminderFailure(t *testing.T) {
	fx := newFixture(t)
	fx.reminders.err = errors.New("queue down")
	b := fx.book(t, monday, "09:00")

	got, err := fx.engine.ConfirmBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("ConfirmBooking should not fail on reminder errors: %v", err)
	}
	if got.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s", got.Status)
	}
}

func TestReminderFiresImmediatelyInsideLeadTime(t *testing.T) {
	fx := newFixture(t)
	b := fx.book(t, monday, "09:00")
	soon := time.Date(2030, 1, 7, 7, 0, 0, 0, time.UTC)
	fx.engine.Now = func() time.Time { return soon }

	if _, err := fx.engine.ConfirmBooking(context.Background(), b.ID); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if len(fx.reminders.calls) != 1 || !fx.reminders.calls[0].at.Equal(soon) {
		t.Errorf("expected an immediate reminder, got %+v", fx.reminders.calls)
	}
}
