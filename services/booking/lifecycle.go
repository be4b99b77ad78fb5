package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
	"appointly/utils"

	"go.uber.org/zap"
)

// lifecycleRule is one row of the booking state machine.
type lifecycleRule struct {
	action string
	from   []models.BookingStatus
	to     models.BookingStatus
}

var (
	confirmRule  = lifecycleRule{"confirm", []models.BookingStatus{models.BookingStatusPending}, models.BookingStatusConfirmed}
	completeRule = lifecycleRule{"complete", []models.BookingStatus{models.BookingStatusConfirmed}, models.BookingStatusCompleted}
	noShowRule   = lifecycleRule{"mark no-show", []models.BookingStatus{models.BookingStatusConfirmed}, models.BookingStatusNoShow}
	cancelRule   = lifecycleRule{"cancel", models.ActiveBookingStatuses, models.BookingStatusCancelled}
)

// ConfirmBooking moves a PENDING booking to CONFIRMED and schedules its reminder.
func (se *DefaultSchedulingEngine) ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := se.transition(ctx, bookingID, confirmRule, "")
	if err != nil {
		return nil, err
	}
	se.scheduleReminder(ctx, *booking)
	return booking, nil
}

// CompleteBooking moves a CONFIRMED booking to COMPLETED.
func (se *DefaultSchedulingEngine) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return se.transition(ctx, bookingID, completeRule, "")
}

// MarkNoShow moves a CONFIRMED booking to NO_SHOW.
func (se *DefaultSchedulingEngine) MarkNoShow(ctx context.Context, bookingID string) (*models.Booking, error) {
	return se.transition(ctx, bookingID, noShowRule, "")
}

// CancelBooking cancels a PENDING or CONFIRMED booking and frees its slot.
func (se *DefaultSchedulingEngine) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	return se.transition(ctx, bookingID, cancelRule, reason)
}

func (se *DefaultSchedulingEngine) transition(ctx context.Context, bookingID string, rule lifecycleRule, reason string) (*models.Booking, error) {
	logger := se.logger().With(zap.String("bookingID", bookingID), zap.String("action", rule.action))

	current, err := se.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !schedulerRepo.StatusAllowed(current.Status, rule.from) {
		logger.Info("transition rejected", zap.String("status", string(current.Status)))
		return nil, invalidTransition("cannot %s booking in status %s", rule.action, current.Status)
	}

	updated, err := se.Repo.TransitionBookingStatus(ctx, schedulerRepo.StatusTransition{
		BookingID: bookingID,
		From:      rule.from,
		To:        rule.to,
		Reason:    reason,
		At:        se.now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, schedulerRepo.ErrStatusChanged):
		logger.Warn("booking changed during transition")
		return nil, invalidTransition("cannot %s booking: status changed concurrently", rule.action)
	case errors.Is(err, schedulerRepo.ErrNotFound):
		return nil, notFound("booking %s not found", bookingID)
	default:
		logger.Error("failed to update booking status", zap.Error(err))
		return nil, fmt.Errorf("failed to %s booking: %w", rule.action, err)
	}

	se.invalidate(ctx, updated.ProviderID)
	logger.Info("booking status updated",
		zap.String("from", string(current.Status)), zap.String("to", string(updated.Status)))
	return updated, nil
}

// scheduleReminder enqueues a reminder ReminderLeadTime before the booking starts.
// Failures are logged; the booking itself already succeeded.
func (se *DefaultSchedulingEngine) scheduleReminder(ctx context.Context, booking models.Booking) {
	if se.Reminders == nil {
		return
	}
	startsAt, err := utils.BookingStartsAt(booking.Date, booking.StartTime, se.location())
	if err != nil {
		se.logger().Warn("cannot schedule reminder", zap.String("bookingID", booking.ID), zap.Error(err))
		return
	}
	now := se.now()
	if !startsAt.After(now) {
		return
	}
	fireAt := startsAt.Add(-se.ReminderLeadTime)
	if fireAt.Before(now) {
		fireAt = now
	}
	if err := se.Reminders.ScheduleReminder(ctx, booking, fireAt); err != nil {
		se.logger().Error("failed to schedule reminder",
			zap.String("bookingID", booking.ID), zap.Time("fireAt", fireAt), zap.Error(err))
		return
	}
	se.logger().Debug("reminder scheduled",
		zap.String("bookingID", booking.ID), zap.String("in", fireAt.Sub(now).Round(time.Second).String()))
}
