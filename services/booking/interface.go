package booking

import (
	"context"
	"time"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
	"appointly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchedulingService is the booking engine used by the transport layer.
type SchedulingService interface {
	GetAvailableSlots(ctx context.Context, providerID, serviceID, date string) ([]models.Slot, error)
	GetAvailableStartTimes(ctx context.Context, providerID, serviceID, date string) ([]string, error)

	CreateBooking(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, bookingID, date, startTime string) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error)

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	GetBookingStats(ctx context.Context, providerID, from, to string) (*models.BookingStats, error)

	GetWeeklySchedule(ctx context.Context, providerID string) ([]models.WeeklyScheduleEntry, error)
	UpdateWeeklySchedule(ctx context.Context, providerID string, entries []models.WeeklyScheduleEntry) ([]models.WeeklyScheduleEntry, error)
	CreateOverride(ctx context.Context, providerID string, req models.CreateOverrideRequest) (*models.ScheduleOverride, error)
	ListOverrides(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error)
	GetOverride(ctx context.Context, overrideID string) (*models.ScheduleOverride, error)
	DeleteOverride(ctx context.Context, overrideID string) error
}

// SlotCache stores computed slot grids for display. It is never consulted when
// validating a booking.
type SlotCache interface {
	Lookup(ctx context.Context, providerID, serviceID, date string) ([]models.Slot, int64, bool)
	Store(ctx context.Context, providerID, serviceID, date string, version int64, slots []models.Slot)
	Invalidate(ctx context.Context, providerID string)
}

// ReminderScheduler enqueues a reminder for a confirmed booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking models.Booking, at time.Time) error
}

// DefaultSchedulingEngine implements SchedulingService on top of a SchedulerRepository.
// Cache and Reminders are optional.
type DefaultSchedulingEngine struct {
	Repo                  schedulerRepo.SchedulerRepository
	Logger                *zap.Logger
	Cache                 SlotCache
	Reminders             ReminderScheduler
	ReminderLeadTime      time.Duration
	BookingNumberAttempts int
	Location              *time.Location
	Now                   func() time.Time
	NewID                 func() string
	NewBookingNumber      func() (string, error)
}

var _ SchedulingService = (*DefaultSchedulingEngine)(nil)

func (se *DefaultSchedulingEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}

func (se *DefaultSchedulingEngine) newID() string {
	if se.NewID != nil {
		return se.NewID()
	}
	return uuid.New().String()
}

func (se *DefaultSchedulingEngine) logger() *zap.Logger {
	if se.Logger != nil {
		return se.Logger
	}
	return utils.GetLogger()
}

func (se *DefaultSchedulingEngine) location() *time.Location {
	if se.Location != nil {
		return se.Location
	}
	return time.UTC
}

func (se *DefaultSchedulingEngine) numberAttempts() int {
	if se.BookingNumberAttempts > 0 {
		return se.BookingNumberAttempts
	}
	return utils.DefaultBookingNumberAttempts
}

func (se *DefaultSchedulingEngine) invalidate(ctx context.Context, providerID string) {
	if se.Cache != nil {
		se.Cache.Invalidate(ctx, providerID)
	}
}
