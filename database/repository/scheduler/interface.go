package schedulerRepo

import (
	"context"
	"errors"
	"time"

	"appointly/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when an active booking already occupies the interval.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrDuplicateBookingNumber is returned when a generated booking number collides.
	ErrDuplicateBookingNumber = errors.New("booking number already in use")
	// ErrStatusChanged is returned when a booking is no longer in an expected status.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

// StatusTransition is a compare-and-set on a booking's status.
type StatusTransition struct {
	BookingID string
	From      []models.BookingStatus
	To        models.BookingStatus
	Reason    string
	At        time.Time
}

// SchedulerRepository defines the data access used by the scheduling engine.
// InsertBooking, RescheduleBooking and ReplaceWeeklySchedule must be atomic:
// the overlap check and the write happen in one transaction (or under one lock),
// so at most one active booking ever holds a provider/date/start triple.
type SchedulerRepository interface {
	Ping(ctx context.Context) error

	GetProviderByID(ctx context.Context, providerID string) (*models.Provider, error)
	GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error)

	GetWeeklySchedule(ctx context.Context, providerID string) ([]models.WeeklyScheduleEntry, error)
	GetActiveWeeklyEntries(ctx context.Context, providerID string, dayOfWeek int) ([]models.WeeklyScheduleEntry, error)
	ReplaceWeeklySchedule(ctx context.Context, providerID string, entries []models.WeeklyScheduleEntry) error

	CreateOverride(ctx context.Context, override *models.ScheduleOverride) error
	GetOverrideByID(ctx context.Context, overrideID string) (*models.ScheduleOverride, error)
	GetOverridesForDate(ctx context.Context, providerID, date string) ([]models.ScheduleOverride, error)
	ListOverrides(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error)
	DeleteOverride(ctx context.Context, overrideID string) error

	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// ListActiveBookings returns PENDING/CONFIRMED bookings for the provider on date,
	// across all services, skipping excludeBookingID when it is non-empty.
	ListActiveBookings(ctx context.Context, providerID, date, excludeBookingID string) ([]models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	RescheduleBooking(ctx context.Context, booking *models.Booking) error
	TransitionBookingStatus(ctx context.Context, t StatusTransition) (*models.Booking, error)
	GetBookingStats(ctx context.Context, providerID, from, to string) (*models.BookingStats, error)
}

// CatalogWriter stores providers and services. Catalog administration is owned
// elsewhere; stores expose it for seeding and tests.
type CatalogWriter interface {
	SaveProvider(ctx context.Context, provider *models.Provider) error
	SaveService(ctx context.Context, service *models.Service) error
}
