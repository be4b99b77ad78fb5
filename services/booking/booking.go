package booking

import (
	"context"
	"errors"
	"fmt"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
	"appointly/utils"

	"go.uber.org/zap"
)

// CreateBooking reserves a start time for a client. The new booking is PENDING.
func (se *DefaultSchedulingEngine) CreateBooking(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error) {
	logger := se.logger().With(
		zap.String("providerID", input.ProviderID),
		zap.String("serviceID", input.ServiceID),
		zap.String("date", input.Date),
		zap.String("startTime", input.StartTime),
	)

	if input.UserID == "" {
		return nil, validation("userId is required")
	}
	start, err := parseRequestedStart(input.Date, input.StartTime)
	if err != nil {
		return nil, err
	}

	service, err := se.loadService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Bookable() {
		return nil, validation("service %s is not active", service.ID)
	}
	provider, err := se.loadProvider(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.OffersService(service.ID) {
		return nil, validation("provider %s does not offer service %s", provider.ID, service.ID)
	}
	if !provider.IsActive {
		return nil, validation("provider %s is not accepting bookings", provider.ID)
	}

	interval, err := bookingInterval(start, service.Duration)
	if err != nil {
		return nil, err
	}
	if err := se.ensureBookable(ctx, provider.ID, service, input.Date, interval, ""); err != nil {
		logger.Info("booking rejected", zap.Error(err))
		return nil, err
	}

	now := se.now()
	booking := &models.Booking{
		ID:         se.newID(),
		ProviderID: provider.ID,
		ServiceID:  service.ID,
		UserID:     input.UserID,
		Date:       input.Date,
		StartTime:  utils.FormatClock(interval.Start),
		EndTime:    utils.FormatClock(interval.End),
		Status:     models.BookingStatusPending,
		Active:     true,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for attempt := 1; ; attempt++ {
		number, err := se.bookingNumber()
		if err != nil {
			return nil, err
		}
		booking.BookingNumber = number

		err = se.Repo.InsertBooking(ctx, booking)
		switch {
		case err == nil:
			se.invalidate(ctx, provider.ID)
			logger.Info("booking created",
				zap.String("bookingID", booking.ID), zap.String("bookingNumber", booking.BookingNumber))
			return booking, nil
		case errors.Is(err, schedulerRepo.ErrDuplicateBookingNumber):
			if attempt >= se.numberAttempts() {
				logger.Warn("booking number space exhausted", zap.Int("attempts", attempt))
				return nil, conflict("could not allocate a unique booking number after %d attempts", attempt)
			}
			logger.Debug("booking number collision, regenerating", zap.String("bookingNumber", number))
		case errors.Is(err, schedulerRepo.ErrSlotTaken):
			logger.Info("slot taken concurrently", zap.Error(err))
			return nil, conflict("the requested time slot is no longer available")
		default:
			logger.Error("failed to insert booking", zap.Error(err))
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
	}
}

// RescheduleBooking moves an active booking to a new date and start time. The
// booking's own interval does not block the move.
func (se *DefaultSchedulingEngine) RescheduleBooking(ctx context.Context, bookingID, date, startTime string) (*models.Booking, error) {
	logger := se.logger().With(zap.String("bookingID", bookingID), zap.String("date", date), zap.String("startTime", startTime))

	current, err := se.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsActive() {
		return nil, invalidTransition("cannot reschedule booking in status %s", current.Status)
	}
	start, err := parseRequestedStart(date, startTime)
	if err != nil {
		return nil, err
	}
	service, err := se.loadService(ctx, current.ServiceID)
	if err != nil {
		return nil, err
	}
	interval, err := bookingInterval(start, service.Duration)
	if err != nil {
		return nil, err
	}
	if err := se.ensureBookable(ctx, current.ProviderID, service, date, interval, current.ID); err != nil {
		logger.Info("reschedule rejected", zap.Error(err))
		return nil, err
	}

	moved := *current
	moved.Date = date
	moved.StartTime = utils.FormatClock(interval.Start)
	moved.EndTime = utils.FormatClock(interval.End)
	moved.UpdatedAt = se.now()

	err = se.Repo.RescheduleBooking(ctx, &moved)
	switch {
	case err == nil:
	case errors.Is(err, schedulerRepo.ErrSlotTaken):
		return nil, conflict("the requested time slot is no longer available")
	case errors.Is(err, schedulerRepo.ErrStatusChanged):
		return nil, invalidTransition("booking %s is no longer active", bookingID)
	case errors.Is(err, schedulerRepo.ErrNotFound):
		return nil, notFound("booking %s not found", bookingID)
	default:
		logger.Error("failed to reschedule booking", zap.Error(err))
		return nil, fmt.Errorf("failed to reschedule booking: %w", err)
	}

	se.invalidate(ctx, current.ProviderID)
	if moved.Status == models.BookingStatusConfirmed {
		se.scheduleReminder(ctx, moved)
	}
	logger.Info("booking rescheduled", zap.String("from", current.Date+" "+current.StartTime))
	return &moved, nil
}

// ensureBookable runs the direct conflict query and then checks the start is
// one of the freshly generated available starts.
func (se *DefaultSchedulingEngine) ensureBookable(ctx context.Context, providerID string, service *models.Service, date string, interval models.Interval, excludeBookingID string) error {
	clash, err := se.findConflict(ctx, providerID, date, interval, excludeBookingID)
	if err != nil {
		return err
	}
	if clash != nil {
		return conflict("time slot overlaps booking %s", clash.BookingNumber)
	}

	slots, err := se.computeSlots(ctx, providerID, service, date, excludeBookingID)
	if err != nil {
		return err
	}
	want := utils.FormatClock(interval.Start)
	for _, s := range slots {
		if s.StartTime == want && s.Available {
			return nil
		}
	}
	return conflict("%s on %s is not an available start time", want, date)
}

// GetBooking returns a booking by ID.
func (se *DefaultSchedulingEngine) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return se.loadBooking(ctx, bookingID)
}

// ListBookings lists bookings matching the filter.
func (se *DefaultSchedulingEngine) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return nil, validation("unknown booking status %q", s)
		}
	}
	if err := validateDateRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, validation("limit must not be negative")
	}
	bookings, err := se.Repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingStats counts a provider's bookings by status over an optional date range.
func (se *DefaultSchedulingEngine) GetBookingStats(ctx context.Context, providerID, from, to string) (*models.BookingStats, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	stats, err := se.Repo.GetBookingStats(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking stats: %w", err)
	}
	return stats, nil
}

func parseRequestedStart(date, startTime string) (int, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return 0, validation("%v", err)
	}
	start, err := utils.ParseClock(startTime)
	if err != nil {
		return 0, validation("%v", err)
	}
	return start, nil
}

func bookingInterval(start, duration int) (models.Interval, error) {
	if duration <= 0 {
		return models.Interval{}, validation("service duration must be positive")
	}
	end := start + duration
	if !utils.FitsInDay(end) {
		return models.Interval{}, validation("booking would end after midnight")
	}
	return models.Interval{Start: start, End: end}, nil
}

func validateDateRange(from, to string) error {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return validation("%v", err)
		}
	}
	if from != "" && to != "" && from > to {
		return validation("from must not be after to")
	}
	return nil
}
