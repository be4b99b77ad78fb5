package booking

import (
	"context"
	"fmt"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
)

// overlapsAny reports whether candidate shares a minute with any of ranges.
func overlapsAny(candidate models.Interval, ranges []models.Interval) bool {
	for _, r := range ranges {
		if candidate.Overlaps(r) {
			return true
		}
	}
	return false
}

// bookedIntervals lists the intervals held by active bookings of a provider on a date.
func (se *DefaultSchedulingEngine) bookedIntervals(ctx context.Context, providerID, date, excludeBookingID string) ([]models.Interval, error) {
	bookings, err := se.Repo.ListActiveBookings(ctx, providerID, date, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for provider %s on %s: %w", providerID, date, err)
	}
	intervals := make([]models.Interval, 0, len(bookings))
	for _, b := range bookings {
		iv, err := schedulerRepo.BookingInterval(b)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

// findConflict returns the first active booking overlapping candidate, if any.
func (se *DefaultSchedulingEngine) findConflict(ctx context.Context, providerID, date string, candidate models.Interval, excludeBookingID string) (*models.Booking, error) {
	bookings, err := se.Repo.ListActiveBookings(ctx, providerID, date, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for provider %s on %s: %w", providerID, date, err)
	}
	for i := range bookings {
		iv, err := schedulerRepo.BookingInterval(bookings[i])
		if err != nil {
			return nil, err
		}
		if candidate.Overlaps(iv) {
			return &bookings[i], nil
		}
	}
	return nil, nil
}
