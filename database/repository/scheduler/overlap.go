package schedulerRepo

import (
	"fmt"

	"appointly/models"
	"appointly/utils"
)

// BookingInterval converts a booking's clock times into minutes.
func BookingInterval(b models.Booking) (models.Interval, error) {
	start, err := utils.ParseClock(b.StartTime)
	if err != nil {
		return models.Interval{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	end, err := utils.ParseClock(b.EndTime)
	if err != nil {
		return models.Interval{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	return models.Interval{Start: start, End: end}, nil
}

// CheckNoOverlap returns ErrSlotTaken when candidate overlaps any active booking
// other than itself. Stores call it inside their write transaction.
func CheckNoOverlap(existing []models.Booking, candidate models.Booking) error {
	want, err := BookingInterval(candidate)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.ID == candidate.ID || !b.Status.IsActive() {
			continue
		}
		got, err := BookingInterval(b)
		if err != nil {
			return err
		}
		if want.Overlaps(got) {
			return fmt.Errorf("%w: overlaps booking %s", ErrSlotTaken, b.BookingNumber)
		}
	}
	return nil
}

// ApplyTransition stamps the booking with the transition's target status.
func ApplyTransition(b *models.Booking, t StatusTransition) {
	b.Status = t.To
	b.Active = t.To.IsActive()
	b.UpdatedAt = t.At
	at := t.At
	switch t.To {
	case models.BookingStatusConfirmed:
		b.ConfirmedAt = &at
	case models.BookingStatusCompleted:
		b.CompletedAt = &at
	case models.BookingStatusCancelled:
		b.CancelledAt = &at
		b.CancellationReason = t.Reason
	}
}

// StatusAllowed reports whether status is one of from.
func StatusAllowed(status models.BookingStatus, from []models.BookingStatus) bool {
	for _, s := range from {
		if s == status {
			return true
		}
	}
	return false
}
