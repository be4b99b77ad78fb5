package memoryRepo

import (
	"context"
	"sort"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
)

func (repo *MemorySchedulerRepo) GetBookingByID(_ context.Context, bookingID string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	b, ok := repo.bookings[bookingID]
	if !ok {
		return nil, schedulerRepo.ErrNotFound
	}
	return &b, nil
}

func (repo *MemorySchedulerRepo) ListActiveBookings(_ context.Context, providerID, date, excludeBookingID string) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.activeLocked(providerID, date, excludeBookingID), nil
}

func (repo *MemorySchedulerRepo) activeLocked(providerID, date, excludeBookingID string) []models.Booking {
	out := []models.Booking{}
	for _, b := range repo.bookings {
		if b.ProviderID == providerID && b.Date == date && b.Status.IsActive() && b.ID != excludeBookingID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func (repo *MemorySchedulerRepo) ListBookings(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []models.Booking{}
	for _, b := range repo.bookings {
		if f.ProviderID != "" && b.ProviderID != f.ProviderID {
			continue
		}
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if len(f.Statuses) > 0 && !schedulerRepo.StatusAllowed(b.Status, f.Statuses) {
			continue
		}
		if !inRange(b.Date, f.DateFrom, f.DateTo) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (repo *MemorySchedulerRepo) InsertBooking(_ context.Context, booking *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, b := range repo.bookings {
		if b.BookingNumber == booking.BookingNumber {
			return schedulerRepo.ErrDuplicateBookingNumber
		}
	}
	if err := schedulerRepo.CheckNoOverlap(repo.activeLocked(booking.ProviderID, booking.Date, ""), *booking); err != nil {
		return err
	}
	booking.Active = booking.Status.IsActive()
	repo.bookings[booking.ID] = *booking
	return nil
}

func (repo *MemorySchedulerRepo) RescheduleBooking(_ context.Context, booking *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	current, ok := repo.bookings[booking.ID]
	if !ok {
		return schedulerRepo.ErrNotFound
	}
	if !current.Status.IsActive() {
		return schedulerRepo.ErrStatusChanged
	}
	if err := schedulerRepo.CheckNoOverlap(repo.activeLocked(booking.ProviderID, booking.Date, booking.ID), *booking); err != nil {
		return err
	}
	current.Date = booking.Date
	current.StartTime = booking.StartTime
	current.EndTime = booking.EndTime
	current.UpdatedAt = booking.UpdatedAt
	repo.bookings[booking.ID] = current
	return nil
}

func (repo *MemorySchedulerRepo) TransitionBookingStatus(_ context.Context, t schedulerRepo.StatusTransition) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	b, ok := repo.bookings[t.BookingID]
	if !ok {
		return nil, schedulerRepo.ErrNotFound
	}
	if !schedulerRepo.StatusAllowed(b.Status, t.From) {
		return nil, schedulerRepo.ErrStatusChanged
	}
	schedulerRepo.ApplyTransition(&b, t)
	repo.bookings[b.ID] = b
	return &b, nil
}

func (repo *MemorySchedulerRepo) GetBookingStats(_ context.Context, providerID, from, to string) (*models.BookingStats, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stats := &models.BookingStats{
		ProviderID: providerID,
		From:       from,
		To:         to,
		ByStatus:   map[models.BookingStatus]int{},
	}
	for _, b := range repo.bookings {
		if b.ProviderID != providerID || !inRange(b.Date, from, to) {
			continue
		}
		stats.ByStatus[b.Status]++
		stats.Total++
	}
	return stats, nil
}
