package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
	"appointly/utils"

	"go.uber.org/zap"
)

// BuildSlots walks every window in steps of duration+buffer and marks each
// duration-long slot available unless it overlaps a blocked range or a booking.
// Slots come back ordered by start; a start produced by two windows appears once
// and is available only if every occurrence was.
func BuildSlots(windows, blocked, booked []models.Interval, duration, buffer int) []models.Slot {
	slots := []models.Slot{}
	if duration <= 0 || buffer < 0 {
		return slots
	}
	step := duration + buffer

	available := map[int]bool{}
	for _, w := range windows {
		for current := w.Start; current+duration <= w.End; current += step {
			candidate := models.Interval{Start: current, End: current + duration}
			free := !overlapsAny(candidate, blocked) && !overlapsAny(candidate, booked)
			if prev, seen := available[current]; seen {
				free = prev && free
			}
			available[current] = free
		}
	}

	starts := make([]int, 0, len(available))
	for start := range available {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for _, start := range starts {
		slots = append(slots, models.Slot{
			StartTime: utils.FormatClock(start),
			EndTime:   utils.FormatClock(start + duration),
			Available: available[start],
		})
	}
	return slots
}

// AvailableStartTimes keeps the start times of available slots.
func AvailableStartTimes(slots []models.Slot) []string {
	starts := []string{}
	for _, s := range slots {
		if s.Available {
			starts = append(starts, s.StartTime)
		}
	}
	return starts
}

// GetAvailableSlots returns the full slot grid of a service on a date.
func (se *DefaultSchedulingEngine) GetAvailableSlots(ctx context.Context, providerID, serviceID, date string) ([]models.Slot, error) {
	var version int64 = -1
	if se.Cache != nil {
		slots, v, ok := se.Cache.Lookup(ctx, providerID, serviceID, date)
		if ok {
			return slots, nil
		}
		version = v
	}

	service, err := se.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	slots, err := se.computeSlots(ctx, providerID, service, date, "")
	if err != nil {
		return nil, err
	}

	if se.Cache != nil {
		se.Cache.Store(ctx, providerID, serviceID, date, version, slots)
	}
	return slots, nil
}

// GetAvailableStartTimes returns only the bookable start times of a service on a date.
func (se *DefaultSchedulingEngine) GetAvailableStartTimes(ctx context.Context, providerID, serviceID, date string) ([]string, error) {
	slots, err := se.GetAvailableSlots(ctx, providerID, serviceID, date)
	if err != nil {
		return nil, err
	}
	return AvailableStartTimes(slots), nil
}

// computeSlots always reads the repository; booking validation relies on it.
func (se *DefaultSchedulingEngine) computeSlots(ctx context.Context, providerID string, service *models.Service, date, excludeBookingID string) ([]models.Slot, error) {
	dayOfWeek, err := utils.DayOfWeek(date)
	if err != nil {
		return nil, validation("%v", err)
	}

	weekly, err := se.Repo.GetActiveWeeklyEntries(ctx, providerID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly schedule for provider %s: %w", providerID, err)
	}
	overrides, err := se.Repo.GetOverridesForDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides for provider %s: %w", providerID, err)
	}

	var custom, blocked []models.Interval
	for _, o := range overrides {
		switch {
		case o.IsFullDayBlock():
			return []models.Slot{}, nil
		case o.IsPartialBlock():
			if iv, ok := se.overrideInterval(o); ok {
				blocked = append(blocked, iv)
			}
		case o.IsCustomHours():
			if iv, ok := se.overrideInterval(o); ok {
				custom = append(custom, iv)
			}
		}
	}

	windows := custom
	if len(windows) == 0 {
		for _, e := range weekly {
			start, errStart := utils.ParseClock(e.StartTime)
			end, errEnd := utils.ParseClock(e.EndTime)
			if errStart != nil || errEnd != nil || start >= end {
				se.logger().Warn("skipping malformed weekly entry",
					zap.String("providerID", providerID), zap.String("entryID", e.ID))
				continue
			}
			windows = append(windows, models.Interval{Start: start, End: end})
		}
	}
	if len(windows) == 0 {
		return []models.Slot{}, nil
	}

	booked, err := se.bookedIntervals(ctx, providerID, date, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return BuildSlots(windows, blocked, booked, service.Duration, service.BufferTime), nil
}

func (se *DefaultSchedulingEngine) overrideInterval(o models.ScheduleOverride) (models.Interval, bool) {
	start, errStart := utils.ParseClock(*o.StartTime)
	end, errEnd := utils.ParseClock(*o.EndTime)
	if errStart != nil || errEnd != nil || start >= end {
		se.logger().Warn("skipping malformed override",
			zap.String("providerID", o.ProviderID), zap.String("overrideID", o.ID))
		return models.Interval{}, false
	}
	return models.Interval{Start: start, End: end}, true
}

func (se *DefaultSchedulingEngine) loadService(ctx context.Context, serviceID string) (*models.Service, error) {
	service, err := se.Repo.GetServiceByID(ctx, serviceID)
	if errors.Is(err, schedulerRepo.ErrNotFound) {
		return nil, notFound("service %s not found", serviceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}
	return service, nil
}

func (se *DefaultSchedulingEngine) loadProvider(ctx context.Context, providerID string) (*models.Provider, error) {
	provider, err := se.Repo.GetProviderByID(ctx, providerID)
	if errors.Is(err, schedulerRepo.ErrNotFound) {
		return nil, notFound("provider %s not found", providerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %s: %w", providerID, err)
	}
	return provider, nil
}

func (se *DefaultSchedulingEngine) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := se.Repo.GetBookingByID(ctx, bookingID)
	if errors.Is(err, schedulerRepo.ErrNotFound) {
		return nil, notFound("booking %s not found", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	return booking, nil
}
