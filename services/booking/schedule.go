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

const daysPerWeek = 7

// GetWeeklySchedule returns a provider's recurring week.
func (se *DefaultSchedulingEngine) GetWeeklySchedule(ctx context.Context, providerID string) ([]models.WeeklyScheduleEntry, error) {
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	entries, err := se.Repo.GetWeeklySchedule(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly schedule: %w", err)
	}
	return entries, nil
}

// UpdateWeeklySchedule validates all seven days and replaces the provider's week atomically.
func (se *DefaultSchedulingEngine) UpdateWeeklySchedule(ctx context.Context, providerID string, entries []models.WeeklyScheduleEntry) ([]models.WeeklyScheduleEntry, error) {
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	if len(entries) != daysPerWeek {
		return nil, validation("weekly schedule needs exactly %d entries, got %d", daysPerWeek, len(entries))
	}

	seen := map[int]bool{}
	now := se.now()
	week := make([]models.WeeklyScheduleEntry, 0, daysPerWeek)
	for _, e := range entries {
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			return nil, validation("dayOfWeek %d out of range [0,6]", e.DayOfWeek)
		}
		if seen[e.DayOfWeek] {
			return nil, validation("dayOfWeek %d appears more than once", e.DayOfWeek)
		}
		seen[e.DayOfWeek] = true
		if e.IsActive {
			if err := validateTimeRange(e.StartTime, e.EndTime); err != nil {
				return nil, err
			}
		}
		week = append(week, models.WeeklyScheduleEntry{
			ID:         se.newID(),
			ProviderID: providerID,
			DayOfWeek:  e.DayOfWeek,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			IsActive:   e.IsActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := se.Repo.ReplaceWeeklySchedule(ctx, providerID, week); err != nil {
		se.logger().Error("failed to replace weekly schedule", zap.String("providerID", providerID), zap.Error(err))
		return nil, fmt.Errorf("failed to update weekly schedule: %w", err)
	}
	se.invalidate(ctx, providerID)
	se.logger().Info("weekly schedule replaced", zap.String("providerID", providerID))
	return se.Repo.GetWeeklySchedule(ctx, providerID)
}

// CreateOverride records a date-specific block or custom hours.
func (se *DefaultSchedulingEngine) CreateOverride(ctx context.Context, providerID string, req models.CreateOverrideRequest) (*models.ScheduleOverride, error) {
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	if req.Date == "" {
		return nil, validation("date is required")
	}
	if _, err := utils.ParseDate(req.Date); err != nil {
		return nil, validation("%v", err)
	}
	hasStart, hasEnd := req.StartTime != nil, req.EndTime != nil
	if hasStart != hasEnd {
		return nil, validation("startTime and endTime must be given together")
	}
	if hasStart {
		if err := validateTimeRange(*req.StartTime, *req.EndTime); err != nil {
			return nil, err
		}
	}
	if !req.IsBlocked && !hasStart {
		return nil, validation("custom hours need startTime and endTime")
	}

	override := &models.ScheduleOverride{
		ID:         se.newID(),
		ProviderID: providerID,
		Date:       req.Date,
		IsBlocked:  req.IsBlocked,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
		CreatedAt:  se.now(),
	}
	if err := se.Repo.CreateOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to create override: %w", err)
	}
	se.invalidate(ctx, providerID)
	se.logger().Info("schedule override created",
		zap.String("providerID", providerID), zap.String("date", req.Date), zap.Bool("blocked", req.IsBlocked))
	return override, nil
}

// ListOverrides returns a provider's overrides ordered by date.
func (se *DefaultSchedulingEngine) ListOverrides(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	if _, err := se.loadProvider(ctx, providerID); err != nil {
		return nil, err
	}
	overrides, err := se.Repo.ListOverrides(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

// GetOverride loads a single override.
func (se *DefaultSchedulingEngine) GetOverride(ctx context.Context, overrideID string) (*models.ScheduleOverride, error) {
	override, err := se.Repo.GetOverrideByID(ctx, overrideID)
	if errors.Is(err, schedulerRepo.ErrNotFound) {
		return nil, notFound("override %s not found", overrideID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load override %s: %w", overrideID, err)
	}
	return override, nil
}

// DeleteOverride removes an override.
func (se *DefaultSchedulingEngine) DeleteOverride(ctx context.Context, overrideID string) error {
	override, err := se.GetOverride(ctx, overrideID)
	if err != nil {
		return err
	}
	err = se.Repo.DeleteOverride(ctx, overrideID)
	if errors.Is(err, schedulerRepo.ErrNotFound) {
		return notFound("override %s not found", overrideID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete override %s: %w", overrideID, err)
	}
	se.invalidate(ctx, override.ProviderID)
	return nil
}

func validateTimeRange(start, end string) error {
	s, err := utils.ParseClock(start)
	if err != nil {
		return validation("%v", err)
	}
	e, err := utils.ParseClock(end)
	if err != nil {
		return validation("%v", err)
	}
	if s >= e {
		return validation("startTime %s must be before endTime %s", start, end)
	}
	return nil
}
