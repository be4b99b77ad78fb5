package relationalRepo

import (
	"context"
	"fmt"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"

	"gorm.io/gorm"
)

func (repo *GormSchedulerRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return getBooking(repo.db.WithContext(ctx), bookingID)
}

func getBooking(q *gorm.DB, bookingID string) (*models.Booking, error) {
	var row bookingRow
	if err := q.First(&row, "id = ?", bookingID).Error; err != nil {
		return nil, notFoundOr(err, "error fetching booking "+bookingID)
	}
	booking := row.toModel()
	return &booking, nil
}

func (repo *GormSchedulerRepo) ListActiveBookings(ctx context.Context, providerID, date, excludeBookingID string) ([]models.Booking, error) {
	return activeBookings(repo.db.WithContext(ctx), providerID, date, excludeBookingID)
}

func activeBookings(q *gorm.DB, providerID, date, excludeBookingID string) ([]models.Booking, error) {
	q = q.Where("provider_id = ? AND date = ? AND status IN ?",
		providerID, date, statusStrings(models.ActiveBookingStatuses))
	if excludeBookingID != "" {
		q = q.Where("id <> ?", excludeBookingID)
	}
	var rows []bookingRow
	if err := q.Order("start_time").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching active bookings: %w", err)
	}
	return bookingModels(rows), nil
}

func (repo *GormSchedulerRepo) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	q := repo.db.WithContext(ctx)
	if f.ProviderID != "" {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	q = dateRange(q, f.DateFrom, f.DateTo)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []bookingRow
	if err := q.Order("date DESC, start_time DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return bookingModels(rows), nil
}

// InsertBooking checks for overlaps and inserts inside one serializable transaction.
func (repo *GormSchedulerRepo) InsertBooking(ctx context.Context, booking *models.Booking) error {
	booking.Active = booking.Status.IsActive()
	err := repo.serializable(ctx, func(tx *gorm.DB) error {
		existing, err := activeBookings(tx, booking.ProviderID, booking.Date, "")
		if err != nil {
			return err
		}
		if err := schedulerRepo.CheckNoOverlap(existing, *booking); err != nil {
			return err
		}
		row := toBookingRow(*booking)
		return tx.Create(&row).Error
	})
	return classifyWriteError(err, "insert booking failed")
}

// RescheduleBooking moves an active booking, excluding itself from the overlap check.
func (repo *GormSchedulerRepo) RescheduleBooking(ctx context.Context, booking *models.Booking) error {
	err := repo.serializable(ctx, func(tx *gorm.DB) error {
		current, err := getBooking(tx, booking.ID)
		if err != nil {
			return err
		}
		if !current.Status.IsActive() {
			return schedulerRepo.ErrStatusChanged
		}
		existing, err := activeBookings(tx, booking.ProviderID, booking.Date, booking.ID)
		if err != nil {
			return err
		}
		if err := schedulerRepo.CheckNoOverlap(existing, *booking); err != nil {
			return err
		}
		return tx.Model(&bookingRow{}).
			Where("id = ? AND status = ?", booking.ID, string(current.Status)).
			Updates(map[string]interface{}{
				"date":       booking.Date,
				"start_time": booking.StartTime,
				"end_time":   booking.EndTime,
				"updated_at": booking.UpdatedAt,
			}).Error
	})
	return classifyWriteError(err, "reschedule booking failed")
}

// TransitionBookingStatus is a compare-and-set on the status column.
func (repo *GormSchedulerRepo) TransitionBookingStatus(ctx context.Context, t schedulerRepo.StatusTransition) (*models.Booking, error) {
	var next models.Booking
	schedulerRepo.ApplyTransition(&next, t)
	updates := map[string]interface{}{
		"status":     string(next.Status),
		"updated_at": next.UpdatedAt,
	}
	if next.ConfirmedAt != nil {
		updates["confirmed_at"] = next.ConfirmedAt
	}
	if next.CompletedAt != nil {
		updates["completed_at"] = next.CompletedAt
	}
	if next.CancelledAt != nil {
		updates["cancelled_at"] = next.CancelledAt
		updates["cancellation_reason"] = next.CancellationReason
	}

	res := repo.db.WithContext(ctx).Model(&bookingRow{}).
		Where("id = ? AND status IN ?", t.BookingID, statusStrings(t.From)).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("transition booking %s failed: %w", t.BookingID, res.Error)
	}
	booking, err := repo.GetBookingByID(ctx, t.BookingID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, schedulerRepo.ErrStatusChanged
	}
	return booking, nil
}

func (repo *GormSchedulerRepo) GetBookingStats(ctx context.Context, providerID, from, to string) (*models.BookingStats, error) {
	var results []struct {
		Status string
		Count  int
	}
	q := dateRange(repo.db.WithContext(ctx).Model(&bookingRow{}).Where("provider_id = ?", providerID), from, to)
	if err := q.Select("status, count(*) AS count").Group("status").Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error aggregating booking stats for provider %s: %w", providerID, err)
	}

	stats := &models.BookingStats{
		ProviderID: providerID,
		From:       from,
		To:         to,
		ByStatus:   map[models.BookingStatus]int{},
	}
	for _, r := range results {
		stats.ByStatus[models.BookingStatus(r.Status)] = r.Count
		stats.Total += r.Count
	}
	return stats, nil
}
