// Package repotest holds behaviour checks shared by every SchedulerRepository store.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
)

// Store is a repository that can also be seeded.
type Store interface {
	schedulerRepo.SchedulerRepository
	schedulerRepo.CatalogWriter
}

var fixedNow = time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

// Run exercises the repository contract against a store. ids must be unique per
// call so runs against shared databases do not collide.
func Run(t *testing.T, store Store, ids string) {
	ctx := context.Background()
	providerID := "prov-" + ids
	serviceID := "svc-" + ids
	date := "2030-01-07"

	if err := store.SaveService(ctx, &models.Service{
		ID: serviceID, Name: "Massage", Duration: 60, Status: models.ServiceStatusActive,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}); err != nil {
		t.Fatalf("SaveService: %v", err)
	}
	if err := store.SaveProvider(ctx, &models.Provider{
		ID: providerID, Name: "Ada", IsActive: true, ServiceIDs: []string{serviceID},
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}); err != nil {
		t.Fatalf("SaveProvider: %v", err)
	}

	newBooking := func(n int, start, end string) *models.Booking {
		return &models.Booking{
			ID:            fmt.Sprintf("bk-%s-%d", ids, n),
			BookingNumber: fmt.Sprintf("BK-%s%02d", ids[:min(6, len(ids))], n),
			ProviderID:    providerID,
			ServiceID:     serviceID,
			UserID:        "user-" + ids,
			Date:          date,
			StartTime:     start,
			EndTime:       end,
			Status:        models.BookingStatusPending,
			CreatedAt:     fixedNow,
			UpdatedAt:     fixedNow,
		}
	}

	t.Run("catalog", func(t *testing.T) {
		p, err := store.GetProviderByID(ctx, providerID)
		if err != nil {
			t.Fatalf("GetProviderByID: %v", err)
		}
		if !p.OffersService(serviceID) {
			t.Errorf("provider should offer %s, got %v", serviceID, p.ServiceIDs)
		}
		if _, err := store.GetServiceByID(ctx, "missing-"+ids); !errors.Is(err, schedulerRepo.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("weekly schedule replace", func(t *testing.T) {
		week := make([]models.WeeklyScheduleEntry, 7)
		for d := 0; d < 7; d++ {
			week[d] = models.WeeklyScheduleEntry{
				ID: fmt.Sprintf("wk-%s-%d", ids, d), ProviderID: providerID, DayOfWeek: d,
				StartTime: "09:00", EndTime: "17:00", IsActive: d >= 1 && d <= 5,
				CreatedAt: fixedNow, UpdatedAt: fixedNow,
			}
		}
		if err := store.ReplaceWeeklySchedule(ctx, providerID, week); err != nil {
			t.Fatalf("ReplaceWeeklySchedule: %v", err)
		}
		if err := store.ReplaceWeeklySchedule(ctx, providerID, week); err != nil {
			t.Fatalf("second ReplaceWeeklySchedule: %v", err)
		}
		got, err := store.GetWeeklySchedule(ctx, providerID)
		if err != nil {
			t.Fatalf("GetWeeklySchedule: %v", err)
		}
		if len(got) != 7 {
			t.Fatalf("expected 7 entries, got %d", len(got))
		}
		monday, err := store.GetActiveWeeklyEntries(ctx, providerID, 1)
		if err != nil || len(monday) != 1 {
			t.Fatalf("expected one active Monday entry, got %v (%v)", monday, err)
		}
		sunday, _ := store.GetActiveWeeklyEntries(ctx, providerID, 0)
		if len(sunday) != 0 {
			t.Errorf("Sunday is inactive, got %v", sunday)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		start, end := "12:00", "13:00"
		for i, d := range []string{"2030-01-09", "2030-01-08"} {
			o := &models.ScheduleOverride{
				ID: fmt.Sprintf("ov-%s-%d", ids, i), ProviderID: providerID, Date: d,
				IsBlocked: true, StartTime: &start, EndTime: &end, CreatedAt: fixedNow,
			}
			if err := store.CreateOverride(ctx, o); err != nil {
				t.Fatalf("CreateOverride: %v", err)
			}
		}
		list, err := store.ListOverrides(ctx, providerID, "2030-01-08", "2030-01-31")
		if err != nil {
			t.Fatalf("ListOverrides: %v", err)
		}
		if len(list) != 2 || list[0].Date != "2030-01-08" {
			t.Fatalf("expected overrides ordered by date, got %+v", list)
		}
		forDay, _ := store.GetOverridesForDate(ctx, providerID, "2030-01-09")
		if len(forDay) != 1 || !forDay[0].IsPartialBlock() {
			t.Errorf("expected one partial block, got %+v", forDay)
		}
		if err := store.DeleteOverride(ctx, list[0].ID); err != nil {
			t.Fatalf("DeleteOverride: %v", err)
		}
		if err := store.DeleteOverride(ctx, list[0].ID); !errors.Is(err, schedulerRepo.ErrNotFound) {
			t.Errorf("second delete should be ErrNotFound, got %v", err)
		}
	})

	t.Run("insert rejects overlap", func(t *testing.T) {
		if err := store.InsertBooking(ctx, newBooking(1, "10:00", "11:00")); err != nil {
			t.Fatalf("InsertBooking: %v", err)
		}
		err := store.InsertBooking(ctx, newBooking(2, "10:30", "11:30"))
		if !errors.Is(err, schedulerRepo.ErrSlotTaken) {
			t.Fatalf("expected ErrSlotTaken, got %v", err)
		}
		if err := store.InsertBooking(ctx, newBooking(3, "11:00", "12:00")); err != nil {
			t.Fatalf("adjacent booking should be accepted: %v", err)
		}
	})

	t.Run("duplicate booking number", func(t *testing.T) {
		dup := newBooking(4, "15:00", "16:00")
		dup.BookingNumber = newBooking(1, "", "").BookingNumber
		if err := store.InsertBooking(ctx, dup); !errors.Is(err, schedulerRepo.ErrDuplicateBookingNumber) {
			t.Fatalf("expected ErrDuplicateBookingNumber, got %v", err)
		}
	})

	t.Run("concurrent inserts on one slot", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = store.InsertBooking(ctx, newBooking(20+i, "13:00", "14:00"))
			}(i)
		}
		wg.Wait()
		won := 0
		for _, err := range errs {
			switch {
			case err == nil:
				won++
			case !errors.Is(err, schedulerRepo.ErrSlotTaken):
				t.Errorf("unexpected error: %v", err)
			}
		}
		if won != 1 {
			t.Fatalf("expected exactly one winner, got %d", won)
		}
	})

	t.Run("status compare-and-set", func(t *testing.T) {
		id := newBooking(1, "", "").ID
		confirm := schedulerRepo.StatusTransition{
			BookingID: id,
			From:      []models.BookingStatus{models.BookingStatusPending},
			To:        models.BookingStatusConfirmed,
			At:        fixedNow,
		}
		b, err := store.TransitionBookingStatus(ctx, confirm)
		if err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if b.Status != models.BookingStatusConfirmed || b.ConfirmedAt == nil {
			t.Errorf("expected CONFIRMED with timestamp, got %+v", b)
		}
		if _, err := store.TransitionBookingStatus(ctx, confirm); !errors.Is(err, schedulerRepo.ErrStatusChanged) {
			t.Errorf("second confirm should be ErrStatusChanged, got %v", err)
		}
		confirm.BookingID = "missing-" + ids
		if _, err := store.TransitionBookingStatus(ctx, confirm); !errors.Is(err, schedulerRepo.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reschedule excludes itself", func(t *testing.T) {
		moved := newBooking(1, "10:30", "11:30")
		moved.UpdatedAt = fixedNow.Add(time.Hour)
		// 11:00-12:00 is held by booking 3.
		if err := store.RescheduleBooking(ctx, moved); !errors.Is(err, schedulerRepo.ErrSlotTaken) {
			t.Fatalf("expected ErrSlotTaken, got %v", err)
		}
		same := newBooking(1, "10:00", "11:00")
		if err := store.RescheduleBooking(ctx, same); err != nil {
			t.Fatalf("rescheduling onto its own slot: %v", err)
		}
		later := newBooking(1, "16:00", "17:00")
		if err := store.RescheduleBooking(ctx, later); err != nil {
			t.Fatalf("RescheduleBooking: %v", err)
		}
		got, _ := store.GetBookingByID(ctx, later.ID)
		if got.StartTime != "16:00" || got.Status != models.BookingStatusConfirmed {
			t.Errorf("expected 16:00 CONFIRMED, got %s %s", got.StartTime, got.Status)
		}
	})

	t.Run("cancel frees the slot", func(t *testing.T) {
		id := newBooking(3, "", "").ID
		b, err := store.TransitionBookingStatus(ctx, schedulerRepo.StatusTransition{
			BookingID: id,
			From:      models.ActiveBookingStatuses,
			To:        models.BookingStatusCancelled,
			Reason:    "sick",
			At:        fixedNow,
		})
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if b.CancellationReason != "sick" || b.CancelledAt == nil {
			t.Errorf("cancel fields not stamped: %+v", b)
		}
		active, _ := store.ListActiveBookings(ctx, providerID, date, "")
		for _, a := range active {
			if a.ID == id {
				t.Errorf("cancelled booking still active")
			}
		}
		if err := store.InsertBooking(ctx, newBooking(5, "11:00", "12:00")); err != nil {
			t.Fatalf("slot should be free after cancel: %v", err)
		}
	})

	t.Run("list and stats", func(t *testing.T) {
		all, err := store.ListBookings(ctx, models.BookingFilter{ProviderID: providerID})
		if err != nil {
			t.Fatalf("ListBookings: %v", err)
		}
		cancelled, _ := store.ListBookings(ctx, models.BookingFilter{
			ProviderID: providerID,
			Statuses:   []models.BookingStatus{models.BookingStatusCancelled},
		})
		if len(cancelled) != 1 {
			t.Errorf("expected one cancelled booking, got %d", len(cancelled))
		}
		limited, _ := store.ListBookings(ctx, models.BookingFilter{ProviderID: providerID, Limit: 1})
		if len(limited) != 1 {
			t.Errorf("limit ignored, got %d", len(limited))
		}
		stats, err := store.GetBookingStats(ctx, providerID, date, date)
		if err != nil {
			t.Fatalf("GetBookingStats: %v", err)
		}
		if stats.Total != len(all) {
			t.Errorf("stats total %d != listed %d", stats.Total, len(all))
		}
		if stats.ByStatus[models.BookingStatusCancelled] != 1 || stats.ByStatus[models.BookingStatusConfirmed] != 1 {
			t.Errorf("unexpected breakdown %v", stats.ByStatus)
		}
	})
}
