package booking

import (
	"context"
	"testing"

	"appointly/models"
)

func TestUpdateWeeklySchedule(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	got, err := fx.engine.UpdateWeeklySchedule(ctx, testProvider, week(map[int][2]string{
		2: {"08:00", "10:00"},
		3: {"13:00", "17:30"},
	}))
	if err != nil {
		t.Fatalf("UpdateWeeklySchedule: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.ProviderID != testProvider || e.ID == "" {
			t.Errorf("entry not stamped: %+v", e)
		}
	}

	// Monday is now closed; Tuesday opens.
	mondayStarts, _ := fx.engine.GetAvailableStartTimes(ctx, testProvider, testService, monday)
	if len(mondayStarts) != 0 {
		t.Errorf("monday should be closed, got %v", mondayStarts)
	}
	tuesdayStarts, _ := fx.engine.GetAvailableStartTimes(ctx, testProvider, testService, tuesday)
	if !equalStrings(tuesdayStarts, []string{"08:00", "08:40", "09:20"}) {
		t.Errorf("tuesday starts = %v", tuesdayStarts)
	}
}

func TestUpdateWeeklySchedule_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sixDays := week(nil)[:6]
	dupDay := week(nil)
	dupDay[6].DayOfWeek = 0
	badDay := week(nil)
	badDay[3].DayOfWeek = 7
	backwards := week(map[int][2]string{1: {"12:00", "09:00"}})
	equal := week(map[int][2]string{1: {"09:00", "09:00"}})
	malformed := week(map[int][2]string{1: {"9", "12:00"}})
	inactiveBackwards := week(nil)
	inactiveBackwards[1].StartTime, inactiveBackwards[1].EndTime = "12:00", "09:00"

	tests := []struct {
		name    string
		entries []models.WeeklyScheduleEntry
		wantErr bool
	}{
		{"six entries", sixDays, true},
		{"duplicate day", dupDay, true},
		{"day out of range", badDay, true},
		{"end before start", backwards, true},
		{"empty window", equal, true},
		{"malformed time", malformed, true},
		{"inactive entries are not checked", inactiveBackwards, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.engine.UpdateWeeklySchedule(ctx, testProvider, tt.entries)
			if tt.wantErr && !IsValidation(err) {
				t.Fatalf("expected Validation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	if _, err := fx.engine.UpdateWeeklySchedule(ctx, "missing", week(nil)); !IsNotFound(err) {
		t.Errorf("unknown provider: expected NotFound, got %v", err)
	}
}

func TestCreateOverride_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateOverrideRequest
	}{
		{"missing date", models.CreateOverrideRequest{IsBlocked: true}},
		{"bad date", models.CreateOverrideRequest{Date: "2030-02-30", IsBlocked: true}},
		{"only start", models.CreateOverrideRequest{Date: monday, IsBlocked: true, StartTime: ptr("09:00")}},
		{"only end", models.CreateOverrideRequest{Date: monday, IsBlocked: true, EndTime: ptr("10:00")}},
		{"backwards range", models.CreateOverrideRequest{Date: monday, IsBlocked: true, StartTime: ptr("10:00"), EndTime: ptr("09:00")}},
		{"custom hours without times", models.CreateOverrideRequest{Date: monday}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := fx.engine.CreateOverride(ctx, testProvider, tt.req); !IsValidation(err) {
				t.Errorf("expected Validation, got %v", err)
			}
		})
	}

	if _, err := fx.engine.CreateOverride(ctx, "missing", models.CreateOverrideRequest{Date: monday, IsBlocked: true}); !IsNotFound(err) {
		t.Errorf("unknown provider: expected NotFound, got %v", err)
	}
}

func TestOverrides_ListAndDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, d := range []string{"2030-01-20", monday, tuesday} {
		if _, err := fx.engine.CreateOverride(ctx, testProvider, models.CreateOverrideRequest{Date: d, IsBlocked: true}); err != nil {
			t.Fatalf("CreateOverride(%s): %v", d, err)
		}
	}

	all, err := fx.engine.ListOverrides(ctx, testProvider, "", "")
	if err != nil {
		t.Fatalf("ListOverrides: %v", err)
	}
	if len(all) != 3 || all[0].Date != monday || all[2].Date != "2030-01-20" {
		t.Fatalf("overrides not ordered by date: %+v", all)
	}
	window, _ := fx.engine.ListOverrides(ctx, testProvider, monday, tuesday)
	if len(window) != 2 {
		t.Errorf("expected 2 overrides in range, got %d", len(window))
	}
	if _, err := fx.engine.ListOverrides(ctx, testProvider, "soon", ""); !IsValidation(err) {
		t.Errorf("bad from: expected Validation, got %v", err)
	}

	if err := fx.engine.DeleteOverride(ctx, all[0].ID); err != nil {
		t.Fatalf("DeleteOverride: %v", err)
	}
	if err := fx.engine.DeleteOverride(ctx, all[0].ID); !IsNotFound(err) {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}

	// The Monday block is gone, so Monday slots are back.
	starts, _ := fx.engine.GetAvailableStartTimes(ctx, testProvider, testService, monday)
	if len(starts) != 4 {
		t.Errorf("expected Monday to reopen, got %v", starts)
	}
}

func TestScheduleChangesInvalidateCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	before := fx.cache.invalidated[testProvider]

	o, err := fx.engine.CreateOverride(ctx, testProvider, models.CreateOverrideRequest{Date: monday, IsBlocked: true})
	if err != nil {
		t.Fatalf("CreateOverride: %v", err)
	}
	if err := fx.engine.DeleteOverride(ctx, o.ID); err != nil {
		t.Fatalf("DeleteOverride: %v", err)
	}
	if got := fx.cache.invalidated[testProvider] - before; got != 2 {
		t.Errorf("expected 2 invalidations, got %d", got)
	}
}
