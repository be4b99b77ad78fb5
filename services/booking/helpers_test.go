package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	memoryRepo "appointly/database/repository/memory"
	"appointly/models"

	"go.uber.org/zap"
)

const (
	testProvider = "prov-1"
	testService  = "svc-30"
	testUser     = "user-1"
	monday       = "2030-01-07"
	tuesday      = "2030-01-08"
)

var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

type fakeCache struct {
	mu          sync.Mutex
	grids       map[string][]models.Slot
	invalidated map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{grids: map[string][]models.Slot{}, invalidated: map[string]int{}}
}

func (c *fakeCache) key(providerID, serviceID, date string) string {
	return fmt.Sprintf("%s:%d:%s:%s", providerID, c.invalidated[providerID], serviceID, date)
}

func (c *fakeCache) Lookup(_ context.Context, providerID, serviceID, date string) ([]models.Slot, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.grids[c.key(providerID, serviceID, date)]
	return slots, int64(c.invalidated[providerID]), ok
}

func (c *fakeCache) Store(_ context.Context, providerID, serviceID, date string, version int64, slots []models.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(version) != c.invalidated[providerID] {
		return
	}
	c.grids[c.key(providerID, serviceID, date)] = slots
}

func (c *fakeCache) Invalidate(_ context.Context, providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[providerID]++
}

type recordedReminder struct {
	bookingID string
	at        time.Time
}

type fakeReminders struct {
	mu    sync.Mutex
	calls []recordedReminder
	err   error
}

func (r *fakeReminders) ScheduleReminder(_ context.Context, b models.Booking, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, recordedReminder{bookingID: b.ID, at: at})
	return nil
}

type fixture struct {
	repo      *memoryRepo.MemorySchedulerRepo
	engine    *DefaultSchedulingEngine
	cache     *fakeCache
	reminders *fakeReminders
}

// newFixture seeds a provider working Monday 09:00-12:00 offering a 30 minute
// service with a 10 minute buffer.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memoryRepo.NewMemorySchedulerRepo()

	mustSeed(t, repo.SaveService(ctx, &models.Service{
		ID: testService, Name: "Consultation", Price: 40, Duration: 30, BufferTime: 10,
		Status: models.ServiceStatusActive,
	}))
	mustSeed(t, repo.SaveService(ctx, &models.Service{
		ID: "svc-draft", Name: "Draft", Duration: 30, Status: models.ServiceStatusDraft,
	}))
	mustSeed(t, repo.SaveService(ctx, &models.Service{
		ID: "svc-60", Name: "Long", Duration: 60, Status: models.ServiceStatusActive,
	}))
	mustSeed(t, repo.SaveProvider(ctx, &models.Provider{
		ID: testProvider, Name: "Dr. Lee", IsActive: true,
		ServiceIDs: []string{testService, "svc-draft", "svc-60"},
	}))
	mustSeed(t, repo.SaveProvider(ctx, &models.Provider{
		ID: "prov-other", Name: "Other", IsActive: true,
	}))

	var seq int
	var mu sync.Mutex
	fx := &fixture{repo: repo, cache: newFakeCache(), reminders: &fakeReminders{}}
	fx.engine = &DefaultSchedulingEngine{
		Repo:             repo,
		Logger:           zap.NewNop(),
		Cache:            fx.cache,
		Reminders:        fx.reminders,
		ReminderLeadTime: 24 * time.Hour,
		Location:         time.UTC,
		Now:              func() time.Time { return testNow },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	}

	_, err := fx.engine.UpdateWeeklySchedule(ctx, testProvider, week(map[int][2]string{1: {"09:00", "12:00"}}))
	if err != nil {
		t.Fatalf("seed weekly schedule: %v", err)
	}
	return fx
}

func mustSeed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// week builds seven entries; days missing from open are inactive.
func week(open map[int][2]string) []models.WeeklyScheduleEntry {
	entries := make([]models.WeeklyScheduleEntry, 7)
	for d := 0; d < 7; d++ {
		entries[d] = models.WeeklyScheduleEntry{DayOfWeek: d}
		if hours, ok := open[d]; ok {
			entries[d].IsActive = true
			entries[d].StartTime = hours[0]
			entries[d].EndTime = hours[1]
		}
	}
	return entries
}

func (fx *fixture) book(t *testing.T, date, start string) *models.Booking {
	t.Helper()
	b, err := fx.engine.CreateBooking(context.Background(), models.CreateBookingInput{
		UserID: testUser, ServiceID: testService, ProviderID: testProvider, Date: date, StartTime: start,
	})
	if err != nil {
		t.Fatalf("CreateBooking(%s %s): %v", date, start, err)
	}
	return b
}

func ptr(s string) *string { return &s }

func startsOf(slots []models.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
