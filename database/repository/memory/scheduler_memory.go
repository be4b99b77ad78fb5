package memoryRepo

import (
	"context"
	"sort"
	"sync"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
)

// MemorySchedulerRepo keeps everything in process. One mutex spans every check
// and write, which makes the booking writes atomic.
type MemorySchedulerRepo struct {
	mu        sync.Mutex
	providers map[string]models.Provider
	services  map[string]models.Service
	weekly    map[string][]models.WeeklyScheduleEntry
	overrides map[string]models.ScheduleOverride
	bookings  map[string]models.Booking
}

func NewMemorySchedulerRepo() *MemorySchedulerRepo {
	return &MemorySchedulerRepo{
		providers: map[string]models.Provider{},
		services:  map[string]models.Service{},
		weekly:    map[string][]models.WeeklyScheduleEntry{},
		overrides: map[string]models.ScheduleOverride{},
		bookings:  map[string]models.Booking{},
	}
}

func (repo *MemorySchedulerRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (repo *MemorySchedulerRepo) SaveProvider(_ context.Context, provider *models.Provider) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	p := *provider
	p.ServiceIDs = append([]string(nil), provider.ServiceIDs...)
	repo.providers[p.ID] = p
	return nil
}

func (repo *MemorySchedulerRepo) SaveService(_ context.Context, service *models.Service) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.services[service.ID] = *service
	return nil
}

func (repo *MemorySchedulerRepo) GetProviderByID(_ context.Context, providerID string) (*models.Provider, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	p, ok := repo.providers[providerID]
	if !ok {
		return nil, schedulerRepo.ErrNotFound
	}
	p.ServiceIDs = append([]string(nil), p.ServiceIDs...)
	return &p, nil
}

func (repo *MemorySchedulerRepo) GetServiceByID(_ context.Context, serviceID string) (*models.Service, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.services[serviceID]
	if !ok {
		return nil, schedulerRepo.ErrNotFound
	}
	return &s, nil
}

func (repo *MemorySchedulerRepo) GetWeeklySchedule(_ context.Context, providerID string) ([]models.WeeklyScheduleEntry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	entries := append([]models.WeeklyScheduleEntry{}, repo.weekly[providerID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].DayOfWeek < entries[j].DayOfWeek })
	return entries, nil
}

func (repo *MemorySchedulerRepo) GetActiveWeeklyEntries(_ context.Context, providerID string, dayOfWeek int) ([]models.WeeklyScheduleEntry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.WeeklyScheduleEntry
	for _, e := range repo.weekly[providerID] {
		if e.DayOfWeek == dayOfWeek && e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (repo *MemorySchedulerRepo) ReplaceWeeklySchedule(_ context.Context, providerID string, entries []models.WeeklyScheduleEntry) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.weekly[providerID] = append([]models.WeeklyScheduleEntry(nil), entries...)
	return nil
}

func (repo *MemorySchedulerRepo) CreateOverride(_ context.Context, override *models.ScheduleOverride) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.overrides[override.ID] = *override
	return nil
}

func (repo *MemorySchedulerRepo) GetOverrideByID(_ context.Context, overrideID string) (*models.ScheduleOverride, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	o, ok := repo.overrides[overrideID]
	if !ok {
		return nil, schedulerRepo.ErrNotFound
	}
	return &o, nil
}

func (repo *MemorySchedulerRepo) GetOverridesForDate(_ context.Context, providerID, date string) ([]models.ScheduleOverride, error) {
	return repo.filterOverrides(func(o models.ScheduleOverride) bool {
		return o.ProviderID == providerID && o.Date == date
	}), nil
}

func (repo *MemorySchedulerRepo) ListOverrides(_ context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	return repo.filterOverrides(func(o models.ScheduleOverride) bool {
		return o.ProviderID == providerID && inRange(o.Date, from, to)
	}), nil
}

func (repo *MemorySchedulerRepo) filterOverrides(keep func(models.ScheduleOverride) bool) []models.ScheduleOverride {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []models.ScheduleOverride{}
	for _, o := range repo.overrides {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (repo *MemorySchedulerRepo) DeleteOverride(_ context.Context, overrideID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.overrides[overrideID]; !ok {
		return schedulerRepo.ErrNotFound
	}
	delete(repo.overrides, overrideID)
	return nil
}

func inRange(date, from, to string) bool {
	return (from == "" || date >= from) && (to == "" || date <= to)
}
