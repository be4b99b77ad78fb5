package relationalRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"

	bookingNumberConstraint = "uniq_booking_number"
	activeSlotConstraint    = "uniq_active_booking_slot"

	maxSerializableAttempts = 5
)

// GormSchedulerRepo implements SchedulerRepository on Postgres through gorm.
type GormSchedulerRepo struct {
	db *gorm.DB
}

// NewGormSchedulerRepo migrates the schema and returns the repository.
func NewGormSchedulerRepo(db *gorm.DB) (*GormSchedulerRepo, error) {
	repo := &GormSchedulerRepo{db: db}
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Migrate creates the tables and the partial unique index on active slots.
func (repo *GormSchedulerRepo) Migrate() error {
	migrations := []interface{}{
		&providerRow{},
		&providerServiceRow{},
		&serviceRow{},
		&weeklyRow{},
		&overrideRow{},
		&bookingRow{},
	}
	for _, model := range migrations {
		if err := repo.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %T: %w", model, err)
		}
	}
	err := repo.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeSlotConstraint +
		` ON bookings (provider_id, date, start_time) WHERE status IN ('PENDING', 'CONFIRMED')`).Error
	if err != nil {
		return fmt.Errorf("error creating active slot index: %w", err)
	}
	return nil
}

func (repo *GormSchedulerRepo) Ping(ctx context.Context) error {
	sqlDB, err := repo.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SaveProvider upserts a provider and its service links.
func (repo *GormSchedulerRepo) SaveProvider(ctx context.Context, provider *models.Provider) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toProviderRow(*provider)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("error saving provider %s: %w", provider.ID, err)
		}
		if err := tx.Where("provider_id = ?", provider.ID).Delete(&providerServiceRow{}).Error; err != nil {
			return err
		}
		for _, serviceID := range provider.ServiceIDs {
			link := providerServiceRow{ProviderID: provider.ID, ServiceID: serviceID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveService upserts a service row.
func (repo *GormSchedulerRepo) SaveService(ctx context.Context, service *models.Service) error {
	row := toServiceRow(*service)
	if err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("error saving service %s: %w", service.ID, err)
	}
	return nil
}

func (repo *GormSchedulerRepo) GetProviderByID(ctx context.Context, providerID string) (*models.Provider, error) {
	var row providerRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", providerID).Error; err != nil {
		return nil, notFoundOr(err, "error fetching provider "+providerID)
	}
	var serviceIDs []string
	err := repo.db.WithContext(ctx).Model(&providerServiceRow{}).
		Where("provider_id = ?", providerID).
		Order("service_id").
		Pluck("service_id", &serviceIDs).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching services of provider %s: %w", providerID, err)
	}
	provider := row.toModel(serviceIDs)
	return &provider, nil
}

func (repo *GormSchedulerRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	var row serviceRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", serviceID).Error; err != nil {
		return nil, notFoundOr(err, "error fetching service "+serviceID)
	}
	service := row.toModel()
	return &service, nil
}

func (repo *GormSchedulerRepo) GetWeeklySchedule(ctx context.Context, providerID string) ([]models.WeeklyScheduleEntry, error) {
	return repo.findWeekly(repo.db.WithContext(ctx).Where("provider_id = ?", providerID))
}

func (repo *GormSchedulerRepo) GetActiveWeeklyEntries(ctx context.Context, providerID string, dayOfWeek int) ([]models.WeeklyScheduleEntry, error) {
	return repo.findWeekly(repo.db.WithContext(ctx).
		Where("provider_id = ? AND day_of_week = ? AND is_active", providerID, dayOfWeek))
}

func (repo *GormSchedulerRepo) findWeekly(q *gorm.DB) ([]models.WeeklyScheduleEntry, error) {
	var rows []weeklyRow
	if err := q.Order("day_of_week, start_time").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching weekly schedule: %w", err)
	}
	entries := make([]models.WeeklyScheduleEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

// ReplaceWeeklySchedule deletes and re-inserts the provider's week in one transaction.
func (repo *GormSchedulerRepo) ReplaceWeeklySchedule(ctx context.Context, providerID string, entries []models.WeeklyScheduleEntry) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", providerID).Delete(&weeklyRow{}).Error; err != nil {
			return fmt.Errorf("clear weekly schedule failed: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]weeklyRow, len(entries))
		for i, e := range entries {
			rows[i] = toWeeklyRow(e)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert weekly schedule failed: %w", err)
		}
		return nil
	})
}

func (repo *GormSchedulerRepo) CreateOverride(ctx context.Context, override *models.ScheduleOverride) error {
	row := toOverrideRow(*override)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error creating override: %w", err)
	}
	return nil
}

func (repo *GormSchedulerRepo) GetOverrideByID(ctx context.Context, overrideID string) (*models.ScheduleOverride, error) {
	var row overrideRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", overrideID).Error; err != nil {
		return nil, notFoundOr(err, "error fetching override "+overrideID)
	}
	override := row.toModel()
	return &override, nil
}

func (repo *GormSchedulerRepo) GetOverridesForDate(ctx context.Context, providerID, date string) ([]models.ScheduleOverride, error) {
	return repo.findOverrides(repo.db.WithContext(ctx).Where("provider_id = ? AND date = ?", providerID, date))
}

func (repo *GormSchedulerRepo) ListOverrides(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	q := dateRange(repo.db.WithContext(ctx).Where("provider_id = ?", providerID), from, to)
	return repo.findOverrides(q)
}

func (repo *GormSchedulerRepo) findOverrides(q *gorm.DB) ([]models.ScheduleOverride, error) {
	var rows []overrideRow
	if err := q.Order("date, created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching overrides: %w", err)
	}
	overrides := make([]models.ScheduleOverride, 0, len(rows))
	for _, r := range rows {
		overrides = append(overrides, r.toModel())
	}
	return overrides, nil
}

func (repo *GormSchedulerRepo) DeleteOverride(ctx context.Context, overrideID string) error {
	res := repo.db.WithContext(ctx).Where("id = ?", overrideID).Delete(&overrideRow{})
	if res.Error != nil {
		return fmt.Errorf("error deleting override %s: %w", overrideID, res.Error)
	}
	if res.RowsAffected == 0 {
		return schedulerRepo.ErrNotFound
	}
	return nil
}

// dateRange applies an inclusive range on "YYYY-MM-DD" columns.
func dateRange(q *gorm.DB, from, to string) *gorm.DB {
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	return q
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schedulerRepo.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// serializable runs fn in a SERIALIZABLE transaction, retrying serialization failures.
func (repo *GormSchedulerRepo) serializable(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxSerializableAttempts; attempt++ {
		err = repo.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if pgCode(err) != serializationFailure {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classifyWriteError maps unique violations onto repository sentinels.
func classifyWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == bookingNumberConstraint {
			return schedulerRepo.ErrDuplicateBookingNumber
		}
		return fmt.Errorf("%w: %s", schedulerRepo.ErrSlotTaken, pgErr.ConstraintName)
	}
	if errors.Is(err, schedulerRepo.ErrSlotTaken) || errors.Is(err, schedulerRepo.ErrNotFound) ||
		errors.Is(err, schedulerRepo.ErrStatusChanged) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
