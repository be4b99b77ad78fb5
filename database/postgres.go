package database

import (
	"fmt"
	"time"

	"appointly/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPSQLStorage opens the Postgres store used when STORE_DRIVER=postgres.
func NewPSQLStorage(logger *zap.Logger) (*gorm.DB, error) {
	return OpenPostgres(config.AppConfig.PostgresDSN, logger)
}

// OpenPostgres opens a gorm connection for dsn and configures its pool.
func OpenPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if !config.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Connected to Postgres successfully")
	return db, nil
}
