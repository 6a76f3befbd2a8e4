// Package database manages the GORM connection for sqlite and postgres backends.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quizmetrics/internal/config"
	"quizmetrics/internal/tracking"
)

// DBManager owns the database connection and runs migrations.
type DBManager struct {
	cfg    *config.Config
	logger *slog.Logger

	mu sync.Mutex
	db *gorm.DB
}

// NewDBManager creates a database manager for the configured backend.
func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	return &DBManager{cfg: cfg, logger: logger}
}

// Init opens the database connection and configures the pool.
func (dm *DBManager) Init() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db != nil {
		return nil
	}

	var dialector gorm.Dialector
	switch dm.cfg.DatabaseType {
	case config.PostgresDatabase:
		dialector = postgres.Open(dm.cfg.DatabaseDSN)
	default:
		dsn := dm.cfg.DatabaseName
		if dm.cfg.DatabaseDSN != "" {
			dsn = dm.cfg.DatabaseDSN
		} else {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return fmt.Errorf("failed to create storage directory: %w", err)
			}
			dsn = fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", dsn)
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(dm.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(dm.cfg.GetMaxIdleConns())
	sqlDB.SetConnMaxLifetime(time.Hour)

	dm.db = db
	dm.logger.Info("Database connection established",
		slog.String("type", dm.cfg.DatabaseType))
	return nil
}

// GetConnection returns the shared gorm connection.
func (dm *DBManager) GetConnection() *gorm.DB {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.db
}

// MigrateDatabase auto-migrates the tracking schema.
func (dm *DBManager) MigrateDatabase() error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&tracking.PageView{},
			&tracking.QuizProgress{},
			&tracking.DiagnosisResult{},
			&tracking.FeatureEvent{},
		)
	})
	if err != nil {
		dm.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if dm.cfg.DatabaseType == config.SQLiteDatabase {
		if err := dm.CheckpointWAL("FULL"); err != nil {
			dm.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
		}
	}

	dm.logger.Info("Database migration completed successfully")
	return nil
}

// CheckpointWAL forces a sqlite WAL checkpoint. No-op for other backends.
func (dm *DBManager) CheckpointWAL(mode string) error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}
	if dm.cfg.DatabaseType != config.SQLiteDatabase {
		return nil
	}
	return db.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)).Error
}

// Close shuts down the underlying connection pool.
func (dm *DBManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db == nil {
		return nil
	}
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	dm.db = nil
	return sqlDB.Close()
}
