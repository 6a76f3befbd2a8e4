// Package testsupport holds shared database and app helpers for tests.
package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quizmetrics/internal"
	"quizmetrics/internal/config"
	"quizmetrics/internal/tracking"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

func allModels() []any {
	return []any{
		&tracking.PageView{},
		&tracking.QuizProgress{},
		&tracking.DiagnosisResult{},
		&tracking.FeatureEvent{},
	}
}

// SetupTestDB creates a test database with the tracking models migrated.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the database
// by root test name so subtests share the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	var tables []string
	for _, name := range tableNames {
		if name != "migrations" && name != "schema_migrations" {
			tables = append(tables, name)
		}
	}

	if len(tables) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// GetLogger returns a test logger that only reports errors.
func GetLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestConfig returns a config suitable for handler tests.
func TestConfig() *config.Config {
	config.Reset()
	cfg := config.GetConfig()
	cfg.Environment = config.Test
	return cfg
}

// CreateTestApp creates a Fiber app with all routes mounted on the given
// test database.
func CreateTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	cfg := TestConfig()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberrecover.New())
	internal.MountAppRoutes(app, db, GetLogger(), cfg)
	return app
}

// CreatePageView inserts a page view row directly, for aggregation tests.
func CreatePageView(t *testing.T, db *gorm.DB, page, userAgent, referrer, ip string, createdAt time.Time) {
	t.Helper()
	view := &tracking.PageView{
		Page:      page,
		UserAgent: userAgent,
		Referrer:  referrer,
		IP:        ip,
		CreatedAt: createdAt.UTC(),
	}
	if err := db.Create(view).Error; err != nil {
		t.Fatalf("testsupport: failed to create page view: %v", err)
	}
}

// CreateQuizProgress inserts a quiz progress row directly.
func CreateQuizProgress(t *testing.T, db *gorm.DB, sessionID string, questionNumber int, action string, createdAt time.Time) {
	t.Helper()
	progress := &tracking.QuizProgress{
		SessionID:      sessionID,
		QuestionNumber: questionNumber,
		Action:         action,
		CreatedAt:      createdAt.UTC(),
	}
	if err := db.Create(progress).Error; err != nil {
		t.Fatalf("testsupport: failed to create quiz progress: %v", err)
	}
}

// CreateDiagnosis inserts a diagnosis result row directly.
func CreateDiagnosis(t *testing.T, db *gorm.DB, typeCode, typeName string, createdAt time.Time) {
	t.Helper()
	result := &tracking.DiagnosisResult{
		TypeCode:  typeCode,
		TypeName:  typeName,
		Scores:    `{"a":1}`,
		UserAgent: "Mozilla/5.0 Test Browser",
		CreatedAt: createdAt.UTC(),
	}
	if err := db.Create(result).Error; err != nil {
		t.Fatalf("testsupport: failed to create diagnosis: %v", err)
	}
}
