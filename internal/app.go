// Package internal contains core application functionality
package internal

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"quizmetrics/internal/config"
	"quizmetrics/internal/database"
	"quizmetrics/internal/logging"
)

// Application ties together the config, logger, database, and HTTP server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
	Fiber     *fiber.App
}

// NewApp creates an application instance from the environment configuration.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates an application with the provided config: opens the
// database, runs migrations, and mounts all routes.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.GetAppName(),
		DisableStartupMessage: !cfg.IsDevelopment(),
	})
	app.Use(fiberrecover.New())

	MountAppRoutes(app, dbManager.GetConnection(), logger, cfg)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Fiber:     app,
	}, nil
}

// Start blocks serving HTTP on the configured port.
func (a *Application) Start() error {
	a.Logger.Info("Starting server", slog.String("port", a.Config.GetPort()))
	return a.Fiber.Listen(":" + a.Config.GetPort())
}

// Shutdown stops the HTTP server and closes the database.
func (a *Application) Shutdown() error {
	if err := a.Fiber.Shutdown(); err != nil {
		a.Logger.Error("Failed to stop HTTP server", slog.Any("error", err))
	}
	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("Failed to checkpoint WAL on shutdown", slog.Any("error", err))
	}
	return a.DBManager.Close()
}
