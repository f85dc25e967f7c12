// Package providers contains dependency injection providers for the bookmarkd server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   !cfg.IsProduction(),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting bookmarkd",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.Path,
		"metadata_backfill", cfg.GoogleBooks.Backfill,
	)

	return log, nil
}
