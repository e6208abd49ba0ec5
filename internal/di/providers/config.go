// Package providers contains dependency injection providers for the MemeCataloger front-end.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting MemeCataloger",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"backend_url", cfg.Backend.URL,
		"data_path", cfg.Storage.DataPath,
		"tag_editing", cfg.Backend.CatalogUserID != "",
	)
	if cfg.Backend.CatalogUserID == "" {
		log.Warn("CATALOG_USER_ID is not set; tag editing is disabled")
	}

	return log, nil
}
