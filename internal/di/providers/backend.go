package providers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/logger"
)

// ProvideBackendClient provides the catalogue backend client.
func ProvideBackendClient(i do.Injector) (*backend.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var userID uuid.UUID
	if cfg.Backend.CatalogUserID != "" {
		id, err := uuid.Parse(cfg.Backend.CatalogUserID)
		if err != nil {
			return nil, fmt.Errorf("parse catalog user id: %w", err)
		}
		userID = id
	}

	return backend.New(backend.Config{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout,
		RatePerSecond: cfg.Backend.RatePerSecond,
		Burst:         cfg.Backend.Burst,
		UserID:        userID,
	}, log.WithComponent("backend"))
}
