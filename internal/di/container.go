// Package di provides dependency injection configuration for the MemeCataloger front-end.
package di

import (
	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/api"
	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/di/providers"
	"github.com/memecataloger/memecataloger-web/internal/logger"
	"github.com/memecataloger/memecataloger-web/internal/media/images"
	"github.com/memecataloger/memecataloger-web/internal/media/video"
	"github.com/memecataloger/memecataloger-web/internal/service"
	"github.com/memecataloger/memecataloger-web/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideThumbnailStorage)
	do.Provide(injector, providers.ProvideImageProcessor)
	do.Provide(injector, providers.ProvideFrameGrabber)

	// Backend
	do.Provide(injector, providers.ProvideBackendClient)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideTaggingService)
	do.Provide(injector, providers.ProvideThumbnailService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization so configuration errors surface at startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*store.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*video.FrameGrabber](injector)
	if _, err := do.Invoke[*backend.Client](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.TaggingService](injector)
	_ = do.MustInvoke[*service.ThumbnailService](injector)

	_ = do.MustInvoke[*api.RateLimiter](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
