package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/api"
	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/logger"
	"github.com/memecataloger/memecataloger-web/internal/service"
	"github.com/memecataloger/memecataloger-web/internal/store"
)

// shutdownTimeout bounds in-flight requests during graceful shutdown.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideRateLimiter provides the per-client mutation rate limiter.
func ProvideRateLimiter(i do.Injector) (*api.RateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return api.NewRateLimiter(cfg.RateLimit.MutationsPerMinute), nil
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*api.RateLimiter](i)

	services := &api.Services{
		Catalog:   do.MustInvoke[*service.CatalogService](i),
		Tagging:   do.MustInvoke[*service.TaggingService](i),
		Thumbnail: do.MustInvoke[*service.ThumbnailService](i),
		Store:     do.MustInvoke[*store.Store](i),
	}

	handler, err := api.NewServer(services, limiter, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log.WithComponent("http"))
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
