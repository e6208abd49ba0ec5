package api

import (
	"github.com/memecataloger/memecataloger-web/internal/service"
	"github.com/memecataloger/memecataloger-web/internal/store"
)

// Services groups the services used by the HTTP server.
type Services struct {
	Catalog   *service.CatalogService
	Tagging   *service.TaggingService
	Thumbnail *service.ThumbnailService
	Store     *store.Store // Media info store, reported by /health
}
