package providers

import (
	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/logger"
	"github.com/memecataloger/memecataloger-web/internal/media/images"
	"github.com/memecataloger/memecataloger-web/internal/media/video"
	"github.com/memecataloger/memecataloger-web/internal/service"
	"github.com/memecataloger/memecataloger-web/internal/store"
	"github.com/memecataloger/memecataloger-web/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the catalogue read service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	client := do.MustInvoke[*backend.Client](i)
	st := do.MustInvoke[*store.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(client, st, log.WithComponent("catalog")), nil
}

// ProvideTaggingService provides the tag mutation service.
func ProvideTaggingService(i do.Injector) (*service.TaggingService, error) {
	client := do.MustInvoke[*backend.Client](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTaggingService(client, validator, log.WithComponent("tagging")), nil
}

// ProvideThumbnailService provides the thumbnail service.
func ProvideThumbnailService(i do.Injector) (*service.ThumbnailService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*backend.Client](i)
	storage := do.MustInvoke[*images.Storage](i)
	processor := do.MustInvoke[*images.Processor](i)
	frames := do.MustInvoke[*video.FrameGrabber](i)
	st := do.MustInvoke[*store.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewThumbnailService(
		client, storage, processor, frames, st,
		cfg.Thumbnail.Workers,
		log.WithComponent("thumbnails"),
	), nil
}
