package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/memecataloger/memecataloger-web/internal/config"
	"github.com/memecataloger/memecataloger-web/internal/logger"
	"github.com/memecataloger/memecataloger-web/internal/media/images"
	"github.com/memecataloger/memecataloger-web/internal/media/video"
	"github.com/memecataloger/memecataloger-web/internal/store"
)

// ProvideStore opens the media info store.
func ProvideStore(i do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(cfg.MediaInfoPath(), log.WithComponent("store"))
	if err != nil {
		return nil, fmt.Errorf("open media info store: %w", err)
	}
	return st, nil
}

// ProvideThumbnailStorage provides the on-disk thumbnail cache.
func ProvideThumbnailStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Storage.DataPath, "thumbnails")
	if err != nil {
		return nil, fmt.Errorf("thumbnail storage: %w", err)
	}

	log.Info("Thumbnail storage initialized", "path", cfg.ThumbnailPath())
	return storage, nil
}

// ProvideImageProcessor provides the thumbnail image processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewProcessor(cfg.Thumbnail.Size), nil
}

// ProvideFrameGrabber provides the ffmpeg video frame grabber.
func ProvideFrameGrabber(i do.Injector) (*video.FrameGrabber, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return video.NewFrameGrabber(video.Config{
		Enabled:    cfg.Thumbnail.VideoFramesEnabled,
		FFmpegPath: cfg.Thumbnail.FFmpegPath,
	}, log.WithComponent("video")), nil
}
