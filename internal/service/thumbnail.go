package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"log/slog"
	"mime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/domain"
	"github.com/memecataloger/memecataloger-web/internal/errors"
	"github.com/memecataloger/memecataloger-web/internal/media/images"
	"github.com/memecataloger/memecataloger-web/internal/media/video"
	"github.com/memecataloger/memecataloger-web/internal/store"
)

// generateTimeout bounds one thumbnail generation, which outlives the
// request that started it when other requests are waiting on it.
const generateTimeout = 2 * time.Minute

// Thumbnail is an encoded JPEG thumbnail.
type Thumbnail struct {
	Data []byte
	ETag string
}

// ThumbnailService produces and caches gallery thumbnails.
type ThumbnailService struct {
	client    *backend.Client
	storage   *images.Storage
	processor *images.Processor
	frames    *video.FrameGrabber
	store     *store.Store
	group     singleflight.Group
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

// NewThumbnailService creates a thumbnail service running at most workers
// generations at once.
func NewThumbnailService(
	client *backend.Client,
	storage *images.Storage,
	processor *images.Processor,
	frames *video.FrameGrabber,
	store *store.Store,
	workers int,
	logger *slog.Logger,
) *ThumbnailService {
	if workers <= 0 {
		workers = 1
	}
	return &ThumbnailService{
		client:    client,
		storage:   storage,
		processor: processor,
		frames:    frames,
		store:     store,
		sem:       semaphore.NewWeighted(int64(workers)),
		logger:    logger,
	}
}

// VideoFramesEnabled reports whether video thumbnails can be produced.
func (s *ThumbnailService) VideoFramesEnabled() bool {
	return s.frames.Enabled()
}

// Thumbnail returns the cached thumbnail for an image, generating it on a
// miss. Concurrent misses for the same key share one generation.
func (s *ThumbnailService) Thumbnail(ctx context.Context, kind domain.MediaKind, imageID uuid.UUID) (*Thumbnail, error) {
	if _, ok := domain.ParseMediaKind(string(kind)); !ok {
		return nil, errors.Validationf("unknown media kind %q", kind)
	}

	key := cacheKey(kind, imageID)
	if data, err := s.storage.Get(key); err == nil {
		return &Thumbnail{Data: data, ETag: etag(data)}, nil
	} else if !stderrors.Is(err, images.ErrNotCached) {
		s.logger.Warn("thumbnail cache read failed", "key", key, "error", err)
	}

	if kind == domain.MediaKindVideo && !s.frames.Enabled() {
		return nil, ErrVideoFramesDisabled
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return s.generate(genCtx, kind, imageID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("thumbnail generation shared", "key", key)
	}
	return v.(*Thumbnail), nil
}

func (s *ThumbnailService) generate(ctx context.Context, kind domain.MediaKind, imageID uuid.UUID) (*Thumbnail, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	key := cacheKey(kind, imageID)
	// Another generation may have finished while we waited.
	if data, err := s.storage.Get(key); err == nil {
		return &Thumbnail{Data: data, ETag: etag(data)}, nil
	}

	start := time.Now()
	media, err := s.client.GetImageMedia(ctx, imageID)
	if err != nil {
		return nil, fromBackend(err, "media")
	}
	defer media.Body.Close()

	var thumb *images.Thumbnail
	switch kind {
	case domain.MediaKindVideo:
		frame, err := s.frames.FirstFrame(ctx, media.Body)
		if stderrors.Is(err, video.ErrDisabled) {
			return nil, ErrVideoFramesDisabled
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "capture first frame of %s", imageID)
		}
		thumb, err = s.processor.Process(bytes.NewReader(frame))
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "process frame of %s", imageID)
		}
	default:
		if isSVG(media.ContentType) {
			return nil, ErrNotRasterizable
		}
		thumb, err = s.processor.Process(media.Body)
		if stderrors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrNotRasterizable, media.ContentType)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "process image %s", imageID)
		}
	}

	if err := s.storage.Save(key, thumb.Data); err != nil {
		s.logger.Warn("failed to cache thumbnail", "key", key, "error", err)
	}

	hash := images.Hash(thumb.Data)
	s.recordMediaInfo(&domain.MediaInfo{
		ImageID:     imageID,
		Kind:        kind,
		Width:       thumb.SourceWidth,
		Height:      thumb.SourceHeight,
		BlurHash:    thumb.BlurHash,
		ContentHash: hash,
		GeneratedAt: time.Now().UTC(),
	})

	s.logger.Info("generated thumbnail",
		"image_id", imageID,
		"kind", kind,
		"source_format", thumb.SourceFormat,
		"width", thumb.Width,
		"height", thumb.Height,
		"duration", time.Since(start),
	)

	return &Thumbnail{Data: thumb.Data, ETag: quote(hash)}, nil
}

func (s *ThumbnailService) recordMediaInfo(info *domain.MediaInfo) {
	if s.store == nil {
		return
	}
	if err := s.store.PutMediaInfo(info); err != nil {
		s.logger.Warn("failed to record media info", "image_id", info.ImageID, "error", err)
	}
}

func cacheKey(kind domain.MediaKind, imageID uuid.UUID) string {
	return string(kind) + "-" + imageID.String()
}

func etag(data []byte) string {
	return quote(images.Hash(data))
}

func quote(s string) string {
	return `"` + s + `"`
}

func isSVG(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "image/svg+xml"
}
