package service

import (
	"context"
	stderrors "errors"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/errors"
)

// Service errors that handlers treat specially.
var (
	// ErrVideoFramesDisabled means video thumbnails cannot be produced; the
	// gallery falls back to a <video> element.
	ErrVideoFramesDisabled = stderrors.New("video frame capture disabled")
	// ErrNotRasterizable means the media is an image format we do not
	// rasterise (SVG); handlers redirect to the media itself.
	ErrNotRasterizable = stderrors.New("media cannot be rasterised")
)

// fromBackend translates backend client errors into domain errors.
func fromBackend(err error, what string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case stderrors.Is(err, backend.ErrNotFound):
		return errors.Wrapf(err, errors.CodeNotFound, "%s not found", what)
	case stderrors.Is(err, backend.ErrBadRequest):
		return errors.Wrapf(err, errors.CodeValidation, "backend rejected %s", what)
	case stderrors.Is(err, backend.ErrNoUser):
		return errors.Wrap(err, errors.CodeValidation, "no catalogue user configured; set CATALOG_USER_ID to edit tags")
	case stderrors.Is(err, backend.ErrForbidden):
		return errors.Wrapf(err, errors.CodeForbidden, "not allowed to modify %s", what)
	case stderrors.Is(err, backend.ErrRateLimited):
		return errors.Wrap(err, errors.CodeRateLimited, "backend is rate limiting requests")
	default:
		return errors.Wrapf(err, errors.CodeUnavailable, "backend unavailable while loading %s", what)
	}
}
