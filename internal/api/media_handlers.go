package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/memecataloger/memecataloger-web/internal/domain"
	"github.com/memecataloger/memecataloger-web/internal/service"
)

// handleMedia streams an image's media from the backend.
// GET /media/{id}
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}

	media, err := s.services.Catalog.Media(r.Context(), imageID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	defer media.Body.Close()

	contentType := media.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if media.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(media.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, media.Body); err != nil {
		s.logger.Debug("Media stream interrupted", "image_id", imageID, "error", err)
	}
}

// handleThumbnail serves a cached or freshly generated JPEG thumbnail.
// GET /thumbnails/{kind}/{id}
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseMediaKind(chi.URLParam(r, "kind"))
	if !ok {
		s.renderErrorPage(w, r, http.StatusNotFound, "Not found", "Unknown thumbnail kind.")
		return
	}
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}

	thumb, err := s.services.Thumbnail.Thumbnail(r.Context(), kind, imageID)
	switch {
	case errors.Is(err, service.ErrNotRasterizable):
		http.Redirect(w, r, service.MediaURL(imageID), http.StatusFound)
		return
	case errors.Is(err, service.ErrVideoFramesDisabled):
		s.renderErrorPage(w, r, http.StatusNotFound, "Not found", "Video thumbnails are disabled.")
		return
	case err != nil:
		s.renderError(w, r, err)
		return
	}

	w.Header().Set("ETag", thumb.ETag)
	w.Header().Set("Cache-Control", CacheOneWeek)

	if match := r.Header.Get("If-None-Match"); match != "" && match == thumb.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(thumb.Data)
}
