package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
	domainerrors "github.com/memecataloger/memecataloger-web/internal/errors"
	"github.com/memecataloger/memecataloger-web/internal/service"
)

// galleryPageData contains data for the gallery template.
type galleryPageData struct {
	Items       []service.GalleryItem
	VideoFrames bool
}

// detailPageData contains data for the detail template.
type detailPageData struct {
	Detail  *service.ImageDetail
	Popper  domain.PopperState
	CanEdit bool
	Notice  string
}

// errorPageData contains data for the error template.
type errorPageData struct {
	Status    int
	Title     string
	Message   string
	RequestID string
}

// Notices shown after a mutation redirect, keyed by the "done" parameter.
var notices = map[string]string{
	"saved":   "Tags saved.",
	"cleared": "All tags removed.",
	"created": "Tag added.",
}

// handleGallery renders every catalogued image.
// GET /
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Catalog.Gallery(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderPage(w, r, http.StatusOK, "gallery", galleryPageData{
		Items:       items,
		VideoFrames: s.services.Thumbnail != nil && s.services.Thumbnail.VideoFramesEnabled(),
	})
}

// handleDetail renders one image with its tag popper.
// GET /image/{id}
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	q := query.Get("q")

	detail, err := s.services.Catalog.Detail(r.Context(), imageID, q)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	popper := domain.ParsePopperState(query.Get("popper"))
	if strings.TrimSpace(q) != "" && !popper.Open {
		popper.Toggle()
	}

	s.renderPage(w, r, http.StatusOK, "detail", detailPageData{
		Detail:  detail,
		Popper:  popper,
		CanEdit: s.services.Tagging.Enabled(),
		Notice:  notices[query.Get("done")],
	})
}

// handleSubmitTags applies the popper's checked set.
// POST /image/{id}/tags
func (s *Server) handleSubmitTags(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}
	if !s.parseForm(w, r) {
		return
	}

	checked := make([]uuid.UUID, 0, len(r.PostForm[formTag]))
	for _, raw := range r.PostForm[formTag] {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			s.renderError(w, r, domainerrors.Validationf("invalid tag id %q", raw))
			return
		}
		checked = append(checked, tagID)
	}

	if _, err := s.services.Tagging.Apply(r.Context(), imageID, checked); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirectToDetail(w, r, imageID, "saved")
}

// handleClearTags removes every tag from the image.
// POST /image/{id}/tags/clear
func (s *Server) handleClearTags(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}

	if _, err := s.services.Tagging.Clear(r.Context(), imageID); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirectToDetail(w, r, imageID, "cleared")
}

// handleNewTag creates a tag and assigns it to the image.
// POST /image/{id}/tags/new
func (s *Server) handleNewTag(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.imageIDParam(w, r)
	if !ok {
		return
	}
	if !s.parseForm(w, r) {
		return
	}

	if _, err := s.services.Tagging.CreateAndAssign(r.Context(), imageID, r.PostForm.Get(formTagName)); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirectToDetail(w, r, imageID, "created")
}

// imageIDParam parses the {id} URL parameter, rendering a 400 page when it
// is not a UUID.
func (s *Server) imageIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	imageID, err := uuid.Parse(raw)
	if err != nil {
		s.renderErrorPage(w, r, http.StatusBadRequest, "Bad request", "“"+raw+"” is not a valid image ID.")
		return uuid.Nil, false
	}
	return imageID, true
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		s.renderErrorPage(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return false
	}
	return true
}

// redirectToDetail sends the browser back to the detail page with the
// popper open (post/redirect/get).
func redirectToDetail(w http.ResponseWriter, r *http.Request, imageID uuid.UUID, done string) {
	target := url.URL{
		Path:     "/image/" + imageID.String(),
		RawQuery: url.Values{"popper": {"open"}, "done": {done}}.Encode(),
	}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.pages.render(w, status, name, data); err != nil {
		s.logger.Error("Failed to render page", "page", name, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderError maps err to a status and renders the error page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is reading the page.
		return
	}

	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		s.logger.Error("Unhandled error", "path", r.URL.Path, "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong", "The request could not be completed.")
		return
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "code", domainErr.Code, "error", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "code", domainErr.Code, "error", err)
	}
	s.renderErrorPage(w, r, status, http.StatusText(status), domainErr.Message)
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.renderPage(w, r, status, "error", errorPageData{
		Status:    status,
		Title:     title,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
