// Package backendtest runs an in-process fake of the catalogue backend for
// tests of packages that talk to it through backend.Client.
package backendtest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/domain"
)

// UserID is the catalogue user the fake accepts on mutations.
var UserID = uuid.MustParse("0f0f0f0f-0000-4000-8000-00000000000f")

type media struct {
	contentType string
	data        []byte
}

// Server is a fake backend holding images, tags and assignment edges.
// Mutations change its state, so tests can assert on what was written.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	images   []domain.Image
	tags     []domain.Tag
	edges    []domain.ImageTag
	media    map[uuid.UUID]media
	failures map[string]int
	requests []string
}

// New starts a fake backend closed at test cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		media:    make(map[uuid.UUID]media),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/api/image/", s.listImages)
	r.Get("/api/image/{id}", s.getMedia)
	r.Get("/api/tag/", s.listTags)
	r.Post("/api/tag/new", s.createTag)
	r.Get("/api/image-tag/", s.listEdges)
	r.Post("/api/image-tag/new", s.createEdge)
	r.Delete("/api/image-tag/{id}", s.deleteEdge)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a backend client for this server. A nil userID yields a
// read-only client.
func (s *Server) Client(t testing.TB, userID uuid.UUID) *backend.Client {
	t.Helper()

	client, err := backend.New(backend.Config{
		BaseURL:       s.URL,
		UserID:        userID,
		RatePerSecond: 1000,
		Burst:         1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

// AddImage adds an image and returns its ID.
func (s *Server) AddImage(source, description string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := domain.Image{ID: uuid.New(), Source: source, Description: description}
	s.images = append(s.images, img)
	return img.ID
}

// AddTag adds a tag and returns it.
func (s *Server) AddTag(name string) domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := domain.Tag{ID: uuid.New(), Name: name}
	s.tags = append(s.tags, tag)
	return tag
}

// AddEdge assigns a tag to an image, even if the pair already has an edge.
func (s *Server) AddEdge(imageID, tagID uuid.UUID) domain.ImageTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := domain.ImageTag{ID: uuid.New(), Image: imageID, Tag: tagID}
	s.edges = append(s.edges, edge)
	return edge
}

// SetMedia sets the bytes served for an image.
func (s *Server) SetMedia(imageID uuid.UUID, contentType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[imageID] = media{contentType: contentType, data: data}
}

// Fail makes every request with this method and exact path answer status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Edges returns a copy of the current edges.
func (s *Server) Edges() []domain.ImageTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ImageTag, len(s.edges))
	copy(out, s.edges)
	return out
}

// Tags returns a copy of the current tags.
func (s *Server) Tags() []domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Requests returns "METHOD path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts received requests with this method and exact path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.requests = append(s.requests, key)
		status, fail := s.failures[key]
		s.mu.Unlock()

		if fail {
			http.Error(w, `{"detail":"injected failure"}`, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listImages(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.images)
}

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	m, ok := s.media[imageID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, `{"detail":"Image not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", m.contentType)
	_, _ = w.Write(m.data)
}

func (s *Server) listTags(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tags)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	name := r.PostFormValue("tag-name")
	if name == "" {
		http.Error(w, `{"detail":"tag-name required"}`, http.StatusBadRequest)
		return
	}

	tag := s.AddTag(name)
	writeJSON(w, http.StatusCreated, map[string]string{
		"tag-id":   tag.ID.String(),
		"tag-name": tag.Name,
	})
}

func (s *Server) listEdges(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.edges)
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	imageID, err1 := uuid.Parse(r.PostFormValue("image-id"))
	tagID, err2 := uuid.Parse(r.PostFormValue("tag-id"))
	if err1 != nil || err2 != nil {
		http.Error(w, `{"detail":"bad ids"}`, http.StatusBadRequest)
		return
	}

	edge := s.AddEdge(imageID, tagID)
	writeJSON(w, http.StatusCreated, map[string]string{"imagetag-id": edge.ID.String()})
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	edgeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.ID == edgeID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"imagetag-id": edgeID.String()})
			return
		}
	}
	http.Error(w, `{"detail":"ImageTag not found"}`, http.StatusNotFound)
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.PostFormValue("user-id") != UserID.String() {
		http.Error(w, `{"detail":"not the owner"}`, http.StatusForbidden)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
