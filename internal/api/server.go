// Package api provides the HTTP server of the MemeCataloger front-end: HTML
// pages, media and thumbnail routes, and the JSON API under /api/v1.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the server's HTTP surface.
type Options struct {
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	pages    *pageRenderer
	limiter  *RateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, limiter *RateLimiter, opts Options, logger *slog.Logger) (*Server, error) {
	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	s := &Server{
		services: services,
		router:   router,
		pages:    pages,
		limiter:  limiter,
		logger:   logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("MemeCataloger API", "1.0.0")
	humaConfig.Info.Description = "Browse catalogued memes and manage their tags."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerImageRoutes()
	s.registerTagRoutes()
	s.setupWebRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(apiCORS(opts.CORSOrigins))
	if s.limiter != nil {
		s.router.Use(RateLimitMutations(s.limiter, s.logger))
	}
}

// apiCORS applies CORS to /api/v1 only; HTML pages are same-origin.
func apiCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return func(next http.Handler) http.Handler {
		withCORS := handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/v1/") {
				withCORS.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setupWebRoutes configures the HTML, media and static routes.
func (s *Server) setupWebRoutes() {
	s.router.Get("/", s.handleGallery)
	s.router.Route("/image/{id}", func(r chi.Router) {
		r.Get("/", s.handleDetail)
		r.Post("/tags", s.handleSubmitTags)
		r.Post("/tags/clear", s.handleClearTags)
		r.Post("/tags/new", s.handleNewTag)
	})
	s.router.Get("/media/{id}", s.handleMedia)
	s.router.Get("/thumbnails/{kind}/{id}", s.handleThumbnail)
	s.router.Handle("/static/*", staticHandler())

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		s.renderErrorPage(w, r, http.StatusNotFound, "Page not found", "Nothing lives at "+r.URL.Path+".")
	})
}
