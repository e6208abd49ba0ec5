package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// backendHealthTimeout bounds the backend probe so /health stays fast.
const backendHealthTimeout = 3 * time.Second

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"store":      s.checkStore(),
		"backend":    s.checkBackend(ctx),
		"thumbnails": s.checkThumbnails(),
	}

	overall := "healthy"
	for _, c := range components {
		switch {
		case c.Status == "unhealthy":
			overall = "unhealthy"
		case c.Status == "degraded" && overall == "healthy":
			overall = "degraded"
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkStore verifies the media info store (BadgerDB) is readable.
func (s *Server) checkStore() ComponentHealth {
	if s.services == nil || s.services.Store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "media info store not configured",
		}
	}

	start := time.Now()
	count, err := s.services.Store.CountMediaInfo()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "media info store read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: strconv.Itoa(count) + " images with media info",
	}
}

// checkBackend probes the catalogue backend. The front-end can still serve
// cached thumbnails without it, so failure only degrades.
func (s *Server) checkBackend(ctx context.Context) ComponentHealth {
	if s.services == nil || s.services.Catalog == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "catalog service not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, backendHealthTimeout)
	defer cancel()

	start := time.Now()
	err := s.services.Catalog.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "backend unreachable",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

func (s *Server) checkThumbnails() ComponentHealth {
	if s.services == nil || s.services.Thumbnail == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "thumbnail service not configured",
		}
	}
	if !s.services.Thumbnail.VideoFramesEnabled() {
		return ComponentHealth{
			Status:  "healthy",
			Message: "video frame capture disabled",
		}
	}
	return ComponentHealth{Status: "healthy"}
}
