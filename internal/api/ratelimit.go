package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/memecataloger/memecataloger-web/internal/http/response"
	"github.com/memecataloger/memecataloger-web/internal/ratelimit"
)

// RateLimiter limits mutating requests per client IP.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter allows perMinute mutations per client, with the same burst.
func NewRateLimiter(perMinute int) *RateLimiter {
	return ratelimit.PerMinute(perMinute)
}

// RateLimitMutations rate limits non-safe methods by client IP and answers
// 429 when the limit is exceeded. Reads are never limited.
func RateLimitMutations(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)
				if strings.HasPrefix(r.URL.Path, "/api/") {
					response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
					return
				}
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// getClientIP returns the host part of RemoteAddr. middleware.RealIP has
// already applied X-Forwarded-For and X-Real-IP by the time this runs.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
