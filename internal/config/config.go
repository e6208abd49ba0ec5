// Package config loads the front-end configuration from command-line flags,
// environment variables, a .env file and defaults, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Thumbnail ThumbnailConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// BackendConfig describes the catalogue REST backend.
type BackendConfig struct {
	URL           string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// CatalogUserID is sent as user-id on mutations. Empty disables tagging.
	CatalogUserID string
}

// StorageConfig holds the local data directory (thumbnails, media info).
type StorageConfig struct {
	DataPath string
}

// ThumbnailConfig controls thumbnail generation.
type ThumbnailConfig struct {
	Size               int
	Workers            int
	VideoFramesEnabled bool
	FFmpegPath         string // empty means look up "ffmpeg" in PATH
}

// RateLimitConfig limits mutating requests per client IP.
type RateLimitConfig struct {
	MutationsPerMinute int
}

type source struct {
	flags  map[string]*string
	dotenv map[string]string
}

// lookup resolves a key: flag, then environment, then .env, then default.
func (s *source) lookup(flagName, envKey, defaultValue string) string {
	if v, ok := s.flags[flagName]; ok && *v != "" {
		return *v
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if v := s.dotenv[envKey]; v != "" {
		return v
	}
	return defaultValue
}

var settings = []struct {
	flag  string
	usage string
}{
	{"env", "Environment (development, staging, production)"},
	{"log-level", "Log level (debug, info, warn, error)"},
	{"port", "Server port (default: 3000)"},
	{"read-timeout", "HTTP read timeout (default: 15s)"},
	{"write-timeout", "HTTP write timeout (default: 30s)"},
	{"idle-timeout", "HTTP idle timeout (default: 60s)"},
	{"cors-origins", "Comma-separated allowed CORS origins for /api/v1"},
	{"backend-url", "Catalogue backend base URL (default: http://backend:8000)"},
	{"backend-timeout", "Backend request timeout (default: 15s)"},
	{"backend-rps", "Backend requests per second (default: 20)"},
	{"backend-burst", "Backend request burst (default: 40)"},
	{"user-id", "Catalogue user ID sent with tag mutations"},
	{"data-path", "Directory for thumbnails and media info"},
	{"thumbnail-size", "Longest thumbnail edge in pixels (default: 320)"},
	{"thumbnail-workers", "Concurrent thumbnail jobs (default: 2)"},
	{"video-frames", "Capture video thumbnails with ffmpeg (default: true)"},
	{"ffmpeg-path", "Path to ffmpeg binary (default: auto-detect)"},
	{"mutation-rate", "Tag mutations per minute per client (default: 60)"},
}

// LoadConfig reads the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config from args with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("memecataloger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	src := &source{flags: make(map[string]*string, len(settings))}
	for _, s := range settings {
		src.flags[s.flag] = fs.String(s.flag, "", s.usage)
	}
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine.
	dotenv, err := godotenv.Read(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", *envFile, err)
	}
	src.dotenv = dotenv

	cfg := &Config{
		App: AppConfig{
			Environment: src.lookup("env", "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: src.lookup("log-level", "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        src.lookup("port", "SERVER_PORT", "3000"),
			CORSOrigins: splitList(src.lookup("cors-origins", "CORS_ORIGINS", "")),
		},
		Backend: BackendConfig{
			URL:           strings.TrimRight(src.lookup("backend-url", "BACKEND_URL", "http://backend:8000"), "/"),
			CatalogUserID: src.lookup("user-id", "CATALOG_USER_ID", ""),
		},
		Thumbnail: ThumbnailConfig{
			FFmpegPath: src.lookup("ffmpeg-path", "FFMPEG_PATH", ""),
		},
	}

	p := parser{src: src}
	cfg.Server.ReadTimeout = p.duration("read-timeout", "SERVER_READ_TIMEOUT", "15s")
	cfg.Server.WriteTimeout = p.duration("write-timeout", "SERVER_WRITE_TIMEOUT", "30s")
	cfg.Server.IdleTimeout = p.duration("idle-timeout", "SERVER_IDLE_TIMEOUT", "60s")
	cfg.Backend.Timeout = p.duration("backend-timeout", "BACKEND_TIMEOUT", "15s")
	cfg.Backend.RatePerSecond = p.float("backend-rps", "BACKEND_RPS", "20")
	cfg.Backend.Burst = p.integer("backend-burst", "BACKEND_BURST", "40")
	cfg.Thumbnail.Size = p.integer("thumbnail-size", "THUMBNAIL_SIZE", "320")
	cfg.Thumbnail.Workers = p.integer("thumbnail-workers", "THUMBNAIL_WORKERS", "2")
	cfg.Thumbnail.VideoFramesEnabled = p.boolean("video-frames", "VIDEO_FRAMES_ENABLED", "true")
	cfg.RateLimit.MutationsPerMinute = p.integer("mutation-rate", "MUTATION_RATE_PER_MINUTE", "60")
	if p.err != nil {
		return nil, p.err
	}

	dataPath, err := expandPath(src.lookup("data-path", "DATA_PATH", ""), defaultDataPath())
	if err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	cfg.Storage.DataPath = dataPath

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %q", c.Backend.URL)
	}

	if c.Backend.CatalogUserID != "" {
		if _, err := uuid.Parse(c.Backend.CatalogUserID); err != nil {
			return fmt.Errorf("invalid CATALOG_USER_ID %q: %w", c.Backend.CatalogUserID, err)
		}
	}

	if c.Backend.RatePerSecond <= 0 || c.Backend.Burst < 1 {
		return errors.New("backend rate and burst must be positive")
	}
	if c.Thumbnail.Size < 16 || c.Thumbnail.Size > 2048 {
		return fmt.Errorf("thumbnail size %d out of range (16-2048)", c.Thumbnail.Size)
	}
	if c.Thumbnail.Workers < 1 {
		return errors.New("thumbnail workers must be at least 1")
	}
	if c.RateLimit.MutationsPerMinute < 1 {
		return errors.New("mutation rate must be at least 1 per minute")
	}
	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty")
	}
	return nil
}

// ThumbnailPath is where generated thumbnails are cached.
func (c *Config) ThumbnailPath() string {
	return filepath.Join(c.Storage.DataPath, "thumbnails")
}

// MediaInfoPath is the Badger directory for derived media info.
func (c *Config) MediaInfoPath() string {
	return filepath.Join(c.Storage.DataPath, "mediainfo")
}

// parser converts typed settings, keeping the first error.
type parser struct {
	src *source
	err error
}

func (p *parser) raw(flagName, envKey, def string) string {
	return strings.TrimSpace(p.src.lookup(flagName, envKey, def))
}

func (p *parser) fail(envKey, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", envKey, value, err)
	}
}

func (p *parser) duration(flagName, envKey, def string) time.Duration {
	v := p.raw(flagName, envKey, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(envKey, v, err)
	}
	return d
}

func (p *parser) integer(flagName, envKey, def string) int {
	v := p.raw(flagName, envKey, def)
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(envKey, v, err)
	}
	return n
}

func (p *parser) float(flagName, envKey, def string) float64 {
	v := p.raw(flagName, envKey, def)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(envKey, v, err)
	}
	return f
}

// boolean accepts "true", "1", "yes" (case-insensitive) as true.
func (p *parser) boolean(flagName, envKey, def string) bool {
	v := strings.ToLower(p.raw(flagName, envKey, def))
	return v == "true" || v == "1" || v == "yes"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultDataPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "memecataloger")
	}
	return filepath.Join(homeDir, ".memecataloger")
}

// expandPath expands ~ and makes the path absolute.
// An empty path resolves to defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}
	return filepath.Clean(path), nil
}
