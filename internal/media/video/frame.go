// Package video captures still frames from video media with ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrDisabled is returned when frame capture is turned off or ffmpeg is missing.
var ErrDisabled = errors.New("video: frame capture disabled")

// maxStderr bounds the ffmpeg diagnostics kept for error messages.
const maxStderr = 2 << 10

// Config configures a FrameGrabber.
type Config struct {
	Enabled    bool
	FFmpegPath string // empty means look up "ffmpeg" in PATH
	TempDir    string // empty means os.TempDir()
}

// FrameGrabber extracts the first frame of a video as a JPEG.
type FrameGrabber struct {
	ffmpegPath string
	tempDir    string
	logger     *slog.Logger
}

// NewFrameGrabber resolves ffmpeg. A missing binary disables capture with a
// warning instead of failing startup, since thumbnails are optional.
func NewFrameGrabber(cfg Config, logger *slog.Logger) *FrameGrabber {
	g := &FrameGrabber{tempDir: cfg.TempDir, logger: logger}
	if !cfg.Enabled {
		logger.Info("video frame capture disabled")
		return g
	}

	path := cfg.FFmpegPath
	if path == "" {
		found, err := exec.LookPath("ffmpeg")
		if err != nil {
			logger.Warn("ffmpeg not found, video thumbnails disabled", slog.Any("error", err))
			return g
		}
		path = found
	}
	logger.Info("using ffmpeg", slog.String("path", path))
	g.ffmpegPath = path
	return g
}

// Enabled reports whether FirstFrame can run.
func (g *FrameGrabber) Enabled() bool {
	return g != nil && g.ffmpegPath != ""
}

// FirstFrame spools src to a temp file and returns its first frame as JPEG.
// Containers such as MP4 may keep their index at the end, so ffmpeg needs a
// seekable file rather than a pipe.
func (g *FrameGrabber) FirstFrame(ctx context.Context, src io.Reader) ([]byte, error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}

	tmp, err := os.CreateTemp(g.tempDir, "memecataloger-video-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // best effort cleanup

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spool video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	args := frameArgs(tmp.Name())
	g.logger.Debug("executing ffmpeg", slog.Any("args", args))

	var stdout bytes.Buffer
	stderr := &limitedBuffer{limit: maxStderr}
	cmd := exec.CommandContext(ctx, g.ffmpegPath, args...) //nolint:gosec // ffmpegPath is resolved at construction
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no frame")
	}
	return stdout.Bytes(), nil
}

// frameArgs seeks to 0, takes one frame and writes MJPEG to stdout.
func frameArgs(input string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", "0",
		"-i", input,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	}
}

// limitedBuffer keeps the first limit bytes written and drops the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
