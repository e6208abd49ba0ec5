package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrameGrabber_Disabled(t *testing.T) {
	g := NewFrameGrabber(Config{Enabled: false, FFmpegPath: "/usr/bin/ffmpeg"}, discardLogger())

	assert.False(t, g.Enabled())
	_, err := g.FirstFrame(context.Background(), strings.NewReader("video"))
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestFrameGrabber_ExplicitPath(t *testing.T) {
	g := NewFrameGrabber(Config{Enabled: true, FFmpegPath: "/opt/ffmpeg/bin/ffmpeg"}, discardLogger())

	assert.True(t, g.Enabled())
}

func TestFrameArgs(t *testing.T) {
	args := frameArgs("/tmp/in.mp4")

	assert.Equal(t, "pipe:1", args[len(args)-1])
	assert.Contains(t, strings.Join(args, " "), "-ss 0 -i /tmp/in.mp4 -frames:v 1")
	assert.Contains(t, strings.Join(args, " "), "-vcodec mjpeg")
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{limit: 4}

	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = b.Write([]byte("gh"))

	assert.Equal(t, "abcd", b.String())
}

func TestFrameGrabber_FailingBinary(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n"), 0o755))

	g := NewFrameGrabber(Config{Enabled: true, FFmpegPath: fake, TempDir: dir}, discardLogger())

	_, err := g.FirstFrame(context.Background(), strings.NewReader("not a video"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "moov atom not found")
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "temp video must be removed")
}

func TestFrameGrabber_RealFFmpeg(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}

	// A single-frame MJPEG AVI built by ffmpeg itself from a JPEG still.
	dir := t.TempDir()
	still := filepath.Join(dir, "still.jpg")
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(still, buf.Bytes(), 0o600))

	clip := filepath.Join(dir, "clip.avi")
	out, err := exec.Command(ffmpeg, "-loglevel", "error", "-i", still, "-c:v", "mjpeg", clip).CombinedOutput()
	require.NoError(t, err, string(out))

	f, err := os.Open(clip)
	require.NoError(t, err)
	defer f.Close()

	g := NewFrameGrabber(Config{Enabled: true, FFmpegPath: ffmpeg}, discardLogger())
	frame, err := g.FirstFrame(context.Background(), f)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
}
