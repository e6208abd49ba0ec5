package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// DefaultMaxSize is the longest thumbnail edge in pixels.
	DefaultMaxSize = 320
	// JPEGQuality is used for every thumbnail.
	JPEGQuality = 82

	// Refuse to decode anything larger; memes are not gigapixel scans.
	maxSourcePixels = 64 << 20
)

// ErrTooLarge is returned for images whose declared size exceeds the decode limit.
var ErrTooLarge = errors.New("images: source image too large")

// Thumbnail is an encoded thumbnail and what was learned while making it.
type Thumbnail struct {
	Data         []byte
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	SourceFormat string
	BlurHash     string
}

// Processor turns source media into JPEG thumbnails.
type Processor struct {
	maxSize int
}

// NewProcessor creates a processor bounding thumbnails to maxSize pixels.
func NewProcessor(maxSize int) *Processor {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Processor{maxSize: maxSize}
}

// MaxSize returns the longest edge produced.
func (p *Processor) MaxSize() int {
	return p.maxSize
}

// Process decodes r and returns a JPEG thumbnail with its BlurHash.
// A failed BlurHash leaves the field empty rather than failing the thumbnail.
func (p *Processor) Process(r io.Reader) (*Thumbnail, error) {
	var buf bytes.Buffer
	tee := io.TeeReader(r, &buf)

	cfg, format, err := image.DecodeConfig(tee)
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(io.MultiReader(&buf, r))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := Resize(img, p.maxSize)
	data, err := EncodeJPEG(thumb, JPEGQuality)
	if err != nil {
		return nil, err
	}

	bounds := thumb.Bounds()
	hash, _ := ComputeBlurHash(thumb)

	return &Thumbnail{
		Data:         data,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		SourceWidth:  cfg.Width,
		SourceHeight: cfg.Height,
		SourceFormat: format,
		BlurHash:     hash,
	}, nil
}

// FitWithin scales (w, h) to fit a maxSize square keeping the aspect ratio.
// It never upscales and never returns a zero dimension.
func FitWithin(w, h, maxSize int) (int, int) {
	if w <= maxSize && h <= maxSize {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}

// Resize downsizes img with Catmull-Rom resampling onto a white background so
// transparent sources do not turn black in JPEG.
func Resize(img image.Image, maxSize int) image.Image {
	src := img.Bounds()
	w, h := FitWithin(src.Dx(), src.Dy(), maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
