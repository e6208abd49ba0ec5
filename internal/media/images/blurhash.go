package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the edge BlurHash input is shrunk to; the hash is a
// low-frequency placeholder so more pixels only cost time.
const blurHashSize = 64

// ComputeBlurHash returns a 4x3 component BlurHash for img.
func ComputeBlurHash(img image.Image) (string, error) {
	src := img.Bounds()
	if src.Empty() {
		return "", fmt.Errorf("encode blurhash: empty image")
	}

	small := img
	if src.Dx() > blurHashSize || src.Dy() > blurHashSize {
		w, h := FitWithin(src.Dx(), src.Dy(), blurHashSize)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
		small = dst
	}

	hash, err := blurhash.Encode(4, 3, small)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}
