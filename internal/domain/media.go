package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// MediaKind tells the gallery how to render a source.
type MediaKind string

// Media kinds.
const (
	MediaKindImage       MediaKind = "image"
	MediaKindVideo       MediaKind = "video"
	MediaKindUnsupported MediaKind = "unsupported"
)

var (
	videoSourcePattern = regexp.MustCompile(`(?i).+\.(mp4|mov|avi|mkv|wmv|flv|webm)([?#].*)?$`)
	imageSourcePattern = regexp.MustCompile(`(?i).+\.(jpg|jpeg|png|webp|gif|bmp|svg)([?#].*)?$`)
)

// Classify determines the media kind from a source path or URL.
// The extension must end the path; a query string or fragment may follow it.
func Classify(source string) MediaKind {
	switch {
	case videoSourcePattern.MatchString(source):
		return MediaKindVideo
	case imageSourcePattern.MatchString(source):
		return MediaKindImage
	default:
		return MediaKindUnsupported
	}
}

// ParseMediaKind converts a URL segment into a renderable kind.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case MediaKindImage:
		return MediaKindImage, true
	case MediaKindVideo:
		return MediaKindVideo, true
	default:
		return "", false
	}
}

// MediaInfo is thumbnail metadata derived from an image's media.
// Catalogue media is immutable, so once computed it stays valid.
type MediaInfo struct {
	ImageID     uuid.UUID `json:"image_id"`
	Kind        MediaKind `json:"kind"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	BlurHash    string    `json:"blur_hash,omitempty"`
	ContentHash string    `json:"content_hash"`
	GeneratedAt time.Time `json:"generated_at"`
}
