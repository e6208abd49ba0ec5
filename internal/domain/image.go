// Package domain holds the catalogue entities shared by every layer of the front-end.
// The backend owns these records; the front-end only ever holds read-only snapshots.
package domain

import "github.com/google/uuid"

// Image is one catalogued media file.
type Image struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"` // File path or URL on the backend
	Description string    `json:"description"`
}

// Kind classifies the image's source path.
func (i Image) Kind() MediaKind {
	return Classify(i.Source)
}

// FindImage returns the image with the given ID from a snapshot.
func FindImage(images []Image, id uuid.UUID) (Image, bool) {
	for _, img := range images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}
