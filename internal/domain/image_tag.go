package domain

import "github.com/google/uuid"

// ImageTag is one assignment edge between an image and a tag.
//
// At most one edge per (image, tag) pair is expected, but the backend does not
// guarantee it. Lookups treat duplicates as a single assignment; removals
// delete every edge of the pair.
type ImageTag struct {
	ID    uuid.UUID `json:"id"`
	Image uuid.UUID `json:"image"`
	Tag   uuid.UUID `json:"tag"`
}

// Pair identifies an (image, tag) combination regardless of edge identity.
type Pair struct {
	Image uuid.UUID
	Tag   uuid.UUID
}

// Pair returns the (image, tag) pair this edge assigns.
func (e ImageTag) Pair() Pair {
	return Pair{Image: e.Image, Tag: e.Tag}
}

// TagChange is the set of mutations derived from a submitted tag popper.
type TagChange struct {
	ImageID uuid.UUID   `json:"image_id"`
	Add     []uuid.UUID `json:"add"`
	Remove  []uuid.UUID `json:"remove"`
}

// IsEmpty reports whether the change would not touch the backend.
func (c TagChange) IsEmpty() bool {
	return len(c.Add) == 0 && len(c.Remove) == 0
}

// TagChangeResult records what was actually applied to the backend.
type TagChangeResult struct {
	Added   []ImageTag  `json:"added"`
	Removed []uuid.UUID `json:"removed"` // IDs of deleted edges
}
