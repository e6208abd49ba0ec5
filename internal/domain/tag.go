package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Tag is a user-defined label applicable to zero or more images.
// Name is assumed unique for display but nothing enforces it.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SortTags orders tags case-insensitively by name, breaking ties by ID
// so duplicate names render in a stable order.
func SortTags(tags []Tag) {
	slices.SortStableFunc(tags, func(a, b Tag) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// TagIDs returns the set of IDs present in a tag snapshot.
func TagIDs(tags []Tag) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(tags))
	for _, t := range tags {
		ids[t.ID] = struct{}{}
	}
	return ids
}
