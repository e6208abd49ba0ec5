package domain

import (
	"slices"

	"github.com/google/uuid"
)

// IsAssigned reports whether any edge in assignments links imageID to tagID.
// It scans the whole list; use AssignmentIndex when querying many pairs from
// the same snapshot.
func IsAssigned(imageID, tagID uuid.UUID, assignments []ImageTag) bool {
	for _, edge := range assignments {
		if edge.Image == imageID && edge.Tag == tagID {
			return true
		}
	}
	return false
}

// AssignmentIndex is a precomputed view of an assignment snapshot.
// Build it once per fetch cycle; it is read-only afterwards and safe for
// concurrent readers.
type AssignmentIndex struct {
	byImage map[uuid.UUID]map[uuid.UUID][]ImageTag
	total   int
}

// NewAssignmentIndex indexes every edge of a snapshot by image and tag.
func NewAssignmentIndex(assignments []ImageTag) *AssignmentIndex {
	idx := &AssignmentIndex{
		byImage: make(map[uuid.UUID]map[uuid.UUID][]ImageTag),
		total:   len(assignments),
	}
	for _, edge := range assignments {
		tags, ok := idx.byImage[edge.Image]
		if !ok {
			tags = make(map[uuid.UUID][]ImageTag)
			idx.byImage[edge.Image] = tags
		}
		tags[edge.Tag] = append(tags[edge.Tag], edge)
	}
	return idx
}

// Has reports whether imageID carries tagID. Same truth table as IsAssigned.
func (idx *AssignmentIndex) Has(imageID, tagID uuid.UUID) bool {
	_, ok := idx.byImage[imageID][tagID]
	return ok
}

// TagsFor returns the distinct tag IDs assigned to an image, sorted.
func (idx *AssignmentIndex) TagsFor(imageID uuid.UUID) []uuid.UUID {
	tags := idx.byImage[imageID]
	ids := make([]uuid.UUID, 0, len(tags))
	for id := range tags {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareUUID)
	return ids
}

// EdgesFor returns every edge for a pair, duplicates included.
func (idx *AssignmentIndex) EdgesFor(imageID, tagID uuid.UUID) []ImageTag {
	return slices.Clone(idx.byImage[imageID][tagID])
}

// EdgesForImage returns every edge that references imageID.
func (idx *AssignmentIndex) EdgesForImage(imageID uuid.UUID) []ImageTag {
	var edges []ImageTag
	for _, tagID := range idx.TagsFor(imageID) {
		edges = append(edges, idx.byImage[imageID][tagID]...)
	}
	return edges
}

// Duplicates lists the pairs backed by more than one edge.
func (idx *AssignmentIndex) Duplicates() []Pair {
	var pairs []Pair
	for imageID, tags := range idx.byImage {
		for tagID, edges := range tags {
			if len(edges) > 1 {
				pairs = append(pairs, Pair{Image: imageID, Tag: tagID})
			}
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := compareUUID(a.Image, b.Image); c != 0 {
			return c
		}
		return compareUUID(a.Tag, b.Tag)
	})
	return pairs
}

// Len returns the number of edges indexed.
func (idx *AssignmentIndex) Len() int {
	return idx.total
}

// Diff computes the change that turns the image's current assignments into
// exactly the checked set.
func (idx *AssignmentIndex) Diff(imageID uuid.UUID, checked []uuid.UUID) TagChange {
	want := make(map[uuid.UUID]struct{}, len(checked))
	change := TagChange{ImageID: imageID}
	for _, id := range checked {
		if _, seen := want[id]; seen {
			continue
		}
		want[id] = struct{}{}
		if !idx.Has(imageID, id) {
			change.Add = append(change.Add, id)
		}
	}
	for _, id := range idx.TagsFor(imageID) {
		if _, keep := want[id]; !keep {
			change.Remove = append(change.Remove, id)
		}
	}
	slices.SortFunc(change.Add, compareUUID)
	return change
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
