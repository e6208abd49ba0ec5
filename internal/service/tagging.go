package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/domain"
	"github.com/memecataloger/memecataloger-web/internal/errors"
	"github.com/memecataloger/memecataloger-web/internal/util"
	"github.com/memecataloger/memecataloger-web/internal/validation"
)

// NewTagRequest is the "new tag" field of the popper.
type NewTagRequest struct {
	Name string `json:"name" form:"tag-name" validate:"required,tagname"`
}

// TaggingService turns popper submissions into backend mutations.
//
// Mutations run one at a time in a fixed order (adds, then removes) and stop
// at the first failure. The returned result always reflects what the backend
// accepted, even alongside an error.
type TaggingService struct {
	client    *backend.Client
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTaggingService creates a new tagging service.
func NewTaggingService(client *backend.Client, validator *validation.Validator, logger *slog.Logger) *TaggingService {
	return &TaggingService{
		client:    client,
		validator: validator,
		logger:    logger,
	}
}

// Enabled reports whether a catalogue user is configured for mutations.
func (s *TaggingService) Enabled() bool {
	return s.client.CanMutate()
}

// Apply makes the image's assignments equal to checked. Every edge of a
// removed pair is deleted, duplicates included.
func (s *TaggingService) Apply(ctx context.Context, imageID uuid.UUID, checked []uuid.UUID) (*domain.TagChangeResult, error) {
	snap, err := s.load(ctx, imageID)
	if err != nil {
		return nil, err
	}

	known := domain.TagIDs(snap.tags)
	unknown := make(map[string]string)
	for _, tagID := range checked {
		if _, ok := known[tagID]; !ok {
			unknown[tagID.String()] = "unknown tag"
		}
	}
	if len(unknown) > 0 {
		return nil, errors.ValidationWithDetails("unknown tag ids", map[string]any{"tag_ids": unknown})
	}

	change := snap.index.Diff(imageID, checked)
	// Edges to tags missing from the catalogue are never shown in the
	// popper, so a submit cannot mean to remove them.
	change.Remove = slices.DeleteFunc(change.Remove, func(tagID uuid.UUID) bool {
		_, ok := known[tagID]
		return !ok
	})
	return s.execute(ctx, snap.index, change)
}

// Clear removes every assignment of the image.
func (s *TaggingService) Clear(ctx context.Context, imageID uuid.UUID) (*domain.TagChangeResult, error) {
	snap, err := s.load(ctx, imageID)
	if err != nil {
		return nil, err
	}

	change := domain.TagChange{
		ImageID: imageID,
		Remove:  snap.index.TagsFor(imageID),
	}
	return s.execute(ctx, snap.index, change)
}

// CreateTag creates a tag, or returns the existing tag with the same
// folded name.
func (s *TaggingService) CreateTag(ctx context.Context, name string) (domain.Tag, bool, error) {
	req := NewTagRequest{Name: strings.TrimSpace(name)}
	if err := s.validator.Validate(req); err != nil {
		return domain.Tag{}, false, err
	}
	if !s.client.CanMutate() {
		return domain.Tag{}, false, fromBackend(backend.ErrNoUser, "tags")
	}

	tags, err := s.client.ListTags(ctx)
	if err != nil {
		return domain.Tag{}, false, fromBackend(err, "tags")
	}
	if tag, found := findTagByName(tags, req.Name); found {
		return tag, false, nil
	}

	tag, err := s.client.CreateTag(ctx, req.Name)
	if err != nil {
		return domain.Tag{}, false, fromBackend(err, "tag")
	}
	s.logger.Info("created tag", "tag_id", tag.ID, "name", tag.Name)
	return tag, true, nil
}

// TagAssignment is the outcome of CreateAndAssign.
type TagAssignment struct {
	Tag     domain.Tag
	Created bool // false when an existing tag was reused
	Change  *domain.TagChangeResult
}

// CreateAndAssign creates a tag named name and assigns it to the image.
// A tag whose folded name already exists is reused instead of duplicated,
// and an existing assignment is left as is.
func (s *TaggingService) CreateAndAssign(ctx context.Context, imageID uuid.UUID, name string) (*TagAssignment, error) {
	req := NewTagRequest{Name: strings.TrimSpace(name)}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, imageID)
	if err != nil {
		return nil, err
	}

	out := &TagAssignment{Change: &domain.TagChangeResult{}}
	tag, found := findTagByName(snap.tags, req.Name)
	if !found {
		tag, err = s.client.CreateTag(ctx, req.Name)
		if err != nil {
			return nil, fromBackend(err, "tag")
		}
		out.Created = true
		s.logger.Info("created tag", "tag_id", tag.ID, "name", tag.Name)
	}
	out.Tag = tag

	if snap.index.Has(imageID, tag.ID) {
		return out, nil
	}

	out.Change, err = s.execute(ctx, snap.index, domain.TagChange{
		ImageID: imageID,
		Add:     []uuid.UUID{tag.ID},
	})
	return out, err
}

// load takes a fresh snapshot and checks the image exists and that edits
// are possible at all.
func (s *TaggingService) load(ctx context.Context, imageID uuid.UUID) (*snapshot, error) {
	if !s.client.CanMutate() {
		return nil, fromBackend(fmt.Errorf("tag image %s: %w", imageID, backend.ErrNoUser), "tags")
	}

	snap, err := loadSnapshot(ctx, s.client)
	if err != nil {
		return nil, err
	}
	if _, ok := domain.FindImage(snap.images, imageID); !ok {
		return nil, errors.NotFoundf("image %s not found", imageID)
	}
	return snap, nil
}

// execute issues the backend calls for change.
func (s *TaggingService) execute(ctx context.Context, index *domain.AssignmentIndex, change domain.TagChange) (*domain.TagChangeResult, error) {
	result := &domain.TagChangeResult{}
	if change.IsEmpty() {
		return result, nil
	}

	for _, tagID := range change.Add {
		edge, err := s.client.CreateImageTag(ctx, change.ImageID, tagID)
		if err != nil {
			s.logFailure(change, result, err)
			return result, fromBackend(err, "image tag")
		}
		result.Added = append(result.Added, edge)
	}

	for _, tagID := range change.Remove {
		for _, edge := range index.EdgesFor(change.ImageID, tagID) {
			if err := s.client.DeleteImageTag(ctx, edge.ID); err != nil {
				s.logFailure(change, result, err)
				return result, fromBackend(err, "image tag")
			}
			result.Removed = append(result.Removed, edge.ID)
		}
	}

	s.logger.Info("applied tag change",
		"image_id", change.ImageID,
		"added", len(result.Added),
		"removed", len(result.Removed),
	)
	return result, nil
}

func (s *TaggingService) logFailure(change domain.TagChange, partial *domain.TagChangeResult, err error) {
	s.logger.Error("tag change failed part way",
		"image_id", change.ImageID,
		"added", len(partial.Added),
		"removed", len(partial.Removed),
		"error", err,
	)
}

// findTagByName matches on folded names so "Café" and "cafe " are the same tag.
// With several candidates the lowest ID wins.
func findTagByName(tags []domain.Tag, name string) (domain.Tag, bool) {
	folded := util.FoldName(name)
	matches := make(map[string]domain.Tag)
	for _, t := range tags {
		if util.FoldName(t.Name) == folded {
			matches[t.ID.String()] = t
		}
	}
	if len(matches) == 0 {
		return domain.Tag{}, false
	}
	keys := slices.Sorted(maps.Keys(matches))
	return matches[keys[0]], true
}
