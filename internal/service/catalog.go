package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/domain"
	"github.com/memecataloger/memecataloger-web/internal/errors"
	"github.com/memecataloger/memecataloger-web/internal/search"
	"github.com/memecataloger/memecataloger-web/internal/store"
	"github.com/memecataloger/memecataloger-web/internal/util"
)

// GalleryItem is one tile of the gallery.
type GalleryItem struct {
	Image        domain.Image     `json:"image"`
	Kind         domain.MediaKind `json:"kind"`
	ThumbnailURL string           `json:"thumbnail_url"`
	MediaURL     string           `json:"media_url"`
	BlurHash     string           `json:"blur_hash,omitempty"`
	Width        int              `json:"width,omitempty"`
	Height       int              `json:"height,omitempty"`
}

// TagOption is one checkbox of the tag popper.
type TagOption struct {
	Tag     domain.Tag `json:"tag"`
	Checked bool       `json:"checked"`
	Slug    string     `json:"slug"`
}

// ImageDetail is everything the detail page shows for one image.
type ImageDetail struct {
	Item       GalleryItem   `json:"item"`
	Tags       []TagOption   `json:"tags"`
	Assigned   []domain.Tag  `json:"assigned"`
	Duplicates []domain.Pair `json:"duplicates,omitempty"`
	// HiddenAssigned are assigned tags filtered out by Query. The popper
	// still submits them so a filtered submit does not unassign them.
	HiddenAssigned []uuid.UUID `json:"hidden_assigned,omitempty"`
	Query          string      `json:"query,omitempty"`
	TotalTags      int         `json:"total_tags"`
}

// CatalogService builds gallery and detail views from backend snapshots.
type CatalogService struct {
	client *backend.Client
	store  *store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(client *backend.Client, store *store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		store:  store,
		logger: logger,
	}
}

// ThumbnailURL is the front-end path of an image's thumbnail.
func ThumbnailURL(kind domain.MediaKind, imageID uuid.UUID) string {
	return "/thumbnails/" + string(kind) + "/" + imageID.String()
}

// MediaURL is the front-end path proxying an image's media.
func MediaURL(imageID uuid.UUID) string {
	return "/media/" + imageID.String()
}

// Gallery returns one item per classifiable image, in backend order.
// Images whose source matches neither media kind are logged and skipped.
func (s *CatalogService) Gallery(ctx context.Context) ([]GalleryItem, error) {
	images, err := s.client.ListImages(ctx)
	if err != nil {
		return nil, fromBackend(err, "images")
	}

	items := make([]GalleryItem, 0, len(images))
	ids := make([]uuid.UUID, 0, len(images))
	for _, img := range images {
		kind := img.Kind()
		if kind == domain.MediaKindUnsupported {
			s.logger.Warn("source does not match expected file types",
				"image_id", img.ID,
				"source", img.Source,
			)
			continue
		}
		items = append(items, newGalleryItem(img, kind))
		ids = append(ids, img.ID)
	}

	s.attachMediaInfo(items, ids)
	return items, nil
}

// Image returns the gallery item for one image.
func (s *CatalogService) Image(ctx context.Context, imageID uuid.UUID) (*GalleryItem, error) {
	images, err := s.client.ListImages(ctx)
	if err != nil {
		return nil, fromBackend(err, "images")
	}
	img, ok := domain.FindImage(images, imageID)
	if !ok {
		return nil, errors.NotFoundf("image %s not found", imageID)
	}

	items := []GalleryItem{newGalleryItem(img, img.Kind())}
	s.attachMediaInfo(items, []uuid.UUID{imageID})
	return &items[0], nil
}

// Detail loads an image with its tag popper options. When q is non-blank the
// options are limited to tags matching q.
func (s *CatalogService) Detail(ctx context.Context, imageID uuid.UUID, q string) (*ImageDetail, error) {
	snap, err := loadSnapshot(ctx, s.client)
	if err != nil {
		return nil, err
	}

	img, ok := domain.FindImage(snap.images, imageID)
	if !ok {
		return nil, errors.NotFoundf("image %s not found", imageID)
	}

	var duplicates []domain.Pair
	for _, pair := range snap.index.Duplicates() {
		if pair.Image == imageID {
			duplicates = append(duplicates, pair)
		}
	}
	if len(duplicates) > 0 {
		s.logger.Warn("duplicate image tag edges",
			"image_id", imageID,
			"pairs", len(duplicates),
		)
	}

	options, err := s.TagOptions(ctx, snap.tags, snap.index, imageID, q)
	if err != nil {
		return nil, err
	}

	shown := make(map[uuid.UUID]struct{}, len(options))
	for _, opt := range options {
		shown[opt.Tag.ID] = struct{}{}
	}
	assigned := assignedTags(snap.tags, snap.index, imageID)
	var hidden []uuid.UUID
	for _, t := range assigned {
		if _, ok := shown[t.ID]; !ok {
			hidden = append(hidden, t.ID)
		}
	}

	items := []GalleryItem{newGalleryItem(img, img.Kind())}
	s.attachMediaInfo(items, []uuid.UUID{imageID})

	return &ImageDetail{
		Item:           items[0],
		Tags:           options,
		Assigned:       assigned,
		Duplicates:     duplicates,
		HiddenAssigned: hidden,
		Query:          strings.TrimSpace(q),
		TotalTags:      len(snap.tags),
	}, nil
}

// TagOptions returns one option per tag, sorted by name, checked when the
// tag is assigned to the image. A non-blank q filters through the tag index.
func (s *CatalogService) TagOptions(ctx context.Context, tags []domain.Tag, index *domain.AssignmentIndex, imageID uuid.UUID, q string) ([]TagOption, error) {
	sorted := slices.Clone(tags)
	domain.SortTags(sorted)

	if strings.TrimSpace(q) != "" {
		matched, err := s.searchTags(ctx, sorted, q)
		if err != nil {
			return nil, err
		}
		sorted = slices.DeleteFunc(sorted, func(t domain.Tag) bool {
			_, ok := matched[t.ID]
			return !ok
		})
	}

	options := make([]TagOption, 0, len(sorted))
	for _, tag := range sorted {
		options = append(options, TagOption{
			Tag:     tag,
			Checked: index.Has(imageID, tag.ID),
			Slug:    util.TagSlug(tag.Name),
		})
	}
	return options, nil
}

// Ping checks the backend answers a cheap listing.
func (s *CatalogService) Ping(ctx context.Context) error {
	if _, err := s.client.ListTags(ctx); err != nil {
		return fromBackend(err, "tags")
	}
	return nil
}

// Media streams an image's media from the backend. Callers close Body.
func (s *CatalogService) Media(ctx context.Context, imageID uuid.UUID) (*backend.Media, error) {
	media, err := s.client.GetImageMedia(ctx, imageID)
	if err != nil {
		return nil, fromBackend(err, "media")
	}
	return media, nil
}

// ImageTags returns the tags assigned to an image, sorted by name.
func (s *CatalogService) ImageTags(ctx context.Context, imageID uuid.UUID) ([]domain.Tag, error) {
	snap, err := loadSnapshot(ctx, s.client)
	if err != nil {
		return nil, err
	}
	if _, ok := domain.FindImage(snap.images, imageID); !ok {
		return nil, errors.NotFoundf("image %s not found", imageID)
	}
	return assignedTags(snap.tags, snap.index, imageID), nil
}

// Tags returns the tag catalogue sorted by name, filtered by q when non-blank.
func (s *CatalogService) Tags(ctx context.Context, q string) ([]domain.Tag, error) {
	tags, err := s.client.ListTags(ctx)
	if err != nil {
		return nil, fromBackend(err, "tags")
	}
	domain.SortTags(tags)

	if strings.TrimSpace(q) == "" {
		return tags, nil
	}

	matched, err := s.searchTags(ctx, tags, q)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(tags, func(t domain.Tag) bool {
		_, ok := matched[t.ID]
		return !ok
	}), nil
}

// searchTags builds a throwaway index over tags and returns the matching IDs.
func (s *CatalogService) searchTags(ctx context.Context, tags []domain.Tag, q string) (map[uuid.UUID]struct{}, error) {
	idx, err := search.NewTagIndex(tags, s.logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build tag index")
	}
	defer idx.Close()

	ids, err := idx.Search(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "tag search failed")
	}

	matched := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		matched[id] = struct{}{}
	}
	return matched, nil
}

// attachMediaInfo copies known BlurHash and dimensions onto items. Store
// failures only cost the placeholders, so they are logged and ignored.
func (s *CatalogService) attachMediaInfo(items []GalleryItem, ids []uuid.UUID) {
	if s.store == nil || len(ids) == 0 {
		return
	}
	infos, err := s.store.MediaInfoBatch(ids)
	if err != nil {
		s.logger.Warn("failed to load media info", "error", err)
		return
	}
	for i := range items {
		if info, ok := infos[items[i].Image.ID]; ok {
			items[i].BlurHash = info.BlurHash
			items[i].Width = info.Width
			items[i].Height = info.Height
		}
	}
}

func newGalleryItem(img domain.Image, kind domain.MediaKind) GalleryItem {
	item := GalleryItem{
		Image:    img,
		Kind:     kind,
		MediaURL: MediaURL(img.ID),
	}
	if kind != domain.MediaKindUnsupported {
		item.ThumbnailURL = ThumbnailURL(kind, img.ID)
	}
	return item
}

// assignedTags resolves the tag IDs assigned to an image against the
// catalogue. Edges pointing at unknown tags are dropped.
func assignedTags(tags []domain.Tag, index *domain.AssignmentIndex, imageID uuid.UUID) []domain.Tag {
	byID := make(map[uuid.UUID]domain.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	var out []domain.Tag
	for _, tagID := range index.TagsFor(imageID) {
		if t, ok := byID[tagID]; ok {
			out = append(out, t)
		}
	}
	domain.SortTags(out)
	return out
}
