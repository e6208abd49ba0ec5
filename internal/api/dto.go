package api

import (
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
	domainerrors "github.com/memecataloger/memecataloger-web/internal/errors"
	"github.com/memecataloger/memecataloger-web/internal/service"
	"github.com/memecataloger/memecataloger-web/internal/util"
)

// ImageResponse contains image data in API responses.
type ImageResponse struct {
	ID           string `json:"id" doc:"Image ID"`
	Source       string `json:"source" doc:"Source path on the backend"`
	Description  string `json:"description" doc:"Free-text description"`
	Kind         string `json:"kind" enum:"image,video,unsupported" doc:"Media kind derived from the source extension"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" doc:"Thumbnail path"`
	MediaURL     string `json:"media_url" doc:"Media proxy path"`
	BlurHash     string `json:"blur_hash,omitempty" doc:"BlurHash placeholder, once a thumbnail exists"`
	Width        int    `json:"width,omitempty" doc:"Source width in pixels, once known"`
	Height       int    `json:"height,omitempty" doc:"Source height in pixels, once known"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID   string `json:"id" doc:"Tag ID"`
	Name string `json:"name" doc:"Tag name"`
	Slug string `json:"slug" doc:"URL-safe slug"`
}

// TagOptionResponse is one popper checkbox.
type TagOptionResponse struct {
	TagResponse
	Checked bool `json:"checked" doc:"Whether the tag is assigned to the image"`
}

// ImageTagResponse is one assignment edge.
type ImageTagResponse struct {
	ID      string `json:"id" doc:"Assignment ID"`
	ImageID string `json:"image_id" doc:"Image ID"`
	TagID   string `json:"tag_id" doc:"Tag ID"`
}

// TagChangeResponse reports the mutations the backend accepted.
type TagChangeResponse struct {
	Added   []ImageTagResponse `json:"added" doc:"Assignments created"`
	Removed []string           `json:"removed" doc:"Assignment IDs deleted"`
}

func toImageResponse(item service.GalleryItem) ImageResponse {
	return ImageResponse{
		ID:           item.Image.ID.String(),
		Source:       item.Image.Source,
		Description:  item.Image.Description,
		Kind:         string(item.Kind),
		ThumbnailURL: item.ThumbnailURL,
		MediaURL:     item.MediaURL,
		BlurHash:     item.BlurHash,
		Width:        item.Width,
		Height:       item.Height,
	}
}

func toTagResponse(tag domain.Tag) TagResponse {
	return TagResponse{
		ID:   tag.ID.String(),
		Name: tag.Name,
		Slug: util.TagSlug(tag.Name),
	}
}

func toTagResponses(tags []domain.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	return out
}

func toTagChangeResponse(result *domain.TagChangeResult) TagChangeResponse {
	resp := TagChangeResponse{
		Added:   make([]ImageTagResponse, 0),
		Removed: make([]string, 0),
	}
	if result == nil {
		return resp
	}
	for _, e := range result.Added {
		resp.Added = append(resp.Added, ImageTagResponse{
			ID:      e.ID.String(),
			ImageID: e.Image.String(),
			TagID:   e.Tag.String(),
		})
	}
	for _, id := range result.Removed {
		resp.Removed = append(resp.Removed, id.String())
	}
	return resp
}

// parseID parses a path or body UUID into a validation error on failure.
func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domainerrors.ValidationWithDetails("invalid id",
			map[string]string{field: "must be a valid UUID"})
	}
	return id, nil
}

// withAppliedChange attaches the mutations the backend already accepted to
// the error of a partially applied change.
func withAppliedChange(err error, result *domain.TagChangeResult) error {
	if result == nil || (len(result.Added) == 0 && len(result.Removed) == 0) {
		return err
	}
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		return err
	}

	details := map[string]any{"applied": toTagChangeResponse(result)}
	if domainErr.Details != nil {
		details["cause"] = domainErr.Details
	}
	return domainErr.WithDetails(details)
}
