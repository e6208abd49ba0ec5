package backend

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
)

// ListImageTags returns every assignment edge.
func (c *Client) ListImageTags(ctx context.Context) ([]domain.ImageTag, error) {
	var edges []domain.ImageTag
	if err := c.call(ctx, "listImageTags", http.MethodGet, "/api/image-tag/", nil, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

type imageTagResponse struct {
	ImageTagID uuid.UUID `json:"imagetag-id"`
}

// CreateImageTag assigns a tag to an image and returns the new edge.
func (c *Client) CreateImageTag(ctx context.Context, imageID, tagID uuid.UUID) (domain.ImageTag, error) {
	const op, path = "createImageTag", "/api/image-tag/new"

	form, err := c.mutationForm(op, path)
	if err != nil {
		return domain.ImageTag{}, err
	}
	form.Set("image-id", imageID.String())
	form.Set("tag-id", tagID.String())

	var resp imageTagResponse
	if err := c.call(ctx, op, http.MethodPost, path, form, &resp); err != nil {
		return domain.ImageTag{}, err
	}
	return domain.ImageTag{ID: resp.ImageTagID, Image: imageID, Tag: tagID}, nil
}

// DeleteImageTag removes one assignment edge by its ID.
func (c *Client) DeleteImageTag(ctx context.Context, edgeID uuid.UUID) error {
	path := "/api/image-tag/" + edgeID.String()
	if !c.CanMutate() {
		return wrapError("deleteImageTag", path, 0, ErrNoUser)
	}

	var resp imageTagResponse
	return c.call(ctx, "deleteImageTag", http.MethodDelete, path, nil, &resp)
}
