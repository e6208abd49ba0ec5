package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
)

// ListTags returns the full tag catalogue.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := c.call(ctx, "listTags", http.MethodGet, "/api/tag/", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

type createTagResponse struct {
	TagID   uuid.UUID `json:"tag-id"`
	TagName string    `json:"tag-name"`
}

// CreateTag creates a tag owned by the configured user.
func (c *Client) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	const op, path = "createTag", "/api/tag/new"

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, wrapError(op, path, 0, fmt.Errorf("%w: empty tag name", ErrBadRequest))
	}

	form, err := c.mutationForm(op, path)
	if err != nil {
		return domain.Tag{}, err
	}
	form.Set("tag-name", name)

	var resp createTagResponse
	if err := c.call(ctx, op, http.MethodPost, path, form, &resp); err != nil {
		return domain.Tag{}, err
	}
	if resp.TagName == "" {
		resp.TagName = name
	}
	return domain.Tag{ID: resp.TagID, Name: resp.TagName}, nil
}
