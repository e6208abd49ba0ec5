package backend

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
)

// Media is a streamed media body. Callers must close Body.
type Media struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// ListImages returns every catalogued image.
func (c *Client) ListImages(ctx context.Context) ([]domain.Image, error) {
	var images []domain.Image
	if err := c.call(ctx, "listImages", http.MethodGet, "/api/image/", nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetImageMedia streams the binary media of one image.
func (c *Client) GetImageMedia(ctx context.Context, imageID uuid.UUID) (*Media, error) {
	path := "/api/image/" + imageID.String()
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, wrapError("getImageMedia", path, statusOf(err), err)
	}

	length := resp.ContentLength
	if v := resp.Header.Get("Content-Length"); v != "" && length < 0 {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			length = n
		}
	}

	return &Media{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: length,
	}, nil
}

// MediaURL is the backend URL of an image's binary media.
func (c *Client) MediaURL(imageID uuid.UUID) string {
	return c.resolve("/api/image/" + imageID.String())
}
