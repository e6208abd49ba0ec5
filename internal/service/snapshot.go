package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/memecataloger/memecataloger-web/internal/backend"
	"github.com/memecataloger/memecataloger-web/internal/domain"
)

// snapshot is one read of the catalogue. It is never cached; every page
// render or mutation takes a fresh one.
type snapshot struct {
	images []domain.Image
	tags   []domain.Tag
	edges  []domain.ImageTag
	index  *domain.AssignmentIndex
}

// loadSnapshot fetches images, tags and assignments concurrently. The first
// failure cancels the remaining requests.
func loadSnapshot(ctx context.Context, client *backend.Client) (*snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		images, err := client.ListImages(gctx)
		if err != nil {
			return fromBackend(err, "images")
		}
		snap.images = images
		return nil
	})
	g.Go(func() error {
		tags, err := client.ListTags(gctx)
		if err != nil {
			return fromBackend(err, "tags")
		}
		snap.tags = tags
		return nil
	})
	g.Go(func() error {
		edges, err := client.ListImageTags(gctx)
		if err != nil {
			return fromBackend(err, "image tags")
		}
		snap.edges = edges
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.index = domain.NewAssignmentIndex(snap.edges)
	return &snap, nil
}
