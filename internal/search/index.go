// Package search provides full-text filtering of the tag catalogue using Bleve.
// The index lives in memory only and is rebuilt from every tag snapshot, so it
// never outlives the data it was built from.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
	"github.com/memecataloger/memecataloger-web/internal/util"
)

// tagDocument is the indexed form of a domain.Tag.
type tagDocument struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// TagIndex is an in-memory search index over one tag snapshot.
//
// Thread safety: Search may be called concurrently. Close must not race
// with in-flight searches.
type TagIndex struct {
	index  bleve.Index
	ids    []uuid.UUID
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// NewTagIndex indexes every tag of the snapshot.
func NewTagIndex(tags []domain.Tag, logger *slog.Logger) (*TagIndex, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexMapping, err := buildTagMapping()
	if err != nil {
		return nil, err
	}

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create tag index: %w", err)
	}

	batch := index.NewBatch()
	ids := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		doc := tagDocument{
			ID:      tag.ID.String(),
			Name:    util.FoldName(tag.Name),
			Display: tag.Name,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index tag %s: %w", doc.ID, err)
		}
		ids = append(ids, tag.ID)
	}

	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("apply tag batch: %w", err)
	}

	logger.Debug("built tag index", "tags", len(ids))

	return &TagIndex{
		index:  index,
		ids:    ids,
		logger: logger,
	}, nil
}

// Len returns the number of indexed tags.
func (t *TagIndex) Len() int {
	return len(t.ids)
}

// Close releases the index.
func (t *TagIndex) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.index.Close()
}
