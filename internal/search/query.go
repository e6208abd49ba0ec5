package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/util"
)

// ErrClosed is returned when searching a closed index.
var ErrClosed = errors.New("tag index closed")

const (
	minPrefixLength = 2
	minFuzzyLength  = 3
)

// Search returns the ids of tags whose name matches q, best match first.
// An empty or blank q returns every tag in snapshot order.
func (t *TagIndex) Search(ctx context.Context, q string) ([]uuid.UUID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return nil, ErrClosed
	}

	folded := util.FoldName(q)
	if folded == "" {
		out := make([]uuid.UUID, len(t.ids))
		copy(out, t.ids)
		return out, nil
	}
	if len(t.ids) == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(buildTagQuery(folded), len(t.ids), 0, false)

	result, err := t.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			t.logger.Warn("skipping malformed tag id in index", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}

	t.logger.Debug("tag search",
		"query", q,
		"hits", len(ids),
		"took", result.Took,
	)

	return ids, nil
}

// buildTagQuery combines a match on the whole input with per-word prefix
// and fuzzy queries. Input must already be folded.
func buildTagQuery(folded string) query.Query {
	var queries []query.Query

	matchQuery := bleve.NewMatchQuery(folded)
	matchQuery.SetField("name")
	matchQuery.SetBoost(3.0)
	queries = append(queries, matchQuery)

	for _, word := range strings.Fields(folded) {
		if len(word) >= minPrefixLength {
			prefixQuery := bleve.NewPrefixQuery(word)
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(1.5)
			queries = append(queries, prefixQuery)
		}
		if len(word) >= minFuzzyLength {
			fuzzyQuery := bleve.NewFuzzyQuery(word)
			fuzzyQuery.SetField("name")
			fuzzyQuery.SetFuzziness(1)
			fuzzyQuery.SetBoost(0.8)
			queries = append(queries, fuzzyQuery)
		}
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}
