package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// tagAnalyzerName splits on unicode word boundaries and lowercases.
// Stop words and stemming are left out: tag names are short and
// "the" or "running" is often the whole point of a tag.
const tagAnalyzerName = "tagname"

// buildTagMapping creates the Bleve index mapping for tag documents.
func buildTagMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(tagAnalyzerName, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []any{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("register tag analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = tagAnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Folded name, the search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = tagAnalyzerName
	nameFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Original display name, kept for debugging only.
	displayFieldMapping := bleve.NewTextFieldMapping()
	displayFieldMapping.Index = false
	displayFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("display", displayFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}
