package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	bmapping "github.com/blevesearch/bleve/v2/mapping"
)

// textField maps a full-text field with English stemming. Term vectors stay
// on so snippets can be highlighted.
func textField() *bmapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = en.AnalyzerName
	fm.Store = true
	fm.IncludeTermVectors = true
	return fm
}

// keywordField maps an exact-match field. The keyword analyzer keeps
// compound values like "slow-burn" intact, which matters for facets.
func keywordField(store bool) *bmapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	fm.Store = store
	return fm
}

func numericField() *bmapping.FieldMapping {
	fm := bleve.NewNumericFieldMapping()
	fm.Store = true
	return fm
}

// buildIndexMapping defines the Bleve mapping for book documents. Title,
// author, and series get stemmed full-text treatment; everything else is
// either an exact-match keyword or a numeric sort key.
func buildIndexMapping() bmapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	doc.AddFieldMappingsAt("title", textField())
	doc.AddFieldMappingsAt("author", textField())
	doc.AddFieldMappingsAt("series", textField())

	doc.AddFieldMappingsAt("id", keywordField(false))
	doc.AddFieldMappingsAt("owner_id", keywordField(false))
	doc.AddFieldMappingsAt("genre_slug", keywordField(true))
	doc.AddFieldMappingsAt("status", keywordField(true))
	doc.AddFieldMappingsAt("read_type", keywordField(true))

	// Tags keep term vectors for the tag facet.
	tags := keywordField(true)
	tags.IncludeTermVectors = true
	doc.AddFieldMappingsAt("tags", tags)

	doc.AddFieldMappingsAt("rating", numericField())
	doc.AddFieldMappingsAt("created_at", numericField())
	doc.AddFieldMappingsAt("updated_at", numericField())

	indexMapping.AddDocumentMapping("_default", doc)

	return indexMapping
}
