package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query. OwnerID is required: every search
// is scoped to one user's shelf.
type SearchParams struct {
	Query   string
	OwnerID string

	// Filters
	GenreSlugs []string // exact genre slugs, OR across values
	Tags       []string // exact tags, AND across values
	Status     string   // status string ("TBR", "Reading", a year)
	MinRating  int      // rating floor, 1-5

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "author", "recent", "rating"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Series     string            `json:"series,omitempty"`
	GenreSlug  string            `json:"genre_slug,omitempty"`
	Status     string            `json:"status,omitempty"`
	Rating     int               `json:"rating,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Genres   []FacetCount `json:"genres,omitempty"`
	Tags     []FacetCount `json:"tags,omitempty"`
	Statuses []FacetCount `json:"statuses,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy(sortOrder(params))
	req.Fields = []string{"id", "title", "author", "series", "genre_slug", "status", "rating"}

	if params.IncludeFacets {
		for _, field := range []string{"genre_slug", "tags", "status"} {
			req.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("author")
		req.Highlight.AddField("series")
	}

	raw, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  raw.Total,
		TookMs: raw.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(raw.Hits)),
	}
	for _, hit := range raw.Hits {
		result.Hits = append(result.Hits, toSearchHit(hit.ID, hit.Score, hit.Fields, hit.Fragments))
	}
	if params.IncludeFacets {
		result.Facets = SearchFacets{
			Genres:   facetCounts(raw, "genre_slug"),
			Tags:     facetCounts(raw, "tags"),
			Statuses: facetCounts(raw, "status"),
		}
	}

	return result, nil
}

func toSearchHit(id string, score float64, fields map[string]any, fragments map[string][]string) SearchHit {
	str := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}

	hit := SearchHit{
		ID:        id,
		Score:     score,
		Title:     str("title"),
		Author:    str("author"),
		Series:    str("series"),
		GenreSlug: str("genre_slug"),
		Status:    str("status"),
	}
	if rating, ok := fields["rating"].(float64); ok {
		hit.Rating = int(rating)
	}

	if len(fragments) > 0 {
		hit.Highlights = make(map[string]string, len(fragments))
		for field, frags := range fragments {
			if len(frags) > 0 {
				hit.Highlights[field] = frags[0]
			}
		}
	}

	return hit
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var clauses []query.Query

	// Owner scope first: a user only ever searches their own shelf.
	if params.OwnerID != "" {
		clauses = append(clauses, termQuery("owner_id", params.OwnerID))
	}

	if params.Query != "" {
		clauses = append(clauses, textQuery(params.Query))
	}

	if len(params.GenreSlugs) > 0 {
		genres := make([]query.Query, len(params.GenreSlugs))
		for i, slug := range params.GenreSlugs {
			genres[i] = termQuery("genre_slug", slug)
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(genres...))
	}

	// Tags are conjunctive: every requested tag must be present.
	for _, tag := range params.Tags {
		clauses = append(clauses, termQuery("tags", tag))
	}

	if params.Status != "" {
		clauses = append(clauses, termQuery("status", params.Status))
	}

	if params.MinRating > 0 {
		lo, hi := float64(params.MinRating), 5.0
		rq := bleve.NewNumericRangeQuery(&lo, &hi)
		rq.SetField("rating")
		clauses = append(clauses, rq)
	}

	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return clauses[0]
	default:
		return bleve.NewConjunctionQuery(clauses...)
	}
}

// textQuery matches across title, author, and series, with fuzzy and prefix
// fallbacks on the title for typos and autocomplete.
func textQuery(text string) query.Query {
	boosted := func(field string, boost float64) query.Query {
		m := bleve.NewMatchQuery(text)
		m.SetField(field)
		m.SetBoost(boost)
		return m
	}

	alternatives := []query.Query{
		boosted("title", 3.0),
		boosted("author", 2.0),
		boosted("series", 1.5),
	}

	fuzzy := bleve.NewFuzzyQuery(text)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)
	alternatives = append(alternatives, fuzzy)

	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		alternatives = append(alternatives, prefix)
	}

	return bleve.NewDisjunctionQuery(alternatives...)
}

func termQuery(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

// sortOrder translates params into a Bleve sort spec. Alphabetic sorts
// default ascending, recency and rating default descending.
func sortOrder(params SearchParams) []string {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			return []string{"-title"}
		}
		return []string{"title"}
	case "author":
		if params.SortOrder == "desc" {
			return []string{"-author", "-title"}
		}
		return []string{"author", "title"}
	case "recent":
		if params.SortOrder == "asc" {
			return []string{"created_at"}
		}
		return []string{"-created_at"}
	case "rating":
		if params.SortOrder == "asc" {
			return []string{"rating"}
		}
		return []string{"-rating"}
	default:
		return []string{"-_score"}
	}
}

func facetCounts(result *bleve.SearchResult, name string) []FacetCount {
	facet, ok := result.Facets[name]
	if !ok {
		return nil
	}
	counts := make([]FacetCount, 0, len(facet.Terms.Terms()))
	for _, term := range facet.Terms.Terms() {
		counts = append(counts, FacetCount{Value: term.Term, Count: term.Count})
	}
	return counts
}
