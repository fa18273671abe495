package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readkeepapp/readkeep-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the library",
		Description: "Full-text search over the user's books with filters and facets",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/rebuild",
		Summary:     "Rebuild the search index",
		Description: "Drops and reindexes the search index from the store. Root only.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRebuildIndex)
}

// === DTOs ===

// SearchInput carries search query parameters.
type SearchInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Query         string `query:"q" doc:"Search query. Empty matches everything."`
	Genres        string `query:"genres" doc:"Comma-separated genre slugs to filter by"`
	Tags          string `query:"tags" doc:"Comma-separated tags to filter by"`
	Status        string `query:"status" doc:"Filter by status: TBR, Reading, or a year"`
	MinRating     int    `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum rating"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
	Offset        int    `query:"offset" minimum:"0" doc:"Page offset"`
	SortBy        string `query:"sort" enum:"relevance,title,author,recent,rating" doc:"Sort field" default:"relevance"`
	SortOrder     string `query:"order" enum:"asc,desc" doc:"Sort direction" default:"desc"`
	Facets        bool   `query:"facets" doc:"Include facet counts" default:"true"`
	Highlight     bool   `query:"highlight" doc:"Include match highlights" default:"true"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body search.SearchResult
}

// RebuildIndexResponse reports how many documents were reindexed.
type RebuildIndexResponse struct {
	Indexed int `json:"indexed" doc:"Number of documents indexed"`
}

// RebuildIndexOutput wraps the rebuild response for Huma.
type RebuildIndexOutput struct {
	Body RebuildIndexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.GenreSlugs = splitCSV(input.Genres)
	params.Tags = splitCSV(input.Tags)
	params.Status = input.Status
	params.MinRating = input.MinRating
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight

	result, err := s.services.Search.Search(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleRebuildIndex(ctx context.Context, input *AuthenticatedInput) (*RebuildIndexOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil || !user.IsRoot {
		return nil, huma.Error403Forbidden("only the root user can rebuild the index")
	}

	indexed, err := s.services.Search.RebuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	return &RebuildIndexOutput{Body: RebuildIndexResponse{Indexed: indexed}}, nil
}
