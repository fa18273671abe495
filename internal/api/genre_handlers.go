package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the genres in the user's library with counts, plus the built-in picker list",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGenres)
}

// === DTOs ===

// GenreResponse is one genre's presence in a library.
type GenreResponse struct {
	Name  string `json:"name" doc:"Display name"`
	Slug  string `json:"slug" doc:"URL-safe slug"`
	Count int    `json:"count" doc:"Books with this genre"`
}

// GenreListResponse contains library genres and the built-in picker list.
type GenreListResponse struct {
	Genres []GenreResponse `json:"genres" doc:"Genres used in the library, most used first"`
	Known  []string        `json:"known" doc:"Built-in genre picker list"`
}

// GenreListOutput wraps the genre list for Huma.
type GenreListOutput struct {
	Body GenreListResponse
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, input *AuthenticatedInput) (*GenreListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	summaries, err := s.services.Genre.ListGenres(ctx, userID)
	if err != nil {
		return nil, err
	}

	genres := make([]GenreResponse, 0, len(summaries))
	for _, summary := range summaries {
		genres = append(genres, GenreResponse{
			Name:  summary.Name,
			Slug:  summary.Slug,
			Count: summary.Count,
		})
	}

	return &GenreListOutput{
		Body: GenreListResponse{
			Genres: genres,
			Known:  s.services.Genre.KnownGenres(),
		},
	}, nil
}
