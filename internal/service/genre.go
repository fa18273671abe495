package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/readkeepapp/readkeep-server/internal/genre"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// GenreService summarizes the genres present in a user's library.
type GenreService struct {
	store *store.Store
}

// NewGenreService creates a new genre service.
func NewGenreService(store *store.Store) *GenreService {
	return &GenreService{store: store}
}

// GenreSummary is one genre's presence in a library.
type GenreSummary struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// ListGenres returns the genres used in the user's library with book counts,
// most used first. Books without a genre are grouped under the fallback
// display name.
func (s *GenreService) ListGenres(ctx context.Context, userID string) ([]GenreSummary, error) {
	books, err := s.store.ListBooksForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	counts := make(map[string]int)
	for _, book := range books {
		counts[genre.Display(book.Genre)]++
	}

	summaries := make([]GenreSummary, 0, len(counts))
	for name, count := range counts {
		summaries = append(summaries, GenreSummary{
			Name:  name,
			Slug:  genre.Slugify(name),
			Count: count,
		})
	}
	slices.SortFunc(summaries, func(a, b GenreSummary) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return summaries, nil
}

// KnownGenres returns the built-in genre picker list.
func (s *GenreService) KnownGenres() []string {
	return slices.Clone(genre.Known)
}
