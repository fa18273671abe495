package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	domainerrors "github.com/readkeepapp/readkeep-server/internal/errors"
	"github.com/readkeepapp/readkeep-server/internal/search"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// SearchService exposes full-text search over a user's library and keeps the
// index in sync with store changes. It implements store.SearchIndexer.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// IndexBook adds or updates a book in the search index.
func (s *SearchService) IndexBook(_ context.Context, book *domain.BookRecord) error {
	return s.index.IndexDocument(search.BookToSearchDocument(book))
}

// DeleteBook removes a book from the search index.
func (s *SearchService) DeleteBook(_ context.Context, bookID string) error {
	return s.index.DeleteDocument(bookID)
}

// Search runs a query scoped to the given owner's library.
func (s *SearchService) Search(ctx context.Context, ownerID string, params search.SearchParams) (*search.SearchResult, error) {
	if ownerID == "" {
		return nil, domainerrors.Validation("owner is required for search")
	}
	params.OwnerID = ownerID

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildIndex drops the search index and reindexes every live book in the
// store. Used after mapping upgrades and for recovery.
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.SearchDocument
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("list books: %w", err)
		}
		if book.IsDeleted() {
			continue
		}
		docs = append(docs, search.BookToSearchDocument(book))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("reindex books: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Search index rebuilt", "documents", len(docs))
	}

	return len(docs), nil
}
