package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

const bookPrefix = "book:"

// ErrBookNotFound is returned when a book record does not exist.
var ErrBookNotFound = ErrNotFound.WithMessage("book not found")

// SaveBookWithEvents writes an updated book record and its new reading
// events in one transaction, so a state transition either lands completely
// or not at all. The book must already exist.
func (s *Store) SaveBookWithEvents(ctx context.Context, book *domain.BookRecord, events []domain.ReadingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(bookPrefix + book.ID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		} else if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set book: %w", err)
		}

		for i := range events {
			if err := writeEvent(txn, &events[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.indexBookAsync(ctx, book)
	return nil
}

// ListBooksForOwner returns all live book records for a user, sorted most
// active status first and title ascending within a status.
func (s *Store) ListBooksForOwner(ctx context.Context, ownerID string) ([]*domain.BookRecord, error) {
	var books []*domain.BookRecord
	for book, err := range s.Books.List(ctx) {
		if err != nil {
			return nil, err
		}
		if book.OwnerID != ownerID || book.IsDeleted() {
			continue
		}
		books = append(books, book)
	}

	slices.SortFunc(books, func(a, b *domain.BookRecord) int {
		if c := b.Status.Compare(a.Status); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return books, nil
}

// indexBookAsync pushes a book into the search index without blocking the
// caller. Index failures are logged, never surfaced: search lag is tolerable,
// a failed save is not.
func (s *Store) indexBookAsync(ctx context.Context, book *domain.BookRecord) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexBook(context.WithoutCancel(ctx), book); err != nil && s.logger != nil {
			s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
		}
	}()
}

// removeBookFromIndexAsync drops a book from the search index in the
// background.
func (s *Store) removeBookFromIndexAsync(ctx context.Context, bookID string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeleteBook(context.WithoutCancel(ctx), bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
		}
	}()
}

// CreateBook stores a new book record and indexes it for search.
func (s *Store) CreateBook(ctx context.Context, book *domain.BookRecord) error {
	if err := s.Books.Create(ctx, book.ID, book); err != nil {
		return err
	}
	s.indexBookAsync(ctx, book)
	return nil
}

// UpdateBook updates a book record and reindexes it for search.
func (s *Store) UpdateBook(ctx context.Context, book *domain.BookRecord) error {
	if err := s.Books.Update(ctx, book.ID, book); err != nil {
		return err
	}
	s.indexBookAsync(ctx, book)
	return nil
}

// DeleteBook removes a book record and drops it from the search index.
// Reading events for the book are kept: history already earned still counts.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.Books.Delete(ctx, bookID); err != nil {
		return err
	}
	s.removeBookFromIndexAsync(ctx, bookID)
	return nil
}
