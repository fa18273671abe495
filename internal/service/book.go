package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	domainerrors "github.com/readkeepapp/readkeep-server/internal/errors"
	"github.com/readkeepapp/readkeep-server/internal/id"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// BookService manages a user's book records and their reading state
// transitions. Transitions are computed on the domain type and persisted
// together with the reading events they emit, so streak history can never
// drift from book state.
type BookService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookRequest contains the data for adding a book to a library.
type CreateBookRequest struct {
	Title    string   `json:"title" validate:"required"`
	Author   string   `json:"author" validate:"required"`
	Series   string   `json:"series,omitempty"`
	Genre    string   `json:"genre" validate:"required"`
	ReadType string   `json:"read_type,omitempty"`
	Rating   int      `json:"rating,omitempty" validate:"gte=0,lte=5"`
	Tags     []string `json:"tags,omitempty"`
	CoverID  int      `json:"cover_id,omitempty"`
}

// UpdateBookRequest contains editable book metadata. Nil pointers leave the
// field unchanged.
type UpdateBookRequest struct {
	Title    *string   `json:"title,omitempty"`
	Author   *string   `json:"author,omitempty"`
	Series   *string   `json:"series,omitempty"`
	Genre    *string   `json:"genre,omitempty"`
	ReadType *string   `json:"read_type,omitempty"`
	Rating   *int      `json:"rating,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	CoverID  *int      `json:"cover_id,omitempty"`
}

// CreateBook adds a new book to the user's library in the to-be-read status.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, req CreateBookRequest) (*domain.BookRecord, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	added := domain.CalendarDay(now)
	book := &domain.BookRecord{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		OwnerID:   ownerID,
		Title:     req.Title,
		Author:    req.Author,
		Series:    req.Series,
		Genre:     req.Genre,
		Status:    domain.StatusToBeRead(),
		ReadType:  domain.ParseReadType(req.ReadType),
		Rating:    domain.ClampRating(req.Rating),
		Tags:      req.Tags,
		CoverID:   req.CoverID,
		DateAdded: &added,
	}
	book.InitTimestamps()
	book.EnsureGenreTag()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book added", "book_id", bookID, "title", book.Title)
	}

	return book, nil
}

// GetBook retrieves a book, enforcing ownership.
func (s *BookService) GetBook(ctx context.Context, ownerID, bookID string) (*domain.BookRecord, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	// A foreign book looks identical to a missing one.
	if book.OwnerID != ownerID || book.IsDeleted() {
		return nil, domainerrors.NotFound("book not found")
	}

	return book, nil
}

// ListBooks returns the user's library, most active status first.
func (s *BookService) ListBooks(ctx context.Context, ownerID string) ([]*domain.BookRecord, error) {
	books, err := s.store.ListBooksForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook applies metadata edits to a book. Status is never edited
// directly; use the transition methods.
func (s *BookService) UpdateBook(ctx context.Context, ownerID, bookID string, req UpdateBookRequest) (*domain.BookRecord, error) {
	book, err := s.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		book.Title = *req.Title
	}
	if req.Author != nil {
		if *req.Author == "" {
			return nil, domainerrors.Validation("author cannot be empty")
		}
		book.Author = *req.Author
	}
	if req.Series != nil {
		book.Series = *req.Series
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.ReadType != nil {
		book.ReadType = domain.ParseReadType(*req.ReadType)
	}
	if req.Rating != nil {
		book.Rating = domain.ClampRating(*req.Rating)
	}
	if req.Tags != nil {
		book.Tags = *req.Tags
	}
	if req.CoverID != nil {
		book.CoverID = *req.CoverID
	}
	book.EnsureGenreTag()
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// DeleteBook removes a book from the library. Reading events earned through
// the book are kept.
func (s *BookService) DeleteBook(ctx context.Context, ownerID, bookID string) error {
	if _, err := s.GetBook(ctx, ownerID, bookID); err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID)
	}

	return nil
}

// StartReading moves a book into the Reading status and logs a reading day.
func (s *BookService) StartReading(ctx context.Context, ownerID, bookID string) (*domain.BookRecord, error) {
	return s.applyTransition(ctx, ownerID, bookID, func(book domain.BookRecord, now time.Time) (domain.BookRecord, []domain.ReadingEvent) {
		return book.StartReading(now)
	})
}

// FinishBook marks a book finished in the current year, applying the rating
// if one is given, and logs a reading day.
func (s *BookService) FinishBook(ctx context.Context, ownerID, bookID string, rating int) (*domain.BookRecord, error) {
	if rating < 0 || rating > 5 {
		return nil, domainerrors.Validation("rating must be between 0 and 5")
	}
	return s.applyTransition(ctx, ownerID, bookID, func(book domain.BookRecord, now time.Time) (domain.BookRecord, []domain.ReadingEvent) {
		return book.FinishBook(now, rating)
	})
}

// RecordReadDay logs that the user read this book today. Backlog books are
// promoted to Reading.
func (s *BookService) RecordReadDay(ctx context.Context, ownerID, bookID string) (*domain.BookRecord, error) {
	return s.applyTransition(ctx, ownerID, bookID, func(book domain.BookRecord, now time.Time) (domain.BookRecord, []domain.ReadingEvent) {
		return book.RecordReadDay(now)
	})
}

// applyTransition runs a state transition on a book and persists the updated
// record together with the reading events it emitted, in one transaction.
func (s *BookService) applyTransition(
	ctx context.Context,
	ownerID, bookID string,
	transition func(domain.BookRecord, time.Time) (domain.BookRecord, []domain.ReadingEvent),
) (*domain.BookRecord, error) {
	book, err := s.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	updated, events := transition(*book, time.Now())
	for i := range events {
		eventID, err := id.Generate(id.PrefixEvent)
		if err != nil {
			return nil, fmt.Errorf("generate event ID: %w", err)
		}
		events[i].ID = eventID
	}

	if err := s.store.SaveBookWithEvents(ctx, &updated, events); err != nil {
		return nil, fmt.Errorf("save transition: %w", err)
	}

	return &updated, nil
}
