package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the user's library, most active status first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add a book",
		Description: "Adds a book to the library in the to-be-read status",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get a book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update a book",
		Description: "Edits book metadata. Status changes go through the transition endpoints.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete a book",
		Description: "Removes a book from the library. Reading history is kept.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "startReading",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/start",
		Summary:     "Start reading",
		Description: "Moves the book into the Reading status and logs a reading day",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleStartReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/finish",
		Summary:     "Finish a book",
		Description: "Marks the book finished in the current year, optionally rating it",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFinishBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordReadDay",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/read",
		Summary:     "Log a reading day",
		Description: "Records that the book was read today. Backlog books are promoted to Reading.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordReadDay)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID            string     `json:"id" doc:"Book ID"`
	Title         string     `json:"title" doc:"Book title"`
	Author        string     `json:"author" doc:"Author name"`
	Series        string     `json:"series,omitempty" doc:"Series name, empty for standalone"`
	Genre         string     `json:"genre" doc:"Genre"`
	Status        string     `json:"status" doc:"Reading status: TBR, Reading, or a year"`
	ReadType      string     `json:"read_type,omitempty" doc:"Physical, eBook, or Audiobook"`
	Rating        int        `json:"rating" doc:"Rating 0-5, 0 is unrated"`
	DateAdded     *time.Time `json:"date_added,omitempty" doc:"Date the book was added"`
	DateStarted   *time.Time `json:"date_started,omitempty" doc:"Date reading started"`
	DateCompleted *time.Time `json:"date_completed,omitempty" doc:"Date the book was finished"`
	CoverID       int        `json:"cover_id" doc:"Cover art identifier"`
	Tags          []string   `json:"tags,omitempty" doc:"Tags"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time  `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListResponse contains the user's library.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Books in the library"`
	Total int            `json:"total" doc:"Number of books"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title    string   `json:"title" validate:"required,max=500" doc:"Book title"`
	Author   string   `json:"author" validate:"required,max=200" doc:"Author name"`
	Series   string   `json:"series,omitempty" validate:"omitempty,max=200" doc:"Series name"`
	Genre    string   `json:"genre" validate:"required,max=100" doc:"Genre"`
	ReadType string   `json:"read_type,omitempty" doc:"Physical, eBook, or Audiobook"`
	Rating   int      `json:"rating,omitempty" validate:"gte=0,lte=5" doc:"Rating 0-5"`
	Tags     []string `json:"tags,omitempty" doc:"Tags"`
	CoverID  int      `json:"cover_id,omitempty" doc:"Cover art identifier"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for editing a book. Absent fields are
// left unchanged.
type UpdateBookRequest struct {
	Title    *string   `json:"title,omitempty" doc:"New title"`
	Author   *string   `json:"author,omitempty" doc:"New author"`
	Series   *string   `json:"series,omitempty" doc:"New series"`
	Genre    *string   `json:"genre,omitempty" doc:"New genre"`
	ReadType *string   `json:"read_type,omitempty" doc:"New read type"`
	Rating   *int      `json:"rating,omitempty" doc:"New rating 0-5"`
	Tags     *[]string `json:"tags,omitempty" doc:"Replacement tag list"`
	CoverID  *int      `json:"cover_id,omitempty" doc:"New cover art identifier"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Book ID"`
}

// FinishBookRequest is the request body for finishing a book.
type FinishBookRequest struct {
	Rating int `json:"rating,omitempty" validate:"gte=0,lte=5" doc:"Rating 0-5, 0 keeps the existing rating"`
}

// FinishBookInput wraps the finish request for Huma.
type FinishBookInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Book ID"`
	Body          FinishBookRequest
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *AuthenticatedInput) (*BookListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, mapBookResponse(book))
	}

	return &BookListOutput{
		Body: BookListResponse{
			Books: responses,
			Total: len(responses),
		},
	}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, service.CreateBookRequest{
		Title:    input.Body.Title,
		Author:   input.Body.Author,
		Series:   input.Body.Series,
		Genre:    input.Body.Genre,
		ReadType: input.Body.ReadType,
		Rating:   input.Body.Rating,
		Tags:     input.Body.Tags,
		CoverID:  input.Body.CoverID,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, service.UpdateBookRequest{
		Title:    input.Body.Title,
		Author:   input.Body.Author,
		Series:   input.Body.Series,
		Genre:    input.Body.Genre,
		ReadType: input.Body.ReadType,
		Rating:   input.Body.Rating,
		Tags:     input.Body.Tags,
		CoverID:  input.Body.CoverID,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleStartReading(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.StartReading(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleFinishBook(ctx context.Context, input *FinishBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.FinishBook(ctx, userID, input.ID, input.Body.Rating)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleRecordReadDay(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.RecordReadDay(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

// === Mappers ===

func mapBookResponse(book *domain.BookRecord) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Series:        book.Series,
		Genre:         book.Genre,
		Status:        book.Status.String(),
		ReadType:      string(book.ReadType),
		Rating:        book.Rating,
		DateAdded:     book.DateAdded,
		DateStarted:   book.DateStarted,
		DateCompleted: book.DateCompleted,
		CoverID:       book.CoverID,
		Tags:          book.Tags,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}
