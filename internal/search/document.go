// Package search provides full-text search over book records using Bleve:
// title, author, and series matching with fuzzy and prefix fallbacks, genre
// and tag filtering, and per-owner scoping.
package search

import (
	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/genre"
)

// SearchDocument is the document structure for the Bleve index, one per book
// record. Fields are flattened and pre-slugged so the index never needs the
// store at query time.
type SearchDocument struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"` // Scopes every query to one user's shelf

	Title  string `json:"title"`
	Author string `json:"author"`
	Series string `json:"series,omitempty"`

	// Exact-match fields
	GenreSlug string   `json:"genre_slug,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Status    string   `json:"status"` // "TBR", "Reading", or a year string
	ReadType  string   `json:"read_type,omitempty"`

	// Numeric fields for range queries and sorting
	Rating    int   `json:"rating,omitempty"`
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our mapping
// uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"title":      d.Title,
		"author":     d.Author,
		"status":     d.Status,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Series != "" {
		m["series"] = d.Series
	}
	if d.GenreSlug != "" {
		m["genre_slug"] = d.GenreSlug
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.ReadType != "" {
		m["read_type"] = d.ReadType
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// BookToSearchDocument converts a book record to a SearchDocument.
func BookToSearchDocument(book *domain.BookRecord) *SearchDocument {
	return &SearchDocument{
		ID:        book.ID,
		OwnerID:   book.OwnerID,
		Title:     book.Title,
		Author:    book.Author,
		Series:    book.Series,
		GenreSlug: genre.Slugify(book.Genre),
		Tags:      book.Tags,
		Status:    book.Status.String(),
		ReadType:  string(book.ReadType),
		Rating:    book.Rating,
		CreatedAt: book.CreatedAt.UnixMilli(),
		UpdatedAt: book.UpdatedAt.UnixMilli(),
	}
}
