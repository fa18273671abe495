package domain

import (
	"slices"
	"time"
)

// ReadType is the medium a book was read in.
type ReadType string

const (
	// ReadTypePhysical is a paper copy, owned or borrowed.
	ReadTypePhysical ReadType = "Physical"
	// ReadTypeEBook is any digital text edition.
	ReadTypeEBook ReadType = "eBook"
	// ReadTypeAudiobook is an audio edition.
	ReadTypeAudiobook ReadType = "Audiobook"
)

// BookRecord represents one tracked book in a user's library.
type BookRecord struct {
	Syncable
	OwnerID       string        `json:"owner_id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Series        string        `json:"series,omitempty"` // empty = standalone
	Genre         string        `json:"genre"`
	Status        ReadingStatus `json:"status"`
	ReadType      ReadType      `json:"read_type,omitempty"`
	Rating        int           `json:"rating"` // 0-5, 0 = unrated
	DateAdded     *time.Time    `json:"date_added,omitempty"`
	DateStarted   *time.Time    `json:"date_started,omitempty"`
	DateCompleted *time.Time    `json:"date_completed,omitempty"`
	CoverID       int           `json:"cover_id"`
	Tags          []string      `json:"tags,omitempty"`
}

// EnsureGenreTag appends the record's genre to its tags unless an exact
// (case-sensitive) match is already present. Keeps tag-based browsing able to
// find every book by its genre.
func (b *BookRecord) EnsureGenreTag() {
	if b.Genre == "" {
		return
	}
	if slices.Contains(b.Tags, b.Genre) {
		return
	}
	b.Tags = append(b.Tags, b.Genre)
}

// HasTag reports whether the record carries the exact tag.
func (b *BookRecord) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// IsRated reports whether the user has rated this book.
func (b *BookRecord) IsRated() bool {
	return b.Rating > 0
}

// ClampRating normalizes a rating into the 0-5 range.
func ClampRating(rating int) int {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// State transitions. Each returns the updated copy plus any reading events to
// persist; callers apply both in one store transaction. The receiver is never
// mutated.

// StartReading moves the record into the Reading status and stamps the start
// date. Re-starting an already-reading book is a no-op apart from the events.
func (b BookRecord) StartReading(now time.Time) (BookRecord, []ReadingEvent) {
	if !b.Status.IsReading() {
		b.Status = StatusReading()
		started := CalendarDay(now)
		b.DateStarted = &started
	}
	b.Touch()
	return b, []ReadingEvent{NewReadingEvent(b.OwnerID, b.ID, now)}
}

// FinishBook moves the record into the finished-in-year status for now's
// year, stamps the completion date, and applies the rating (clamped, 0 keeps
// the existing rating).
func (b BookRecord) FinishBook(now time.Time, rating int) (BookRecord, []ReadingEvent) {
	b.Status = StatusYear(now.Year())
	completed := CalendarDay(now)
	b.DateCompleted = &completed
	if rating > 0 {
		b.Rating = ClampRating(rating)
	}
	b.Touch()
	return b, []ReadingEvent{NewReadingEvent(b.OwnerID, b.ID, now)}
}

// RecordReadDay notes that the book was read today without changing status.
// Books still in the backlog are promoted to Reading first.
func (b BookRecord) RecordReadDay(now time.Time) (BookRecord, []ReadingEvent) {
	if b.Status.Kind == StatusKindToBeRead {
		return b.StartReading(now)
	}
	b.Touch()
	return b, []ReadingEvent{NewReadingEvent(b.OwnerID, b.ID, now)}
}

// ParseReadType maps the many medium labels found in legacy CSV exports onto
// the three canonical read types. A present-but-unrecognized value falls back
// to Physical; an absent value stays unset.
func ParseReadType(raw string) ReadType {
	switch raw {
	case "":
		return ""
	case "eBook", "Owned - Apple Books", "Libby":
		return ReadTypeEBook
	case "Audiobook":
		return ReadTypeAudiobook
	default:
		// "Physical", "Owned - Physical", "Library", and anything else.
		return ReadTypePhysical
	}
}
