// Package ingest converts legacy CSV export rows into validated book records.
// Parsing is best-effort by design: a row either yields a usable record or a
// coded error, and batch ingestion drops bad rows rather than aborting the
// import.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

// Recognized column names in the legacy export format.
const (
	FieldTitle         = "Title"
	FieldAuthor        = "Author"
	FieldSeries        = "Series"
	FieldGenre         = "Genre"
	FieldRating        = "Rating"
	FieldTags          = "Tags"
	FieldDateAdded     = "DateAdded"
	FieldDateCompleted = "DateCompleted"
	FieldDateStarted   = "DateStarted"
	FieldYear          = "Year"
	FieldReadType      = "ReadType"
	FieldCoverID       = "CoverID"
)

// DateLayout is the pinned date format for imported rows: month/day/year
// with no leading zeros and no time component.
const DateLayout = "1/2/2006"

// MissingFieldError reports a required column that a row lacks. Title and
// author must be present and non-empty; genre only needs the column to exist
// (an empty genre string is accepted).
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "record missing required field " + strconv.Quote(e.Field)
}

// Is matches any MissingFieldError for the same field, so the sentinels below
// work with errors.Is.
func (e *MissingFieldError) Is(target error) bool {
	t, ok := target.(*MissingFieldError)
	return ok && t.Field == e.Field
}

// Sentinel parse errors. A missing author gets its own error kind rather than
// reusing the title error.
var (
	ErrMissingTitle  = &MissingFieldError{Field: FieldTitle}
	ErrMissingAuthor = &MissingFieldError{Field: FieldAuthor}
	ErrMissingGenre  = &MissingFieldError{Field: FieldGenre}
)

// Parse builds a BookRecord from one row's field map.
//
// Title and author are required and must be non-empty. The genre column must
// exist but may be empty. Everything else degrades to a default instead of
// failing: unparsable ratings and cover IDs become 0, unparsable dates become
// nil, an unknown status string becomes the to-be-read backlog.
func Parse(fields map[string]string) (*domain.BookRecord, error) {
	if fields[FieldTitle] == "" {
		return nil, ErrMissingTitle
	}
	if fields[FieldAuthor] == "" {
		return nil, ErrMissingAuthor
	}
	genre, ok := fields[FieldGenre]
	if !ok {
		return nil, ErrMissingGenre
	}

	status, ok := domain.ParseReadingStatus(fields[FieldYear])
	if !ok {
		status = domain.StatusToBeRead()
	}

	record := &domain.BookRecord{
		Title:         fields[FieldTitle],
		Author:        fields[FieldAuthor],
		Series:        fields[FieldSeries],
		Genre:         genre,
		Status:        status,
		ReadType:      domain.ParseReadType(fields[FieldReadType]),
		Rating:        parseRating(fields[FieldRating]),
		CoverID:       parseCoverID(fields[FieldCoverID]),
		Tags:          parseTags(fields[FieldTags]),
		DateAdded:     parseDate(fields[FieldDateAdded]),
		DateStarted:   parseDate(fields[FieldDateStarted]),
		DateCompleted: parseDate(fields[FieldDateCompleted]),
	}
	record.EnsureGenreTag()
	return record, nil
}

// ParseAll parses every row, silently skipping ones that fail validation.
// Output order follows input order.
func ParseAll(rows []map[string]string) []*domain.BookRecord {
	records := make([]*domain.BookRecord, 0, len(rows))
	for _, row := range rows {
		record, err := Parse(row)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

func parseRating(raw string) int {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return domain.ClampRating(int(value))
}

func parseCoverID(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// parseTags splits a comma-separated tag list, preserving insertion order and
// suppressing duplicates. Whitespace around tags is trimmed; empty entries
// are dropped.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		// Bad dates are dropped, not surfaced.
		return nil
	}
	return &parsed
}
