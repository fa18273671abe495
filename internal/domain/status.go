// Package domain contains the core business entities and domain logic for the ReadKeep reading tracker.
package domain

import (
	"cmp"
	"strconv"
)

// StatusKind discriminates the ReadingStatus variants.
type StatusKind int

// ReadingStatus variants, ordered from least to most "active".
const (
	StatusKindToBeRead StatusKind = iota
	StatusKindYear
	StatusKindReading
)

// Status string encodings. These are a compatibility surface with exported
// CSV data, so they must never change.
const (
	statusToBeReadString = "TBR"
	statusReadingString  = "Reading"
)

// ReadingStatus classifies where a book sits in the reading lifecycle: an
// unread backlog entry ("TBR"), actively being read ("Reading"), or finished
// in a particular calendar year.
//
// Statuses are totally ordered: Reading sorts above every year, every year
// sorts above ToBeRead, and years sort by value. Equal statuses (including
// ToBeRead against itself) compare as equal, never as mutually greater.
type ReadingStatus struct {
	Kind StatusKind `json:"-"`
	Year int        `json:"-"`
}

// Status constructors.

// StatusToBeRead returns the backlog status.
func StatusToBeRead() ReadingStatus {
	return ReadingStatus{Kind: StatusKindToBeRead}
}

// StatusReading returns the currently-reading status.
func StatusReading() ReadingStatus {
	return ReadingStatus{Kind: StatusKindReading}
}

// StatusYear returns a finished-in-year status.
func StatusYear(year int) ReadingStatus {
	return ReadingStatus{Kind: StatusKindYear, Year: year}
}

// ParseReadingStatus parses the persisted string form of a status.
// Returns ok=false for anything outside the vocabulary ("TBR", "Reading",
// or a decimal year); the caller decides the default, it is not an error.
func ParseReadingStatus(raw string) (ReadingStatus, bool) {
	switch raw {
	case statusToBeReadString:
		return StatusToBeRead(), true
	case statusReadingString:
		return StatusReading(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return ReadingStatus{}, false
	}
	return StatusYear(year), true
}

// String returns the persisted encoding, the exact inverse of ParseReadingStatus.
func (s ReadingStatus) String() string {
	switch s.Kind {
	case StatusKindReading:
		return statusReadingString
	case StatusKindYear:
		return strconv.Itoa(s.Year)
	default:
		return statusToBeReadString
	}
}

// Compare implements the total order. Returns -1 if s sorts below other,
// 0 if equal, +1 if above.
func (s ReadingStatus) Compare(other ReadingStatus) int {
	if c := cmp.Compare(s.rank(), other.rank()); c != 0 {
		return c
	}
	if s.Kind == StatusKindYear {
		return cmp.Compare(s.Year, other.Year)
	}
	// Same sentinel kind: explicitly equal.
	return 0
}

// After reports whether s sorts strictly above other.
func (s ReadingStatus) After(other ReadingStatus) bool {
	return s.Compare(other) > 0
}

// IsReading reports whether the book is actively being read.
func (s ReadingStatus) IsReading() bool {
	return s.Kind == StatusKindReading
}

// IsFinished reports whether the book was finished in some year.
func (s ReadingStatus) IsFinished() bool {
	return s.Kind == StatusKindYear
}

func (s ReadingStatus) rank() int {
	return int(s.Kind)
}

// MarshalText encodes the status using its persisted string form, so JSON
// documents carry "TBR", "Reading", or "2023" rather than a struct.
func (s ReadingStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the persisted string form. Unknown strings are
// rejected here (API input should be strict); lossy CSV ingestion goes
// through ParseReadingStatus and substitutes the backlog default instead.
func (s *ReadingStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseReadingStatus(string(text))
	if !ok {
		return &StatusParseError{Raw: string(text)}
	}
	*s = parsed
	return nil
}

// StatusParseError reports a status string outside the known vocabulary.
type StatusParseError struct {
	Raw string
}

func (e *StatusParseError) Error() string {
	return "unknown reading status " + strconv.Quote(e.Raw)
}
