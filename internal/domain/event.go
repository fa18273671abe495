package domain

import "time"

// ReadingEvent is the atomic, immutable record of reading activity: one user
// read one book on one calendar day. Events are append-only - streaks and XP
// derive from them.
type ReadingEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Day       time.Time `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarDay truncates a time to its calendar day (midnight, same location).
// All streak and event math works at this granularity - time of day never
// matters.
func CalendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// NewReadingEvent creates an event for the given day, normalized to calendar
// day granularity.
func NewReadingEvent(userID, bookID string, day time.Time) ReadingEvent {
	return ReadingEvent{
		UserID:    userID,
		BookID:    bookID,
		Day:       CalendarDay(day),
		CreatedAt: time.Now(),
	}
}

// DayKey returns the day formatted as yyyy-mm-dd, used for store indexes and
// deduplication.
func (e ReadingEvent) DayKey() string {
	return e.Day.Format("2006-01-02")
}
