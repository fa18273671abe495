package domain

// ReadingStats is the derived gamification snapshot for one user. Nothing in
// here is stored - it is recomputed from books and reading events on demand.
type ReadingStats struct {
	XP                int            `json:"xp"`
	Level             int            `json:"level"`
	XPIntoLevel       int            `json:"xp_into_level"`
	XPForNextLevel    int            `json:"xp_for_next_level"`
	CurrentStreakDays int            `json:"current_streak_days"`
	LongestStreakDays int            `json:"longest_streak_days"`
	BooksFinished     int            `json:"books_finished"`
	TotalReadingDays  int            `json:"total_reading_days"`
	StatusBuckets     []StatusBucket `json:"status_buckets"`
}

// StatusBucket counts the books in one reading status. Buckets are returned
// sorted most-active first (Reading, then years descending, then TBR).
type StatusBucket struct {
	Status ReadingStatus `json:"status"`
	Count  int           `json:"count"`
}
