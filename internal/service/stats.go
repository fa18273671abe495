package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/progress"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// StatsService derives gamification stats (XP, levels, streaks) from a
// user's books and reading events. Nothing is cached or stored: stats are
// recomputed from the event history on every request, so they can never go
// stale or drift.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// GetStats computes the full stats snapshot for a user.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	books, err := s.store.ListBooksForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	days, err := s.store.GetReadingDaysForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get reading days: %w", err)
	}

	booksFinished := 0
	for _, book := range books {
		if book.Status.IsFinished() {
			booksFinished++
		}
	}

	runs := progress.ComputeRuns(days)
	xp := progress.ComputeXP(booksFinished, len(days), runs)
	level := progress.LevelForXP(xp)

	return &domain.ReadingStats{
		XP:                xp,
		Level:             level,
		XPIntoLevel:       xp - progress.XPForLevel(level),
		XPForNextLevel:    progress.XPForLevel(level+1) - progress.XPForLevel(level),
		CurrentStreakDays: progress.CurrentStreakLength(days, time.Now()),
		LongestStreakDays: progress.LongestRun(runs),
		BooksFinished:     booksFinished,
		TotalReadingDays:  len(days),
		StatusBuckets:     statusBuckets(books),
	}, nil
}

// StreakDetail exposes the raw run history behind the streak numbers.
type StreakDetail struct {
	Runs              []progress.Run `json:"runs"`
	CurrentStreakDays int            `json:"current_streak_days"`
	LongestStreakDays int            `json:"longest_streak_days"`
}

// GetStreaks returns every consecutive-day run in the user's history,
// oldest first, with each run's bonus tier already judged.
func (s *StatsService) GetStreaks(ctx context.Context, userID string) (*StreakDetail, error) {
	days, err := s.store.GetReadingDaysForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get reading days: %w", err)
	}

	runs := progress.ComputeRuns(days)
	return &StreakDetail{
		Runs:              runs,
		CurrentStreakDays: progress.CurrentStreakLength(days, time.Now()),
		LongestStreakDays: progress.LongestRun(runs),
	}, nil
}

// statusBuckets counts books per reading status, sorted most active first
// (Reading, then finished years descending, then the backlog).
func statusBuckets(books []*domain.BookRecord) []domain.StatusBucket {
	counts := make(map[domain.ReadingStatus]int)
	for _, book := range books {
		counts[book.Status]++
	}

	buckets := make([]domain.StatusBucket, 0, len(counts))
	for status, count := range counts {
		buckets = append(buckets, domain.StatusBucket{Status: status, Count: count})
	}
	slices.SortFunc(buckets, func(a, b domain.StatusBucket) int {
		return b.Status.Compare(a.Status)
	})
	return buckets
}
