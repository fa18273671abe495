package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/id"
)

func TestGetStatsEmptyHistory(t *testing.T) {
	s := newTestStore(t)
	svc := NewStatsService(s, nil)

	stats, err := svc.GetStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.XP)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 0, stats.XPIntoLevel)
	assert.Equal(t, 100, stats.XPForNextLevel)
	assert.Equal(t, 0, stats.CurrentStreakDays)
	assert.Equal(t, 0, stats.BooksFinished)
	assert.Empty(t, stats.StatusBuckets)
}

func TestGetStatsCountsFinishedBooksAndDays(t *testing.T) {
	s := newTestStore(t)
	books := NewBookService(s, nil)
	stats := NewStatsService(s, nil)
	ctx := context.Background()

	book, err := books.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Piranesi",
		Author: "Susanna Clarke",
		Genre:  "Fantasy",
	})
	require.NoError(t, err)

	_, err = books.FinishBook(ctx, "user-1", book.ID, 5)
	require.NoError(t, err)

	_, err = books.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Genre:  "Science Fiction",
	})
	require.NoError(t, err)

	result, err := stats.GetStats(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.BooksFinished)
	assert.Equal(t, 1, result.TotalReadingDays)
	// 1 book * 500 + 1 day * 10
	assert.Equal(t, 510, result.XP)
	assert.Equal(t, 3, result.Level)
	assert.Equal(t, 1, result.CurrentStreakDays)
	assert.Equal(t, 1, result.LongestStreakDays)

	require.Len(t, result.StatusBuckets, 2)
	// Finished year ahead of the backlog.
	assert.Equal(t, domain.StatusYear(time.Now().Year()), result.StatusBuckets[0].Status)
	assert.Equal(t, 1, result.StatusBuckets[0].Count)
	assert.Equal(t, domain.StatusToBeRead(), result.StatusBuckets[1].Status)
}

func TestGetStatsAwardsStreakBonuses(t *testing.T) {
	s := newTestStore(t)
	svc := NewStatsService(s, nil)
	ctx := context.Background()

	// Ten consecutive days ending today: weekly bonus territory.
	today := domain.CalendarDay(time.Now())
	for i := range 10 {
		event := domain.NewReadingEvent("user-1", "book-1", today.AddDate(0, 0, -i))
		event.ID = id.MustGenerate(id.PrefixEvent)
		require.NoError(t, s.CreateReadingEvent(ctx, &event))
	}

	result, err := svc.GetStats(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalReadingDays)
	assert.Equal(t, 10, result.CurrentStreakDays)
	assert.Equal(t, 10, result.LongestStreakDays)
	// 10 days * 10 XP + 100 weekly bonus
	assert.Equal(t, 200, result.XP)
}

func TestStreakRunsMergeAcrossEventLocations(t *testing.T) {
	s := newTestStore(t)
	svc := NewStatsService(s, nil)
	ctx := context.Background()

	// Events recorded from different zones round-trip through the store
	// with their own offsets. A day named twice counts once, and adjacent
	// days still chain into a single run.
	zone := time.FixedZone("", 2*60*60)
	days := []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 8, 0, 0, 0, zone),
		time.Date(2024, 3, 2, 0, 0, 0, 0, zone),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		event := domain.NewReadingEvent("user-1", "book-1", day)
		event.ID = id.MustGenerate(id.PrefixEvent)
		require.NoError(t, s.CreateReadingEvent(ctx, &event))
	}

	detail, err := svc.GetStreaks(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, detail.Runs, 1)
	assert.Equal(t, 3, detail.Runs[0].Length)
	assert.Equal(t, 3, detail.LongestStreakDays)
}

func TestGetStreaksListsRuns(t *testing.T) {
	s := newTestStore(t)
	svc := NewStatsService(s, nil)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	days := []time.Time{
		base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2),
		base.AddDate(0, 0, 10),
	}
	for _, day := range days {
		event := domain.NewReadingEvent("user-1", "book-1", day)
		event.ID = id.MustGenerate(id.PrefixEvent)
		require.NoError(t, s.CreateReadingEvent(ctx, &event))
	}

	detail, err := svc.GetStreaks(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, detail.Runs, 2)
	assert.Equal(t, 3, detail.Runs[0].Length)
	assert.Equal(t, 1, detail.Runs[1].Length)
	assert.Equal(t, 3, detail.LongestStreakDays)
	// History from 2024 earns no current streak.
	assert.Equal(t, 0, detail.CurrentStreakDays)
}
