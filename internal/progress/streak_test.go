package progress

import (
	"encoding/json/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeRunsEmpty(t *testing.T) {
	assert.Nil(t, ComputeRuns(nil))
	assert.Nil(t, ComputeRuns([]time.Time{}))
}

func TestComputeRunsSingleDay(t *testing.T) {
	runs := ComputeRuns([]time.Time{day(2026, 1, 5)})
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Start: day(2026, 1, 5), End: day(2026, 1, 5), Length: 1}, runs[0])
}

func TestComputeRunsGrouping(t *testing.T) {
	dates := []time.Time{
		day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3),
		day(2026, 1, 5),
		day(2026, 1, 10), day(2026, 1, 11),
	}
	runs := ComputeRuns(dates)
	require.Len(t, runs, 3)
	assert.Equal(t, 3, runs[0].Length)
	assert.Equal(t, 1, runs[1].Length)
	assert.Equal(t, 2, runs[2].Length)
	assert.Equal(t, day(2026, 1, 10), runs[2].Start)
	assert.Equal(t, day(2026, 1, 11), runs[2].End)
}

func TestComputeRunsDedupesAndSorts(t *testing.T) {
	dates := []time.Time{
		// Out of order, duplicated, with times of day.
		time.Date(2026, 2, 2, 23, 30, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 2, 6, 15, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
	}
	runs := ComputeRuns(dates)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Length)
}

func TestComputeRunsMonthBoundary(t *testing.T) {
	runs := ComputeRuns([]time.Time{day(2026, 1, 31), day(2026, 2, 1)})
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Length)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, StreakNone, Classify(Run{Length: 1}))
	assert.Equal(t, StreakNone, Classify(Run{Length: 7}))
	assert.Equal(t, StreakWeekly, Classify(Run{Length: 8}))
	assert.Equal(t, StreakWeekly, Classify(Run{Length: 30}))
	assert.Equal(t, StreakMonthly, Classify(Run{Length: 31}))
	assert.Equal(t, StreakMonthly, Classify(Run{Length: 365}))
}

func TestCurrentStreakLength(t *testing.T) {
	today := day(2026, 3, 10)

	// Read today and the two days before.
	dates := []time.Time{day(2026, 3, 8), day(2026, 3, 9), day(2026, 3, 10)}
	assert.Equal(t, 3, CurrentStreakLength(dates, today))

	// Nothing today: streak is over even with history.
	assert.Equal(t, 0, CurrentStreakLength(dates, day(2026, 3, 12)))

	// A gap stops the walk.
	gapped := []time.Time{day(2026, 3, 6), day(2026, 3, 9), day(2026, 3, 10)}
	assert.Equal(t, 2, CurrentStreakLength(gapped, today))

	// Empty history.
	assert.Equal(t, 0, CurrentStreakLength(nil, today))
}

func TestComputeRunsChainsAcrossLocations(t *testing.T) {
	// The same calendar day named in two locations counts once, and
	// adjacent days in different locations still chain into one run.
	zone := time.FixedZone("", 2*60*60)
	dates := []time.Time{
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 8, 0, 0, 0, zone),
		time.Date(2026, 3, 2, 0, 0, 0, 0, zone),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	runs := ComputeRuns(dates)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Length)
}

func TestCurrentStreakLengthAfterJSONRoundTrip(t *testing.T) {
	// Stored days come back from the codec with whatever location the
	// serialized offset produced. The streak walk must still find them
	// no matter which location "today" carries.
	zone := time.FixedZone("", 2*60*60)
	stored, err := json.Marshal(domain.NewReadingEvent("user-1", "book-1",
		time.Date(2026, 3, 10, 0, 0, 0, 0, zone)))
	require.NoError(t, err)

	var event domain.ReadingEvent
	require.NoError(t, json.Unmarshal(stored, &event))

	today := time.Date(2026, 3, 10, 9, 30, 0, 0, zone)
	assert.Equal(t, 1, CurrentStreakLength([]time.Time{event.Day}, today))
	assert.Equal(t, 1, CurrentStreakLength([]time.Time{event.Day},
		time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)))
}

func TestLongestRun(t *testing.T) {
	assert.Equal(t, 0, LongestRun(nil))
	runs := ComputeRuns([]time.Time{
		day(2026, 1, 1), day(2026, 1, 2),
		day(2026, 1, 9), day(2026, 1, 10), day(2026, 1, 11),
	})
	assert.Equal(t, 3, LongestRun(runs))
}
