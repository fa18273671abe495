// Package progress derives gamification metrics (streaks, XP, levels) from a
// user's reading-day history. Everything here is pure: inputs in, numbers
// out, no clocks and no storage.
package progress

import (
	"slices"
	"time"
)

// dayFormat keys day sets. Timestamps loaded from storage carry whatever
// location the JSON codec produced, so membership checks go through this
// string form instead of time.Time map keys, which compare the location
// pointer too.
const dayFormat = "2006-01-02"

// dayOf collapses a timestamp to its calendar day at UTC midnight. All day
// arithmetic in this package runs on these normalized values, so days that
// arrive in different locations still compare and chain correctly.
func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StreakKind classifies a run of consecutive reading days.
type StreakKind string

const (
	// StreakNone is a run too short to earn a bonus.
	StreakNone StreakKind = "none"
	// StreakWeekly is a run longer than a week.
	StreakWeekly StreakKind = "weekly"
	// StreakMonthly is a run longer than a month.
	StreakMonthly StreakKind = "monthly"
)

// Run is one maximal stretch of consecutive calendar days with reading
// activity.
type Run struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length int       `json:"length"`
}

// ComputeRuns groups reading days into maximal consecutive-day runs, oldest
// first. Input timestamps are normalized to calendar days and deduplicated,
// so several reads on the same day count once. Consecutiveness is judged
// against the day before the one under scan, never against the current
// wall-clock day.
func ComputeRuns(dates []time.Time) []Run {
	days := dedupeDays(dates)
	if len(days) == 0 {
		return nil
	}

	var runs []Run
	current := Run{Start: days[0], End: days[0], Length: 1}
	for _, day := range days[1:] {
		if day.Equal(current.End.AddDate(0, 0, 1)) {
			current.End = day
			current.Length++
			continue
		}
		runs = append(runs, current)
		current = Run{Start: day, End: day, Length: 1}
	}
	return append(runs, current)
}

// Classify assigns the bonus tier for a run: longer than 30 days is monthly,
// longer than 7 is weekly, anything shorter earns nothing.
func Classify(run Run) StreakKind {
	switch {
	case run.Length > 30:
		return StreakMonthly
	case run.Length > 7:
		return StreakWeekly
	default:
		return StreakNone
	}
}

// CurrentStreakLength counts consecutive reading days ending at today,
// walking backwards until the first day with no activity. A today with no
// activity means no current streak.
func CurrentStreakLength(dates []time.Time, today time.Time) int {
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		seen[d.Format(dayFormat)] = struct{}{}
	}

	length := 0
	for day := dayOf(today); ; day = day.AddDate(0, 0, -1) {
		if _, ok := seen[day.Format(dayFormat)]; !ok {
			return length
		}
		length++
	}
}

// LongestRun returns the length of the longest run, 0 when there are none.
func LongestRun(runs []Run) int {
	longest := 0
	for _, r := range runs {
		if r.Length > longest {
			longest = r.Length
		}
	}
	return longest
}

// dedupeDays normalizes timestamps to UTC-midnight calendar days, drops
// duplicates, and sorts ascending. Two timestamps naming the same calendar
// day in different locations collapse to one entry.
func dedupeDays(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	unique := make(map[string]time.Time, len(dates))
	for _, d := range dates {
		day := dayOf(d)
		unique[day.Format(dayFormat)] = day
	}
	days := make([]time.Time, 0, len(unique))
	for _, d := range unique {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}
