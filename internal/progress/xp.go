package progress

import "math"

// XP awards.
const (
	xpPerBookFinished = 500
	xpPerReadingDay   = 10
	xpBonusMonthly    = 1000
	xpBonusWeekly     = 100
)

// XPForLevel returns the total XP needed to reach the given level.
// Level 1 is free; each level up costs 100 more XP than the last
// (quadratic total: 50*l*l - 50*l).
func XPForLevel(level int) int {
	if level < 1 {
		return 0
	}
	return 50*level*level - 50*level
}

// LevelForXP returns the level reached with the given total XP, the inverse
// of XPForLevel: LevelForXP(XPForLevel(l)) == l for every l >= 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor((50 + math.Sqrt(float64(2500+200*xp))) / 100))
}

// StreakBonus returns the one-time XP award for a run's tier.
func StreakBonus(kind StreakKind) int {
	switch kind {
	case StreakMonthly:
		return xpBonusMonthly
	case StreakWeekly:
		return xpBonusWeekly
	default:
		return 0
	}
}

// ComputeXP totals a user's XP from finished books, distinct reading days,
// and streak bonuses. Negative counts clamp to zero.
func ComputeXP(booksFinished, readingDays int, runs []Run) int {
	if booksFinished < 0 {
		booksFinished = 0
	}
	if readingDays < 0 {
		readingDays = 0
	}
	xp := booksFinished*xpPerBookFinished + readingDays*xpPerReadingDay
	for _, run := range runs {
		xp += StreakBonus(Classify(run))
	}
	return xp
}
