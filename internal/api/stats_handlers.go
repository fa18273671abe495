package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get reading stats",
		Description: "Returns XP, level, streaks, and status breakdown, derived from reading history",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStreaks",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/streaks",
		Summary:     "Get streak history",
		Description: "Returns every consecutive-day reading run, oldest first",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStreaks)
}

// === DTOs ===

// StatusBucketResponse counts the books in one reading status.
type StatusBucketResponse struct {
	Status string `json:"status" doc:"Reading status: TBR, Reading, or a year"`
	Count  int    `json:"count" doc:"Number of books in this status"`
}

// StatsResponse contains a user's derived reading stats.
type StatsResponse struct {
	XP                int                    `json:"xp" doc:"Total experience points"`
	Level             int                    `json:"level" doc:"Current level"`
	XPIntoLevel       int                    `json:"xp_into_level" doc:"XP earned within the current level"`
	XPForNextLevel    int                    `json:"xp_for_next_level" doc:"XP needed to complete the current level"`
	CurrentStreakDays int                    `json:"current_streak_days" doc:"Length of the streak ending today or yesterday"`
	LongestStreakDays int                    `json:"longest_streak_days" doc:"Longest streak ever"`
	BooksFinished     int                    `json:"books_finished" doc:"Books finished across all years"`
	TotalReadingDays  int                    `json:"total_reading_days" doc:"Distinct days with reading activity"`
	StatusBuckets     []StatusBucketResponse `json:"status_buckets" doc:"Book counts per status, most active first"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

// RunResponse describes one consecutive-day reading run.
type RunResponse struct {
	Start  time.Time `json:"start" doc:"First day of the run"`
	End    time.Time `json:"end" doc:"Last day of the run"`
	Length int       `json:"length" doc:"Run length in days"`
}

// StreaksResponse contains the full run history behind the streak numbers.
type StreaksResponse struct {
	Runs              []RunResponse `json:"runs" doc:"All runs, oldest first"`
	CurrentStreakDays int           `json:"current_streak_days" doc:"Length of the active streak"`
	LongestStreakDays int           `json:"longest_streak_days" doc:"Longest streak ever"`
}

// StreaksOutput wraps the streaks response for Huma.
type StreaksOutput struct {
	Body StreaksResponse
}

// === Handlers ===

func (s *Server) handleGetStats(ctx context.Context, input *AuthenticatedInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	buckets := make([]StatusBucketResponse, 0, len(stats.StatusBuckets))
	for _, bucket := range stats.StatusBuckets {
		buckets = append(buckets, StatusBucketResponse{
			Status: bucket.Status.String(),
			Count:  bucket.Count,
		})
	}

	return &StatsOutput{
		Body: StatsResponse{
			XP:                stats.XP,
			Level:             stats.Level,
			XPIntoLevel:       stats.XPIntoLevel,
			XPForNextLevel:    stats.XPForNextLevel,
			CurrentStreakDays: stats.CurrentStreakDays,
			LongestStreakDays: stats.LongestStreakDays,
			BooksFinished:     stats.BooksFinished,
			TotalReadingDays:  stats.TotalReadingDays,
			StatusBuckets:     buckets,
		},
	}, nil
}

func (s *Server) handleGetStreaks(ctx context.Context, input *AuthenticatedInput) (*StreaksOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Stats.GetStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}

	runs := make([]RunResponse, 0, len(detail.Runs))
	for _, run := range detail.Runs {
		runs = append(runs, RunResponse{
			Start:  run.Start,
			End:    run.End,
			Length: run.Length,
		})
	}

	return &StreaksOutput{
		Body: StreaksResponse{
			Runs:              runs,
			CurrentStreakDays: detail.CurrentStreakDays,
			LongestStreakDays: detail.LongestStreakDays,
		},
	}, nil
}
