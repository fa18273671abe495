package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/id"
	"github.com/readkeepapp/readkeep-server/internal/ingest"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// ImportService loads legacy CSV exports into a user's library. Rows that
// fail validation are skipped and reported, never fatal: a half-good export
// still imports its good half.
type ImportService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store *store.Store, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:  store,
		logger: logger,
	}
}

// ImportResult summarizes one import run. JobID ties log lines from the
// same run together when several imports land at once.
type ImportResult struct {
	JobID    string   `json:"job_id"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV reads a CSV export and creates a book record for every valid
// row, attributed to the given owner. Row order is preserved.
func (s *ImportService) ImportCSV(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	rows, err := ingest.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("read import table: %w", err)
	}

	result := &ImportResult{JobID: uuid.NewString()}
	now := time.Now()
	for i, row := range rows {
		record, err := ingest.Parse(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		bookID, err := id.Generate(id.PrefixBook)
		if err != nil {
			return nil, fmt.Errorf("generate book ID: %w", err)
		}
		record.ID = bookID
		record.OwnerID = ownerID
		record.InitTimestamps()
		if record.DateAdded == nil {
			added := domain.CalendarDay(now)
			record.DateAdded = &added
		}

		if err := s.store.CreateBook(ctx, record); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: save failed: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	if s.logger != nil {
		s.logger.Info("CSV import finished",
			"job_id", result.JobID,
			"owner_id", ownerID,
			"imported", result.Imported,
			"skipped", result.Skipped,
		)
	}

	return result, nil
}
