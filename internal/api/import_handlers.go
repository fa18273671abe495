package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/readkeepapp/readkeep-server/internal/errors"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "importCSV",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/csv",
		Summary:     "Import a CSV export",
		Description: "Imports a legacy CSV library export. Invalid rows are skipped and reported.",
		Tags:        []string{"Import"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleImportCSV)
}

// === DTOs ===

// ImportCSVInput carries the raw CSV payload.
type ImportCSVInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ContentType   string `header:"Content-Type" doc:"Should be text/csv"`
	RawBody       []byte `doc:"CSV file contents"`
}

// ImportResponse summarizes an import run.
type ImportResponse struct {
	JobID    string   `json:"job_id" doc:"Identifier for this import run"`
	Imported int      `json:"imported" doc:"Rows imported"`
	Skipped  int      `json:"skipped" doc:"Rows skipped"`
	Errors   []string `json:"errors,omitempty" doc:"Per-row error messages for skipped rows"`
}

// ImportOutput wraps the import response for Huma.
type ImportOutput struct {
	Body ImportResponse
}

// === Handlers ===

func (s *Server) handleImportCSV(ctx context.Context, input *ImportCSVInput) (*ImportOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) == 0 {
		return nil, domainerrors.Validation("empty import payload")
	}

	result, err := s.services.Import.ImportCSV(ctx, userID, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}

	return &ImportOutput{
		Body: ImportResponse{
			JobID:    result.JobID,
			Imported: result.Imported,
			Skipped:  result.Skipped,
			Errors:   result.Errors,
		},
	}, nil
}
