package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/readkeepapp/readkeep-server/internal/errors"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// APIError implements huma.StatusError, carrying the coded error shape the
// envelope transformer serializes.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

func (e *APIError) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.status }

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string { return "application/json" }

// RegisterErrorHandler replaces huma's error constructor so handlers can
// return domain and store errors directly. Call after creating the huma.API
// and before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			// Domain errors carry their own code and status.
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			// Store not-found errors surface as plain 404s.
			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: err.Error(),
				}
			}
		}

		return &APIError{status: status, Code: statusToCode(status), Message: message}
	}
}

// statusToCode assigns a domain error code to errors huma raises itself,
// like schema validation failures.
func statusToCode(status int) string {
	var code domainerrors.Code
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = domainerrors.CodeValidation
	case http.StatusUnauthorized:
		code = domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = domainerrors.CodeForbidden
	case http.StatusNotFound:
		code = domainerrors.CodeNotFound
	case http.StatusConflict:
		code = domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		code = domainerrors.CodeRateLimited
	default:
		code = domainerrors.CodeInternal
	}
	return string(code)
}
