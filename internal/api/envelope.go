package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients key
// parsing off the "v" field, so renaming it is a breaking change.
const envelopeVersion = 1

// Envelope is the consistent JSON wrapper around every API response.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error message when success is false"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Message string `json:"message,omitempty" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every huma response body in the envelope.
// Registered on the huma config before any routes.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	env := Envelope{
		V:       envelopeVersion,
		Success: len(status) == 3 && status[0] < '4',
	}

	if apiErr, ok := v.(*APIError); ok {
		env.Success = false
		env.Error = apiErr.Message
		env.Code = apiErr.Code
		env.Message = apiErr.Message
		env.Details = apiErr.Details
		return env, nil
	}

	env.Data = v
	return env, nil
}
