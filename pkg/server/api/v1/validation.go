package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SyncRequest is the body of POST /api/v1/sync. All fields are optional;
// an empty body means "trigger and return immediately".
type SyncRequest struct {
	Wait           bool   `json:"wait"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Note           string `json:"note"`
}

// ParseSyncRequest decodes and validates the request body. Bounds keep a
// single HTTP request from pinning a handler goroutine for longer than
// fifteen minutes.
func ParseSyncRequest(r *http.Request) (*SyncRequest, error) {
	var req SyncRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return nil, &ValidationError{Field: "body", Reason: "could not read request body"}
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, &ValidationError{Field: "body", Reason: "must be valid JSON"}
		}
	}

	if req.TimeoutSeconds != 0 {
		if err := validate.Var(req.TimeoutSeconds, "min=1,max=900"); err != nil {
			return nil, &ValidationError{Field: "timeout_seconds", Reason: "must be between 1 and 900"}
		}
	}

	if req.Note != "" {
		if err := validate.Var(req.Note, "max=512"); err != nil {
			return nil, &ValidationError{Field: "note", Reason: "must be at most 512 characters"}
		}
	}

	return &req, nil
}

// ValidationError is a lightweight error used for 400 responses.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation failed"
	}
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
