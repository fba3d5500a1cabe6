package airflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed Airflow API call.
type ErrorKind string

const (
	// KindConnectionFailed means the host could not be reached at all
	// (refused, DNS failure, timeout before any response).
	KindConnectionFailed ErrorKind = "connection_failed"

	// KindHTTPError means the service answered with a non-2xx status.
	KindHTTPError ErrorKind = "http_error"

	// KindDecodeFailed means a 2xx response body was not valid JSON or
	// lacked a field the API contract guarantees.
	KindDecodeFailed ErrorKind = "decode_failed"
)

// APIError is the normalized failure returned by every Client call.
// Transport-level errors never escape this package in any other shape.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // set only for KindHTTPError
	Detail     string // service-supplied detail, or a short description
	Err        error  // underlying cause, if any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindHTTPError:
		if e.Detail != "" {
			return fmt.Sprintf("airflow API error (status %d): %s", e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("airflow API error (status %d)", e.StatusCode)
	case KindConnectionFailed:
		if e.Err != nil {
			return fmt.Sprintf("failed to connect to airflow: %v", e.Err)
		}
		return "failed to connect to airflow"
	default:
		if e.Detail != "" {
			return fmt.Sprintf("invalid airflow response: %s", e.Detail)
		}
		return "invalid airflow response"
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func connectionFailed(err error) *APIError {
	return &APIError{Kind: KindConnectionFailed, Err: err}
}

func httpError(status int, detail string) *APIError {
	return &APIError{Kind: KindHTTPError, StatusCode: status, Detail: detail}
}

func decodeFailed(detail string, err error) *APIError {
	return &APIError{Kind: KindDecodeFailed, Detail: detail, Err: err}
}
