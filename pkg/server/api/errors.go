package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/opencve/cvesync/pkg/airflow"
)

// ErrorResponse is the standard JSON error body, shaped like the
// original OpenCVE admin view's failure payloads.
//
// Example:
//
//	{
//	  "success": false,
//	  "error": "Failed to connect to Airflow. Is the Airflow service running?"
//	}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteAPIError maps a normalized Airflow client failure onto an HTTP
// response:
//   - connection_failed → 503 Service Unavailable
//   - http_error        → the upstream status code, detail preserved
//   - decode_failed     → 502 Bad Gateway
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr *airflow.APIError) {
	var statusCode int
	var message string

	switch {
	case apiErr == nil:
		statusCode = http.StatusInternalServerError
		message = "An unexpected error occurred. Please check the logs."
	case apiErr.Kind == airflow.KindConnectionFailed:
		statusCode = http.StatusServiceUnavailable
		message = "Failed to connect to Airflow. Is the Airflow service running?"
	case apiErr.Kind == airflow.KindHTTPError:
		statusCode = apiErr.StatusCode
		message = "Airflow API error: " + apiErr.Detail
		if apiErr.Detail == "" {
			message = "Airflow API error"
		}
	default: // decode_failed
		statusCode = http.StatusBadGateway
		message = "Airflow returned an unexpected response: " + apiErr.Error()
	}

	log.Error().
		Str("component", "api").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", statusCode).
		Err(apiErr).
		Msg("Request failed")

	WriteJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// WriteJSONError writes a custom JSON error response with a specific
// status code, for validation failures and the like.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// WriteJSON writes a JSON response to the client.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode JSON response")
	}
}
