package airflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "http error with detail",
			err:  httpError(404, "DAG not found"),
			want: "airflow API error (status 404): DAG not found",
		},
		{
			name: "http error without detail",
			err:  httpError(500, ""),
			want: "airflow API error (status 500)",
		},
		{
			name: "connection failed",
			err:  connectionFailed(errors.New("dial tcp: connection refused")),
			want: "failed to connect to airflow: dial tcp: connection refused",
		},
		{
			name: "decode failed",
			err:  decodeFailed("missing dag_run_id", nil),
			want: "invalid airflow response: missing dag_run_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAsAPIError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("trigger dag: %w", httpError(503, "scheduler down"))
	apiErr, ok := AsAPIError(wrapped)
	require.True(t, ok)
	require.Equal(t, KindHTTPError, apiErr.Kind)
	require.Equal(t, 503, apiErr.StatusCode)
}

func TestAsAPIError_NotAPIError(t *testing.T) {
	_, ok := AsAPIError(errors.New("plain"))
	require.False(t, ok)
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("EOF")
	err := decodeFailed("bad body", cause)
	require.ErrorIs(t, err, cause)
}
