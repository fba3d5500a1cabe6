package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencve/cvesync/pkg/airflow"
)

func TestController_Trigger(t *testing.T) {
	api := &fakeRunAPI{
		triggerRun: &airflow.DAGRun{DAGRunID: "manual__2024-01-01", State: "queued"},
	}
	c := NewController(api)

	handle, err := c.Trigger(context.Background(), Request{
		DAGID:       "opencve",
		LogicalDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Note:        "triggered by admin via web UI",
	})
	require.NoError(t, err)
	require.Equal(t, "manual__2024-01-01", handle.RunID)
	require.Equal(t, StateQueued, handle.InitialState)
}

func TestController_TriggerError(t *testing.T) {
	api := &fakeRunAPI{
		triggerErr: &airflow.APIError{Kind: airflow.KindHTTPError, StatusCode: 401, Detail: "Unauthorized"},
	}
	c := NewController(api)

	_, err := c.Trigger(context.Background(), Request{DAGID: "opencve", LogicalDate: time.Now()})
	apiErr, ok := airflow.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, airflow.KindHTTPError, apiErr.Kind)
	require.Equal(t, 401, apiErr.StatusCode)
}

func TestController_TriggerUnknownInitialState(t *testing.T) {
	api := &fakeRunAPI{
		triggerRun: &airflow.DAGRun{DAGRunID: "run-1", State: "scheduled"},
	}
	c := NewController(api)

	handle, err := c.Trigger(context.Background(), Request{DAGID: "opencve", LogicalDate: time.Now()})
	require.NoError(t, err)
	require.Equal(t, StateUnknown, handle.InitialState)
}
