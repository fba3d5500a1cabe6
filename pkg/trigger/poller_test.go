package trigger

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencve/cvesync/pkg/airflow"
)

// fakeRunAPI replays a scripted sequence of state readings. When the
// script runs out, the last entry repeats.
type fakeRunAPI struct {
	triggerRun *airflow.DAGRun
	triggerErr error

	script  []stateReading
	queries int
}

type stateReading struct {
	state string
	err   error
}

func (f *fakeRunAPI) TriggerDAGRun(_ context.Context, _ string, _ airflow.TriggerRequest) (*airflow.DAGRun, error) {
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return f.triggerRun, nil
}

func (f *fakeRunAPI) GetDAGRun(_ context.Context, _, _ string) (*airflow.DAGRun, error) {
	idx := f.queries
	f.queries++
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	r := f.script[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &airflow.DAGRun{DAGRunID: "manual__2024-01-01", State: r.state}, nil
}

const testInterval = 10 * time.Millisecond

func TestWaitForTerminal_SuccessAfterPolling(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{state: "queued"},
		{state: "running"},
		{state: "running"},
		{state: "success"},
	}}
	p := NewPoller(api, testInterval)

	outcome := p.WaitForTerminal(context.Background(), "opencve", "manual__2024-01-01", time.Second, nil)

	require.Equal(t, StateSuccess, outcome.State)
	require.Equal(t, "manual__2024-01-01", outcome.RunID)
	require.Nil(t, outcome.Err)
	require.Equal(t, 4, api.queries)
	require.GreaterOrEqual(t, outcome.Elapsed, 3*testInterval)
}

func TestWaitForTerminal_FailedStopsImmediately(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{state: "running"},
		{state: "failed"},
		{state: "success"}, // must never be read
	}}
	p := NewPoller(api, testInterval)

	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", time.Second, nil)

	require.Equal(t, StateFailed, outcome.State)
	require.Equal(t, 2, api.queries)
}

func TestWaitForTerminal_Timeout(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{{state: "running"}}}
	p := NewPoller(api, testInterval)

	deadline := 35 * time.Millisecond
	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", deadline, nil)

	require.Equal(t, StateTimedOut, outcome.State)
	// Elapsed reports exactly the deadline on timeout.
	require.Equal(t, deadline, outcome.Elapsed)
	// ceil(35ms / 10ms) = 4 queries, bounded.
	require.LessOrEqual(t, api.queries, 4)
	require.GreaterOrEqual(t, api.queries, 3)
}

func TestWaitForTerminal_QueryFailureNotRetried(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{err: &airflow.APIError{Kind: airflow.KindHTTPError, StatusCode: http.StatusInternalServerError, Detail: "boom"}},
	}}
	p := NewPoller(api, testInterval)

	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", time.Second, nil)

	require.Equal(t, StateError, outcome.State)
	require.NotNil(t, outcome.Err)
	require.Equal(t, airflow.KindHTTPError, outcome.Err.Kind)
	require.Equal(t, http.StatusInternalServerError, outcome.Err.StatusCode)
	require.Equal(t, 1, api.queries)
}

func TestWaitForTerminal_UnknownStreakAborts(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{state: "restarting"},
		{state: "restarting"},
		{state: "restarting"},
	}}
	p := NewPoller(api, testInterval)

	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", time.Second, nil)

	require.Equal(t, StateError, outcome.State)
	require.NotNil(t, outcome.Err)
	require.Equal(t, airflow.KindDecodeFailed, outcome.Err.Kind)
	require.Equal(t, 3, api.queries)
}

func TestWaitForTerminal_UnknownStreakResets(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{state: "restarting"},
		{state: "restarting"},
		{state: "running"}, // resets the streak
		{state: "restarting"},
		{state: "success"},
	}}
	p := NewPoller(api, testInterval)

	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", time.Second, nil)

	require.Equal(t, StateSuccess, outcome.State)
	require.Equal(t, 5, api.queries)
}

func TestWaitForTerminal_ProgressCallback(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{
		{state: "queued"},
		{state: "running"},
		{state: "success"},
	}}
	p := NewPoller(api, testInterval)

	var seen []RunState
	outcome := p.WaitForTerminal(context.Background(), "opencve", "run-1", time.Second,
		func(state RunState, _ time.Duration) {
			seen = append(seen, state)
		})

	require.Equal(t, StateSuccess, outcome.State)
	// Progress fires only on non-terminal readings.
	require.Equal(t, []RunState{StateQueued, StateRunning}, seen)
}

func TestWaitForTerminal_ContextCancelled(t *testing.T) {
	api := &fakeRunAPI{script: []stateReading{{state: "running"}}}
	p := NewPoller(api, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	outcome := p.WaitForTerminal(ctx, "opencve", "run-1", time.Minute, nil)

	require.Equal(t, StateError, outcome.State)
	require.NotNil(t, outcome.Err)
	require.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(&fakeRunAPI{}, 0)
	require.Equal(t, DefaultPollInterval, p.interval)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, sleepCtx(ctx, time.Minute))
	require.True(t, errors.Is(sleepCtx(ctx, time.Minute), context.Canceled))
}
