package trigger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRunState(t *testing.T) {
	tests := []struct {
		in   string
		want RunState
	}{
		{"queued", StateQueued},
		{"running", StateRunning},
		{"success", StateSuccess},
		{"failed", StateFailed},
		{"", StateUnknown},
		{"restarting", StateUnknown},
		{"SUCCESS", StateUnknown}, // Airflow states are lowercase
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseRunState(tt.in), "input %q", tt.in)
	}
}

func TestRunState_IsTerminal(t *testing.T) {
	require.True(t, StateSuccess.IsTerminal())
	require.True(t, StateFailed.IsTerminal())
	require.False(t, StateQueued.IsTerminal())
	require.False(t, StateRunning.IsTerminal())
	require.False(t, StateUnknown.IsTerminal())
	require.False(t, StateTimedOut.IsTerminal())
	require.False(t, StateError.IsTerminal())
}

func TestOutcome_Succeeded(t *testing.T) {
	require.True(t, Outcome{State: StateSuccess}.Succeeded())
	require.False(t, Outcome{State: StateFailed}.Succeeded())
	require.False(t, Outcome{State: StateTimedOut}.Succeeded())
}
