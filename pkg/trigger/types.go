// Package trigger starts a named Airflow DAG run and optionally tracks it
// to a terminal state under a caller-supplied deadline. It is the single
// implementation behind both the CLI and the admin API.
package trigger

import (
	"time"

	"github.com/opencve/cvesync/pkg/airflow"
)

// RunState is the lifecycle state of a DAG run as reported by Airflow,
// plus the synthetic states this package produces itself.
type RunState string

const (
	StateQueued  RunState = "queued"
	StateRunning RunState = "running"
	StateSuccess RunState = "success"
	StateFailed  RunState = "failed"

	// StateUnknown is produced locally when Airflow reports a state
	// string this package does not recognize. Non-terminal.
	StateUnknown RunState = "unknown"

	// StateTimedOut and StateError never come from Airflow; they are
	// outcome-only states for a wait that did not reach a terminal run
	// state.
	StateTimedOut RunState = "timed_out"
	StateError    RunState = "error"
)

// ParseRunState maps an Airflow state string onto a RunState,
// falling back to StateUnknown for anything unrecognized.
func ParseRunState(s string) RunState {
	switch RunState(s) {
	case StateQueued, StateRunning, StateSuccess, StateFailed:
		return RunState(s)
	default:
		return StateUnknown
	}
}

// IsTerminal reports whether no further state transition can occur.
func (s RunState) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Request describes one DAG run to start. Constructed fresh per call and
// never mutated.
type Request struct {
	DAGID       string
	LogicalDate time.Time
	Note        string
}

// RunHandle identifies a started run. The run ID is assigned by Airflow
// and is used verbatim for every subsequent state query.
type RunHandle struct {
	RunID        string
	InitialState RunState
}

// Outcome is the sole artifact a trigger operation returns.
//
// State is the terminal state actually observed, the initial reported
// state in fire-and-forget mode, or StateTimedOut/StateError when the
// wait ended without one. Err carries the structured cause for
// StateError outcomes and is nil otherwise.
type Outcome struct {
	State   RunState
	RunID   string
	Elapsed time.Duration
	Err     *airflow.APIError
}

// Succeeded reports whether the run itself completed successfully.
func (o Outcome) Succeeded() bool { return o.State == StateSuccess }

// ProgressFunc is invoked after each non-terminal state reading during a
// wait, so callers can render progress without owning poll logic.
type ProgressFunc func(state RunState, elapsed time.Duration)
