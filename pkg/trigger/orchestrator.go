package trigger

import (
	"context"
	"time"

	"github.com/opencve/cvesync/pkg/airflow"
)

// DefaultTimeout is the wait deadline used when the caller does not
// override it.
const DefaultTimeout = 300 * time.Second

// Orchestrator is the single entry point combining trigger and optional
// wait. It is stateless across calls and holds no run history; each
// invocation is independent.
type Orchestrator struct {
	controller *Controller
	poller     *Poller
}

// NewOrchestrator wires a Controller and Poller over the same RunAPI.
func NewOrchestrator(api RunAPI, pollInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		controller: NewController(api),
		poller:     NewPoller(api, pollInterval),
	}
}

// Run triggers the DAG run and, when wait is true, tracks it to a
// terminal outcome under the given deadline.
//
// A trigger failure returns an error outcome immediately; the poller is
// never invoked and the trigger is never retried. With wait false the
// outcome carries the run's initial reported state with zero elapsed
// time (fire and forget).
func (o *Orchestrator) Run(ctx context.Context, req Request, wait bool, timeout time.Duration, progress ProgressFunc) Outcome {
	handle, err := o.controller.Trigger(ctx, req)
	if err != nil {
		apiErr, _ := airflow.AsAPIError(err)
		return Outcome{State: StateError, Err: apiErr}
	}

	if !wait {
		return Outcome{State: handle.InitialState, RunID: handle.RunID}
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return o.poller.WaitForTerminal(ctx, req.DAGID, handle.RunID, timeout, progress)
}
