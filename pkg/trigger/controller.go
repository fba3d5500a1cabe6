package trigger

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/opencve/cvesync/pkg/airflow"
)

// RunAPI is the slice of the Airflow client this package depends on.
type RunAPI interface {
	TriggerDAGRun(ctx context.Context, dagID string, req airflow.TriggerRequest) (*airflow.DAGRun, error)
	GetDAGRun(ctx context.Context, dagID, runID string) (*airflow.DAGRun, error)
}

// Controller translates a Request into a started run and its handle.
type Controller struct {
	api RunAPI
}

// NewController returns a Controller issuing runs through api.
func NewController(api RunAPI) *Controller {
	return &Controller{api: api}
}

// Trigger starts the DAG run. Transport failures are returned as-is
// (*airflow.APIError); there is no retry here since a retried trigger
// could double-start a workflow.
func (c *Controller) Trigger(ctx context.Context, req Request) (RunHandle, error) {
	run, err := c.api.TriggerDAGRun(ctx, req.DAGID, airflow.TriggerRequest{
		LogicalDate: req.LogicalDate,
		Note:        req.Note,
	})
	if err != nil {
		return RunHandle{}, err
	}

	log.Info().
		Str("component", "trigger").
		Str("dag_id", req.DAGID).
		Str("dag_run_id", run.DAGRunID).
		Str("state", run.State).
		Msg("DAG run triggered")

	return RunHandle{
		RunID:        run.DAGRunID,
		InitialState: ParseRunState(run.State),
	}, nil
}
