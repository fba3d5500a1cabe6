package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opencve/cvesync/pkg/airflow"
	"github.com/opencve/cvesync/pkg/server/api"
	"github.com/opencve/cvesync/pkg/trigger"
)

// writeDeadlineGrace is added to the requested wait deadline when
// extending the connection write deadline, leaving room for the final
// state query and response serialization.
const writeDeadlineGrace = 30 * time.Second

// SyncResponse mirrors the JSON the original OpenCVE admin view
// returned, extended with wait-mode fields.
type SyncResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	Error          string  `json:"error,omitempty"`
	DAGRunID       string  `json:"dag_run_id,omitempty"`
	State          string  `json:"state,omitempty"`
	AirflowURL     string  `json:"airflow_url,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

// TriggerSyncHandler handles POST /api/v1/sync
//
// Triggers the CVE sync DAG run. With {"wait":true} the handler blocks
// until the run reaches a terminal state or the (bounded) timeout
// elapses. The caller identity for the audit note comes from the
// X-Triggered-By header when present.
func TriggerSyncHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := ParseSyncRequest(r)
		if err != nil {
			api.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		note := req.Note
		if note == "" {
			if who := r.Header.Get("X-Triggered-By"); who != "" {
				note = fmt.Sprintf("Manual trigger by %s via web API", who)
			} else {
				note = "Manual trigger via web API"
			}
		}

		timeout := deps.DefaultTimeout
		if req.TimeoutSeconds > 0 {
			timeout = time.Duration(req.TimeoutSeconds) * time.Second
		}

		if req.Wait {
			// The connection's write deadline was armed from the
			// server-wide WriteTimeout when the request was read. A
			// waited sync may legitimately run far longer, so push the
			// deadline past the poll deadline or the response is
			// produced but never delivered.
			rc := http.NewResponseController(w)
			if err := rc.SetWriteDeadline(time.Now().Add(timeout + writeDeadlineGrace)); err != nil {
				log.Warn().Err(err).Msg("Could not extend response write deadline for waited sync")
			}
		}

		log.Info().
			Str("component", "api").
			Str("dag_id", deps.DAGID).
			Bool("wait", req.Wait).
			Msg("Triggering CVE sync DAG")

		outcome := deps.Orchestrator.Run(r.Context(), trigger.Request{
			DAGID:       deps.DAGID,
			LogicalDate: time.Now().UTC(),
			Note:        note,
		}, req.Wait, timeout, nil)

		writeOutcome(w, r, deps, outcome, req.Wait)
	}
}

func writeOutcome(w http.ResponseWriter, r *http.Request, deps *api.Deps, outcome trigger.Outcome, waited bool) {
	switch outcome.State {
	case trigger.StateError:
		api.WriteAPIError(w, r, outcome.Err)

	case trigger.StateTimedOut:
		api.WriteJSON(w, http.StatusGatewayTimeout, SyncResponse{
			Success:        false,
			Error:          fmt.Sprintf("Timed out after %s waiting for sync completion", outcome.Elapsed),
			DAGRunID:       outcome.RunID,
			State:          string(outcome.State),
			AirflowURL:     deps.Airflow.RunURL(deps.DAGID, outcome.RunID),
			ElapsedSeconds: outcome.Elapsed.Seconds(),
		})

	case trigger.StateFailed:
		// The trigger call itself succeeded; the service reported the
		// run as failed.
		api.WriteJSON(w, http.StatusOK, SyncResponse{
			Success:        false,
			Error:          "CVE sync run failed",
			DAGRunID:       outcome.RunID,
			State:          string(outcome.State),
			AirflowURL:     deps.Airflow.RunURL(deps.DAGID, outcome.RunID),
			ElapsedSeconds: outcome.Elapsed.Seconds(),
		})

	default:
		message := "CVE sync triggered successfully"
		if waited {
			message = "CVE sync completed successfully"
		}
		api.WriteJSON(w, http.StatusOK, SyncResponse{
			Success:        true,
			Message:        message,
			DAGRunID:       outcome.RunID,
			State:          string(outcome.State),
			AirflowURL:     deps.Airflow.RunURL(deps.DAGID, outcome.RunID),
			ElapsedSeconds: outcome.Elapsed.Seconds(),
		})
	}
}

// GetRunHandler handles GET /api/v1/sync/runs/{id}
//
// Returns the current state of a previously triggered run. Nothing is
// cached or persisted; each call queries Airflow directly.
func GetRunHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			api.WriteJSONError(w, http.StatusBadRequest, "run id is required")
			return
		}

		run, err := deps.Airflow.GetDAGRun(r.Context(), deps.DAGID, id)
		if err != nil {
			apiErr, _ := airflow.AsAPIError(err)
			api.WriteAPIError(w, r, apiErr)
			return
		}

		api.WriteJSON(w, http.StatusOK, SyncResponse{
			Success:    true,
			DAGRunID:   run.DAGRunID,
			State:      string(trigger.ParseRunState(run.State)),
			AirflowURL: deps.Airflow.RunURL(deps.DAGID, run.DAGRunID),
		})
	}
}
