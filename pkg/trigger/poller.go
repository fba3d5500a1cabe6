package trigger

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opencve/cvesync/pkg/airflow"
)

// DefaultPollInterval is the fixed delay between state queries. Two
// seconds balances responsiveness against load on the Airflow API.
const DefaultPollInterval = 2 * time.Second

// maxConsecutiveUnknown bounds how many unrecognized state readings in a
// row the poller tolerates before giving up on the dialect.
const maxConsecutiveUnknown = 3

// Poller repeatedly queries run state until terminal or deadline.
//
// The cadence is fixed, not adaptive and not jittered. The deadline is
// checked before each query, so the final query never starts after the
// deadline; its own latency is bounded only by the transport timeout, so
// actual elapsed time may overrun the deadline by up to that much.
type Poller struct {
	api      RunAPI
	interval time.Duration
}

// NewPoller returns a Poller querying through api. A non-positive
// interval falls back to DefaultPollInterval.
func NewPoller(api RunAPI, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{api: api, interval: interval}
}

// WaitForTerminal blocks until the run reaches a terminal state, the
// deadline elapses, or a state query fails.
//
// A query failure returns an error outcome immediately rather than being
// retried: transparent retries could mask a service outage for the
// caller's full deadline. State queries for one run are strictly
// sequential.
func (p *Poller) WaitForTerminal(ctx context.Context, dagID, runID string, deadline time.Duration, progress ProgressFunc) Outcome {
	t0 := time.Now()
	unknownStreak := 0

	for {
		if time.Since(t0) >= deadline {
			log.Warn().
				Str("component", "trigger").
				Str("dag_run_id", runID).
				Dur("deadline", deadline).
				Msg("Deadline reached before terminal state")
			return Outcome{State: StateTimedOut, RunID: runID, Elapsed: deadline}
		}

		run, err := p.api.GetDAGRun(ctx, dagID, runID)
		if err != nil {
			apiErr, _ := airflow.AsAPIError(err)
			log.Error().
				Str("component", "trigger").
				Str("dag_run_id", runID).
				Err(err).
				Msg("State query failed")
			return Outcome{State: StateError, RunID: runID, Elapsed: time.Since(t0), Err: apiErr}
		}

		state := ParseRunState(run.State)
		if state.IsTerminal() {
			return Outcome{State: state, RunID: runID, Elapsed: time.Since(t0)}
		}

		if state == StateUnknown {
			unknownStreak++
			log.Warn().
				Str("component", "trigger").
				Str("dag_run_id", runID).
				Str("reported_state", run.State).
				Int("streak", unknownStreak).
				Msg("Unrecognized run state")
			if unknownStreak >= maxConsecutiveUnknown {
				return Outcome{
					State:   StateError,
					RunID:   runID,
					Elapsed: time.Since(t0),
					Err: &airflow.APIError{
						Kind:   airflow.KindDecodeFailed,
						Detail: "unrecognized run state " + strconv.Quote(run.State) + " reported repeatedly",
					},
				}
			}
		} else {
			unknownStreak = 0
		}

		if progress != nil {
			progress(state, time.Since(t0))
		}

		if err := sleepCtx(ctx, p.interval); err != nil {
			return Outcome{
				State:   StateError,
				RunID:   runID,
				Elapsed: time.Since(t0),
				Err:     &airflow.APIError{Kind: airflow.KindConnectionFailed, Err: err},
			}
		}
	}
}

// sleepCtx waits for d, returning early with the context error when the
// caller is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
