package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opencve/cvesync/cmd/cvesync/internal/format"
	"github.com/opencve/cvesync/pkg/airflow"
	"github.com/opencve/cvesync/pkg/appctx"
	"github.com/opencve/cvesync/pkg/trigger"
)

// newSyncCommand builds the 'sync' command, the CLI entry point for
// triggering an OpenCVE synchronization DAG run.
func newSyncCommand() *cobra.Command {
	var (
		wait       bool
		timeout    time.Duration
		note       string
		dagID      string
		jsonOutput bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger a CVE synchronization run in Airflow",
		Long: `Triggers the OpenCVE synchronization DAG and, unless --wait=false,
polls the run until it reaches a terminal state.

The exit code is 0 only when the run succeeds (or when the trigger was
accepted in fire-and-forget mode).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not initialized")
			}
			cfg := manager.Get()

			if dagID == "" {
				dagID = cfg.Airflow.DAG
			}
			if timeout <= 0 {
				timeout = cfg.Trigger.Timeout
			}
			if note == "" {
				note = "Manual trigger via cvesync CLI"
			}

			mode := format.ModeText
			if jsonOutput {
				mode = format.ModeJSON
			}
			frm := format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, quiet, !color.NoColor)

			client, err := airflow.NewClient(cfg.Airflow.URL, cfg.Airflow.Username, cfg.Airflow.Password)
			if err != nil {
				return err
			}
			orch := trigger.NewOrchestrator(client, cfg.Trigger.Interval)

			_ = frm.PrintLine("Triggering CVE sync DAG %q on %s", dagID, client.BaseURL())

			req := trigger.Request{
				DAGID:       dagID,
				LogicalDate: time.Now().UTC(),
				Note:        note,
			}

			var lastState trigger.RunState
			progress := func(state trigger.RunState, elapsed time.Duration) {
				if state == lastState {
					return
				}
				lastState = state
				_ = frm.PrintLine("State: %s (elapsed %s)", state, elapsed.Round(time.Second))
			}

			outcome := orch.Run(cmd.Context(), req, wait, timeout, progress)
			if outcome.State == trigger.StateError {
				_ = frm.PrintError(outcome.Err)
				return fmt.Errorf("sync trigger failed")
			}

			summary := format.RunSummary{
				DAGRunID:   outcome.RunID,
				State:      string(outcome.State),
				Elapsed:    outcome.Elapsed,
				AirflowURL: client.RunURL(dagID, outcome.RunID),
				Waited:     wait,
			}
			if err := frm.PrintRunSummary(summary); err != nil {
				return err
			}

			switch outcome.State {
			case trigger.StateTimedOut:
				log.Warn().Str("dag_run_id", outcome.RunID).Dur("deadline", timeout).Msg("sync wait deadline reached")
				return fmt.Errorf("timed out after %s waiting for run %s", timeout, outcome.RunID)
			case trigger.StateFailed:
				return fmt.Errorf("CVE sync run %s failed", outcome.RunID)
			}

			if wait {
				_ = frm.PrintSuccess("CVE sync completed successfully")
			} else {
				_ = frm.PrintSuccess("CVE sync triggered, not waiting for completion")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for the triggered run to reach a terminal state")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Maximum time to wait for completion (default from config)")
	cmd.Flags().StringVar(&note, "note", "", "Note attached to the DAG run in Airflow")
	cmd.Flags().StringVar(&dagID, "dag", "", "DAG to trigger (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the DAG run id")

	return cmd
}
