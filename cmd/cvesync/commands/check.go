package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fatih/color"
	"github.com/go-ping/ping"
	"github.com/spf13/cobra"

	"github.com/opencve/cvesync/cmd/cvesync/internal/format"
	"github.com/opencve/cvesync/pkg/airflow"
	"github.com/opencve/cvesync/pkg/appctx"
	"github.com/opencve/cvesync/pkg/version"
)

const pingProbeTimeout = 3 * time.Second

// Probe verdicts rendered in the status column.
const (
	checkOK   = "ok"
	checkWarn = "warn"
	checkFail = "fail"
)

// checkResult is one probe's verdict. Only fail verdicts make the
// command exit non-zero; warnings are informational.
type checkResult struct {
	name   string
	status string
	detail string
}

// newCheckCommand builds the 'check' command, a connectivity doctor for
// the configured Airflow deployment.
func newCheckCommand() *cobra.Command {
	var (
		withPing bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity to the configured Airflow deployment",
		Long: `Runs a series of probes against the configured Airflow instance:
host reachability (optional ICMP), scheduler and metadatabase health,
credential validity, DAG presence, and server version compatibility.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := format.ValidateMode(output); err != nil {
				return err
			}

			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not initialized")
			}
			cfg := manager.Get()

			client, err := airflow.NewClient(cfg.Airflow.URL, cfg.Airflow.Username, cfg.Airflow.Password)
			if err != nil {
				return err
			}

			frm := format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format.ParseMode(output), false, !color.NoColor)
			_ = frm.PrintLine("Checking Airflow at %s", client.BaseURL())

			results := runChecks(cmd.Context(), client, cfg.Airflow.DAG, cfg.Airflow.URL, withPing)

			failed := false
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				if r.status == checkFail {
					failed = true
				}
				rows = append(rows, format.Row(r.name, renderStatus(frm, r.status), r.detail))
			}
			if err := frm.PrintTable([]string{"check", "status", "detail"}, rows); err != nil {
				return err
			}

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			_ = frm.PrintSuccess("All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPing, "ping", false, "Also probe the Airflow host with ICMP echo requests")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json")

	return cmd
}

// renderStatus colorizes a verdict for terminal output. JSON output
// stays uncolored so the document remains machine-readable.
func renderStatus(frm format.Formatter, status string) string {
	if frm.Mode() != format.ModeText || color.NoColor {
		return status
	}
	switch status {
	case checkOK:
		return color.GreenString(status)
	case checkWarn:
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}

// runChecks executes every probe and collects their verdicts.
func runChecks(ctx context.Context, client *airflow.Client, dagID, baseURL string, withPing bool) []checkResult {
	var results []checkResult

	if withPing {
		results = append(results, icmpCheck(baseURL))
	}

	health, err := client.Health(ctx)
	switch {
	case err != nil:
		results = append(results, checkResult{"health", checkFail, err.Error()})
	case !health.Healthy():
		results = append(results, checkResult{"health", checkFail,
			fmt.Sprintf("metadatabase=%s scheduler=%s", health.Metadatabase.Status, health.Scheduler.Status)})
	default:
		results = append(results, checkResult{"health", checkOK, "metadatabase and scheduler healthy"})
	}

	results = append(results, dagChecks(ctx, client, dagID)...)

	info, err := client.Version(ctx)
	switch {
	case err != nil:
		results = append(results, checkResult{"version", checkWarn, err.Error()})
	default:
		if compatible, cerr := version.CheckAirflowCompatibility(info.Version); cerr != nil {
			results = append(results, checkResult{"version", checkWarn,
				fmt.Sprintf("cannot parse %q: %v", info.Version, cerr)})
		} else if !compatible {
			results = append(results, checkResult{"version", checkWarn,
				fmt.Sprintf("Airflow %s is older than the minimum supported %s", info.Version, version.MinAirflowVersion)})
		} else {
			results = append(results, checkResult{"version", checkOK, "Airflow " + info.Version})
		}
	}

	return results
}

// dagChecks probes an authenticated endpoint, separating bad
// credentials from a missing DAG and from an unreachable server.
func dagChecks(ctx context.Context, client *airflow.Client, dagID string) []checkResult {
	dag, err := client.GetDAG(ctx, dagID)
	if err == nil {
		results := []checkResult{{"credentials", checkOK, "accepted"}}
		if dag.IsPaused {
			results = append(results, checkResult{"dag", checkWarn,
				fmt.Sprintf("%q exists but is paused, triggered runs will not start", dag.DAGID)})
		} else {
			results = append(results, checkResult{"dag", checkOK, fmt.Sprintf("%q found", dag.DAGID)})
		}
		return results
	}

	if apiErr, ok := airflow.AsAPIError(err); ok && apiErr.Kind == airflow.KindHTTPError {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return []checkResult{{"credentials", checkFail, "rejected (check username and password)"}}
		case http.StatusNotFound:
			return []checkResult{
				{"credentials", checkOK, "accepted"},
				{"dag", checkFail, fmt.Sprintf("%q not found on this Airflow instance", dagID)},
			}
		}
	}
	return []checkResult{{"dag", checkFail, err.Error()}}
}

// icmpCheck pings the Airflow host once. ICMP is frequently filtered,
// so a missing reply is a warning; HTTP probes settle reachability.
func icmpCheck(baseURL string) checkResult {
	host, err := airflowHost(baseURL)
	if err != nil {
		return checkResult{"icmp", checkWarn, fmt.Sprintf("cannot resolve host from URL: %v", err)}
	}
	rtt, err := pingHost(host)
	if err != nil {
		return checkResult{"icmp", checkWarn, fmt.Sprintf("%s did not answer (%v)", host, err)}
	}
	return checkResult{"icmp", checkOK, fmt.Sprintf("%s reachable (rtt %s)", host, rtt.Round(time.Millisecond))}
}

// airflowHost extracts the hostname from the configured base URL.
func airflowHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no host in %q", baseURL)
	}
	return u.Hostname(), nil
}

// pingHost sends a single unprivileged ICMP echo request and returns the
// observed round trip time.
func pingHost(host string) (time.Duration, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.SetPrivileged(false)
	pinger.Count = 1
	pinger.Timeout = pingProbeTimeout

	if err := pinger.Run(); err != nil {
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no reply within %s", pingProbeTimeout)
	}
	return stats.AvgRtt, nil
}
