// Package api holds the admin API's dependency container and shared
// response helpers.
package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/opencve/cvesync/pkg/airflow"
	"github.com/opencve/cvesync/pkg/trigger"
)

// Runner is the orchestration entry point the handlers call.
type Runner interface {
	Run(ctx context.Context, req trigger.Request, wait bool, timeout time.Duration, progress trigger.ProgressFunc) trigger.Outcome
}

// StatusAPI is the slice of the Airflow client the read-only endpoints use.
type StatusAPI interface {
	GetDAGRun(ctx context.Context, dagID, runID string) (*airflow.DAGRun, error)
	Health(ctx context.Context) (*airflow.HealthStatus, error)
	RunURL(dagID, runID string) string
}

// Deps carries handler dependencies. Handlers receive it rather than
// reaching for globals so tests can substitute fakes.
type Deps struct {
	Orchestrator Runner
	Airflow      StatusAPI

	// DAGID is the workflow every sync request targets.
	DAGID string

	// DefaultTimeout is the wait deadline used when a request does not
	// supply one.
	DefaultTimeout time.Duration

	// Ready flips to true once startup completed; /readyz reports it.
	Ready *atomic.Bool
}
