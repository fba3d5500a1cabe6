// Package app wires the admin API server out of configuration: Airflow
// client, orchestrator, router, middleware, and HTTP lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencve/cvesync/pkg/airflow"
	"github.com/opencve/cvesync/pkg/config"
	"github.com/opencve/cvesync/pkg/server/api"
	"github.com/opencve/cvesync/pkg/server/httpx"
	"github.com/opencve/cvesync/pkg/trigger"
)

// shutdownGrace bounds how long in-flight requests may run after a
// shutdown signal. Waiting sync requests can legitimately be slow, so
// this is generous.
const shutdownGrace = 30 * time.Second

// App is the admin API server runtime.
type App struct {
	HTTP   *http.Server
	Ready  *atomic.Bool
	Config config.Config
	Logger zerolog.Logger
}

// New creates and configures the server application from the merged
// configuration.
func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	logger.Info().Msg("Initializing admin API server")

	client, err := airflow.NewClient(cfg.Airflow.URL, cfg.Airflow.Username, cfg.Airflow.Password)
	if err != nil {
		return nil, fmt.Errorf("configure airflow client: %w", err)
	}

	ready := &atomic.Bool{}
	deps := &api.Deps{
		Orchestrator:   trigger.NewOrchestrator(client, cfg.Trigger.Interval),
		Airflow:        client,
		DAGID:          cfg.Airflow.DAG,
		DefaultTimeout: cfg.Trigger.Timeout,
		Ready:          ready,
	}

	router := httpx.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Addr, cfg.Server.Port),
		Handler:      httpx.Chain(cfg.Server, router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		HTTP:   httpServer,
		Ready:  ready,
		Config: cfg,
		Logger: logger,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled or the
// listener fails. Shutdown is graceful up to shutdownGrace.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info().
		Str("addr", a.HTTP.Addr).
		Str("airflow_url", a.Config.Airflow.URL).
		Str("dag_id", a.Config.Airflow.DAG).
		Msg("Starting cvesync server")

	serverErr := make(chan error, 1)
	go func() {
		if err := a.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	a.Ready.Store(true)
	a.Logger.Info().Msg("Server is ready and accepting connections")

	select {
	case <-ctx.Done():
		a.Logger.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		a.Logger.Error().Err(err).Msg("Server error")
		return err
	}

	a.Ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	a.Logger.Info().Msg("Server stopped")
	return nil
}
