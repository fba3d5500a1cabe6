package server

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opencve/cvesync/pkg/appctx"
	"github.com/opencve/cvesync/pkg/config"
	"github.com/opencve/cvesync/pkg/server/app"
)

// newStartServerCommand creates the 'cvesync server start' command.
//
// The server hosts the admin HTTP API that lets operators trigger CVE
// synchronization runs remotely, plus health and readiness endpoints.
// It runs until interrupted (SIGINT/SIGTERM), then shuts down
// gracefully. When started with --config, the file is watched and the
// configuration reloaded on change.
func newStartServerCommand() *cobra.Command {
	var (
		addr string
		port int
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the cvesync admin server",
		Long: `Start the cvesync admin server process.

The server exposes:
  - POST /api/v1/sync              trigger a synchronization run
  - GET  /api/v1/sync/runs/{id}    query a run's state
  - GET  /healthz, /readyz         liveness and readiness probes

It runs until interrupted (Ctrl+C) or killed, draining in-flight
requests on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not initialized")
			}

			cfg := manager.Get()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger := log.With().Str("component", "server").Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			configFile, _ := cmd.Flags().GetString("config")
			if configFile != "" {
				watcher, err := config.NewWatcher(manager, configFile, logger)
				if err != nil {
					logger.Warn().Err(err).Str("file", configFile).Msg("Config watcher unavailable, reload on change disabled")
				} else {
					watcher.Start(ctx)
				}
			}

			serverApp, err := app.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize server: %w", err)
			}

			return serverApp.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")

	return cmd
}
