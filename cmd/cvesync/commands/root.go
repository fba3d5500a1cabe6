package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	serverCmd "github.com/opencve/cvesync/cmd/cvesync/commands/server"
	"github.com/opencve/cvesync/pkg/appctx"
	"github.com/opencve/cvesync/pkg/config"
	"github.com/opencve/cvesync/pkg/logging"
)

const cliExecutable = "cvesync"

// NewCommand constructs the top-level cvesync CLI command, wiring global
// flags, configuration loading, and logging setup shared by every
// subcommand.
func NewCommand() *cobra.Command {
	var (
		configFile string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "cvesync triggers OpenCVE data synchronization through Airflow",
		Long: `cvesync asks the Airflow deployment that schedules the OpenCVE DAG to
start a synchronization run, and can wait for that run to finish.

It replaces the hourly schedule for one-off needs: after restoring a
database, while testing a deployment, or when fresh CVE data is needed
right now.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager := config.NewManager()
			if err := manager.Load(config.DefaultSources(configFile, cmd.Flags(), debug)); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			cfg := manager.Get()
			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format, cfg.Log.File); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			ctx := appctx.WithConfig(cmd.Context(), manager)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newConfigCommand(&configFile))
	cmd.AddCommand(serverCmd.NewCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
