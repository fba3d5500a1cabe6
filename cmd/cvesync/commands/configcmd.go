package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opencve/cvesync/pkg/appctx"
	"github.com/opencve/cvesync/pkg/config"
)

const redactedValue = "********"

// newConfigCommand builds the 'config' command group.
func newConfigCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cvesync configuration",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(configFile))

	return cmd
}

// newConfigInitCommand writes a commented starter configuration file.
func newConfigInitCommand() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			if err := os.WriteFile(output, []byte(defaultConfigTemplate()), 0o600); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cvesync.yaml", "Destination path for the configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the destination if it exists")

	return cmd
}

// newConfigShowCommand prints the effective merged configuration.
func newConfigShowCommand(configFile *string) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after merging all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not initialized")
			}
			cfg := manager.Get()

			if *configFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", *configFile)
			}

			doc := configDocument(cfg, showSecrets)
			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("render configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print secrets instead of redacting them")

	return cmd
}

// configDocument converts a Config into a YAML-friendly document,
// redacting secrets unless asked not to.
func configDocument(cfg config.Config, showSecrets bool) map[string]any {
	password := cfg.Airflow.Password
	token := cfg.Server.Auth.Token
	if !showSecrets {
		if password != "" {
			password = redactedValue
		}
		if token != "" {
			token = redactedValue
		}
	}

	return map[string]any{
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
			"file":   cfg.Log.File,
		},
		"airflow": map[string]any{
			"url":      cfg.Airflow.URL,
			"username": cfg.Airflow.Username,
			"password": password,
			"dag":      cfg.Airflow.DAG,
		},
		"trigger": map[string]any{
			"timeout":  cfg.Trigger.Timeout.String(),
			"interval": cfg.Trigger.Interval.String(),
		},
		"server": map[string]any{
			"addr":          cfg.Server.Addr,
			"port":          cfg.Server.Port,
			"read_timeout":  cfg.Server.ReadTimeout.String(),
			"write_timeout": cfg.Server.WriteTimeout.String(),
			"auth": map[string]any{
				"mode":  cfg.Server.Auth.Mode,
				"token": token,
			},
		},
	}
}

// defaultConfigTemplate renders the starter config file. Values mirror
// DefaultConfig so an untouched file behaves like no file at all.
func defaultConfigTemplate() string {
	def := config.DefaultConfig()
	return fmt.Sprintf(`# cvesync configuration.
# Every value can also be set with a CVESYNC_ environment variable,
# e.g. CVESYNC_AIRFLOW_URL overrides airflow.url.

log:
  level: %s        # debug, info, warn, error
  format: %s       # text or json
  # file: /var/log/cvesync.log

airflow:
  url: %s
  username: %s
  password: %s
  dag: %s

trigger:
  timeout: %s      # how long 'sync --wait' waits for the run to finish
  interval: %s     # delay between run state queries

server:
  addr: %s
  port: %d
  read_timeout: %s
  write_timeout: %s
  auth:
    mode: %s       # none or token
    # token: change-me
`,
		def.Log.Level, def.Log.Format,
		def.Airflow.URL, def.Airflow.Username, def.Airflow.Password, def.Airflow.DAG,
		def.Trigger.Timeout, def.Trigger.Interval,
		def.Server.Addr, def.Server.Port, def.Server.ReadTimeout, def.Server.WriteTimeout,
		def.Server.Auth.Mode,
	)
}
