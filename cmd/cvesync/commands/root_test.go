package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencve/cvesync/pkg/config"
)

// execute runs the CLI with the given args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "cvesync")
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"version"`)
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	t.Setenv("CVESYNC_AIRFLOW_PASSWORD", "supersecret")

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "********")
	require.NotContains(t, out, "supersecret")
}

func TestConfigShow_ShowSecrets(t *testing.T) {
	t.Setenv("CVESYNC_AIRFLOW_PASSWORD", "supersecret")

	out, err := execute(t, "config", "show", "--show-secrets")
	require.NoError(t, err)
	require.Contains(t, out, "supersecret")
}

func TestConfigInitWritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvesync.yaml")

	out, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	// The generated file must load cleanly through the normal config path.
	manager := config.NewManager()
	require.NoError(t, manager.Load(config.DefaultSources(path, nil, false)))
	require.Equal(t, config.DefaultConfig().Airflow.DAG, manager.Get().Airflow.DAG)
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvesync.yaml")

	_, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)

	_, err = execute(t, "config", "init", "--output", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--output", path, "--force")
	require.NoError(t, err)
}
