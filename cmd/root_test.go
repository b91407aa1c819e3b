// cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/internal/config"
	"github.com/xkilldash9x/layerlift/internal/observability"
)

// silenceLogs puts the global logger into a fatal-only state so command
// tests do not spray console output. PersistentPreRunE's own
// InitializeLogger call becomes a no-op afterwards.
func silenceLogs(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})
	t.Cleanup(observability.ResetForTest)
}

// executeCommandNoPreRun is for testing argument and flag validation without
// triggering the config loading in PersistentPreRunE.
func executeCommandNoPreRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	testRootCmd := NewRootCommand()
	testRootCmd.PersistentPreRunE = nil

	buf := new(bytes.Buffer)
	testRootCmd.SetOut(buf)
	testRootCmd.SetErr(buf)
	testRootCmd.SetArgs(args)
	err := testRootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "test-config-*.yaml")
	require.NoError(t, err)
	_, err = tmpfile.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestRootCmd_VersionFlag(t *testing.T) {
	testRootCmd := NewRootCommand()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{"--version"})

	err := testRootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "layerlift version 0.1.0")
}

func TestRootCmd_NoArgs(t *testing.T) {
	testRootCmd := NewRootCommand()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{})

	err := testRootCmd.ExecuteContext(context.Background())

	// A bare root command prints help rather than failing.
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Layerlift converts captured web pages into layered design documents.")
}

// TestRootCmd_ConfigFileLoading verifies the full chain: yaml file ->
// PersistentPreRunE -> command context -> configFromContext in a subcommand.
func TestRootCmd_ConfigFileLoading(t *testing.T) {
	silenceLogs(t)

	configContent := `
capture:
  viewport:
    width: 375
    height: 812
  settle_delay: 250ms
convert:
  concurrency: 2
  pretty: true
`
	configFile := createTempConfig(t, configContent)

	testRootCmd := NewRootCommand()

	// Find the convert command and intercept its RunE so no conversion runs.
	var convertCmd *cobra.Command
	for _, sub := range testRootCmd.Commands() {
		if sub.Use == "convert [captures...]" {
			convertCmd = sub
			break
		}
	}
	require.NotNil(t, convertCmd)

	var captured *config.Config
	convertCmd.RunE = func(cmd *cobra.Command, args []string) error {
		captured = configFromContext(cmd.Context())
		return nil
	}

	testRootCmd.SetArgs([]string{"--config", configFile, "convert", "ignored.json"})
	err := testRootCmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, 2, captured.Convert.Concurrency)
	assert.True(t, captured.Convert.Pretty)
	assert.Equal(t, 375.0, captured.Capture.Viewport.Width)
	assert.Equal(t, 812.0, captured.Capture.Viewport.Height)
	assert.Equal(t, 250*time.Millisecond, captured.Capture.SettleDelay)

	// Keys the file does not mention keep their defaults.
	assert.Equal(t, 60*time.Second, captured.Capture.NavigationTimeout)
	assert.True(t, captured.Browser.Headless)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	silenceLogs(t)

	configFile := createTempConfig(t, "convert:\n  concurrency: 0\n")

	testRootCmd := NewRootCommand()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{"--config", configFile, "convert", "ignored.json"})

	err := testRootCmd.ExecuteContext(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, err.Error(), "convert.concurrency must be a positive integer")
}

func TestConfigFromContext_Fallback(t *testing.T) {
	cfg := configFromContext(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, 4, cfg.Convert.Concurrency)
}
