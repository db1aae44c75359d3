package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the CLI with args and captures stdout.
func executeCommand(args ...string) (string, error) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "nighteye", cmd.Use)
	assert.Contains(t, cmd.Long, "reconciliation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"simulate", "replay", "trace", "validate", "cosave"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := executeCommand("--format", "xml", "trace", "--db", "x.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestSimulateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	simCmd, _, err := cmd.Find([]string{"simulate"})
	require.NoError(t, err)

	require.NotNil(t, simCmd.Flags().Lookup("db"))
	require.NotNil(t, simCmd.Flags().Lookup("filter"))
}

func TestReplayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)

	require.NotNil(t, replayCmd.Flags().Lookup("db"))
	require.NotNil(t, replayCmd.Flags().Lookup("scenario"))
	require.NotNil(t, replayCmd.Flags().Lookup("session"))
}

func TestTraceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	traceCmd, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)

	require.NotNil(t, traceCmd.Flags().Lookup("db"))
	require.NotNil(t, traceCmd.Flags().Lookup("session"))
	require.NotNil(t, traceCmd.Flags().Lookup("kind"))
}
