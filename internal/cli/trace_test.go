package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_ListsSessions(t *testing.T) {
	_, dbPath := recordedJournal(t)

	out, err := executeCommand("trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cli-toggle-on")
}

func TestTrace_Timeline(t *testing.T) {
	_, dbPath := recordedJournal(t)

	out, err := executeCommand("trace", "--db", dbPath, "--session", "cli-toggle-on")
	require.NoError(t, err)
	assert.Contains(t, out, "Session cli-toggle-on (3 events)")
	assert.Contains(t, out, "spell-cast")
	assert.Contains(t, out, "frame")
}

func TestTrace_KindFilter(t *testing.T) {
	_, dbPath := recordedJournal(t)

	out, err := executeCommand("--format", "json", "trace", "--db", dbPath,
		"--session", "cli-toggle-on", "--kind", "frame")
	require.NoError(t, err)

	var result TraceResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "frame", result.Timeline[0].Kind)
	assert.Equal(t, int64(3), result.Timeline[0].Seq)
}

func TestTrace_JSONTimeline(t *testing.T) {
	_, dbPath := recordedJournal(t)

	out, err := executeCommand("--format", "json", "trace", "--db", dbPath, "--session", "cli-toggle-on")
	require.NoError(t, err)

	var result TraceResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 3, result.Total)
	assert.Equal(t, "spell-cast", result.Timeline[0].Kind)
	assert.True(t, result.Timeline[0].IsActive)
	assert.Equal(t, "toggle-on", result.Timeline[0].Pending)
}

func TestTrace_UnknownSession(t *testing.T) {
	_, dbPath := recordedJournal(t)

	out, err := executeCommand("trace", "--db", dbPath, "--session", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No events for session missing")
}
