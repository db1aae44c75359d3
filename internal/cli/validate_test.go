package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "toggle-on.yaml", toggleOnYAML)

	out, err := executeCommand("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    ")
}

func TestValidate_BadFormID(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad-form.yaml", `name: bad-form
description: spell form is not hex
config:
  spells: ["night-eye"]
steps:
  - do: frame
assertions:
  - type: render_pushes
`)

	out, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL")
}

func TestValidate_UnknownStepKind(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad-step.yaml", `name: bad-step
description: teleport is not a step
steps:
  - do: teleport
assertions:
  - type: render_pushes
`)

	out, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL")
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "typo.yaml", `name: typo
description: assertion singular is a typo
steps:
  - do: frame
assertion:
  - type: render_pushes
`)

	_, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "toggle-on.yaml", toggleOnYAML)

	out, err := executeCommand("--format", "json", "validate", path)
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Valid)
}

func TestValidate_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NightEye.ini")
	require.NoError(t, os.WriteFile(path, []byte("[General]\nVampireSight = 0x000A1B2C\n"), 0o644))

	out, err := executeCommand("validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    ")
}

func TestValidate_ConfigFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NightEye.ini")
	require.NoError(t, os.WriteFile(path, []byte("[General]\nVampireSight = nope\n"), 0o644))

	out, err := executeCommand("validate", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL")
}

func TestValidate_NoInputs(t *testing.T) {
	_, err := executeCommand("validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_UnreadableFile(t *testing.T) {
	out, err := executeCommand("validate", "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "read file")
}
