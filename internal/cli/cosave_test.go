package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bainos/nighteye/internal/cosave"
)

func TestCosave_EncodeDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragment.bin")

	out, err := executeCommand("cosave", "encode", path, "--active", "--last-event", "effect-applied")
	require.NoError(t, err)
	assert.Contains(t, out, "BNEF")

	out, err = executeCommand("cosave", "decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "BNEF v2")
	assert.Contains(t, out, "active=true last=effect-applied")
}

func TestCosave_DecodeJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragment.bin")

	_, err := executeCommand("cosave", "encode", path)
	require.NoError(t, err)

	out, err := executeCommand("--format", "json", "cosave", "decode", path)
	require.NoError(t, err)

	var result CosaveDecodeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "BNEF", result.Records[0].Tag)
	assert.Equal(t, uint32(2), result.Records[0].Version)
	require.NotNil(t, result.Records[0].IsActive)
	assert.False(t, *result.Records[0].IsActive)
}

func TestCosave_DecodeForeignRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.bin")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := cosave.NewWriter(f)
	require.NoError(t, w.WriteRecord(0x584D4153, 1, []byte{1, 2, 3}))
	require.NoError(t, f.Close())

	out, err := executeCommand("cosave", "decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 bytes")
	assert.NotContains(t, out, "active=")
}

func TestCosave_EncodeBadLastEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragment.bin")

	_, err := executeCommand("cosave", "encode", path, "--last-event", "vanished")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCosave_DecodeMissingFile(t *testing.T) {
	_, err := executeCommand("cosave", "decode", "/nonexistent/fragment.bin")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCosave_DecodeTruncatedFragment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x46, 0x45}, 0o644))

	_, err := executeCommand("cosave", "decode", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
