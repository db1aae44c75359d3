package state

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bainos/nighteye/internal/cosave"
)

func TestSaveLoad_RoundTripV2(t *testing.T) {
	var buf bytes.Buffer
	orig := NightEyeState{IsActive: true, LastEvent: LastEffectApplied}
	require.NoError(t, orig.Save(cosave.NewWriter(&buf)))

	var loaded NightEyeState
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, orig, loaded)
}

func TestLoad_V1YieldsLastNone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cosave.NewWriter(&buf).WriteRecord(RecordTag, 1, []byte{1}))

	loaded := NightEyeState{LastEvent: LastEquipped}
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.True(t, restored)
	assert.True(t, loaded.IsActive)
	assert.Equal(t, LastNone, loaded.LastEvent, "v1 records carry no last event")
}

func TestLoad_UnknownVersionSkipped(t *testing.T) {
	var buf bytes.Buffer
	w := cosave.NewWriter(&buf)
	require.NoError(t, w.WriteRecord(RecordTag, 99, []byte{1, 2, 3}))

	loaded := NightEyeState{IsActive: false, LastEvent: LastNone}
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.False(t, restored, "unknown version must not restore state")
	assert.False(t, loaded.IsActive)
}

func TestLoad_ForeignRecordsIgnored(t *testing.T) {
	var buf bytes.Buffer
	w := cosave.NewWriter(&buf)
	require.NoError(t, w.WriteRecord(0x4F544852, 1, []byte{0xFF})) // other plugin
	st := NightEyeState{IsActive: true, LastEvent: LastEffectApplied}
	require.NoError(t, st.Save(w))

	var loaded NightEyeState
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, st, loaded)
}

func TestLoad_TruncatedPayloadSkipped(t *testing.T) {
	var buf bytes.Buffer
	w := cosave.NewWriter(&buf)
	require.NoError(t, w.WriteRecord(RecordTag, RecordVersion, []byte{1, 0})) // too short for v2

	var loaded NightEyeState
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestLoad_LastWriterWins(t *testing.T) {
	// Two BNEF records in one stream: the later one is authoritative,
	// matching a host that rewrites records in place on every save.
	var buf bytes.Buffer
	w := cosave.NewWriter(&buf)

	payload := make([]byte, 5)
	payload[0] = 1
	binary.LittleEndian.PutUint32(payload[1:], uint32(LastEffectApplied))
	require.NoError(t, w.WriteRecord(RecordTag, RecordVersion, payload))

	payload2 := make([]byte, 5)
	binary.LittleEndian.PutUint32(payload2[1:], uint32(LastEffectDispelled))
	require.NoError(t, w.WriteRecord(RecordTag, RecordVersion, payload2))

	var loaded NightEyeState
	restored, err := loaded.Load(cosave.NewReader(&buf))
	require.NoError(t, err)
	assert.True(t, restored)
	assert.False(t, loaded.IsActive)
	assert.Equal(t, LastEffectDispelled, loaded.LastEvent)
}

func TestRevert(t *testing.T) {
	st := NightEyeState{IsActive: true, LastEvent: LastEffectApplied}
	st.Revert()
	assert.Equal(t, NightEyeState{}, st)
}

func TestLastEvent_String(t *testing.T) {
	assert.Equal(t, "none", LastNone.String())
	assert.Equal(t, "effect-dispelled", LastEffectDispelled.String())
	assert.Equal(t, "last-event(42)", LastEvent(42).String())
}
