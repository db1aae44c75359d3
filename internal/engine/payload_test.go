package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bainos/nighteye/internal/game"
)

func TestPayload_RoundTripEffect(t *testing.T) {
	orig := NewEffectEvent(game.EffectEvent{
		Target:     game.PlayerID,
		Effect:     0xC0001,
		InstanceID: 7,
		Applied:    false,
	})

	decoded, err := DecodeEvent(KindEffect, EncodePayload(orig))
	require.NoError(t, err)
	assert.Equal(t, orig.Effect, decoded.Effect)
}

func TestPayload_RoundTripFrame(t *testing.T) {
	decoded, err := DecodeEvent(KindFrame, EncodePayload(frame(true)))
	require.NoError(t, err)
	require.NotNil(t, decoded.Frame)
	assert.True(t, decoded.Frame.HasNightEyeEffect)
}

func TestDecodeEvent_Float64Numbers(t *testing.T) {
	// Journal rows decoded from JSON carry numbers as float64.
	ev, err := DecodeEvent(KindSpellCast, map[string]any{
		"caster": float64(0x14),
		"spell":  float64(0xA1B2C),
	})
	require.NoError(t, err)
	assert.Equal(t, game.PlayerID, ev.SpellCast.Caster)
	assert.Equal(t, game.FormID(0xA1B2C), ev.SpellCast.Spell)
}

func TestDecodeEvent_Errors(t *testing.T) {
	_, err := DecodeEvent("bogus", nil)
	assert.Error(t, err)

	_, err = DecodeEvent(KindEquip, map[string]any{"actor": int64(1)})
	assert.Error(t, err, "missing fields must be rejected")

	_, err = DecodeEvent(KindEquip, map[string]any{
		"actor": "not-a-number", "base_object": int64(1), "equipped": true,
	})
	assert.Error(t, err)

	_, err = DecodeEvent(KindSpellCast, map[string]any{
		"caster": int64(-1), "spell": int64(1),
	})
	assert.Error(t, err, "negative form ids are out of range")
}

func TestPending_StringParseRoundTrip(t *testing.T) {
	for _, p := range []Pending{PendingNone, PendingToggleOn, PendingRemoval} {
		parsed, err := ParsePending(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePending("nonsense")
	assert.Error(t, err)
}
