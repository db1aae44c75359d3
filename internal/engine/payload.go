package engine

import (
	"fmt"

	"github.com/bainos/nighteye/internal/game"
)

// EncodePayload flattens an event's payload into the generic map stored
// in journal rows. Form identifiers are stored as int64 so the payload
// survives canonical JSON (which forbids floats).
func EncodePayload(ev Event) map[string]any {
	switch ev.Kind {
	case KindEquip:
		if ev.Equip == nil {
			return map[string]any{}
		}
		return map[string]any{
			"actor":       int64(ev.Equip.Actor),
			"base_object": int64(ev.Equip.BaseObject),
			"equipped":    ev.Equip.Equipped,
		}
	case KindSpellCast:
		if ev.SpellCast == nil {
			return map[string]any{}
		}
		return map[string]any{
			"caster": int64(ev.SpellCast.Caster),
			"spell":  int64(ev.SpellCast.Spell),
		}
	case KindEffect:
		if ev.Effect == nil {
			return map[string]any{}
		}
		return map[string]any{
			"target":   int64(ev.Effect.Target),
			"effect":   int64(ev.Effect.Effect),
			"instance": int64(ev.Effect.InstanceID),
			"applied":  ev.Effect.Applied,
		}
	case KindFrame:
		if ev.Frame == nil {
			return map[string]any{}
		}
		return map[string]any{
			"has_effect": ev.Frame.HasNightEyeEffect,
		}
	case KindDesyncCheck:
		if ev.Desync == nil {
			return map[string]any{}
		}
		return map[string]any{
			"has_effect": ev.Desync.HasNightEyeEffect,
		}
	default:
		return map[string]any{}
	}
}

// DecodeEvent rebuilds an event from a journaled kind and payload.
// The inverse of EncodePayload; used by replay.
func DecodeEvent(kind EventKind, payload map[string]any) (Event, error) {
	switch kind {
	case KindEquip:
		actor, err := payloadFormID(payload, "actor")
		if err != nil {
			return Event{}, err
		}
		base, err := payloadFormID(payload, "base_object")
		if err != nil {
			return Event{}, err
		}
		equipped, err := payloadBool(payload, "equipped")
		if err != nil {
			return Event{}, err
		}
		return NewEquipEvent(game.EquipEvent{Actor: actor, BaseObject: base, Equipped: equipped}), nil

	case KindSpellCast:
		caster, err := payloadFormID(payload, "caster")
		if err != nil {
			return Event{}, err
		}
		spell, err := payloadFormID(payload, "spell")
		if err != nil {
			return Event{}, err
		}
		return NewSpellCastEvent(game.SpellCastEvent{Caster: caster, Spell: spell}), nil

	case KindEffect:
		target, err := payloadFormID(payload, "target")
		if err != nil {
			return Event{}, err
		}
		effect, err := payloadFormID(payload, "effect")
		if err != nil {
			return Event{}, err
		}
		instance, err := payloadInt(payload, "instance")
		if err != nil {
			return Event{}, err
		}
		applied, err := payloadBool(payload, "applied")
		if err != nil {
			return Event{}, err
		}
		return NewEffectEvent(game.EffectEvent{
			Target:     target,
			Effect:     effect,
			InstanceID: uint32(instance),
			Applied:    applied,
		}), nil

	case KindFrame:
		has, err := payloadBool(payload, "has_effect")
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindFrame, Frame: &FrameObservation{HasNightEyeEffect: has}}, nil

	case KindDesyncCheck:
		has, err := payloadBool(payload, "has_effect")
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindDesyncCheck, Desync: &DesyncObservation{HasNightEyeEffect: has}}, nil

	default:
		return Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
}

func payloadInt(payload map[string]any, key string) (int64, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("payload missing %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		// JSON decoding of journal rows produces float64 for numbers.
		return int64(n), nil
	default:
		return 0, fmt.Errorf("payload field %q has type %T, want integer", key, v)
	}
}

func payloadFormID(payload map[string]any, key string) (game.FormID, error) {
	n, err := payloadInt(payload, key)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 0xFFFFFFFF {
		return 0, fmt.Errorf("payload field %q out of form id range: %d", key, n)
	}
	return game.FormID(n), nil
}

func payloadBool(payload map[string]any, key string) (bool, error) {
	v, ok := payload[key]
	if !ok {
		return false, fmt.Errorf("payload missing %q", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("payload field %q has type %T, want bool", key, v)
	}
	return b, nil
}
