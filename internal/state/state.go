// Package state holds the persisted Night Eye tracker state and its
// co-save codec.
//
// The on-wire record is tagged 'BNEF'. Version 1 carried only the active
// flag; version 2 added the last observed event kind. Unknown versions are
// skipped with a warning so older and newer plugin builds can share saves.
package state

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/bainos/nighteye/internal/cosave"
)

// RecordTag is the co-save record tag ('BNEF').
const RecordTag uint32 = 0x424E4546

// RecordVersion is the current serialization version.
const RecordVersion uint32 = 2

// LastEvent records the most recent engine transition kind, persisted for
// post-load diagnostics.
type LastEvent uint32

const (
	LastNone LastEvent = iota
	LastEquipped
	LastUnequipped
	LastEffectApplied
	LastEffectDispelled
)

// String implements fmt.Stringer for logging and journal payloads.
func (e LastEvent) String() string {
	switch e {
	case LastNone:
		return "none"
	case LastEquipped:
		return "equipped"
	case LastUnequipped:
		return "unequipped"
	case LastEffectApplied:
		return "effect-applied"
	case LastEffectDispelled:
		return "effect-dispelled"
	default:
		return fmt.Sprintf("last-event(%d)", uint32(e))
	}
}

// NightEyeState is the authoritative tracked state: whether the effect is
// logically active, and the last confirmed transition.
type NightEyeState struct {
	IsActive  bool
	LastEvent LastEvent
}

// Revert resets to defaults. Called on new game or when loading a save
// that carries no record for this plugin.
func (s *NightEyeState) Revert() {
	s.IsActive = false
	s.LastEvent = LastNone
}

// Save writes the state as a single current-version record.
func (s *NightEyeState) Save(w *cosave.Writer) error {
	payload := make([]byte, 5)
	if s.IsActive {
		payload[0] = 1
	}
	binary.LittleEndian.PutUint32(payload[1:5], uint32(s.LastEvent))

	if err := w.WriteRecord(RecordTag, RecordVersion, payload); err != nil {
		return fmt.Errorf("save night eye state: %w", err)
	}
	return nil
}

// DecodeRecord decodes a single 'BNEF' record payload. Returns an error
// for foreign tags, unknown versions and truncated payloads.
func DecodeRecord(rec cosave.Record) (NightEyeState, error) {
	if rec.Tag != RecordTag {
		return NightEyeState{}, fmt.Errorf("not a night eye record: tag %s", cosave.TagString(rec.Tag))
	}

	switch rec.Version {
	case 1:
		if len(rec.Payload) < 1 {
			return NightEyeState{}, fmt.Errorf("record truncated: version 1 needs 1 byte, got %d", len(rec.Payload))
		}
		return NightEyeState{IsActive: rec.Payload[0] != 0, LastEvent: LastNone}, nil

	case RecordVersion:
		if len(rec.Payload) < 5 {
			return NightEyeState{}, fmt.Errorf("record truncated: version 2 needs 5 bytes, got %d", len(rec.Payload))
		}
		return NightEyeState{
			IsActive:  rec.Payload[0] != 0,
			LastEvent: LastEvent(binary.LittleEndian.Uint32(rec.Payload[1:5])),
		}, nil

	default:
		return NightEyeState{}, fmt.Errorf("unknown record version %d", rec.Version)
	}
}

// Load scans the record stream for this plugin's data.
//
// Returns restored=true when a usable record was consumed. Records with an
// unknown version are skipped with a warning; records for other plugins
// are ignored. Both leave the state untouched.
func (s *NightEyeState) Load(r *cosave.Reader) (restored bool, err error) {
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return restored, nil
		}
		if err != nil {
			return restored, fmt.Errorf("load night eye state: %w", err)
		}

		if rec.Tag != RecordTag {
			continue
		}

		decoded, decodeErr := DecodeRecord(rec)
		if decodeErr != nil {
			slog.Warn("skipping night eye record",
				"version", rec.Version,
				"reason", decodeErr.Error(),
			)
			continue
		}

		*s = decoded
		restored = true
		slog.Info("loaded night eye state",
			"version", rec.Version,
			"active", s.IsActive,
			"last_event", s.LastEvent.String(),
		)
	}
}
