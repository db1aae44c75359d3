package journal

import (
	"context"
	"fmt"

	"github.com/bainos/nighteye/internal/engine"
)

// Record appends a journal entry. Implements engine.Recorder.
//
// The row ID is content-addressed, so recording the same (session, seq,
// kind, payload) again is a silent no-op via ON CONFLICT - replaying a
// session into the same database cannot duplicate rows.
func (s *Store) Record(ctx context.Context, e engine.Entry) error {
	payloadJSON, err := MarshalCanonical(anyMap(e.Payload))
	if err != nil {
		return fmt.Errorf("record event: encode payload: %w", err)
	}

	id, err := eventID(e.Session, e.Seq, string(e.Kind), e.Payload)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, session, seq, kind, payload, is_active, last_event, pending, render_armed, render_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		e.Session,
		e.Seq,
		string(e.Kind),
		string(payloadJSON),
		boolInt(e.Result.IsActive),
		uint32(e.Result.LastEvent),
		e.Result.Pending.String(),
		boolInt(e.Result.RenderArmed),
		boolInt(e.Result.RenderValue),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// anyMap normalizes the payload map for canonical marshaling.
// A nil payload is stored as an empty object, never as null.
func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
