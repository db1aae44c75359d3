package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bainos/nighteye/internal/engine"
	"github.com/bainos/nighteye/internal/state"
)

// ReadSession returns every journal entry for a session in replay order.
// Seq is the primary order; the content-addressed ID breaks ties so the
// order is total and stable across databases.
func (s *Store) ReadSession(ctx context.Context, session string) ([]engine.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, seq, kind, payload, is_active, last_event, pending, render_armed, render_value
		FROM events
		WHERE session = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", session, err)
	}
	defer rows.Close()

	var entries []engine.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("read session %s: %w", session, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read session %s: %w", session, err)
	}
	return entries, nil
}

// Sessions lists all session tokens present in the journal, oldest
// first. UUIDv7 tokens sort chronologically as text.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT session FROM events ORDER BY session ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var session string
		if err := rows.Scan(&session); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (engine.Entry, error) {
	var (
		e           engine.Entry
		kind        string
		payloadJSON string
		isActive    int
		lastEvent   uint32
		pending     string
		renderArmed int
		renderValue int
	)
	if err := row.Scan(&e.Session, &e.Seq, &kind, &payloadJSON, &isActive, &lastEvent, &pending, &renderArmed, &renderValue); err != nil {
		return engine.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.Kind = engine.EventKind(kind)

	if err := json.Unmarshal([]byte(payloadJSON), &e.Payload); err != nil {
		return engine.Entry{}, fmt.Errorf("decode payload: %w", err)
	}

	p, err := engine.ParsePending(pending)
	if err != nil {
		return engine.Entry{}, fmt.Errorf("decode entry seq %d: %w", e.Seq, err)
	}

	e.Result = engine.Transition{
		IsActive:    isActive != 0,
		LastEvent:   state.LastEvent(lastEvent),
		Pending:     p,
		RenderArmed: renderArmed != 0,
		RenderValue: renderValue != 0,
	}
	return e, nil
}
