package engine

import (
	"context"

	"github.com/bainos/nighteye/internal/state"
)

// Transition is the post-event state snapshot journaled with every
// processed input. Replays compare these snapshots to prove determinism.
type Transition struct {
	IsActive    bool
	LastEvent   state.LastEvent
	Pending     Pending
	RenderArmed bool
	RenderValue bool
}

// Entry is one journal row: the stamped input and the snapshot it
// produced.
type Entry struct {
	Session string
	Seq     int64
	Kind    EventKind
	Payload map[string]any
	Result  Transition
}

// Recorder persists journal entries. Implemented by journal.Store; the
// engine treats a failing recorder as a diagnostics gap, never as a
// reason to stop processing.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}
