package engine

import (
	"sync"

	"github.com/bainos/nighteye/internal/game"
)

// EventKind names the engine's input kinds.
type EventKind string

const (
	// KindEquip is an equip/unequip event from the host event bus.
	KindEquip EventKind = "equip"
	// KindSpellCast is a finished spell cast from the host event bus.
	KindSpellCast EventKind = "spell-cast"
	// KindEffect is an active-effect apply/remove from the host event bus.
	KindEffect EventKind = "effect"
	// KindFrame is the per-frame poll tick from the renderer callback,
	// carrying the world observation sampled when the tick was built.
	KindFrame EventKind = "frame"
	// KindDesyncCheck is the one-shot post-load reconciliation input.
	KindDesyncCheck EventKind = "desync-check"
)

// FrameObservation is the world state sampled for one frame tick.
type FrameObservation struct {
	// HasNightEyeEffect is whether any configured apply effect was live
	// on the player when the tick was built.
	HasNightEyeEffect bool
}

// DesyncObservation is the world state sampled for the post-load check.
type DesyncObservation struct {
	HasNightEyeEffect bool
}

// Event is the union of engine inputs. Exactly one payload pointer is
// non-nil, matching Kind.
type Event struct {
	Kind      EventKind
	Equip     *game.EquipEvent
	SpellCast *game.SpellCastEvent
	Effect    *game.EffectEvent
	Frame     *FrameObservation
	Desync    *DesyncObservation
}

// NewEquipEvent wraps an equip event for the queue.
func NewEquipEvent(ev game.EquipEvent) Event {
	return Event{Kind: KindEquip, Equip: &ev}
}

// NewSpellCastEvent wraps a spell-cast event for the queue.
func NewSpellCastEvent(ev game.SpellCastEvent) Event {
	return Event{Kind: KindSpellCast, SpellCast: &ev}
}

// NewEffectEvent wraps an effect apply/remove event for the queue.
func NewEffectEvent(ev game.EffectEvent) Event {
	return Event{Kind: KindEffect, Effect: &ev}
}

// eventQueue is a thread-safe FIFO queue of engine inputs.
//
// Unbounded: the host's event bursts (a cast plus its effect fallout in
// one dispatch) must never block the dispatch thread. A buffered signal
// channel enables context-aware waiting in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	// Non-blocking: a buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	// Nil out the slot so the payload pointers can be collected.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed and wakes all waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
