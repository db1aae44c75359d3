// Package testutil provides deterministic test doubles for the engine's
// host ports: a scriptable world, a recording renderer and notifier, and
// a fixed session generator.
package testutil

import (
	"sync"

	"github.com/bainos/nighteye/internal/game"
)

// FakeWorld is an in-memory game.World with a mutable spell table and
// per-actor active-effect lists.
type FakeWorld struct {
	mu      sync.Mutex
	spells  map[game.FormID]game.Spell
	effects map[game.FormID][]game.ActiveEffect
	nextID  uint32
}

// NewFakeWorld creates an empty world.
func NewFakeWorld() *FakeWorld {
	return &FakeWorld{
		spells:  make(map[game.FormID]game.Spell),
		effects: make(map[game.FormID][]game.ActiveEffect),
	}
}

// AddSpell installs or replaces a spell form.
func (w *FakeWorld) AddSpell(sp game.Spell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spells[sp.ID] = sp
}

// LookupSpell implements game.World.
func (w *FakeWorld) LookupSpell(id game.FormID) (game.Spell, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sp, ok := w.spells[id]
	return sp, ok
}

// ApplyEffect attaches a live effect instance to an actor and returns its
// instance identifier.
func (w *FakeWorld) ApplyEffect(actor, effect game.FormID) uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	w.effects[actor] = append(w.effects[actor], game.ActiveEffect{
		InstanceID: w.nextID,
		Effect:     effect,
	})
	return w.nextID
}

// RemoveEffect detaches every live instance of the given base effect from
// an actor. Removing an absent effect is a no-op.
func (w *FakeWorld) RemoveEffect(actor, effect game.FormID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.effects[actor][:0]
	for _, ae := range w.effects[actor] {
		if ae.Effect != effect {
			kept = append(kept, ae)
		}
	}
	w.effects[actor] = kept
}

// ActorEffects implements game.World.
func (w *FakeWorld) ActorEffects(actor game.FormID) []game.ActiveEffect {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]game.ActiveEffect, len(w.effects[actor]))
	copy(out, w.effects[actor])
	return out
}

// RecordingRenderer captures every acknowledged SetParameter call and can
// be switched to reject sets, exercising the at-least-once retry path.
type RecordingRenderer struct {
	mu     sync.Mutex
	down   bool
	pushes []bool
}

// NewRecordingRenderer creates a renderer that acknowledges every set.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// SetDown makes subsequent SetParameter calls fail (true) or succeed (false).
func (r *RecordingRenderer) SetDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

// SetParameter implements game.Renderer.
func (r *RecordingRenderer) SetParameter(file, name string, value bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return false
	}
	r.pushes = append(r.pushes, value)
	return true
}

// Pushes returns the acknowledged parameter values in order.
func (r *RecordingRenderer) Pushes() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.pushes))
	copy(out, r.pushes)
	return out
}

// RecordingNotifier captures on-screen notifications.
type RecordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

// Notify implements game.Notifier.
func (n *RecordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

// Messages returns the captured notifications in order.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.msgs))
	copy(out, n.msgs)
	return out
}
