package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bainos/nighteye/internal/config"
	"github.com/bainos/nighteye/internal/cosave"
	"github.com/bainos/nighteye/internal/game"
	"github.com/bainos/nighteye/internal/state"
)

// Renderer parameter written by every push. The parameter is a plain
// boolean on the receiver and idempotent to set.
const (
	RenderFile      = "ENBEFFECT.FX"
	RenderParameter = "KNActive"
)

// renderSlot is the single-slot outbound render update. Arming overwrites
// any unsent value: only the newest state matters to the renderer.
type renderSlot struct {
	armed bool
	value bool
}

func (s *renderSlot) arm(v bool) {
	s.armed = true
	s.value = v
}

func (s *renderSlot) clear() {
	s.armed = false
	s.value = false
}

// Engine owns all Night Eye tracker state and applies transitions from
// the single-writer Run loop.
//
// Thread-safety model:
//   - Enqueue(), ObserveFrame(), ObserveDesync(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Step(): the Run loop's body; call directly only in single-threaded
//     harness/test code
type Engine struct {
	cfg      *config.Config
	world    game.World
	renderer game.Renderer
	notifier game.Notifier
	recorder Recorder
	clock    *Clock
	queue    *eventQueue
	sessions SessionGenerator
	session  string

	state   state.NightEyeState
	pending Pending
	render  renderSlot
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithNotifier sets the on-screen feedback sink. Default: none.
func WithNotifier(n game.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithRecorder attaches an event journal. Default: no journaling.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock replaces the logical clock, typically NewClockAt(n) when
// resuming a journaled session.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSession fixes the session token instead of generating one.
func WithSession(token string) Option {
	return func(e *Engine) { e.session = token }
}

// WithSessionGenerator replaces the token source used when no session
// is fixed. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) { e.sessions = g }
}

// New creates an engine over the given config and host ports.
// The config is read-only after construction.
func New(cfg *config.Config, world game.World, renderer game.Renderer, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		world:    world,
		renderer: renderer,
		notifier: game.NopNotifier{},
		clock:    NewClock(),
		queue:    newEventQueue(),
		sessions: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == "" {
		e.session = e.sessions.Generate()
	}
	return e
}

// Session returns the session token stamped on journal rows.
func (e *Engine) Session() string {
	return e.session
}

// State returns a copy of the tracked state.
func (e *Engine) State() state.NightEyeState {
	return e.state
}

// Pending returns the current ambiguity window.
func (e *Engine) Pending() Pending {
	return e.pending
}

// RenderPending returns the armed render value, if any.
func (e *Engine) RenderPending() (value, armed bool) {
	return e.render.value, e.render.armed
}

// QueueLen returns the number of queued, unprocessed events.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe. Returns false once the engine is stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// ObserveFrame samples the world and builds a frame-tick event. Called
// from the renderer's per-frame callback; the observation travels with
// the event so the journal replays without a live world.
func (e *Engine) ObserveFrame() Event {
	return Event{Kind: KindFrame, Frame: &FrameObservation{
		HasNightEyeEffect: e.playerHasApplyEffect(),
	}}
}

// ObserveDesync samples the world and builds the post-load desync-check
// event.
func (e *Engine) ObserveDesync() Event {
	return Event{Kind: KindDesyncCheck, Desync: &DesyncObservation{
		HasNightEyeEffect: e.playerHasApplyEffect(),
	}}
}

// Run starts the single-writer event loop. Blocks until the context is
// cancelled or Stop() is called.
//
// On a processing failure the error is logged with full event context and
// the loop continues: a lost frame or a bad event must never take the
// host down with it.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "session", e.session)

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.Step(ctx, event); err != nil {
				slog.Error("event processing failed",
					"error", err,
					"kind", event.Kind,
					"seq", e.clock.Current(),
					"session", e.session,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			if e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine; Run() returns once the queue
// drains.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Step applies one event: stamps it with the next logical seq, runs the
// transition, flushes the render slot on frame ticks, and journals the
// input plus the resulting snapshot.
//
// Must only be called from the Run loop goroutine (or from
// single-threaded harness code that owns the engine).
func (e *Engine) Step(ctx context.Context, ev Event) error {
	seq := e.clock.Next()

	switch ev.Kind {
	case KindEquip:
		if ev.Equip == nil {
			return fmt.Errorf("equip event missing payload")
		}
		e.handleEquip(*ev.Equip)

	case KindSpellCast:
		if ev.SpellCast == nil {
			return fmt.Errorf("spell-cast event missing payload")
		}
		e.handleSpellCast(*ev.SpellCast)

	case KindEffect:
		if ev.Effect == nil {
			return fmt.Errorf("effect event missing payload")
		}
		e.handleEffect(*ev.Effect)

	case KindFrame:
		if ev.Frame == nil {
			return fmt.Errorf("frame event missing observation")
		}
		e.handleFrame(*ev.Frame)
		e.flushRender()

	case KindDesyncCheck:
		if ev.Desync == nil {
			return fmt.Errorf("desync-check event missing observation")
		}
		e.handleDesync(*ev.Desync)

	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	if e.recorder != nil {
		entry := Entry{
			Session: e.session,
			Seq:     seq,
			Kind:    ev.Kind,
			Payload: EncodePayload(ev),
			Result:  e.snapshot(),
		}
		if err := e.recorder.Record(ctx, entry); err != nil {
			// Journaling is diagnostics, not control flow.
			slog.Error("journal write failed", "error", err, "seq", seq, "kind", ev.Kind)
		}
	}
	return nil
}

// handleEquip tracks power equip/unequip for diagnostics. Equipping is
// not casting: IsActive never changes here and no render push is armed.
func (e *Engine) handleEquip(ev game.EquipEvent) {
	if ev.Actor != game.PlayerID || !e.cfg.Spells.Contains(ev.BaseObject) {
		return
	}

	if ev.Equipped {
		e.state.LastEvent = state.LastEquipped
		slog.Info("night eye power equipped", "form_id", ev.BaseObject.String())
		e.notifier.Notify("Night Eye: EQUIPPED")
	} else {
		e.state.LastEvent = state.LastUnequipped
		slog.Info("night eye power unequipped", "form_id", ev.BaseObject.String())
		e.notifier.Notify("Night Eye: UNEQUIPPED")
	}
}

// handleSpellCast is the toggle trigger: a configured spell, cast by the
// player, whose effect list intersects the apply set.
func (e *Engine) handleSpellCast(ev game.SpellCastEvent) {
	if ev.Caster != game.PlayerID || !e.cfg.Spells.Contains(ev.Spell) {
		return
	}

	spell, ok := e.world.LookupSpell(ev.Spell)
	if !ok {
		slog.Warn("spell lookup failed, ignoring cast", "form_id", ev.Spell.String())
		return
	}
	if !spell.HasAnyEffect(e.cfg.ApplyEffects) {
		slog.Debug("cast spell has no configured night eye effect",
			"form_id", ev.Spell.String())
		return
	}

	// An unconfirmed removal immediately before a toggle cast is part of
	// the toggle, not a genuine dispel.
	if e.pending == PendingRemoval {
		slog.Info("removal explained by toggle cast", "form_id", ev.Spell.String())
		e.pending = PendingNone
	}

	newState := !e.state.IsActive
	slog.Info("toggling night eye",
		"form_id", ev.Spell.String(),
		"from", e.state.IsActive,
		"to", newState,
	)

	e.state.IsActive = newState
	e.state.LastEvent = state.LastEffectApplied
	e.render.arm(newState)

	if newState {
		// The next apply-effect removal is the residual teardown of the
		// previous effect instance; prime its suppression.
		e.pending = PendingToggleOn
		e.notifier.Notify("Night Eye: Activating...")
	} else {
		e.notifier.Notify("Night Eye: Deactivating...")
	}
}

// handleEffect consumes active-effect apply/remove events for configured
// apply effects on the player.
func (e *Engine) handleEffect(ev game.EffectEvent) {
	if ev.Target != game.PlayerID {
		return
	}
	if !e.cfg.ApplyEffects.Contains(ev.Effect) {
		if e.cfg.DispelEffects.Contains(ev.Effect) {
			slog.Debug("dispel effect event observed",
				"form_id", ev.Effect.String(), "applied", ev.Applied)
		}
		return
	}

	if ev.Applied {
		switch {
		case e.pending == PendingToggleOn:
			// The newly toggled-on effect took hold.
			slog.Info("night eye effect applied, toggle-on confirmed",
				"form_id", ev.Effect.String(), "instance", ev.InstanceID)
			e.notifier.Notify("Night Eye: ON")
		case !e.state.IsActive:
			// The engine still delivers one trailing apply/remove pair on
			// toggle-off.
			slog.Info("night eye effect applied while off, toggle-off confirmed",
				"form_id", ev.Effect.String(), "instance", ev.InstanceID)
			e.notifier.Notify("Night Eye: OFF")
		default:
			slog.Info("unexpected night eye effect apply",
				"form_id", ev.Effect.String(), "instance", ev.InstanceID)
		}
		return
	}

	// Removal.
	if e.pending == PendingToggleOn {
		// Residual removal of the prior instance during toggle-on.
		slog.Info("ignoring residual effect removal during toggle-on",
			"form_id", ev.Effect.String(), "instance", ev.InstanceID)
		e.pending = PendingNone
		return
	}

	// Ambiguous: a toggle-off cast may follow, or the effect genuinely
	// went away (expired, dispelled by another system). Defer to the cast
	// handler or the frame poll.
	e.pending = PendingRemoval
	slog.Info("unconfirmed effect removal, awaiting resolution",
		"form_id", ev.Effect.String(),
		"instance", ev.InstanceID,
		"active", e.state.IsActive,
	)
}

// handleFrame resolves an outstanding removal window against the sampled
// world state.
//
// There is deliberately no expiry on PendingRemoval: the window persists
// until a cast or a poll explains it.
func (e *Engine) handleFrame(obs FrameObservation) {
	if e.pending != PendingRemoval || !e.state.IsActive {
		return
	}
	if obs.HasNightEyeEffect {
		// The removal was for a different or transient instance; the
		// effect is still live. Keep waiting.
		return
	}

	slog.Warn("night eye effect gone from player, real removal confirmed")
	e.state.IsActive = false
	e.state.LastEvent = state.LastEffectDispelled
	e.pending = PendingNone
	e.render.arm(false)
	e.notifier.Notify("Night Eye: OFF")
}

// handleDesync forces the tracked state to observed reality after a save
// load. A save made mid-transition must never leave the renderer out of
// sync with what the player sees.
func (e *Engine) handleDesync(obs DesyncObservation) {
	if obs.HasNightEyeEffect == e.state.IsActive {
		slog.Info("post-load state check: synchronized", "active", e.state.IsActive)
		return
	}

	slog.Warn("post-load state desync, correcting",
		"tracked", e.state.IsActive,
		"observed", obs.HasNightEyeEffect,
	)
	e.state.IsActive = obs.HasNightEyeEffect
	e.render.arm(obs.HasNightEyeEffect)
	e.notifier.Notify("Night Eye: State corrected (desync detected)")
}

// flushRender pushes the armed value to the renderer. The slot stays
// armed until the renderer acknowledges the set: delivery is
// at-least-once and idempotent on the receiver, so retrying on the next
// frame is always safe.
func (e *Engine) flushRender() {
	if !e.render.armed || e.renderer == nil {
		return
	}
	if e.renderer.SetParameter(RenderFile, RenderParameter, e.render.value) {
		slog.Info("render parameter set",
			"file", RenderFile, "name", RenderParameter, "value", e.render.value)
		e.render.clear()
	} else {
		slog.Debug("render parameter set rejected, will retry",
			"value", e.render.value)
	}
}

// playerHasApplyEffect reports whether any configured apply effect is
// live on the player.
func (e *Engine) playerHasApplyEffect() bool {
	for _, ae := range e.world.ActorEffects(game.PlayerID) {
		if e.cfg.ApplyEffects.Contains(ae.Effect) {
			return true
		}
	}
	return false
}

// snapshot captures the post-transition state for the journal.
func (e *Engine) snapshot() Transition {
	return Transition{
		IsActive:    e.state.IsActive,
		LastEvent:   e.state.LastEvent,
		Pending:     e.pending,
		RenderArmed: e.render.armed,
		RenderValue: e.render.value,
	}
}

// SaveState serializes the tracked state to the co-save channel.
func (e *Engine) SaveState(w *cosave.Writer) error {
	return e.state.Save(w)
}

// LoadState restores the tracked state from the co-save channel. When a
// record is consumed, a render push is immediately re-armed so the next
// frame reflects the restored state even though no live event fired.
func (e *Engine) LoadState(r *cosave.Reader) error {
	restored, err := e.state.Load(r)
	if err != nil {
		return err
	}
	if restored {
		e.render.arm(e.state.IsActive)
	}
	return nil
}

// RestoreState installs an already-deserialized state, re-arming the
// render push exactly as LoadState does.
func (e *Engine) RestoreState(st state.NightEyeState) {
	e.state = st
	e.render.arm(st.IsActive)
}

// Revert resets to defaults: new game, or a loaded save carrying no data
// for this plugin.
func (e *Engine) Revert() {
	e.state.Revert()
	e.pending = PendingNone
	e.render.clear()
}
