package harness

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bainos/nighteye/internal/config"
	"github.com/bainos/nighteye/internal/cosave"
	"github.com/bainos/nighteye/internal/engine"
	"github.com/bainos/nighteye/internal/game"
	"github.com/bainos/nighteye/internal/testutil"
)

// defaultSession keeps traces stable when a scenario does not pin its
// own token.
const defaultSession = "test-session"

// Run executes a scenario against a fresh engine wired to fake ports
// and evaluates its assertions. A returned error means the scenario
// itself is broken (bad form ID, impossible step); assertion failures
// land in Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunRecorded(scenario, nil)
}

// RunRecorded is Run with an optional journal recorder attached to the
// engine, so every processed step lands in the event journal.
func RunRecorded(scenario *Scenario, recorder engine.Recorder) (*Result, error) {
	cfg, err := BuildConfig(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	world, err := BuildWorld(scenario.World)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	session := scenario.Session
	if session == "" {
		session = defaultSession
	}

	renderer := testutil.NewRecordingRenderer()
	notifier := &testutil.RecordingNotifier{}
	engineOpts := []engine.Option{
		engine.WithSession(session),
		engine.WithNotifier(notifier),
	}
	if recorder != nil {
		engineOpts = append(engineOpts, engine.WithRecorder(recorder))
	}
	eng := engine.New(cfg, world, renderer, engineOpts...)

	result := NewResult()
	ctx := context.Background()

	// Holds the co-save bytes between a save step and a later load step.
	var saved bytes.Buffer

	for i, st := range scenario.Steps {
		ev, run, err := buildStep(st, eng, world, renderer, &saved)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d]: %w", scenario.Name, i, err)
		}
		if !run {
			continue
		}
		if err := eng.Step(ctx, ev); err != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d] (%s): %w", scenario.Name, i, st.Do, err)
		}
		result.Trace = append(result.Trace, snapshotTrace(eng, st.Do, int64(len(result.Trace)+1)))
	}

	result.Pushes = renderer.Pushes()
	result.Notifications = notifier.Messages()

	for i, a := range scenario.Assertions {
		applyAssertion(result, eng, i, &a)
	}
	return result, nil
}

// buildStep translates one scenario step. Steps that manipulate the
// harness rather than the engine (save, load, renderer toggles) execute
// here and return run=false.
func buildStep(st Step, eng *engine.Engine, world *testutil.FakeWorld, renderer *testutil.RecordingRenderer, saved *bytes.Buffer) (ev engine.Event, run bool, err error) {
	actor := game.PlayerID
	if st.Actor != "" {
		if actor, err = game.ParseFormID(st.Actor); err != nil {
			return engine.Event{}, false, fmt.Errorf("actor: %w", err)
		}
	}

	switch st.Do {
	case StepEquip, StepUnequip:
		object, err := game.ParseFormID(st.Object)
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("object: %w", err)
		}
		return engine.NewEquipEvent(game.EquipEvent{
			Actor:      actor,
			BaseObject: object,
			Equipped:   st.Do == StepEquip,
		}), true, nil

	case StepCast:
		spell, err := game.ParseFormID(st.Spell)
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("spell: %w", err)
		}
		return engine.NewSpellCastEvent(game.SpellCastEvent{
			Caster: actor,
			Spell:  spell,
		}), true, nil

	case StepApply:
		effect, err := game.ParseFormID(st.Effect)
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("effect: %w", err)
		}
		instance := world.ApplyEffect(actor, effect)
		return engine.NewEffectEvent(game.EffectEvent{
			Target:     actor,
			Effect:     effect,
			InstanceID: instance,
			Applied:    true,
		}), true, nil

	case StepRemove:
		effect, err := game.ParseFormID(st.Effect)
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("effect: %w", err)
		}
		// The removal event carries the instance that is going away; the
		// world loses it before the engine sees the event, matching host
		// delivery order.
		var instance uint32
		for _, ae := range world.ActorEffects(actor) {
			if ae.Effect == effect {
				instance = ae.InstanceID
				break
			}
		}
		world.RemoveEffect(actor, effect)
		return engine.NewEffectEvent(game.EffectEvent{
			Target:     actor,
			Effect:     effect,
			InstanceID: instance,
			Applied:    false,
		}), true, nil

	case StepFrame:
		return eng.ObserveFrame(), true, nil

	case StepDesyncCheck:
		return eng.ObserveDesync(), true, nil

	case StepSave:
		saved.Reset()
		if err := eng.SaveState(cosave.NewWriter(saved)); err != nil {
			return engine.Event{}, false, fmt.Errorf("save: %w", err)
		}
		return engine.Event{}, false, nil

	case StepLoad:
		if err := eng.LoadState(cosave.NewReader(bytes.NewReader(saved.Bytes()))); err != nil {
			return engine.Event{}, false, fmt.Errorf("load: %w", err)
		}
		return engine.Event{}, false, nil

	case StepRevert:
		eng.Revert()
		return engine.Event{}, false, nil

	case StepRendererDown:
		renderer.SetDown(true)
		return engine.Event{}, false, nil

	case StepRendererUp:
		renderer.SetDown(false)
		return engine.Event{}, false, nil

	default:
		return engine.Event{}, false, fmt.Errorf("unknown step kind %q", st.Do)
	}
}

func snapshotTrace(eng *engine.Engine, kind string, seq int64) TraceEvent {
	st := eng.State()
	renderValue, renderArmed := eng.RenderPending()
	return TraceEvent{
		Seq:         seq,
		Kind:        kind,
		IsActive:    st.IsActive,
		LastEvent:   st.LastEvent.String(),
		Pending:     eng.Pending().String(),
		RenderArmed: renderArmed,
		RenderValue: renderValue,
	}
}

// BuildConfig materializes the detection form sets from a fixture.
func BuildConfig(fixture ConfigFixture) (*config.Config, error) {
	cfg := config.New()
	if err := parseInto(cfg.Spells, fixture.Spells); err != nil {
		return nil, fmt.Errorf("config spells: %w", err)
	}
	if err := parseInto(cfg.ApplyEffects, fixture.ApplyEffects); err != nil {
		return nil, fmt.Errorf("config apply_effects: %w", err)
	}
	if err := parseInto(cfg.DispelEffects, fixture.DispelEffects); err != nil {
		return nil, fmt.Errorf("config dispel_effects: %w", err)
	}
	return cfg, nil
}

func parseInto(set game.FormSet, raw []string) error {
	for _, s := range raw {
		id, err := game.ParseFormID(s)
		if err != nil {
			return err
		}
		set.Add(id)
	}
	return nil
}

// BuildWorld seeds a fake world from a fixture.
func BuildWorld(fixture WorldFixture) (*testutil.FakeWorld, error) {
	world := testutil.NewFakeWorld()
	for _, sf := range fixture.Spells {
		id, err := game.ParseFormID(sf.ID)
		if err != nil {
			return nil, fmt.Errorf("world spell id: %w", err)
		}
		effects := make([]game.FormID, 0, len(sf.Effects))
		for _, es := range sf.Effects {
			eff, err := game.ParseFormID(es)
			if err != nil {
				return nil, fmt.Errorf("world spell %s effect: %w", sf.ID, err)
			}
			effects = append(effects, eff)
		}
		world.AddSpell(game.Spell{ID: id, Effects: effects})
	}
	for _, es := range fixture.PlayerEffects {
		eff, err := game.ParseFormID(es)
		if err != nil {
			return nil, fmt.Errorf("world player effect: %w", err)
		}
		world.ApplyEffect(game.PlayerID, eff)
	}
	return world, nil
}
