package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a world fixture, the form
// configuration, a sequence of host events, and assertions on the
// outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is an optional fixed session token for deterministic
	// traces. Defaults to "test-session".
	Session string `yaml:"session,omitempty"`

	// Config lists the detection forms, as hex form IDs.
	Config ConfigFixture `yaml:"config"`

	// World is the initial world fixture the fake host starts from.
	World WorldFixture `yaml:"world,omitempty"`

	// Steps are the host events fed to the engine, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	// Supported types: final_state, render_pushes, trace_count, notifications
	Assertions []Assertion `yaml:"assertions"`
}

// ConfigFixture is the scenario's form configuration.
type ConfigFixture struct {
	Spells        []string `yaml:"spells,omitempty"`
	ApplyEffects  []string `yaml:"apply_effects,omitempty"`
	DispelEffects []string `yaml:"dispel_effects,omitempty"`
}

// WorldFixture seeds the fake world before any step runs.
type WorldFixture struct {
	// Spells installs spell forms with their effect lists.
	Spells []SpellFixture `yaml:"spells,omitempty"`

	// PlayerEffects lists base effect IDs active on the player at start.
	PlayerEffects []string `yaml:"player_effects,omitempty"`
}

// SpellFixture is one installed spell form.
type SpellFixture struct {
	ID      string   `yaml:"id"`
	Effects []string `yaml:"effects"`
}

// Step is one host event. Do selects the event; the remaining fields
// apply per kind.
type Step struct {
	// Do is the step kind:
	//   equip, unequip     - power equip change (object)
	//   cast               - spell cast (spell)
	//   apply, remove      - effect apply/removal on an actor (effect)
	//   frame              - per-frame tick (samples the world)
	//   desync-check       - post-load world reconciliation
	//   save, load, revert - co-save round trip through the wire codec
	//   renderer-down, renderer-up - toggle renderer acknowledgement
	Do string `yaml:"do"`

	// Actor overrides the acting form ID. Defaults to the player.
	Actor string `yaml:"actor,omitempty"`

	// Object is the equipped form (equip, unequip).
	Object string `yaml:"object,omitempty"`

	// Spell is the cast spell form (cast).
	Spell string `yaml:"spell,omitempty"`

	// Effect is the base magic effect form (apply, remove).
	Effect string `yaml:"effect,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type selects the assertion:
	//   final_state   - compare active / last_event / pending
	//   render_pushes - compare acknowledged renderer values in order
	//   trace_count   - count trace events of a kind
	//   notifications - compare on-screen messages in order
	Type string `yaml:"type"`

	// Active is the expected logical state (final_state).
	Active *bool `yaml:"active,omitempty"`

	// LastEvent is the expected last transition name (final_state).
	LastEvent string `yaml:"last_event,omitempty"`

	// Pending is the expected ambiguity window name (final_state).
	Pending string `yaml:"pending,omitempty"`

	// Values are the expected renderer pushes (render_pushes).
	Values []bool `yaml:"values,omitempty"`

	// Kind is the counted event kind (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Messages are the expected notifications (notifications).
	Messages []string `yaml:"messages,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertRenderPushes  = "render_pushes"
	AssertTraceCount    = "trace_count"
	AssertNotifications = "notifications"
)

// Step kind constants.
const (
	StepEquip        = "equip"
	StepUnequip      = "unequip"
	StepCast         = "cast"
	StepApply        = "apply"
	StepRemove       = "remove"
	StepFrame        = "frame"
	StepDesyncCheck  = "desync-check"
	StepSave         = "save"
	StepLoad         = "load"
	StepRevert       = "revert"
	StepRendererDown = "renderer-down"
	StepRendererUp   = "renderer-up"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Do {
	case StepEquip, StepUnequip:
		if st.Object == "" {
			return fmt.Errorf("steps[%d]: object is required for %s", index, st.Do)
		}
	case StepCast:
		if st.Spell == "" {
			return fmt.Errorf("steps[%d]: spell is required for cast", index)
		}
	case StepApply, StepRemove:
		if st.Effect == "" {
			return fmt.Errorf("steps[%d]: effect is required for %s", index, st.Do)
		}
	case StepFrame, StepDesyncCheck, StepSave, StepLoad, StepRevert, StepRendererDown, StepRendererUp:
		// No extra fields.
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown step kind %q", index, st.Do)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFinalState:
		if a.Active == nil && a.LastEvent == "" && a.Pending == "" {
			return fmt.Errorf("assertions[%d]: final_state needs at least one of active, last_event, pending", index)
		}
	case AssertRenderPushes:
		// An empty values list is a valid expectation: no pushes happened.
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertNotifications:
		// An empty messages list asserts silence.
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
