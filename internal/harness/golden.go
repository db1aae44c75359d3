package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/bainos/nighteye/internal/journal"
)

// TraceSnapshot is the golden-file representation of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session,omitempty"`
	Trace        []TraceEvent `json:"trace"`
	Pushes       []bool       `json:"pushes"`
}

// toCanonicalMap flattens the snapshot for canonical JSON serialization,
// which only handles maps, slices, strings, bools and integers.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		traceList[i] = map[string]any{
			"seq":          ev.Seq,
			"kind":         ev.Kind,
			"is_active":    ev.IsActive,
			"last_event":   ev.LastEvent,
			"pending":      ev.Pending,
			"render_armed": ev.RenderArmed,
			"render_value": ev.RenderValue,
		}
	}
	pushList := make([]any, len(s.Pushes))
	for i, p := range s.Pushes {
		pushList[i] = p
	}
	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"pushes":        pushList,
	}
	if s.Session != "" {
		out["session"] = s.Session
	}
	return out
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	session := scenario.Session
	if session == "" {
		session = defaultSession
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Session:      session,
		Trace:        result.Trace,
		Pushes:       result.Pushes,
	}

	traceJSON, err := journal.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
