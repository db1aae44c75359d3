package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenarioYAML = `
name: valid
description: loader accepts a well-formed scenario
config:
  spells: ["0xA1B2C"]
steps:
  - do: frame
assertions:
  - type: render_pushes
`

func TestParseScenario_Valid(t *testing.T) {
	scenario, err := ParseScenario([]byte(validScenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "valid", scenario.Name)
	assert.Len(t, scenario.Steps, 1)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	// "assertion" (singular) is the classic typo; strict decoding turns
	// it into a parse error instead of silently running zero assertions.
	yaml := `
name: typo
description: unknown fields fail the parse
steps:
  - do: frame
assertion:
  - type: render_pushes
`
	_, err := ParseScenario([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nsteps: [{do: frame}]\nassertions: [{type: render_pushes}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nsteps: [{do: frame}]\nassertions: [{type: render_pushes}]",
			wantErr: "description is required",
		},
		{
			name:    "empty steps",
			yaml:    "name: n\ndescription: d\nsteps: []\nassertions: [{type: render_pushes}]",
			wantErr: "steps list is required",
		},
		{
			name:    "empty assertions",
			yaml:    "name: n\ndescription: d\nsteps: [{do: frame}]\nassertions: []",
			wantErr: "assertions list is required",
		},
		{
			name:    "cast without spell",
			yaml:    "name: n\ndescription: d\nsteps: [{do: cast}]\nassertions: [{type: render_pushes}]",
			wantErr: "spell is required for cast",
		},
		{
			name:    "apply without effect",
			yaml:    "name: n\ndescription: d\nsteps: [{do: apply}]\nassertions: [{type: render_pushes}]",
			wantErr: "effect is required for apply",
		},
		{
			name:    "equip without object",
			yaml:    "name: n\ndescription: d\nsteps: [{do: equip}]\nassertions: [{type: render_pushes}]",
			wantErr: "object is required for equip",
		},
		{
			name:    "unknown step kind",
			yaml:    "name: n\ndescription: d\nsteps: [{do: teleport}]\nassertions: [{type: render_pushes}]",
			wantErr: `unknown step kind "teleport"`,
		},
		{
			name:    "empty final_state",
			yaml:    "name: n\ndescription: d\nsteps: [{do: frame}]\nassertions: [{type: final_state}]",
			wantErr: "final_state needs at least one",
		},
		{
			name:    "trace_count without kind",
			yaml:    "name: n\ndescription: d\nsteps: [{do: frame}]\nassertions: [{type: trace_count, count: 1}]",
			wantErr: "kind is required for trace_count",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: n\ndescription: d\nsteps: [{do: frame}]\nassertions: [{type: nope}]",
			wantErr: `unknown assertion type "nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}
