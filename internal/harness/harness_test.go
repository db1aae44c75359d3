package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every YAML scenario in testdata/scenarios against
// its golden trace.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_UnknownFormIDFailsLoudly(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad-form",
		Description: "unparseable form ID is a scenario bug",
		Config:      ConfigFixture{Spells: []string{"not-a-form"}},
		Steps:       []Step{{Do: StepFrame}},
		Assertions:  []Assertion{{Type: AssertRenderPushes}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config spells")
}

func TestRun_AssertionFailureDoesNotError(t *testing.T) {
	active := true
	scenario := &Scenario{
		Name:        "wrong-expectation",
		Description: "a failing assertion lands in Errors, not in err",
		Steps:       []Step{{Do: StepFrame}},
		Assertions: []Assertion{
			{Type: AssertFinalState, Active: &active},
		},
	}
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "active = false, want true")
}

func TestRun_EmptyConfigStaysInert(t *testing.T) {
	scenario := &Scenario{
		Name:        "inert",
		Description: "with no configured forms nothing ever transitions",
		Session:     "inert-session",
		World: WorldFixture{
			Spells: []SpellFixture{{ID: "0xA1B2C", Effects: []string{"0xC0001"}}},
		},
		Steps: []Step{
			{Do: StepCast, Spell: "0xA1B2C"},
			{Do: StepApply, Effect: "0xC0001"},
			{Do: StepFrame},
		},
		Assertions: []Assertion{
			{Type: AssertRenderPushes},
			{Type: AssertNotifications},
		},
	}
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.Empty(t, result.Pushes)
}
