package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bainos/nighteye/internal/config"
	"github.com/bainos/nighteye/internal/engine"
	"github.com/bainos/nighteye/internal/testutil"
)

func idleEngine() *engine.Engine {
	return engine.New(config.New(), testutil.NewFakeWorld(), testutil.NewRecordingRenderer(),
		engine.WithSession("assert-test"))
}

func TestAssertRenderPushes(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	r.Pushes = []bool{true, false}

	applyAssertion(r, eng, 0, &Assertion{Type: AssertRenderPushes, Values: []bool{true, false}})
	assert.True(t, r.Pass)

	applyAssertion(r, eng, 1, &Assertion{Type: AssertRenderPushes, Values: []bool{true}})
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "2 render pushes, want 1")
}

func TestAssertRenderPushes_ValueMismatch(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	r.Pushes = []bool{true}

	applyAssertion(r, eng, 0, &Assertion{Type: AssertRenderPushes, Values: []bool{false}})
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "push[0] = true, want false")
}

func TestAssertTraceCount(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	r.Trace = []TraceEvent{
		{Kind: "frame"}, {Kind: "cast"}, {Kind: "frame"},
	}

	applyAssertion(r, eng, 0, &Assertion{Type: AssertTraceCount, Kind: "frame", Count: 2})
	assert.True(t, r.Pass)

	applyAssertion(r, eng, 1, &Assertion{Type: AssertTraceCount, Kind: "cast", Count: 2})
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "1 cast events in trace, want 2")
}

func TestAssertNotifications(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	r.Notifications = []string{"Night Eye: ON"}

	applyAssertion(r, eng, 0, &Assertion{Type: AssertNotifications, Messages: []string{"Night Eye: ON"}})
	assert.True(t, r.Pass)

	applyAssertion(r, eng, 1, &Assertion{Type: AssertNotifications, Messages: []string{"Night Eye: OFF"}})
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], `notification[0] = "Night Eye: ON", want "Night Eye: OFF"`)
}

func TestAssertFinalState_PendingAndLastEvent(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	applyAssertion(r, eng, 0, &Assertion{Type: AssertFinalState, LastEvent: "none", Pending: "none"})
	assert.True(t, r.Pass)

	applyAssertion(r, eng, 1, &Assertion{Type: AssertFinalState, Pending: "removal"})
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "pending = none, want removal")
}

func TestAssertUnknownType(t *testing.T) {
	eng := idleEngine()

	r := NewResult()
	applyAssertion(r, eng, 0, &Assertion{Type: "nope"})
	assert.False(t, r.Pass)
}
