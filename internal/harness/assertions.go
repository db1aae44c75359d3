package harness

import (
	"fmt"

	"github.com/bainos/nighteye/internal/engine"
)

// applyAssertion evaluates one assertion against the finished run,
// recording failures on the result.
func applyAssertion(r *Result, eng *engine.Engine, index int, a *Assertion) {
	switch a.Type {
	case AssertFinalState:
		assertFinalState(r, eng, index, a)
	case AssertRenderPushes:
		assertRenderPushes(r, index, a)
	case AssertTraceCount:
		assertTraceCount(r, index, a)
	case AssertNotifications:
		assertNotifications(r, index, a)
	default:
		r.AddError(fmt.Sprintf("assertions[%d]: unknown type %q", index, a.Type))
	}
}

func assertFinalState(r *Result, eng *engine.Engine, index int, a *Assertion) {
	st := eng.State()
	if a.Active != nil && st.IsActive != *a.Active {
		r.AddError(fmt.Sprintf("assertions[%d]: active = %v, want %v", index, st.IsActive, *a.Active))
	}
	if a.LastEvent != "" && st.LastEvent.String() != a.LastEvent {
		r.AddError(fmt.Sprintf("assertions[%d]: last_event = %s, want %s", index, st.LastEvent, a.LastEvent))
	}
	if a.Pending != "" && eng.Pending().String() != a.Pending {
		r.AddError(fmt.Sprintf("assertions[%d]: pending = %s, want %s", index, eng.Pending(), a.Pending))
	}
}

func assertRenderPushes(r *Result, index int, a *Assertion) {
	if len(r.Pushes) != len(a.Values) {
		r.AddError(fmt.Sprintf("assertions[%d]: %d render pushes, want %d (%v)", index, len(r.Pushes), len(a.Values), r.Pushes))
		return
	}
	for i, v := range a.Values {
		if r.Pushes[i] != v {
			r.AddError(fmt.Sprintf("assertions[%d]: push[%d] = %v, want %v", index, i, r.Pushes[i], v))
		}
	}
}

func assertTraceCount(r *Result, index int, a *Assertion) {
	count := 0
	for _, ev := range r.Trace {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count != a.Count {
		r.AddError(fmt.Sprintf("assertions[%d]: %d %s events in trace, want %d", index, count, a.Kind, a.Count))
	}
}

func assertNotifications(r *Result, index int, a *Assertion) {
	if len(r.Notifications) != len(a.Messages) {
		r.AddError(fmt.Sprintf("assertions[%d]: %d notifications, want %d (%v)", index, len(r.Notifications), len(a.Messages), r.Notifications))
		return
	}
	for i, msg := range a.Messages {
		if r.Notifications[i] != msg {
			r.AddError(fmt.Sprintf("assertions[%d]: notification[%d] = %q, want %q", index, i, r.Notifications[i], msg))
		}
	}
}
