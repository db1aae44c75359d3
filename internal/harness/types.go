package harness

// TraceEvent is one processed engine input together with the snapshot it
// produced. The trace is the unit of golden comparison.
type TraceEvent struct {
	Seq         int64  `json:"seq"`
	Kind        string `json:"kind"`
	IsActive    bool   `json:"is_active"`
	LastEvent   string `json:"last_event"`
	Pending     string `json:"pending"`
	RenderArmed bool   `json:"render_armed"`
	RenderValue bool   `json:"render_value"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Pushes are the renderer-acknowledged parameter values in order.
	Pushes []bool `json:"pushes"`

	// Notifications are the on-screen messages in order.
	Notifications []string `json:"notifications,omitempty"`

	// Errors contains assertion failure messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Pushes: []bool{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
