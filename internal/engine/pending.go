package engine

import "fmt"

// Pending is the engine's ambiguity window. The two waiting states are
// mutually exclusive by construction: a toggle-on confirmation and an
// unconfirmed removal can never be awaited at the same time.
type Pending uint8

const (
	// PendingNone: no ambiguity outstanding.
	PendingNone Pending = iota

	// PendingToggleOn: a toggle-on cast was confirmed; the next removal
	// of an apply effect is the residual teardown of the previous effect
	// instance, not a genuine dispel.
	PendingToggleOn

	// PendingRemoval: an effect removal arrived with no explanation yet.
	// Either a toggle-off cast follows immediately, or the frame poll
	// confirms the effect is truly gone.
	PendingRemoval
)

// String implements fmt.Stringer for logs and journal rows.
func (p Pending) String() string {
	switch p {
	case PendingNone:
		return "none"
	case PendingToggleOn:
		return "toggle-on"
	case PendingRemoval:
		return "removal"
	default:
		return fmt.Sprintf("pending(%d)", uint8(p))
	}
}

// ParsePending is the inverse of String, used when reading journal rows.
func ParsePending(s string) (Pending, error) {
	switch s {
	case "none":
		return PendingNone, nil
	case "toggle-on":
		return PendingToggleOn, nil
	case "removal":
		return PendingRemoval, nil
	default:
		return PendingNone, fmt.Errorf("unknown pending state %q", s)
	}
}
