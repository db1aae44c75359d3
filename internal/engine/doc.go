// Package engine implements the Night Eye reconciliation engine.
//
// The engine maintains a single authoritative boolean ("is the Night Eye
// effect active") from three independently-firing, order-unconstrained
// host event streams (equip/unequip, spell cast, active-effect
// apply/remove), a per-frame poll, and a post-load desync check. It emits
// exactly the render-parameter pushes needed to keep the external
// renderer synchronized.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state transitions are processed in one goroutine. Host adapters
// enqueue immutable events; Run() dequeues and applies them one at a time.
// This gives:
//   - A total order (logical seq) over inputs that arrive unordered
//   - A reproducible journal that replays to the identical final state
//   - No locks inside the transition logic
//
// Ambiguity windows:
// The engine is Idle, AwaitingToggleOnConfirm, or AwaitingRemovalConfirm -
// never both pending windows at once. The Pending enum makes that
// invariant structural rather than a flag discipline.
//
// Observations:
// The frame poll and the desync check depend on the live world. The
// world is sampled when the event is BUILT (ObserveFrame, ObserveDesync),
// not when it is processed, so the journaled event stream is
// self-contained and replays without a live world.
//
// Failure policy:
// Event processing failures are logged with full context and processing
// continues. Nothing in this package is fatal to the host; the only
// retried action is the render push, which stays armed until the renderer
// acknowledges it or newer state supersedes it.
package engine
