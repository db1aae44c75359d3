// Package journal provides SQLite-backed durable storage for the
// engine's event log.
//
// Every processed input is appended together with the post-transition
// snapshot it produced. The log serves two purposes:
//
//   - Diagnostics: `nighteye trace` renders the exact input order the
//     engine saw, which is the whole story when debugging an
//     out-of-order host event delivery.
//   - Determinism proof: `nighteye replay` feeds the recorded inputs to
//     a fresh engine and verifies every recorded snapshot is
//     reproduced.
//
// Patterns carried throughout:
//
//   - All ordering uses the logical seq number, never timestamps.
//   - Event IDs are content-addressed (SHA-256 of canonical JSON), so
//     re-recording the same input is idempotent via ON CONFLICT.
//   - All reads order by seq ASC, id COLLATE BINARY ASC for identical
//     results across replays.
package journal
