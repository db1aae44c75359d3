// Package game defines the domain types and host-facing ports for the
// Night Eye tracker.
//
// The host (the game process) owns the object model, the event bus, and
// the renderer. This package models only the contracts the reconciliation
// engine consumes:
//
//   - FormID / FormSet: opaque 32-bit identifiers for spells and effects
//   - Event records: immutable equip, spell-cast, and effect apply/remove
//     events as delivered by the host event bus
//   - World: read-only lookups into the host object model
//   - Renderer: the single "set named boolean parameter" call with a
//     success/failure acknowledgement
//   - Notifier: on-screen player feedback
//
// Every lookup through these ports may fail (a form may not be loaded);
// callers are expected to skip and log, never to abort.
package game
