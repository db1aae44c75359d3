// Package harness executes declarative YAML scenarios against a fresh
// engine wired to fake host ports. A scenario describes a world fixture,
// a configuration, a sequence of host events, and assertions on the
// resulting trace; golden files pin the full transition trace so
// behavioral drift shows up as a diff.
package harness
