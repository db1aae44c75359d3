package engine

import "github.com/google/uuid"

// SessionGenerator produces the token identifying one engine lifetime.
// Journal rows carry the token so a replay can isolate a single session.
//
// Implemented by UUIDv7Generator (production) and
// testutil.FixedSessionGenerator (tests).
type SessionGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so journal
// files from successive sessions sort by creation time.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
