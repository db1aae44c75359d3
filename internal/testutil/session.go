package testutil

import "sync"

// FixedSessionGenerator returns predetermined session tokens, enabling
// deterministic journal rows and golden trace comparison.
//
// Panics when the supplied tokens are exhausted; a test asking for more
// sessions than it declared is misconfigured.
type FixedSessionGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedSessionGenerator creates a generator returning tokens in order.
func NewFixedSessionGenerator(tokens ...string) *FixedSessionGenerator {
	return &FixedSessionGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedSessionGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("FixedSessionGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
