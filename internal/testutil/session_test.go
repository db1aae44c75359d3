package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator_Order(t *testing.T) {
	g := NewFixedSessionGenerator("s-1", "s-2")
	assert.Equal(t, "s-1", g.Generate())
	assert.Equal(t, "s-2", g.Generate())
	assert.Panics(t, func() { g.Generate() }, "exhausted generator must panic")
}
