package phase

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces the correlation token stamped on every frame
// record of one event firing.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 firing tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort
// by firing time, which keeps trace listings readable without an extra
// ORDER BY column.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails, which does not happen in practice.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokenGenerator returns predetermined tokens in order, for
// deterministic tests and golden trace comparison.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator that returns tokens in the
// given order and panics when they are exhausted. The panic is deliberate:
// a test consuming more tokens than it budgeted is firing more often than
// it believes.
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("phase: fixed token generator exhausted")
	}
	t := g.tokens[g.idx]
	g.idx++
	return t
}
