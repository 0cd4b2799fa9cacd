package testutil

import "fmt"

// FixedIDs returns predetermined session ids in order.
//
// This enables deterministic test execution and golden output
// comparison: the same run with the same FixedIDs produces
// byte-identical session records.
type FixedIDs struct {
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
// Panics when the ids are exhausted - a test asking for more sessions
// than it planned is a bug.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID implements cli.SessionIDGenerator.
func (g *FixedIDs) NewID() string {
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedIDs exhausted after %d ids", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
