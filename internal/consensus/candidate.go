// Package consensus selects the best of several independently generated
// answer candidates. Candidates are scored (by pairwise agreement, output
// size, value density, or not at all) and ties are broken by an injected,
// seeded random source so selection stays reproducible across runs.
package consensus

import (
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// Candidate is one generated answer competing for selection.
type Candidate struct {
	// Source identifies the generation source (model, rollout) that
	// produced this candidate.
	Source string

	// Attempt is the rollout index within the source.
	Attempt int

	// Table is the executed result. Nil when generation or execution
	// produced nothing usable.
	Table *table.Table

	// SQL is the query text that produced the table, if any.
	SQL string

	// Err carries the generation or execution failure detail for invalid
	// candidates.
	Err string
}

// Valid reports whether the candidate carries a usable result table.
func (c *Candidate) Valid() bool {
	return c != nil && c.Err == "" && c.Table != nil
}

// Valids filters a candidate list down to the usable ones.
func Valids(cands []*Candidate) []*Candidate {
	var out []*Candidate
	for _, c := range cands {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Predicate decides whether two candidates agree on the answer.
type Predicate func(a, b *Candidate) bool
