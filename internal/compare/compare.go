// Package compare implements the equivalence judges that decide whether two
// result tables encode the same answer. The primary judge tolerates benign
// divergence (column order, naming, missing-value encoding) by normalizing
// both sides and falling back to content-based column matching; stricter
// order-independent judges (bag equality, column-multiset matching) are
// provided alongside.
package compare

import (
	"log/slog"

	"github.com/leapstack-labs/sqljudge/internal/normalize"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// Defaults for the numeric comparison knobs.
const (
	DefaultNumericTolerance = 1e-3
	DefaultRoundDecimals    = 3
)

// Options configures a Comparator.
type Options struct {
	// NumericTolerance is the absolute tolerance used by series matching
	// when exact membership after rounding fails.
	NumericTolerance float64

	// RoundDecimals is the number of decimal places values are rounded to
	// before numeric membership tests.
	RoundDecimals int

	// NumericThreshold is forwarded to the normalizer's coercion step.
	NumericThreshold float64

	// Logger receives normalization warnings. If nil, logs are discarded.
	Logger *slog.Logger
}

// Comparator holds the tolerance settings and the normalizer shared by all
// comparisons.
type Comparator struct {
	tolerance float64
	decimals  int
	norm      *normalize.Normalizer
}

// New creates a Comparator. Zero option fields take their defaults.
func New(opts Options) *Comparator {
	tolerance := opts.NumericTolerance
	if tolerance <= 0 {
		tolerance = DefaultNumericTolerance
	}
	decimals := opts.RoundDecimals
	if decimals <= 0 {
		decimals = DefaultRoundDecimals
	}
	return &Comparator{
		tolerance: tolerance,
		decimals:  decimals,
		norm: normalize.New(normalize.Options{
			Logger:           opts.Logger,
			NumericThreshold: opts.NumericThreshold,
		}),
	}
}

// Compare decides whether a candidate table matches the reference answer.
// category and question drive ordering detection during normalization;
// refSQL and candSQL are the queries that produced the respective tables
// (either may be empty).
func (c *Comparator) Compare(ref, cand *table.Table, category, question, refSQL, candSQL string) bool {
	if ref == nil || cand == nil {
		return false
	}
	if ref.Equal(cand) {
		return true
	}
	if ref.Empty() && cand.Empty() {
		return true
	}
	if ref.Empty() || cand.Empty() {
		return false
	}

	normRef := fillMissing(c.norm.Normalize(ref, category, question, refSQL))
	normCand := fillMissing(c.norm.Normalize(cand, category, question, candSQL))
	if normRef.Equal(normCand) {
		return true
	}

	// Content-based fallback over both the raw and the normalized pair,
	// tried in both directions.
	return c.SecondaryCheck(ref, cand) ||
		c.SecondaryCheck(normRef, normCand) ||
		c.SecondaryCheck(cand, ref) ||
		c.SecondaryCheck(normCand, normRef)
}

// SymmetricCompare applies Compare in both directions, for comparisons where
// neither side is privileged as the reference.
func (c *Comparator) SymmetricCompare(a, b *table.Table, category, question, aSQL, bSQL string) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Empty() && b.Empty() {
		return true
	}
	if a.Empty() || b.Empty() {
		return false
	}
	return c.Compare(a, b, category, question, aSQL, bSQL) ||
		c.Compare(b, a, category, question, bSQL, aSQL)
}

// fillMissing replaces null cells with a fixed sentinel so that differing
// missing-value encodings cannot block full equality.
func fillMissing(t *table.Table) *table.Table {
	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]table.Value, len(c.Values))
		for j, v := range c.Values {
			if v.IsNull() {
				vals[j] = table.Number(0)
			} else {
				vals[j] = v
			}
		}
		cols[i] = table.Column{Name: c.Name, Values: vals}
	}
	return &table.Table{Columns: cols, NRows: t.NRows}
}
