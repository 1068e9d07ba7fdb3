package consensus

import (
	"github.com/leapstack-labs/sqljudge/internal/compare"
)

// TolerantPredicate wraps the symmetric exact/tolerant comparator for one
// question's candidates.
func TolerantPredicate(c *compare.Comparator, category, question string) Predicate {
	return func(a, b *Candidate) bool {
		return c.SymmetricCompare(a.Table, b.Table, category, question, a.SQL, b.SQL)
	}
}

// BagPredicate wraps row-set equality.
func BagPredicate() Predicate {
	return func(a, b *Candidate) bool {
		return compare.BagEqual(a.Table, b.Table)
	}
}

// MultisetPredicate wraps column-multiset matching.
func MultisetPredicate() Predicate {
	return func(a, b *Candidate) bool {
		return compare.ColumnMultisetMatch(a.Table, b.Table)
	}
}

// PredicateByName resolves a configured predicate name: "tolerant" (the
// symmetric exact/tolerant comparator), "bag" or "multiset".
func PredicateByName(name string, c *compare.Comparator, category, question string) (Predicate, bool) {
	switch name {
	case "tolerant", "":
		return TolerantPredicate(c, category, question), true
	case "bag":
		return BagPredicate(), true
	case "multiset":
		return MultisetPredicate(), true
	default:
		return nil, false
	}
}
