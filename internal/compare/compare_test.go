package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

func nums(vals ...float64) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		out[i] = table.Number(v)
	}
	return out
}

func texts(vals ...string) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		out[i] = table.Text(v)
	}
	return out
}

func TestCompareReflexive(t *testing.T) {
	c := New(Options{})
	tbl := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 2)},
		table.Column{Name: "b", Values: texts("x", "y")},
	)
	assert.True(t, c.Compare(tbl, tbl, "", "", "", ""))
}

func TestCompareNilAndEmpty(t *testing.T) {
	c := New(Options{})
	full := table.MustNew(table.Column{Name: "a", Values: nums(1)})
	empty := table.MustNew(table.Column{Name: "a", Values: nil})

	assert.False(t, c.Compare(full, nil, "", "", "", ""))
	assert.False(t, c.Compare(nil, full, "", "", "", ""), "a missing reference never matches")
	assert.False(t, c.Compare(nil, nil, "", "", "", ""))
	assert.True(t, c.Compare(empty, empty, "", "", "", ""))
	assert.False(t, c.Compare(full, empty, "", "", "", ""))
	assert.False(t, c.Compare(empty, full, "", "", "", ""))
}

func TestCompareRenamedReorderedColumns(t *testing.T) {
	c := New(Options{})
	ref := table.MustNew(
		table.Column{Name: "name", Values: texts("NY", "LA")},
		table.Column{Name: "population", Values: nums(8.4, 3.9)},
	)
	cand := table.MustNew(
		table.Column{Name: "pop", Values: nums(3.9, 8.4)},
		table.Column{Name: "city", Values: texts("LA", "NY")},
	)

	assert.True(t, c.Compare(ref, cand, "", "", "", ""),
		"renaming and reordering columns and rows should not matter")
}

func TestCompareUnorderedRows(t *testing.T) {
	c := New(Options{})
	ref := table.MustNew(table.Column{Name: "name", Values: texts("c", "b", "a")})
	cand := table.MustNew(table.Column{Name: "name", Values: texts("a", "b", "c")})

	// Without an ordering request both sides normalize to the same table.
	assert.True(t, c.Compare(ref, cand, "", "", "", ""))
}

func TestSeriesMatchTolerance(t *testing.T) {
	c := New(Options{})

	assert.True(t, c.SeriesMatch(nums(1.0, 2.0), nums(1.0004, 2.0004)),
		"divergence below the rounding precision is tolerated")
	assert.False(t, c.SeriesMatch(nums(1.5, 2.5), nums(1.0, 2.0)))
	assert.False(t, c.SeriesMatch(nums(1, 2, 3), nums(1, 2)), "reference may not be longer")
	assert.True(t, c.SeriesMatch(nums(1), nums(1, 2, 3)), "reference may be shorter")
}

func TestSeriesMatchKinds(t *testing.T) {
	c := New(Options{})

	assert.True(t, c.SeriesMatch(texts("a"), texts("b", "a")))
	assert.False(t, c.SeriesMatch(texts("a"), nums(1)), "kinds must agree")
	assert.False(t, c.SeriesMatch(
		[]table.Value{table.Boolean(true)},
		nums(1),
	), "booleans are not numeric")
}

func TestSecondaryCheckZeroColumnReference(t *testing.T) {
	c := New(Options{})
	cand := table.MustNew(table.Column{Name: "a", Values: nums(1, 2, 3)})

	assert.True(t, c.SecondaryCheck(table.Shaped(0), cand))
	assert.True(t, c.SecondaryCheck(table.Shaped(3), cand), "row counts agree")
	assert.False(t, c.SecondaryCheck(table.Shaped(2), cand), "row counts differ")
}

func TestSecondaryCheckGreedyConsumption(t *testing.T) {
	c := New(Options{})
	ref := table.MustNew(
		table.Column{Name: "x", Values: nums(1)},
		table.Column{Name: "y", Values: nums(1)},
	)
	cand := table.MustNew(
		table.Column{Name: "a", Values: nums(1)},
		table.Column{Name: "b", Values: nums(9)},
	)

	// Two reference columns cannot both consume the same candidate column.
	assert.False(t, c.SecondaryCheck(ref, cand))
}

func TestSymmetricCompare(t *testing.T) {
	c := New(Options{})
	a := table.MustNew(table.Column{Name: "v", Values: nums(1, 2)})
	b := table.MustNew(table.Column{Name: "w", Values: nums(2, 1)})

	assert.True(t, c.SymmetricCompare(a, b, "", "", "", ""))
	assert.True(t, c.SymmetricCompare(b, a, "", "", "", ""))
	assert.False(t, c.SymmetricCompare(a, nil, "", "", "", ""))
}
