package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

func TestBagEqual(t *testing.T) {
	a := table.MustNew(
		table.Column{Name: "id", Values: nums(1, 2, 2)},
		table.Column{Name: "name", Values: texts("x", "y", "y")},
	)
	reordered := table.MustNew(
		table.Column{Name: "id", Values: nums(2, 1)},
		table.Column{Name: "name", Values: texts("y", "x")},
	)
	different := table.MustNew(
		table.Column{Name: "id", Values: nums(1, 3)},
		table.Column{Name: "name", Values: texts("x", "z")},
	)

	assert.True(t, BagEqual(a, reordered), "order and duplicate counts are ignored")
	assert.True(t, BagEqual(reordered, a))
	assert.False(t, BagEqual(a, different))
	assert.False(t, BagEqual(a, nil))
	assert.True(t, BagEqual(nil, nil))
}

func TestColumnMultisetMatchPermutation(t *testing.T) {
	ground := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 2)},
		table.Column{Name: "b", Values: texts("x", "y")},
	)
	pred := table.MustNew(
		table.Column{Name: "c1", Values: texts("x", "y")},
		table.Column{Name: "c2", Values: nums(1, 2)},
	)

	assert.True(t, ColumnMultisetMatch(pred, ground),
		"column permutation and renaming should not matter")
}

func TestColumnMultisetMatchContentMismatch(t *testing.T) {
	ground := table.MustNew(table.Column{Name: "a", Values: nums(1, 2)})
	pred := table.MustNew(table.Column{Name: "a", Values: nums(1, 1)})

	assert.False(t, ColumnMultisetMatch(pred, ground),
		"deduplicated row counts differ")
}

func TestColumnMultisetMatchDropsDuplicateColumns(t *testing.T) {
	ground := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 2)},
	)
	pred := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 2)},
		table.Column{Name: "a_copy", Values: nums(1, 2)},
	)

	// The duplicated predicted column collapses, leaving identical shapes.
	assert.True(t, ColumnMultisetMatch(pred, ground))
}

func TestColumnMultisetMatchFrequencyBijection(t *testing.T) {
	ground := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 1, 2)},
		table.Column{Name: "b", Values: texts("x", "y", "z")},
	)
	// Same value sets but different frequencies in the first column.
	pred := table.MustNew(
		table.Column{Name: "a", Values: nums(1, 2, 2)},
		table.Column{Name: "b", Values: texts("x", "y", "z")},
	)

	assert.False(t, ColumnMultisetMatch(pred, ground))
}
