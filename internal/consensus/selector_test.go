package consensus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

func numTable(name string, vals ...float64) *table.Table {
	cells := make([]table.Value, len(vals))
	for i, v := range vals {
		cells[i] = table.Number(v)
	}
	return table.MustNew(table.Column{Name: name, Values: cells})
}

func bagPool() []*Candidate {
	// Three candidates agree on {1,2}, two dissent.
	return []*Candidate{
		{Source: "a", Table: numTable("v", 1, 2)},
		{Source: "b", Table: numTable("v", 2, 1)},
		{Source: "c", Table: numTable("v", 9)},
		{Source: "d", Table: numTable("v", 1, 2)},
		{Source: "e", Table: numTable("v", 7, 7)},
	}
}

func TestFrequencySelectsConsensusGroup(t *testing.T) {
	s, err := NewStrategy("frequency", BagPredicate(), nil)
	require.NoError(t, err)

	got, err := s.Select(bagPool())
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b", "d"}, got.Source,
		"selection must come from the agreeing majority")
}

func TestFrequencyDeterministicForSeed(t *testing.T) {
	first, err := NewStrategy("frequency", BagPredicate(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := NewStrategy("frequency", BagPredicate(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	a, err := first.Select(bagPool())
	require.NoError(t, err)
	b, err := second.Select(bagPool())
	require.NoError(t, err)
	assert.Equal(t, a.Source, b.Source)
}

func TestFrequencyNoAgreementFallsBackToPool(t *testing.T) {
	s, err := NewStrategy("frequency", BagPredicate(), nil)
	require.NoError(t, err)

	pool := []*Candidate{
		{Source: "a", Table: numTable("v", 1)},
		{Source: "b", Table: numTable("v", 2)},
		{Source: "c", Table: numTable("v", 3)},
	}
	got, err := s.Select(pool)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestFrequencySkipsNilTables(t *testing.T) {
	s, err := NewStrategy("frequency", BagPredicate(), nil)
	require.NoError(t, err)

	pool := []*Candidate{
		{Source: "a", Table: nil},
		{Source: "b", Table: numTable("v", 1)},
		{Source: "c", Table: numTable("v", 1)},
	}
	got, err := s.Select(pool)
	require.NoError(t, err)
	assert.Contains(t, []string{"b", "c"}, got.Source)
}

func TestSizeSelectsLargestOutput(t *testing.T) {
	s, err := NewStrategy("size", nil, nil)
	require.NoError(t, err)

	got, err := s.Select([]*Candidate{
		{Source: "small", Table: numTable("v", 1)},
		{Source: "big", Table: numTable("v", 1, 2, 3)},
		{Source: "missing", Table: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, "big", got.Source)
}

func TestDensitySelectsHeaviestCells(t *testing.T) {
	s, err := NewStrategy("density", nil, nil)
	require.NoError(t, err)

	light := table.MustNew(table.Column{Name: "v", Values: []table.Value{table.Boolean(true)}})
	heavy := table.MustNew(table.Column{Name: "v", Values: []table.Value{table.Text("a long description")}})

	got, err := s.Select([]*Candidate{
		{Source: "light", Table: light},
		{Source: "heavy", Table: heavy},
	})
	require.NoError(t, err)
	assert.Equal(t, "heavy", got.Source)
}

func TestSelectEmptyPool(t *testing.T) {
	for _, name := range []string{"frequency", "size", "density", "random"} {
		s, err := NewStrategy(name, BagPredicate(), nil)
		require.NoError(t, err)
		_, err = s.Select(nil)
		assert.ErrorIs(t, err, ErrNoCandidates, name)
	}
}

func TestNewStrategyUnknown(t *testing.T) {
	_, err := NewStrategy("majority", nil, nil)
	require.Error(t, err)
}

func TestValids(t *testing.T) {
	cands := []*Candidate{
		{Source: "ok", Table: numTable("v", 1)},
		{Source: "failed", Err: "generation failed"},
		{Source: "no-table"},
	}
	valid := Valids(cands)
	require.Len(t, valid, 1)
	assert.Equal(t, "ok", valid[0].Source)
}

func TestPredicateByName(t *testing.T) {
	c := compare.New(compare.Options{})

	for _, name := range []string{"", "tolerant", "bag", "multiset"} {
		pred, ok := PredicateByName(name, c, "", "")
		assert.True(t, ok, name)
		assert.NotNil(t, pred, name)
	}
	_, ok := PredicateByName("exact", c, "", "")
	assert.False(t, ok)
}
