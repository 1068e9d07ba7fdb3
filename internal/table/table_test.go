package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDriver(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"int64", int64(7), Number(7)},
		{"float64", 2.5, Number(2.5)},
		{"bytes", []byte("abc"), Text("abc")},
		{"string", "abc", Text("abc")},
		{"bool", true, Boolean(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDriver(tt.in))
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Number(1).Equal(Number(1)))
	assert.False(t, Number(1).Equal(Number(2)))
	assert.False(t, Number(0).Equal(Null()))
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Number(math.NaN()).Equal(Number(math.NaN())), "NaN should compare equal to NaN")
	assert.False(t, Text("1").Equal(Number(1)), "kinds must agree")
}

func TestValueKeyDistinct(t *testing.T) {
	// Values that render alike must still key apart.
	keys := map[string]struct{}{}
	for _, v := range []Value{Null(), Number(1), Text("1"), Boolean(true), Text("true"), Text("")} {
		keys[v.Key()] = struct{}{}
	}
	assert.Len(t, keys, 6)
}

func TestValueRound(t *testing.T) {
	assert.Equal(t, Number(1.235), Number(1.23456).Round(3))
	assert.Equal(t, Text("x"), Text("x").Round(3), "non-numeric values pass through")
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		Column{Name: "a", Values: []Value{Number(1), Number(2)}},
		Column{Name: "b", Values: []Value{Number(1)}},
	)
	require.Error(t, err)
}

func TestShapedKeepsRowCount(t *testing.T) {
	s := Shaped(4)
	assert.Equal(t, 4, s.NumRows())
	assert.Equal(t, 0, s.NumCols())
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Size())
}

func TestRowSetCollapsesDuplicates(t *testing.T) {
	tbl := MustNew(Column{Name: "a", Values: []Value{Number(1), Number(1), Number(2)}})
	assert.Len(t, tbl.RowSet(), 2)
}

func TestTableEqual(t *testing.T) {
	a := MustNew(
		Column{Name: "x", Values: []Value{Number(1), Null()}},
		Column{Name: "y", Values: []Value{Text("u"), Text("v")}},
	)
	b := MustNew(
		Column{Name: "x", Values: []Value{Number(1), Null()}},
		Column{Name: "y", Values: []Value{Text("u"), Text("v")}},
	)
	assert.True(t, a.Equal(b))

	renamed := MustNew(
		Column{Name: "z", Values: []Value{Number(1), Null()}},
		Column{Name: "y", Values: []Value{Text("u"), Text("v")}},
	)
	assert.False(t, a.Equal(renamed), "column names are part of exact equality")

	var nilTable *Table
	assert.False(t, a.Equal(nilTable))
	assert.True(t, nilTable.Equal(nil))
}

func TestErrorTable(t *testing.T) {
	e := ErrorTable("syntax error near SELECT")
	require.True(t, e.IsErrorTable())
	assert.Equal(t, "syntax error near SELECT", e.ErrorMessage())
	assert.False(t, e.IsTimeoutTable())

	to := TimeoutTable()
	assert.True(t, to.IsErrorTable())
	assert.True(t, to.IsTimeoutTable())

	regular := MustNew(Column{Name: "a", Values: []Value{Number(1)}})
	assert.False(t, regular.IsErrorTable())
	assert.Equal(t, "", regular.ErrorMessage())
}

func TestCodecRoundTrip(t *testing.T) {
	tbl := MustNew(
		Column{Name: "name", Values: []Value{Text("amy"), Null()}},
		Column{Name: "score", Values: []Value{Number(1.5), Number(math.NaN())}},
	)

	data, err := tbl.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(got))
}
