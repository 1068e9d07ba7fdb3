// Package table defines the canonical in-memory representation of one query
// result: an ordered list of named columns holding same-length sequences of
// typed values. Tables are created once from execution output and treated as
// immutable afterwards; transformations return new instances.
package table

import (
	"database/sql"
	"fmt"
	"strings"
)

// ErrorColumn is the column name of the single-cell sentinel table that a
// store executor returns in place of a raised error.
const ErrorColumn = "exec_error"

// timeoutMessage is the cell content of the sentinel produced when query
// execution exceeds its deadline.
const timeoutMessage = "execution timed out"

// Column is a named, ordered sequence of values.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered list of columns. Every column holds exactly NRows
// values. NRows is tracked explicitly so that the degenerate zero-column
// shape can still carry a row count.
type Table struct {
	Columns []Column
	NRows   int
}

// New builds a table from columns, validating that they share one length.
func New(cols ...Column) (*Table, error) {
	t := &Table{Columns: cols}
	if len(cols) > 0 {
		t.NRows = len(cols[0].Values)
		for _, c := range cols[1:] {
			if len(c.Values) != t.NRows {
				return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), t.NRows)
			}
		}
	}
	return t, nil
}

// MustNew is New for statically known shapes; it panics on ragged columns.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Shaped returns a table with no columns but an explicit row count.
func Shaped(rows int) *Table {
	return &Table{NRows: rows}
}

// FromRows drains a *sql.Rows result set into a table. Driver values are
// converted through FromDriver. The rows are closed before returning.
func FromRows(rows *sql.Rows) (*Table, error) {
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}

	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i].Name = n
	}

	nrows := 0
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			cols[i].Values = append(cols[i].Values, FromDriver(v))
		}
		nrows++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &Table{Columns: cols, NRows: nrows}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.NRows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// Empty reports whether either axis is zero-length.
func (t *Table) Empty() bool { return t.NRows == 0 || len(t.Columns) == 0 }

// Size returns the cell count (rows × columns).
func (t *Table) Size() int { return t.NRows * len(t.Columns) }

// SerializedSize approximates the byte weight of the cell payloads. Used by
// the density selection strategy.
func (t *Table) SerializedSize() int {
	total := 0
	for _, c := range t.Columns {
		for _, v := range c.Values {
			switch v.Kind {
			case KindNumber:
				total += 8
			case KindText:
				total += len(v.Str)
			case KindBool:
				total++
			}
		}
	}
	return total
}

// Row returns the i-th row tuple.
func (t *Table) Row(i int) []Value {
	cells := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		cells[j] = c.Values[i]
	}
	return cells
}

// RowKey returns the canonical encoding of the i-th row tuple.
func (t *Table) RowKey(i int) string {
	return rowKey(t.Row(i))
}

// RowSet collapses the table to its set of row tuples. Duplicate rows
// collapse to one entry.
func (t *Table) RowSet() map[string]struct{} {
	set := make(map[string]struct{}, t.NRows)
	for i := 0; i < t.NRows; i++ {
		set[t.RowKey(i)] = struct{}{}
	}
	return set
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Equal reports full structural equality: same shape, same column names in
// the same order, and cell-for-cell equal values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.NRows != o.NRows || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i, c := range t.Columns {
		oc := o.Columns[i]
		if c.Name != oc.Name {
			return false
		}
		for j, v := range c.Values {
			if !v.Equal(oc.Values[j]) {
				return false
			}
		}
	}
	return true
}

// ErrorTable wraps an execution failure in the single-cell sentinel shape the
// rest of the pipeline expects instead of a raised error.
func ErrorTable(msg string) *Table {
	return &Table{
		Columns: []Column{{Name: ErrorColumn, Values: []Value{Text(msg)}}},
		NRows:   1,
	}
}

// TimeoutTable is the sentinel for a query that exceeded its deadline.
func TimeoutTable() *Table { return ErrorTable(timeoutMessage) }

// IsErrorTable reports whether t is an execution-failure sentinel.
func (t *Table) IsErrorTable() bool {
	return t != nil && len(t.Columns) > 0 && t.Columns[0].Name == ErrorColumn
}

// ErrorMessage returns the sentinel's message, or "" for regular tables.
func (t *Table) ErrorMessage() string {
	if !t.IsErrorTable() || t.NRows == 0 {
		return ""
	}
	return t.Columns[0].Values[0].Str
}

// IsTimeoutTable reports whether t is the timed-out execution sentinel.
func (t *Table) IsTimeoutTable() bool {
	return t.IsErrorTable() && strings.Contains(t.ErrorMessage(), "timed out")
}
