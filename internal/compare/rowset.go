package compare

import (
	"strings"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

// BagEqual reports whether two tables hold the same set of row tuples.
// Row order is ignored and duplicate rows collapse, so tables differing only
// in ordering or duplicate counts compare equal.
func BagEqual(ref, cand *table.Table) bool {
	if ref == nil || cand == nil {
		return ref == cand
	}
	return rowSetsEqual(ref.RowSet(), cand.RowSet())
}

// ColumnMultisetMatch reports whether the predicted table carries the same
// content as the ground table under some column permutation. Unlike
// SecondaryCheck it requires a true bijection between columns, built
// greedily in FIFO order over exact value-frequency multisets.
func ColumnMultisetMatch(pred, ground *table.Table) bool {
	if pred == nil || ground == nil {
		return false
	}
	if rowSetsEqual(pred.RowSet(), ground.RowSet()) {
		return true
	}

	dp := dropDuplicateColumns(dedupRows(pred))
	dg := dropDuplicateColumns(dedupRows(ground))

	if dp.NumRows() != dg.NumRows() {
		return false
	}
	if dp.NumCols() != dg.NumCols() {
		return false
	}

	// Greedy FIFO bijection: each predicted column, in original order,
	// claims the first unmatched ground column with an identical
	// value-frequency multiset.
	type pooled struct {
		idx  int
		freq map[string]int
	}
	pool := make([]pooled, dg.NumCols())
	for j := range dg.Columns {
		pool[j] = pooled{idx: j, freq: valueFrequencies(dg.Columns[j].Values)}
	}

	// predForGround[g] is the predicted column aligned to ground column g.
	predForGround := make([]int, dg.NumCols())
	for i := range dp.Columns {
		freq := valueFrequencies(dp.Columns[i].Values)
		matched := -1
		for p, g := range pool {
			if frequenciesEqual(freq, g.freq) {
				matched = p
				break
			}
		}
		if matched < 0 {
			return false
		}
		predForGround[pool[matched].idx] = i
		pool = append(pool[:matched], pool[matched+1:]...)
	}

	// Reindex predicted columns into ground order and compare row sets.
	cols := make([]table.Column, dg.NumCols())
	for g, p := range predForGround {
		cols[g] = dp.Columns[p]
	}
	permuted := &table.Table{Columns: cols, NRows: dp.NumRows()}
	return rowSetsEqual(permuted.RowSet(), dg.RowSet())
}

func rowSetsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// dedupRows drops exact duplicate rows, keeping first occurrences.
func dedupRows(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.NRows)
	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = table.Column{Name: c.Name}
	}
	nrows := 0
	for i := 0; i < t.NRows; i++ {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		for j, c := range t.Columns {
			cols[j].Values = append(cols[j].Values, c.Values[i])
		}
		nrows++
	}
	return &table.Table{Columns: cols, NRows: nrows}
}

// dropDuplicateColumns removes any column whose value sequence exactly
// duplicates an already-kept column, regardless of name.
func dropDuplicateColumns(t *table.Table) *table.Table {
	var cols []table.Column
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		key := columnKey(c.Values)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cols = append(cols, c)
	}
	return &table.Table{Columns: cols, NRows: t.NRows}
}

func columnKey(vals []table.Value) string {
	var sb strings.Builder
	for i, v := range vals {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(v.Key())
	}
	return sb.String()
}

func valueFrequencies(vals []table.Value) map[string]int {
	freq := make(map[string]int, len(vals))
	for _, v := range vals {
		freq[v.Key()]++
	}
	return freq
}

func frequenciesEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}
