package compare

import (
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// SecondaryCheck reports whether every reference column's content can be
// matched to some candidate column, ignoring column names and order. Row
// order within a column is preserved. The scan is greedy and
// order-dependent: reference columns in original order on the outside,
// candidate columns left-to-right on the inside, first match consumed.
func (c *Comparator) SecondaryCheck(ref, cand *table.Table) bool {
	// Zero reference columns: the answer shape is just a row count.
	if ref.NumCols() == 0 {
		if ref.NumRows() == 0 {
			return true
		}
		return ref.NumRows() == cand.NumRows()
	}
	if ref.NumRows() == 0 {
		return true
	}

	if ref.NumCols() > cand.NumCols() {
		return false
	}
	if ref.NumRows() > cand.NumRows() {
		return false
	}

	used := make([]bool, cand.NumCols())
	for i := 0; i < ref.NumCols(); i++ {
		matched := false
		for j := 0; j < cand.NumCols(); j++ {
			if used[j] {
				continue
			}
			if c.SeriesMatch(ref.Columns[i].Values, cand.Columns[j].Values) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// SeriesMatch reports whether value sequence a is contained in b. For a pair
// of numeric columns this is membership after rounding, with an independent
// per-element absolute-tolerance pass as a fallback (one b element may
// satisfy several a elements). For anything else the column kinds must agree
// and every a value must occur somewhere in b.
func (c *Comparator) SeriesMatch(a, b []table.Value) bool {
	if isNumericSeries(a) && isNumericSeries(b) {
		if len(a) > len(b) {
			return false
		}
		ra := c.roundSeries(a)
		rb := c.roundSeries(b)
		if containsAll(ra, rb) {
			return true
		}
		for _, va := range ra {
			if va.IsNull() {
				return false
			}
			found := false
			for _, vb := range rb {
				if vb.IsNull() {
					continue
				}
				if diff := va.Num - vb.Num; diff < c.tolerance && diff > -c.tolerance {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	if seriesKind(a) != seriesKind(b) {
		return false
	}
	return containsAll(a, b)
}

// isNumericSeries reports whether the column holds only numbers and nulls.
func isNumericSeries(vals []table.Value) bool {
	for _, v := range vals {
		if v.Kind != table.KindNumber && v.Kind != table.KindNull {
			return false
		}
	}
	return true
}

// seriesKind summarizes a column's value kinds for the dtype-equality check
// of non-numeric series matching.
func seriesKind(vals []table.Value) string {
	kind := ""
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		k := v.Kind.String()
		switch kind {
		case "", k:
			kind = k
		default:
			return "mixed"
		}
	}
	if kind == "" {
		return "null"
	}
	return kind
}

// roundSeries rounds numeric values to the configured precision.
func (c *Comparator) roundSeries(vals []table.Value) []table.Value {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		out[i] = v.Round(c.decimals)
	}
	return out
}

// containsAll reports whether every value of a occurs among b. Nulls match
// nulls.
func containsAll(a, b []table.Value) bool {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v.Key()] = struct{}{}
	}
	for _, v := range a {
		if _, ok := set[v.Key()]; !ok {
			return false
		}
	}
	return true
}
