// Package normalize canonicalizes result tables ahead of equivalence
// comparison: duplicate column names and rows are removed, columns are
// sorted, and rows are sorted either by the ORDER BY columns of the source
// query (when the question asks for an ordering) or by every column
// left-to-right after type coercion.
package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

// DefaultNumericThreshold is the fraction of non-missing values that must
// parse as numbers before a mixed column is coerced to numeric ordering.
const DefaultNumericThreshold = 0.8

// CategoryOrderBy is the category hint that marks a question as requesting
// an explicit ordering.
const CategoryOrderBy = "order_by"

var (
	orderingPattern = regexp.MustCompile(`(?i)\b(order|sort|arrange)\b`)
	orderByClause   = regexp.MustCompile(`(?i)ORDER BY(.*?)(;|,|\)|$)`)
)

// orderByNoise are ORDER BY tokens that are not column references.
var orderByNoise = map[string]struct{}{
	"desc": {}, "asc": {}, "nulls": {}, "last": {}, "first": {}, "limit": {},
}

// Normalizer canonicalizes tables. The zero value is not usable; construct
// with New.
type Normalizer struct {
	logger    *slog.Logger
	threshold float64
}

// Options configures a Normalizer.
type Options struct {
	// Logger receives warnings when a full-column sort has to be abandoned.
	// If nil, logs are discarded.
	Logger *slog.Logger

	// NumericThreshold overrides DefaultNumericThreshold when > 0.
	NumericThreshold float64
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	threshold := opts.NumericThreshold
	if threshold <= 0 {
		threshold = DefaultNumericThreshold
	}
	return &Normalizer{logger: logger, threshold: threshold}
}

// Normalize returns a canonical copy of t. category is the question's
// category hint, question the natural-language question text, and sourceSQL
// the query that produced the table (may be empty). The input is never
// mutated.
func (n *Normalizer) Normalize(t *table.Table, category, question, sourceSQL string) *table.Table {
	out := dedupeColumnNames(t)
	out = dedupeRows(out)
	out = sortColumns(out)

	requested := category == CategoryOrderBy || orderingPattern.MatchString(question)
	if requested {
		if cols, asc, ok := extractOrderBy(sourceSQL); ok {
			return n.sortByOrderColumns(out, cols, asc)
		}
		// Ordering was asked for but the source query gives no ORDER BY to
		// honor: leave rows in their deduplicated order.
		return out
	}

	return n.sortByAllColumns(out)
}

// dedupeColumnNames renames every occurrence of a repeated column name to
// name_<positional index>.
func dedupeColumnNames(t *table.Table) *table.Table {
	counts := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		counts[c.Name]++
	}

	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		name := c.Name
		if counts[c.Name] > 1 {
			name = fmt.Sprintf("%s_%d", c.Name, i)
		}
		cols[i] = table.Column{Name: name, Values: c.Values}
	}
	return &table.Table{Columns: cols, NRows: t.NRows}
}

// dedupeRows drops exact duplicate rows, keeping the first occurrence.
func dedupeRows(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.NRows)
	keep := make([]int, 0, t.NRows)
	for i := 0; i < t.NRows; i++ {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return selectRows(t, keep)
}

// sortColumns orders columns alphabetically by name.
func sortColumns(t *table.Table) *table.Table {
	cols := make([]table.Column, len(t.Columns))
	copy(cols, t.Columns)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return &table.Table{Columns: cols, NRows: t.NRows}
}

// extractOrderBy scans sql for an ORDER BY clause and returns the referenced
// column names (qualifiers stripped) and the sort direction. Direction is
// descending unless an explicit ASC token appears.
func extractOrderBy(sql string) (cols []string, ascending bool, ok bool) {
	if sql == "" {
		return nil, false, false
	}
	m := orderByClause.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, false
	}

	tokens := strings.Fields(m[1])
	stripped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if idx := strings.LastIndex(tok, "."); idx >= 0 {
			tok = tok[idx+1:]
		}
		stripped = append(stripped, tok)
	}

	ascending = false
	for _, tok := range stripped {
		switch strings.ToUpper(tok) {
		case "DESC":
			ascending = false
		case "ASC":
			ascending = true
		}
	}

	for _, tok := range stripped {
		tok = strings.ReplaceAll(tok, ",", "")
		tok = strings.ReplaceAll(tok, "(", "")
		if _, noise := orderByNoise[strings.ToLower(tok)]; noise || tok == "" {
			continue
		}
		cols = append(cols, tok)
	}
	return cols, ascending, true
}

// sortByOrderColumns sorts rows by the ORDER BY columns first and the
// remaining columns (already alphabetical) after, all in one direction, then
// moves the ORDER BY columns to the end of the column order.
func (n *Normalizer) sortByOrderColumns(t *table.Table, orderCols []string, ascending bool) *table.Table {
	present := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		present[c.Name] = i
	}

	var keyCols []int
	inOrder := make(map[string]struct{}, len(orderCols))
	for _, name := range orderCols {
		if idx, ok := present[name]; ok {
			if _, dup := inOrder[name]; dup {
				continue
			}
			inOrder[name] = struct{}{}
			keyCols = append(keyCols, idx)
		}
	}
	var otherCols []int
	for i, c := range t.Columns {
		if _, ok := inOrder[c.Name]; !ok {
			otherCols = append(otherCols, i)
		}
	}

	sortKey := append(append([]int{}, keyCols...), otherCols...)
	perm := sortedRowOrder(t, sortKey, ascending)
	sorted := applyRowOrder(t, perm)

	// Order columns trail in the output.
	cols := make([]table.Column, 0, len(sorted.Columns))
	for _, i := range otherCols {
		cols = append(cols, sorted.Columns[i])
	}
	for _, i := range keyCols {
		cols = append(cols, sorted.Columns[i])
	}
	return &table.Table{Columns: cols, NRows: sorted.NRows}
}

// sortByAllColumns coerces every column and sorts rows ascending by all
// columns left-to-right, missing values last. If the sort cannot be
// completed the deduplicated but unsorted table is returned instead of
// failing the comparison.
func (n *Normalizer) sortByAllColumns(t *table.Table) (out *table.Table) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("failed to sort by all columns, returning unsorted table", "error", fmt.Sprint(r))
			out = t
		}
	}()

	cleaned := n.coerceColumns(t)
	keyCols := make([]int, len(cleaned.Columns))
	for i := range keyCols {
		keyCols[i] = i
	}
	perm := sortedRowOrder(cleaned, keyCols, true)
	return applyRowOrder(cleaned, perm)
}

// coerceColumns applies the mixed-type cleanup to every column.
func (n *Normalizer) coerceColumns(t *table.Table) *table.Table {
	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = table.Column{Name: c.Name, Values: n.coerceColumn(c.Values)}
	}
	return &table.Table{Columns: cols, NRows: t.NRows}
}

// selectRows builds a new table containing only the rows at the given
// indices, in order.
func selectRows(t *table.Table, rows []int) *table.Table {
	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]table.Value, len(rows))
		for j, r := range rows {
			vals[j] = c.Values[r]
		}
		cols[i] = table.Column{Name: c.Name, Values: vals}
	}
	return &table.Table{Columns: cols, NRows: len(rows)}
}

// sortedRowOrder returns a stable permutation of row indices ordered by the
// key columns left-to-right. Missing values sort last regardless of
// direction.
func sortedRowOrder(t *table.Table, keyCols []int, ascending bool) []int {
	perm := make([]int, t.NRows)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		for _, c := range keyCols {
			va := t.Columns[c].Values[perm[a]]
			vb := t.Columns[c].Values[perm[b]]
			cmp := compareValues(va, vb)
			if cmp == 0 {
				continue
			}
			// Nulls stay last in either direction.
			if va.IsNull() || vb.IsNull() {
				return cmp < 0
			}
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return perm
}

// applyRowOrder reorders rows by the given permutation.
func applyRowOrder(t *table.Table, perm []int) *table.Table {
	return selectRows(t, perm)
}

// compareValues imposes a total order on cell values: non-null before null,
// then by kind (numbers, text, booleans), then by natural value order.
func compareValues(a, b table.Value) int {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			return 1
		default:
			return -1
		}
	}
	if a.Kind != b.Kind {
		if kindRank(a.Kind) < kindRank(b.Kind) {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case table.KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
	case table.KindText:
		return strings.Compare(a.Str, b.Str)
	case table.KindBool:
		switch {
		case !a.Bool && b.Bool:
			return -1
		case a.Bool && !b.Bool:
			return 1
		}
	}
	return 0
}

func kindRank(k table.Kind) int {
	switch k {
	case table.KindNumber:
		return 0
	case table.KindText:
		return 1
	default:
		return 2
	}
}
