package normalize

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

// missingTokens are the textual encodings of a missing value, compared after
// trimming and lowercasing.
var missingTokens = map[string]struct{}{
	"":     {},
	"null": {},
	"none": {},
	"nan":  {},
	"n/a":  {},
}

// IsMissing reports whether v encodes a missing value: either the null
// sentinel or one of the conventional textual null spellings.
func IsMissing(v table.Value) bool {
	if v.IsNull() {
		return true
	}
	if v.Kind != table.KindText {
		return false
	}
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(v.Str))]
	return ok
}

// ParseNumeric attempts a numeric reading of v. Booleans read as 0/1, text
// is parsed as a float after trimming.
func ParseNumeric(v table.Value) (float64, bool) {
	switch v.Kind {
	case table.KindNumber:
		return v.Num, true
	case table.KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case table.KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// coerceColumn standardizes missing values to null and, when more than the
// configured fraction of the remaining values parse as numbers, converts the
// column to numeric form. Otherwise values keep a consistent string form.
func (n *Normalizer) coerceColumn(vals []table.Value) []table.Value {
	cleaned := make([]table.Value, len(vals))
	nonMissing := 0
	numeric := 0
	for i, v := range vals {
		if IsMissing(v) {
			cleaned[i] = table.Null()
			continue
		}
		cleaned[i] = v
		nonMissing++
		if _, ok := ParseNumeric(v); ok {
			numeric++
		}
	}

	if nonMissing > 0 && float64(numeric)/float64(nonMissing) > n.threshold {
		for i, v := range cleaned {
			if v.IsNull() {
				continue
			}
			if f, ok := ParseNumeric(v); ok {
				cleaned[i] = table.Number(f)
			} else {
				cleaned[i] = table.Null()
			}
		}
		return cleaned
	}

	for i, v := range cleaned {
		if v.IsNull() {
			continue
		}
		cleaned[i] = table.Text(v.String())
	}
	return cleaned
}
