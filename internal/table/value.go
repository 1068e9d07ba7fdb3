package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type of a cell value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindBool
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is one cell of a result table. Exactly one of the payload fields is
// meaningful, selected by Kind. Fields are exported for gob encoding.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

// Null returns the missing-value sentinel.
func Null() Value { return Value{Kind: KindNull} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Text returns a string value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// FromDriver converts a database/sql scan result into a Value.
// Byte slices become text, integer and float types become numbers,
// and nil becomes the null sentinel.
func FromDriver(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return Boolean(x)
	case int64:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case []byte:
		return Text(string(x))
	case string:
		return Text(x)
	case time.Time:
		return Text(x.Format(time.RFC3339))
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}

// IsNull reports whether v is the missing-value sentinel.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal reports exact value equality. Numbers compare by float equality,
// nulls compare equal to nulls only.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindNumber:
		if math.IsNaN(v.Num) && math.IsNaN(o.Num) {
			return true
		}
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	}
	return false
}

// Key returns a canonical encoding used to build row/column sets and
// multisets. Distinct values always produce distinct keys.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "_"
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return "s:" + v.Str
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool)
	}
	return "?"
}

// String renders the value for reports and diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

// Round returns the value rounded to the given number of decimal places.
// Non-numeric values are returned unchanged.
func (v Value) Round(decimals int) Value {
	if v.Kind != KindNumber {
		return v
	}
	shift := math.Pow(10, float64(decimals))
	return Number(math.Round(v.Num*shift) / shift)
}

// rowKey joins cell keys into a canonical row-tuple encoding.
func rowKey(cells []Value) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(c.Key())
	}
	return sb.String()
}
