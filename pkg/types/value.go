package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the semantic type of a runtime value.
type ValueKind uint8

const (
	// KindNull is the absent value (empty cell).
	KindNull ValueKind = iota
	// KindNumber is a float64 number.
	KindNumber
	// KindText is a string.
	KindText
	// KindBool is a boolean.
	KindBool
	// KindDate is a point in time.
	KindDate
	// KindArray is an ordered list of values. Arrays are engine-internal:
	// they arise from multi-value cells and from SPLIT, and render as their
	// comma-joined text when they reach a top-level result.
	KindArray
)

// String returns a string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a tagged runtime value flowing through the evaluator.
//
// Exactly one payload field is meaningful, selected by Kind. Coercions are
// total: they never fail, they fall back to the documented defaults instead
// (non-numeric text coerces to 0, everything non-empty and non-zero is true).
type Value struct {
	Kind  ValueKind
	Num   float64
	Str   string
	Bool  bool
	Time  time.Time
	Items []Value
}

// NullValue is the singleton null value.
var NullValue = Value{Kind: KindNull}

// Number creates a number value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text creates a text value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Boolean creates a boolean value.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Date creates a date value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// Array creates an array value.
func Array(items []Value) Value { return Value{Kind: KindArray, Items: items} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// ToNumber coerces the value to a number.
//
// Text parses as a decimal number; non-numeric text coerces to 0. Booleans
// coerce to 1/0. Dates coerce to their Unix millisecond timestamp. Null and
// arrays coerce to 0 (a single-element array coerces to its element).
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return n
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindDate:
		return float64(v.Time.UnixMilli())
	case KindArray:
		if len(v.Items) == 1 {
			return v.Items[0].ToNumber()
		}
		return 0
	default:
		return 0
	}
}

// ToBool coerces the value to a boolean.
//
// The zero number, empty text and null coerce to false; anything else,
// including any non-zero number and any non-empty text, coerces to true.
func (v Value) ToBool() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0
	case KindText:
		return v.Str != ""
	case KindBool:
		return v.Bool
	case KindDate:
		return true
	case KindArray:
		return len(v.Items) > 0
	default:
		return false
	}
}

// ToText coerces the value to text. Null renders as the empty string, dates
// as "2006-01-02" (with a " 15:04:05" suffix when a time of day is present)
// and arrays as their comma-joined elements.
func (v Value) ToText() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindText:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return FormatDate(v.Time)
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.ToText()
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// formatNumber renders a number for display. The value is rounded to 15
// significant digits first, so binary float artifacts (19.99 * 5 is not
// exactly 99.95 in a float64) never reach the user.
func formatNumber(n float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(n, 'e', 14, 64), 64)
	if err != nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// dateLayouts are the accepted textual date forms, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses a textual date representation.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a time as its canonical textual form.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// FromAny converts a dynamically typed cell value into a Value. It accepts
// the Go types produced by row storage and the table adapter; unknown types
// fall back to their string form.
func FromAny(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return NullValue
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		return Boolean(x)
	case string:
		return Text(x)
	case time.Time:
		return Date(x)
	case []Value:
		return Array(x)
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = Text(s)
		}
		return Array(items)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromAny(e)
		}
		return Array(items)
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}
