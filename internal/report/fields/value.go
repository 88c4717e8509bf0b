package fields

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind classifies a Value.
type Kind int

const (
	// KindAbsent marks a field the extractor never produced, for example
	// because the report has no column for it.
	KindAbsent Kind = iota
	// KindUnavailable marks a field whose column exists but whose pattern did
	// not match.
	KindUnavailable
	KindString
	KindNumber
	KindInteger
)

// NotAvailable is the display text for absent and unavailable values.
const NotAvailable = "Not available"

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	default:
		return "absent"
	}
}

// Value is a typed record field. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	i    int
}

// Unavailable returns the explicit "no match" sentinel.
func Unavailable() Value { return Value{kind: KindUnavailable} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Integer returns an integer value.
func Integer(i int) Value { return Value{kind: KindInteger, i: i} }

// optional returns String(s) when ok, otherwise Unavailable.
func optional(s string, ok bool) Value {
	if !ok {
		return Unavailable()
	}
	return String(s)
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the field was never produced.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNull reports whether the value is absent or unavailable.
func (v Value) IsNull() bool { return v.kind == KindAbsent || v.kind == KindUnavailable }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int, bool) {
	return v.i, v.kind == KindInteger
}

// Decimal returns the numeric payload and whether v is a number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// StringOr returns the string payload, or fallback when v is not a string.
func (v Value) StringOr(fallback string) string {
	if v.kind == KindString {
		return v.str
	}
	return fallback
}

// Display renders the value for humans; null values render as NotAvailable.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindInteger:
		return strconv.Itoa(v.i)
	default:
		return NotAvailable
	}
}

// Interface returns the payload as a plain Go value: string, float64, int or
// nil for null values.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.InexactFloat64()
	case KindInteger:
		return v.i
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num.Equal(o.num)
	case KindInteger:
		return v.i == o.i
	default:
		return true
	}
}

// MarshalJSON encodes null values as null and numbers without quotes.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindInteger:
		return []byte(strconv.Itoa(v.i)), nil
	default:
		return []byte("null"), nil
	}
}
