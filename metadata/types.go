package metadata

import (
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindMissing represents a missing (not available) value.
	KindMissing
	// KindNumeric represents a numeric value.
	KindNumeric
	// KindText represents a text value.
	KindText
)

// Value is a small typed value used for feature metadata fields.
//
// The representation is designed to make query evaluation fast and
// predictable: no reflection and no fmt-based stringification.
type Value struct {
	Kind Kind
	F64  float64
	S    string
}

// Missing returns a missing Value. Missing values never match any query
// comparison, including !=.
func Missing() Value { return Value{Kind: KindMissing} }

// Number returns a numeric Value.
func Number(v float64) Value { return Value{Kind: KindNumeric, F64: v} }

// Text returns a text Value.
func Text(v string) Value { return Value{Kind: KindText, S: v} }

// IsMissing reports whether the value is missing.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// AsNumber returns the numeric value if Kind is KindNumeric.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind != KindNumeric {
		return 0, false
	}
	return v.F64, true
}

// AsText returns the text value if Kind is KindText.
func (v Value) AsText() (string, bool) {
	if v.Kind != KindText {
		return "", false
	}
	return v.S, true
}

// ParseValue converts a raw cell from a loader into a typed Value.
//
// Surrounding whitespace is stripped; empty or whitespace-only cells are
// missing. Cells that parse as a float become numeric, everything else is
// text.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

// FieldType defines the registered type of a metadata field.
type FieldType uint8

const (
	// FieldTypeNumeric marks a field whose non-missing values are all numeric.
	FieldTypeNumeric FieldType = iota
	// FieldTypeText marks a field holding arbitrary text.
	FieldTypeText
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeNumeric:
		return "numeric"
	case FieldTypeText:
		return "text"
	default:
		return "unknown"
	}
}
