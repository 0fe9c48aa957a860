// Package value defines the node-result type used throughout the pricing
// engine (an absent/decimal/text sum type) and the read-only evaluation
// context inputs are looked up from.
package value

import (
	"fmt"

	"github.com/ratehub/tariffengine/internal/decimal"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	// Absent is the zero value: the node produced no value, either
	// because an input was missing or a branch lifted a null through.
	Absent Kind = iota
	KindDecimal
	KindText
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an immutable tagged union: absent, decimal, or text. The zero
// Value is absent.
type Value struct {
	kind Kind
	dec  decimal.Decimal
	text string
}

// Nil is the absent value.
var Nil = Value{kind: Absent}

// FromDecimal wraps a decimal as a Value.
func FromDecimal(d decimal.Decimal) Value {
	return Value{kind: KindDecimal, dec: d}
}

// FromText wraps a string as a Value.
func FromText(s string) Value {
	return Value{kind: KindText, text: s}
}

// IsAbsent reports whether v carries no value.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Kind returns v's variant tag.
func (v Value) Kind() Kind { return v.kind }

// Decimal returns the decimal payload and true, or the zero Decimal and
// false if v is not a decimal.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

// Text returns the text payload and true, or "" and false if v is not text.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Equal reports deep equality between two values of the same kind. Values
// of different kinds are never equal, even "0" and "".
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Absent:
		return true
	case KindDecimal:
		return v.dec.Cmp(other.dec) == 0
	case KindText:
		return v.text == other.text
	default:
		return false
	}
}

// String renders v for logging, traces, and error messages.
func (v Value) String() string {
	switch v.kind {
	case Absent:
		return "<absent>"
	case KindDecimal:
		return v.dec.String()
	case KindText:
		return v.text
	default:
		return "<invalid>"
	}
}
