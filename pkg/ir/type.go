package ir

import "strconv"

// Type (a "Magma") classifies the value domain of a column or expression.
// The lattice is Void < Boolean < Numeric, extensible in principle to
// bit-width-specific magmas, though this implementation only tracks the
// three base levels plus an optional bit width carried alongside Numeric
// for diagnostics.
type Type struct {
	level typeLevel
	// Width is only meaningful when level == levelNumeric and a column
	// declared an explicit bit width (e.g. :i16); zero means unconstrained.
	Width uint
}

type typeLevel uint8

const (
	levelVoid typeLevel = iota
	levelBoolean
	levelNumeric
)

// Void is the bottom of the lattice: the type of expressions with no value
// (e.g. Begin's final discarded results).
var Void = Type{level: levelVoid}

// Boolean is the type of expressions guaranteed to be 0 or 1.
var Boolean = Type{level: levelBoolean}

// Numeric is the top of the lattice: any value permitted by the field.
var Numeric = Type{level: levelNumeric}

// NumericWidth constructs a Numeric type carrying an explicit bit width.
func NumericWidth(width uint) Type {
	return Type{levelNumeric, width}
}

// IsVoid reports whether t is Void.
func (t Type) IsVoid() bool { return t.level == levelVoid }

// IsBoolean reports whether t is exactly Boolean.
func (t Type) IsBoolean() bool { return t.level == levelBoolean }

// LessEq reports whether t ≤ o in the lattice order.
func (t Type) LessEq(o Type) bool {
	return t.level <= o.level
}

// Join computes the least upper bound of two types: commutative,
// associative, idempotent.
func Join(a, b Type) Type {
	if a.level >= b.level {
		if a.level == levelNumeric {
			return Type{levelNumeric, maxWidth(a.Width, b.Width)}
		}

		return a
	}

	if b.level == levelNumeric {
		return Type{levelNumeric, maxWidth(a.Width, b.Width)}
	}

	return b
}

func maxWidth(a, b uint) uint {
	if a == 0 || b == 0 {
		return 0
	}

	if a > b {
		return a
	}

	return b
}

// Invert returns the type of 1/x given x has type t: the inverse of a
// Boolean is still Boolean-shaped in practice (0 or 1⁻¹=1) but is always
// widened to Numeric, since §4.5 always introduces a Numeric inverse column
// for non-Boolean references.
func (t Type) Invert() Type {
	return Numeric
}

// String renders the type for diagnostics.
func (t Type) String() string {
	switch t.level {
	case levelVoid:
		return "void"
	case levelBoolean:
		return "bool"
	default:
		if t.Width > 0 {
			return "num@" + strconv.FormatUint(uint64(t.Width), 10)
		}

		return "num"
	}
}
