// Package schema implements the constraint set, column store, and the
// Vanishes/InRange/Plookup/Permutation/Normalization constraint and
// Computation tagged unions that the resolver, normalisation, and
// if-expansion passes populate.
package schema

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
)

// Kind distinguishes how a column's values are ultimately supplied.
type Kind uint8

// The closed set of column kinds.
const (
	// Atomic columns have values supplied directly by the trace.
	Atomic Kind = iota
	// Phantom columns have a value derived by outer convention (e.g. a
	// permutation or interleaving target) rather than an explicit rule.
	Phantom
	// Computed columns have a value derived by an associated Computation.
	Computed
)

func (k Kind) String() string {
	switch k {
	case Atomic:
		return "atomic"
	case Phantom:
		return "phantom"
	case Computed:
		return "computed"
	default:
		return "?"
	}
}

// RegisterId identifies the lowered storage unit a column maps to at
// emission time. Multiple columns may share a register
// when dimensional analysis proves them equivalent; this implementation
// assigns one register per column (no register sharing), which is a valid
// specialisation of the general model.
type RegisterId struct {
	index uint
	used  bool
}

// NewRegisterId constructs a register identifier from a raw index.
func NewRegisterId(index uint) RegisterId {
	return RegisterId{index, true}
}

// NewUnusedRegisterId constructs a sentinel identifying no register, used
// before a column has been assigned a register during lowering.
func NewUnusedRegisterId() RegisterId {
	return RegisterId{}
}

// IsUsed reports whether this identifier refers to an actual register.
func (r RegisterId) IsUsed() bool { return r.used }

// Index returns the raw register index; only meaningful when IsUsed().
func (r RegisterId) Index() uint { return r.index }

// Column is the declaration of one column: its qualified name, value type,
// and how its values are ultimately obtained. Columns are
// immutable after symbol-table construction except for the Register field,
// which is assigned during lowering.
type Column struct {
	Handle ir.Handle
	Type   ir.Type
	Kind   Kind
	// Base is the display radix (2, 10, or 16) used by back-ends rendering
	// trace dumps; it has no semantic effect on checking.
	Base int
	// PaddingValue is used for spilling rows before row 0, when non-nil;
	// otherwise padding defaults to zero.
	PaddingValue *big.Int
	// Perspective names the sub-scope this column was declared within, or
	// "" if declared directly within its module.
	Perspective string
	// Register is assigned during lowering; NewUnusedRegisterId() beforehand.
	Register RegisterId
}

// ArrayColumn is the declaration of an array column: a fixed integer domain
// that expands, at declaration time, into one sibling scalar Column per
// domain value, plus this sentinel entry used only to validate `nth` calls.
type ArrayColumn struct {
	Handle ir.Handle
	Domain []int
	Type   ir.Type
	Base   int
}

// Contains reports whether i is a valid index into this array's domain.
func (a ArrayColumn) Contains(i int) bool {
	for _, v := range a.Domain {
		if v == i {
			return true
		}
	}

	return false
}

// ElementHandle returns the handle of the i-th sibling scalar column.
func (a ArrayColumn) ElementHandle(i int) ir.Handle {
	return a.Handle.Ith(i)
}

// ErrOutOfRange is returned when `nth` is called with an index outside an
// array column's declared domain.
type ErrOutOfRange struct {
	Array ir.Handle
	Index int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for array column %s", e.Index, e.Array.Display())
}
