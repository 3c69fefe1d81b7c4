package schema

import (
	"math/big"

	"github.com/airlang/corset/pkg/ir"
)

// ConstraintKind tags the variant of a Constraint.
type ConstraintKind uint8

// The closed set of constraint kinds.
const (
	KindVanishes ConstraintKind = iota
	KindInRange
	KindPlookup
	KindPermutation
	KindNormalization
)

// Constraint is a tagged union over the five constraint forms the compiler
// can emit. Callers type-switch on Kind() rather than relying on an
// inheritance hierarchy.
type Constraint struct {
	kind ConstraintKind

	// Common to Vanishes / InRange / Plookup / Normalization.
	handle ir.Handle

	// Vanishes
	domain []int
	expr   ir.Node

	// InRange
	max *big.Int

	// Plookup
	included  []ir.Node
	including []ir.Node

	// Permutation
	froms []ir.Node
	tos   []ir.Node
	signs []bool

	// Normalization
	reference ir.Node
	inverted  ir.ColumnRef
}

// NewVanishes constructs a Vanishes constraint: expr must equal 0 on every
// row of domain (or every row of the module, when domain is nil), subject to
// spilling.
func NewVanishes(handle ir.Handle, domain []int, expr ir.Node) Constraint {
	return Constraint{kind: KindVanishes, handle: handle, domain: domain, expr: expr}
}

// NewInRange constructs an InRange constraint: expr's value on every row
// must lie in [0,max).
func NewInRange(handle ir.Handle, expr ir.Node, max *big.Int) Constraint {
	return Constraint{kind: KindInRange, handle: handle, expr: expr, max: max}
}

// NewPlookup constructs a Plookup constraint: every tuple of included on
// every row must appear as some row of including (multiplicity-insensitive).
func NewPlookup(handle ir.Handle, included, including []ir.Node) Constraint {
	return Constraint{kind: KindPlookup, handle: handle, included: included, including: including}
}

// NewPermutation constructs a Permutation constraint: tos is a row
// permutation of froms, sorted per-column according to signs (true =
// ascending).
func NewPermutation(froms, tos []ir.Node, signs []bool) Constraint {
	return Constraint{kind: KindPermutation, froms: froms, tos: tos, signs: signs}
}

// NewNormalization constructs a Normalization constraint, asserting that
// inverted holds reference's multiplicative inverse (or 0 when reference is
// 0) on every row.
func NewNormalization(handle ir.Handle, reference ir.Node, inverted ir.ColumnRef) Constraint {
	return Constraint{kind: KindNormalization, handle: handle, reference: reference, inverted: inverted}
}

// Kind returns this constraint's variant tag.
func (c Constraint) Kind() ConstraintKind { return c.kind }

// Handle returns the constraint's own name, for Vanishes/InRange/Plookup/
// Normalization.
func (c Constraint) Handle() ir.Handle { return c.handle }

// Domain returns the restricted row domain of a Vanishes constraint, or nil
// to mean "every row of the module".
func (c Constraint) Domain() []int { return c.domain }

// Expr returns the expression of a Vanishes or InRange constraint.
func (c Constraint) Expr() ir.Node { return c.expr }

// Max returns the exclusive upper bound of an InRange constraint.
func (c Constraint) Max() *big.Int { return c.max }

// Included returns the source columns/expressions of a Plookup constraint.
func (c Constraint) Included() []ir.Node { return c.included }

// Including returns the target columns/expressions of a Plookup constraint.
func (c Constraint) Including() []ir.Node { return c.including }

// Froms returns the source columns of a Permutation constraint.
func (c Constraint) Froms() []ir.Node { return c.froms }

// Tos returns the target columns of a Permutation constraint.
func (c Constraint) Tos() []ir.Node { return c.tos }

// Signs returns the per-column sort directions of a Permutation constraint.
func (c Constraint) Signs() []bool { return c.signs }

// WithExpr returns a copy of this Vanishes or InRange constraint with its
// expression replaced, used by the normalisation and if-expansion lowering
// passes to rewrite a constraint's body in place.
func (c Constraint) WithExpr(expr ir.Node) Constraint {
	c.expr = expr
	return c
}

// Reference returns the expression a Normalization constraint is inverting.
func (c Constraint) Reference() ir.Node { return c.reference }

// Inverted returns the column a Normalization constraint computes as the
// inverse of Reference.
func (c Constraint) Inverted() ir.ColumnRef { return c.inverted }
