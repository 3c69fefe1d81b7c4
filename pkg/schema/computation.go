package schema

import "github.com/airlang/corset/pkg/ir"

// ComputationKind tags the variant of a Computation.
type ComputationKind uint8

// The closed set of computation kinds.
const (
	KindComposite ComputationKind = iota
	KindInterleaved
	KindSorted
	KindCyclicFrom
	KindSortingConstraints
)

// Computation describes how a Computed column's values are obtained, i.e.
// how the checker (or a downstream trace-filling tool) derives a column that
// the raw trace does not supply directly.
type Computation struct {
	kind ComputationKind

	target ir.ColumnRef
	expr   ir.Node

	froms []ir.ColumnRef
	tos   []ir.ColumnRef
	signs []bool
}

// NewComposite constructs a computation whose target column's value at each
// row is simply expr evaluated at that row — the form used for inverse
// columns introduced by the normalisation pass.
func NewComposite(target ir.ColumnRef, expr ir.Node) Computation {
	return Computation{kind: KindComposite, target: target, expr: expr}
}

// NewInterleaved constructs a computation whose target column is the
// round-robin interleaving of the given source columns.
func NewInterleaved(target ir.ColumnRef, froms []ir.ColumnRef) Computation {
	return Computation{kind: KindInterleaved, target: target, froms: froms}
}

// NewSorted constructs a computation whose tos columns are froms sorted
// according to signs (a Permutation constraint's lowering target).
func NewSorted(froms, tos []ir.ColumnRef, signs []bool) Computation {
	return Computation{kind: KindSorted, froms: froms, tos: tos, signs: signs}
}

// NewCyclicFrom constructs a computation whose target cycles through the
// given source columns' first-row values, used by some lookup lowerings.
func NewCyclicFrom(target ir.ColumnRef, froms []ir.ColumnRef) Computation {
	return Computation{kind: KindCyclicFrom, target: target, froms: froms}
}

// NewSortingConstraints wraps the auxiliary bookkeeping columns a Sorted
// computation requires (e.g. lexicographic-sort helper bits) as its own
// computation so they can be reasoned about uniformly.
func NewSortingConstraints(sorted []ir.ColumnRef) Computation {
	return Computation{kind: KindSortingConstraints, tos: sorted}
}

// Kind returns this computation's variant tag.
func (c Computation) Kind() ComputationKind { return c.kind }

// Target returns the column this computation derives, for Composite,
// Interleaved and CyclicFrom.
func (c Computation) Target() ir.ColumnRef { return c.target }

// Expr returns the defining expression of a Composite computation.
func (c Computation) Expr() ir.Node { return c.expr }

// Froms returns the source columns of an Interleaved, Sorted or CyclicFrom
// computation.
func (c Computation) Froms() []ir.ColumnRef { return c.froms }

// Tos returns the target columns of a Sorted computation, or the sorted
// columns of a SortingConstraints computation.
func (c Computation) Tos() []ir.ColumnRef { return c.tos }

// Signs returns the per-column sort directions of a Sorted computation.
func (c Computation) Signs() []bool { return c.signs }
