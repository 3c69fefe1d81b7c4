// Package lower implements the two IR transformation passes that run after
// the frontend has produced a schema.ConstraintSet: normalisation/inverse
// expansion (§4.5) and if-expansion (§4.6). Both passes rewrite a
// constraint's expression tree in place and are driven entirely off the
// column store, so that introducing the same inverse column twice (whether
// from two identical Normalize nodes or from an if whose condition was
// already normalised elsewhere) is a no-op rather than a duplicate
// declaration.
package lower

import (
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// pendingInverse records an inverse column a rewrite wants installed once
// the full tree walk completes; multiple entries may name the same handle
// (every occurrence of an expression queues one), so installation dedups
// against the store rather than against this list.
type pendingInverse struct {
	handle ir.Handle
	ref    ir.Node
}

// buildNormalized returns the algebraic replacement for Normalize(e): e
// itself when e is already Boolean (a binary is its own zero test), or
// Mul(e, inv_e) where inv_e is a fresh reference to the INV_<mangled e>
// column, queuing that column's declaration.
func buildNormalized(store *schema.ColumnStore, module string, e ir.Node, pending *[]pendingInverse) (ir.Node, error) {
	if e.Type().IsBoolean() {
		return e, nil
	}

	owner, err := store.ModuleFor(e.Dependencies())
	if err != nil {
		return ir.Node{}, err
	}

	if owner == "" {
		owner = module
	}

	handle := ir.NewHandle(owner, "INV_"+ir.NewHandle("", e.String()).Mangle())
	*pending = append(*pending, pendingInverse{handle: handle, ref: e})

	invType := e.Type().Invert()
	invCol := ir.NewColumn(ir.ColumnRef{Handle: handle}, invType)

	return ir.NewFuncall(ir.Mul, []ir.Node{e, invCol}, ir.Numeric), nil
}

// installPending declares the Computed column, its defining Composite
// computation, and its Normalization constraint for every queued inverse
// whose handle the store does not already carry.
func installPending(cs *schema.ConstraintSet, pending []pendingInverse) {
	for _, p := range pending {
		if _, ok := cs.Store.Get(p.handle); ok {
			continue
		}

		invType := p.ref.Type().Invert()

		cs.Store.Declare(schema.Column{Handle: p.handle, Type: invType, Kind: schema.Computed})

		cs.AddComputation(schema.NewComposite(
			ir.ColumnRef{Handle: p.handle},
			ir.NewFuncall(ir.Inv, []ir.Node{p.ref}, invType),
		))

		cs.AddConstraint(schema.NewNormalization(
			ir.NewHandle(p.handle.Module, "NORM["+p.ref.String()+"]"),
			p.ref,
			ir.ColumnRef{Handle: p.handle},
		))
	}
}
