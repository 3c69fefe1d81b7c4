package lower

import (
	"fmt"

	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// Normalize runs the normalisation/inverse pass over every Vanishes
// constraint in cs: every Normalize(e) node is replaced by Mul(e, inv_e),
// introducing inv_e as a fresh Computed column with its defining computation
// and Normalization constraint the first time a given e is encountered (spec
// §4.5). It is idempotent: a constraint set already free of Normalize nodes
// is left unchanged, and re-running it after a first pass adds no columns or
// constraints.
//
// Gating this pass on the native/non-native compilation mode (the original
// lowering gate) is the caller's responsibility — cmd/corsetc only
// invokes it when CompilationConfig.Native is set.
func Normalize(cs *schema.ConstraintSet) error {
	var pending []pendingInverse

	for i, c := range cs.Constraints {
		if c.Kind() != schema.KindVanishes {
			continue
		}

		module := c.Handle().Module

		expr, err := rewriteNormalizeNode(cs.Store, module, c.Expr(), &pending)
		if err != nil {
			return fmt.Errorf("normalising constraint %s: %w", c.Handle().Display(), err)
		}

		cs.Constraints[i] = c.WithExpr(expr)
	}

	installPending(cs, pending)

	return nil
}

func rewriteNormalizeNode(store *schema.ColumnStore, module string, n ir.Node, pending *[]pendingInverse) (ir.Node, error) {
	if n.Kind() != ir.NodeFuncall && n.Kind() != ir.NodeList {
		return n, nil
	}

	args := make([]ir.Node, len(n.Args()))

	for i, a := range n.Args() {
		r, err := rewriteNormalizeNode(store, module, a, pending)
		if err != nil {
			return ir.Node{}, err
		}

		args[i] = r
	}

	n = n.WithArgs(args)

	if n.Kind() == ir.NodeFuncall && n.Intrinsic() == ir.Normalize {
		return buildNormalized(store, module, args[0], pending)
	}

	return n, nil
}
