package lower

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// ExpandIfs rewrites every IfZero/IfNotZero node left in cs's Vanishes
// constraints into the algebraic form
//
//	(1 - cond*inv(cond)) * then + cond*inv(cond) * else
//
// (the symmetric weighting for IfNotZero), where cond*inv(cond) is exactly
// the expansion Normalize(cond) would produce — so this pass reuses §4.5's
// column-introduction machinery directly on cond rather than routing through
// a literal Normalize node. Run Normalize first so that a
// condition already normalised elsewhere in the constraint set shares its
// inverse column instead of declaring a second one. After this pass, no
// IfZero, IfNotZero or Normalize node remains anywhere in cs.
func ExpandIfs(cs *schema.ConstraintSet) error {
	var pending []pendingInverse

	for i, c := range cs.Constraints {
		if c.Kind() != schema.KindVanishes {
			continue
		}

		module := c.Handle().Module

		expr, err := rewriteIfNode(cs.Store, module, c.Expr(), &pending)
		if err != nil {
			return fmt.Errorf("expanding constraint %s: %w", c.Handle().Display(), err)
		}

		cs.Constraints[i] = c.WithExpr(expr)
	}

	installPending(cs, pending)

	return nil
}

var zeroConst = ir.NewConst(big.NewInt(0))
var oneConst = ir.NewConst(big.NewInt(1))

func rewriteIfNode(store *schema.ColumnStore, module string, n ir.Node, pending *[]pendingInverse) (ir.Node, error) {
	if n.Kind() != ir.NodeFuncall && n.Kind() != ir.NodeList {
		return n, nil
	}

	args := make([]ir.Node, len(n.Args()))

	for i, a := range n.Args() {
		r, err := rewriteIfNode(store, module, a, pending)
		if err != nil {
			return ir.Node{}, err
		}

		args[i] = r
	}

	n = n.WithArgs(args)

	if n.Kind() != ir.NodeFuncall {
		return n, nil
	}

	switch n.Intrinsic() {
	case ir.IfZero, ir.IfNotZero:
		indicator, err := buildNormalized(store, module, args[0], pending)
		if err != nil {
			return ir.Node{}, err
		}

		notIndicator := ir.NewFuncall(ir.Sub, []ir.Node{oneConst, indicator}, ir.Numeric)

		elseExpr := zeroConst
		if len(args) == 3 {
			elseExpr = args[2]
		}

		thenWeight, elseWeight := notIndicator, indicator
		if n.Intrinsic() == ir.IfNotZero {
			thenWeight, elseWeight = indicator, notIndicator
		}

		thenTerm := ir.NewFuncall(ir.Mul, []ir.Node{thenWeight, args[1]}, ir.Numeric)
		elseTerm := ir.NewFuncall(ir.Mul, []ir.Node{elseWeight, elseExpr}, ir.Numeric)

		return ir.NewFuncall(ir.Add, []ir.Node{thenTerm, elseTerm}, n.Type()), nil

	default:
		return n, nil
	}
}
