// Package trace implements the JSON trace loader and the constraint checker.
package trace

import (
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// requiredSpilling returns, for every module that owns at least one
// constraint or computation, the number of negative-index padding rows it
// needs so that every Shift referenced stays well-defined at row 0 (spec
// §4.7 "spilling_for_column", §9 "used to make shifts well-defined near the
// module boundary"). It is the maximum, over every Vanishes/InRange
// expression, Normalization reference and Composite computation expression
// in that module, of the deepest negative Shift offset reachable from it.
func requiredSpilling(cs *schema.ConstraintSet) map[string]int {
	need := make(map[string]int)

	for _, c := range cs.Constraints {
		switch c.Kind() {
		case schema.KindVanishes, schema.KindInRange:
			module := exprModule(cs, c)
			if d := maxNegativeShift(c.Expr()); d > need[module] {
				need[module] = d
			}
		case schema.KindNormalization:
			module := c.Inverted().Handle.Module
			if d := maxNegativeShift(c.Reference()); d > need[module] {
				need[module] = d
			}
		}
	}

	for _, comp := range cs.Computations {
		if comp.Kind() != schema.KindComposite {
			continue
		}

		module := comp.Target().Handle.Module
		if d := maxNegativeShift(comp.Expr()); d > need[module] {
			need[module] = d
		}
	}

	return need
}

// exprModule determines the module a Vanishes/InRange constraint's own
// handle belongs to; falling back to the expression's column dependencies
// covers constraints synthesised without a meaningful handle module.
func exprModule(cs *schema.ConstraintSet, c schema.Constraint) string {
	if m := c.Handle().Module; m != "" {
		return m
	}

	if m, err := cs.Store.ModuleFor(c.Expr().Dependencies()); err == nil {
		return m
	}

	return ""
}

// maxNegativeShift returns the largest k such that Shift(_, -k) occurs
// anywhere in n, or 0 if no negative shift is present.
func maxNegativeShift(n ir.Node) int {
	best := 0

	var walk func(ir.Node)

	walk = func(m ir.Node) {
		if m.Kind() != ir.NodeFuncall && m.Kind() != ir.NodeList {
			return
		}

		if m.Kind() == ir.NodeFuncall && m.Intrinsic() == ir.Shift {
			if off := m.Args()[1]; off.IsConst() && off.ConstValue().Sign() < 0 {
				if d := -int(off.ConstValue().Int64()); d > best {
					best = d
				}
			}
		}

		for _, a := range m.Args() {
			walk(a)
		}
	}

	walk(n)

	return best
}
