package corset

import (
	"math/big"

	"github.com/airlang/corset/pkg/ir"
)

// foldConstants replaces any subtree all of whose leaves are Const with a
// single Const holding the exactly-evaluated big-integer value. Inv and Normalize are deliberately never folded here:
// their value depends on a field modulus that is a checker-time
// configuration parameter, not something the resolver has access to (spec
// §9 "reduce modulo the configured field prime only when comparing to zero
// in a Vanishes check"). Shift and Nth are likewise left unfolded: their
// meaning is row-relative and only resolves against a loaded trace.
func foldConstants(n ir.Node) ir.Node {
	switch n.Kind() {
	case ir.NodeFuncall, ir.NodeList:
		args := make([]ir.Node, len(n.Args()))
		allConst := true

		for i, a := range n.Args() {
			args[i] = foldConstants(a)
			if !args[i].IsConst() {
				allConst = false
			}
		}

		folded := n.WithArgs(args)

		if n.Kind() == ir.NodeList {
			if allConst && len(args) > 0 {
				return ir.NewConst(args[len(args)-1].ConstValue())
			}

			return folded
		}

		if !allConst {
			return folded
		}

		if v, ok := evalConstIntrinsic(n.Intrinsic(), args); ok {
			return ir.NewConst(v)
		}

		return folded

	default:
		return n
	}
}

// evalConstIntrinsic evaluates the subset of intrinsics whose semantics are
// pure, field-independent integer arithmetic.
func evalConstIntrinsic(i ir.Intrinsic, args []ir.Node) (*big.Int, bool) {
	switch i {
	case ir.Add:
		sum := big.NewInt(0)
		for _, a := range args {
			sum.Add(sum, a.ConstValue())
		}

		return sum, true

	case ir.Mul:
		prod := big.NewInt(1)
		for _, a := range args {
			prod.Mul(prod, a.ConstValue())
		}

		return prod, true

	case ir.Sub:
		result := new(big.Int).Set(args[0].ConstValue())
		for _, a := range args[1:] {
			result.Sub(result, a.ConstValue())
		}

		return result, true

	case ir.Neg:
		return new(big.Int).Neg(args[0].ConstValue()), true

	case ir.Exp:
		exp := args[1].ConstValue()
		if exp.Sign() < 0 || !exp.IsInt64() {
			return nil, false
		}

		return new(big.Int).Exp(args[0].ConstValue(), exp, nil), true

	case ir.Eq:
		if args[0].ConstValue().Cmp(args[1].ConstValue()) == 0 {
			return big.NewInt(1), true
		}

		return big.NewInt(0), true

	case ir.Begin:
		return args[len(args)-1].ConstValue(), true

	case ir.Not:
		if args[0].ConstValue().Sign() == 0 {
			return big.NewInt(1), true
		}

		return big.NewInt(0), true

	case ir.IfZero:
		if args[0].ConstValue().Sign() == 0 {
			return args[1].ConstValue(), true
		} else if len(args) == 3 {
			return args[2].ConstValue(), true
		}

		return big.NewInt(0), true

	case ir.IfNotZero:
		if args[0].ConstValue().Sign() != 0 {
			return args[1].ConstValue(), true
		} else if len(args) == 3 {
			return args[2].ConstValue(), true
		}

		return big.NewInt(0), true

	default:
		return nil, false
	}
}
