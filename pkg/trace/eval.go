package trace

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/field"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// ErrUndefined signals that an expression reads past the trace (a Shift or
// Nth access outside what the column store can answer, even accounting for
// spilling and allowPastEnd). A constraint undefined at a row
// is ignored rather than treated as a failure at that row.
type ErrUndefined struct {
	Handle ir.Handle
	Row    int
}

func (e *ErrUndefined) Error() string {
	return fmt.Sprintf("%s is undefined at row %d", e.Handle.Display(), e.Row)
}

// evaluator evaluates IR nodes against a loaded column store under a
// configured field.
type evaluator struct {
	store *schema.ColumnStore
	cfg   *field.Config
}

func (ev evaluator) eval(n ir.Node, row int) (field.Element, error) {
	switch n.Kind() {
	case ir.NodeConst:
		return ev.cfg.NewElement(n.ConstValue()), nil

	case ir.NodeVoid:
		return ev.cfg.Zero(), nil

	case ir.NodeColumn:
		v, ok := ev.store.Get(n.Column().Handle, row, false)
		if !ok {
			return field.Element{}, &ErrUndefined{Handle: n.Column().Handle, Row: row}
		}

		return ev.cfg.NewElement(v), nil

	case ir.NodeArrayColumn:
		return field.Element{}, fmt.Errorf("array column %s cannot be evaluated directly", n.Column().Handle.Display())

	case ir.NodeList:
		return ev.evalSeq(n.Args(), row)

	case ir.NodeFuncall:
		return ev.evalFuncall(n, row)
	}

	return field.Element{}, fmt.Errorf("unhandled node kind %d", n.Kind())
}

func (ev evaluator) evalSeq(args []ir.Node, row int) (field.Element, error) {
	last := ev.cfg.Zero()

	for _, a := range args {
		v, err := ev.eval(a, row)
		if err != nil {
			return field.Element{}, err
		}

		last = v
	}

	return last, nil
}

func (ev evaluator) evalFuncall(n ir.Node, row int) (field.Element, error) {
	switch n.Intrinsic() {
	case ir.Add:
		return ev.fold(n.Args(), row, ev.cfg.Zero(), field.Element.Add)
	case ir.Mul:
		return ev.fold(n.Args(), row, ev.cfg.NewElement(big.NewInt(1)), field.Element.Mul)
	case ir.Sub:
		return ev.evalSub(n.Args(), row)
	case ir.Neg:
		v, err := ev.eval(n.Args()[0], row)
		if err != nil {
			return field.Element{}, err
		}

		return v.Neg(), nil
	case ir.Inv:
		v, err := ev.eval(n.Args()[0], row)
		if err != nil {
			return field.Element{}, err
		}

		return v.Inverse(), nil
	case ir.Exp:
		return ev.evalExp(n, row)
	case ir.Shift:
		return ev.evalShift(n, row)
	case ir.Nth:
		return ev.evalNth(n, row)
	case ir.Eq:
		a, err := ev.eval(n.Args()[0], row)
		if err != nil {
			return field.Element{}, err
		}

		b, err := ev.eval(n.Args()[1], row)
		if err != nil {
			return field.Element{}, err
		}

		if a.Cmp(b) == 0 {
			return ev.cfg.NewElement(big.NewInt(1)), nil
		}

		return ev.cfg.Zero(), nil
	case ir.Not:
		v, err := ev.eval(n.Args()[0], row)
		if err != nil {
			return field.Element{}, err
		}

		if v.IsZero() {
			return ev.cfg.NewElement(big.NewInt(1)), nil
		}

		return ev.cfg.Zero(), nil
	case ir.Begin:
		return ev.evalSeq(n.Args(), row)
	case ir.Normalize:
		// Only reachable when CompilationConfig.Native is false and
		// pkg/lower never ran; evaluated directly rather than algebraically
		// since the checker wants a concrete value, not a polynomial
		// identity.
		v, err := ev.eval(n.Args()[0], row)
		if err != nil {
			return field.Element{}, err
		}

		if v.IsZero() {
			return ev.cfg.Zero(), nil
		}

		return ev.cfg.NewElement(big.NewInt(1)), nil
	case ir.IfZero, ir.IfNotZero:
		return ev.evalIf(n, row)
	}

	return field.Element{}, fmt.Errorf("unhandled intrinsic %s", n.Intrinsic())
}

func (ev evaluator) fold(args []ir.Node, row int, zero field.Element, op func(field.Element, field.Element) field.Element) (field.Element, error) {
	acc := zero
	first := true

	for _, a := range args {
		v, err := ev.eval(a, row)
		if err != nil {
			return field.Element{}, err
		}

		if first {
			acc = v
			first = false
		} else {
			acc = op(acc, v)
		}
	}

	return acc, nil
}

func (ev evaluator) evalSub(args []ir.Node, row int) (field.Element, error) {
	first, err := ev.eval(args[0], row)
	if err != nil {
		return field.Element{}, err
	}

	acc := first

	for _, a := range args[1:] {
		v, err := ev.eval(a, row)
		if err != nil {
			return field.Element{}, err
		}

		acc = acc.Sub(v)
	}

	return acc, nil
}

func (ev evaluator) evalExp(n ir.Node, row int) (field.Element, error) {
	base, err := ev.eval(n.Args()[0], row)
	if err != nil {
		return field.Element{}, err
	}

	k, err := ev.eval(n.Args()[1], row)
	if err != nil {
		return field.Element{}, err
	}

	acc := ev.cfg.NewElement(big.NewInt(1))

	exp := k.BigInt()
	for i := big.NewInt(0); i.Cmp(exp) < 0; i.Add(i, big.NewInt(1)) {
		acc = acc.Mul(base)
	}

	return acc, nil
}

func (ev evaluator) evalShift(n ir.Node, row int) (field.Element, error) {
	offset := n.Args()[1]
	if !offset.IsConst() {
		return field.Element{}, fmt.Errorf("shift offset must be a compile-time constant")
	}

	return ev.eval(n.Args()[0], row+int(offset.ConstValue().Int64()))
}

func (ev evaluator) evalNth(n ir.Node, row int) (field.Element, error) {
	arr := n.Args()[0]

	idx, err := ev.eval(n.Args()[1], row)
	if err != nil {
		return field.Element{}, err
	}

	i := int(idx.BigInt().Int64())

	decl, ok := ev.store.GetArray(arr.Column().Handle)
	if !ok || !decl.Contains(i) {
		return field.Element{}, &schema.ErrOutOfRange{Array: arr.Column().Handle, Index: i}
	}

	handle := decl.ElementHandle(i)

	v, ok := ev.store.Get(handle, row, false)
	if !ok {
		return field.Element{}, &ErrUndefined{Handle: handle, Row: row}
	}

	return ev.cfg.NewElement(v), nil
}

// evalIf evaluates an unexpanded IfZero/IfNotZero node directly (reachable
// only in non-native mode, see the Normalize case above).
func (ev evaluator) evalIf(n ir.Node, row int) (field.Element, error) {
	cond, err := ev.eval(n.Args()[0], row)
	if err != nil {
		return field.Element{}, err
	}

	takeThen := cond.IsZero()
	if n.Intrinsic() == ir.IfNotZero {
		takeThen = !takeThen
	}

	if takeThen {
		return ev.eval(n.Args()[1], row)
	}

	if len(n.Args()) == 3 {
		return ev.eval(n.Args()[2], row)
	}

	return ev.cfg.Zero(), nil
}
