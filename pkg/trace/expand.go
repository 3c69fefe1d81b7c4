package trace

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/field"
	"github.com/airlang/corset/pkg/schema"
)

// Expand fills every Composite computation's target column from its
// defining expression, the step that materialises Computed columns a raw
// trace never supplies directly. It must run after Load and
// before Check whenever a constraint set carries Computed columns (e.g. the
// inverse columns pkg/lower introduces).
//
// Interleaved/Sorted/CyclicFrom/SortingConstraints computations are not
// expanded here: their targets have a different effective length than their
// sources, which this
// store's one-length-per-module model does not represent. Values for those
// computations are only produced via the pure helpers in interleave.go,
// callable directly by a back-end that models length multipliers; see
// DESIGN.md.
func Expand(cs *schema.ConstraintSet, cfg *field.Config) error {
	ev := evaluator{store: cs.Store, cfg: cfg}

	for _, comp := range cs.Computations {
		if comp.Kind() != schema.KindComposite {
			continue
		}

		target := comp.Target().Handle

		length, ok := cs.Store.Length(target.Module)
		if !ok {
			return fmt.Errorf("computing %s: module %q has no loaded length yet", target.Display(), target.Module)
		}

		values := make([]*big.Int, length)

		for row := 0; row < length; row++ {
			v, err := ev.eval(comp.Expr(), row)
			if err != nil {
				return fmt.Errorf("computing %s at row %d: %w", target.Display(), row, err)
			}

			values[row] = v.BigInt()
		}

		depth := cs.Store.SpillingForColumn(target)
		spilling := make([]*big.Int, depth)

		for i := range spilling {
			v, err := ev.eval(comp.Expr(), i-depth)
			if err != nil {
				return fmt.Errorf("computing %s spilling row %d: %w", target.Display(), i-depth, err)
			}

			spilling[i] = v.BigInt()
		}

		if err := cs.Store.SetColumnValue(target, values, spilling); err != nil {
			return fmt.Errorf("installing computed column %s: %w", target.Display(), err)
		}
	}

	return nil
}
