package schema

import "github.com/airlang/corset/pkg/ir"

// ConstraintSet is the fully elaborated output of the frontend pipeline: a
// column store plus every constraint and computation derived from it. The
// trace checker (pkg/trace) and the back-end renderers (pkg/backend) both
// consume it read-only.
type ConstraintSet struct {
	Store        *ColumnStore
	Constraints  []Constraint
	Computations []Computation

	// perspectiveGuards maps a (module, perspective) pair to the guard
	// expression that must be non-zero on a row for that perspective's
	// columns and constraints to apply there.
	perspectiveGuards map[perspectiveKey]ir.Node
}

type perspectiveKey struct {
	module      string
	perspective string
}

// NewConstraintSet constructs an empty constraint set over store.
func NewConstraintSet(store *ColumnStore) *ConstraintSet {
	return &ConstraintSet{
		Store:             store,
		perspectiveGuards: make(map[perspectiveKey]ir.Node),
	}
}

// AddConstraint appends a constraint to the set.
func (cs *ConstraintSet) AddConstraint(c Constraint) {
	cs.Constraints = append(cs.Constraints, c)
}

// AddComputation appends a computation to the set.
func (cs *ConstraintSet) AddComputation(c Computation) {
	cs.Computations = append(cs.Computations, c)
}

// SetPerspectiveGuard records the guard expression of a perspective declared
// within a module.
func (cs *ConstraintSet) SetPerspectiveGuard(module, perspective string, guard ir.Node) {
	cs.perspectiveGuards[perspectiveKey{module, perspective}] = guard
}

// PerspectiveGuard returns the guard expression of a perspective, if any was
// recorded.
func (cs *ConstraintSet) PerspectiveGuard(module, perspective string) (ir.Node, bool) {
	g, ok := cs.perspectiveGuards[perspectiveKey{module, perspective}]
	return g, ok
}

// ConstraintsInModule returns every constraint whose handle (where
// applicable) belongs to module. Permutation constraints, which carry no
// single owning handle, are never returned here; callers that need them
// iterate cs.Constraints directly.
func (cs *ConstraintSet) ConstraintsInModule(module string) []Constraint {
	var out []Constraint

	for _, c := range cs.Constraints {
		switch c.Kind() {
		case KindPermutation:
			continue
		default:
			if c.Handle().Module == module {
				out = append(out, c)
			}
		}
	}

	return out
}
