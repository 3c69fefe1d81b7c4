package backend

import (
	"fmt"
	"strings"

	"github.com/airlang/corset/pkg/schema"
)

// RenderWizardIOP emits a "WizardIOP" constraint description: a flat,
// line-oriented listing of every module's columns followed by every
// constraint and computation, one per line, tagged by kind. Like
// RenderGo/RenderLatex it renders the constraint set exactly as given —
// including any unexpanded Normalize/if-zero forms when
// CompilationConfig.Native is false.
func RenderWizardIOP(cs *schema.ConstraintSet) (string, error) {
	var b strings.Builder

	b.WriteString("WIZARDIOP-CS v1\n")

	for _, module := range cs.Store.Modules() {
		fmt.Fprintf(&b, "MODULE %s\n", module)

		for _, h := range cs.Store.IterModule(module) {
			col, ok := cs.Store.Get(h)
			if !ok {
				continue
			}

			fmt.Fprintf(&b, "  COLUMN %s : %s base=%d kind=%s\n", col.Handle.Name, col.Type.String(), col.Base, col.Kind.String())
		}

		for _, h := range cs.Store.IterArraysModule(module) {
			arr, ok := cs.Store.GetArray(h)
			if !ok {
				continue
			}

			fmt.Fprintf(&b, "  ARRAY %s : %s domain=%v\n", arr.Handle.Name, arr.Type.String(), arr.Domain)
		}
	}

	for _, c := range cs.Constraints {
		fmt.Fprintf(&b, "CONSTRAINT %s %s\n", constraintKindTag(c.Kind()), describeConstraint(c))
	}

	for _, c := range cs.Computations {
		fmt.Fprintf(&b, "COMPUTATION %s %s\n", computationKindTag(c.Kind()), describeComputation(c))
	}

	return b.String(), nil
}

func constraintKindTag(k schema.ConstraintKind) string {
	switch k {
	case schema.KindVanishes:
		return "VANISHES"
	case schema.KindInRange:
		return "INRANGE"
	case schema.KindPlookup:
		return "PLOOKUP"
	case schema.KindPermutation:
		return "PERMUTATION"
	case schema.KindNormalization:
		return "NORMALIZATION"
	default:
		return "?"
	}
}

func computationKindTag(k schema.ComputationKind) string {
	switch k {
	case schema.KindComposite:
		return "COMPOSITE"
	case schema.KindInterleaved:
		return "INTERLEAVED"
	case schema.KindSorted:
		return "SORTED"
	case schema.KindCyclicFrom:
		return "CYCLICFROM"
	case schema.KindSortingConstraints:
		return "SORTINGCONSTRAINTS"
	default:
		return "?"
	}
}
