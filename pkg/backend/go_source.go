package backend

import (
	"fmt"
	"strings"

	"github.com/airlang/corset/pkg/schema"
)

// RenderGo emits a Go source file documenting a compiled constraint set: one
// exported variable per module's column list and one comment-annotated
// function stub per constraint, named after its mangled handle. The
// generated functions describe the constraint in Go-expression-shaped
// comments rather than executable field arithmetic: the concrete syntax a
// "compile to Go" back-end emits is explicitly out of scope (back-ends are
// rendering targets, not a second execution engine), so this emits the
// structure a hand-written checker would need filled in, not a working one.
func RenderGo(cs *schema.ConstraintSet, packageName string) (string, error) {
	if packageName == "" {
		packageName = "constraints"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated from a compiled constraint set. DO NOT EDIT.\npackage %s\n\n", packageName)

	for _, module := range cs.Store.Modules() {
		fmt.Fprintf(&b, "// Module %s's declared columns.\nvar %sColumns = []string{\n", module, goIdent(module))

		for _, h := range cs.Store.IterModule(module) {
			col, ok := cs.Store.Get(h)
			if !ok {
				continue
			}

			fmt.Fprintf(&b, "\t%q, // %s\n", col.Handle.Name, col.Type.String())
		}

		b.WriteString("}\n\n")
	}

	for i, c := range cs.Constraints {
		name := constraintFuncName(c, i)

		fmt.Fprintf(&b, "// %s checks: %s\nfunc %s() bool {\n\tpanic(\"unimplemented: render back-end emits structure only\")\n}\n\n",
			name, describeConstraint(c), name)
	}

	return b.String(), nil
}

// constraintFuncName derives an exported Go identifier for a constraint.
// Vanishes/InRange/Normalization constraints carry their own handle, which
// Mangle already renders injectively; Plookup constraints (named after
// their lookup) and Permutation constraints (which carry no handle) are
// named by the constraint's index instead, which is unique by
// construction.
func constraintFuncName(c schema.Constraint, index int) string {
	switch c.Kind() {
	case schema.KindVanishes, schema.KindInRange, schema.KindNormalization:
		return "Check" + goIdent(c.Handle().Mangle())
	case schema.KindPlookup:
		return fmt.Sprintf("CheckLookup%d", index)
	default:
		return fmt.Sprintf("CheckPermutation%d", index)
	}
}

// goIdent title-cases the first rune of a mangled handle so it is a valid
// exported Go identifier; Handle.Mangle already restricts the rest of the
// string to `[A-Za-z0-9_]`.
func goIdent(s string) string {
	if s == "" {
		return "_"
	}

	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - ('a' - 'A')
	}

	return string(r)
}
