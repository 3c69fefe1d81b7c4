// Package backend implements the text-emitting back-ends → string for each, with no back-end feedback
// into the core"): a Go source file, a LaTeX document, and a "WizardIOP"
// description. All three share one expression pretty-printer, since their
// only real difference is the concrete syntax wrapped around the same
// constraint/computation walk.
//
// The pretty-printer's operator-precedence handling (when to parenthesise a
// sub-expression) is ported from the reference debugger's
// exporters/debugger.rs, the one rendering pass the original source kept —
// reimplemented here against a strings.Builder rather than a terminal
// typesetter, since none of these three back-ends render to a TTY.
package backend

import (
	"fmt"
	"strings"

	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// precedence ranks the three binary arithmetic intrinsics so that
// prettyExpr knows when a child needs parentheses: Mul binds tighter than
// Add/Sub, which are equal to each other (debugger.rs's `priority`).
func precedence(i ir.Intrinsic) int {
	switch i {
	case ir.Mul:
		return 2
	case ir.Add, ir.Sub:
		return 1
	default:
		return 0
	}
}

// prettyExpr renders n into b using infix notation for Add/Sub/Mul/Exp/Eq,
// bracket notation for Shift, and keyword notation for IfZero/IfNotZero,
// parenthesising a child only when its own precedence is lower than the
// parent's (debugger.rs's pretty_expr, minus its interactive tty paging).
func prettyExpr(b *strings.Builder, n ir.Node, parent ir.Intrinsic, hasParent bool) {
	switch n.Kind() {
	case ir.NodeConst:
		b.WriteString(n.ConstValue().String())
	case ir.NodeColumn, ir.NodeArrayColumn:
		b.WriteString(n.Column().Handle.Display())
	case ir.NodeVoid:
		b.WriteString("void")
	case ir.NodeList:
		b.WriteString("{ ")

		for i, a := range n.Args() {
			if i > 0 {
				b.WriteString("; ")
			}

			prettyExpr(b, a, ir.Begin, false)
		}

		b.WriteString(" }")
	case ir.NodeFuncall:
		prettyFuncall(b, n, parent, hasParent)
	}
}

func prettyFuncall(b *strings.Builder, n ir.Node, parent ir.Intrinsic, hasParent bool) {
	op := n.Intrinsic()
	args := n.Args()

	switch op {
	case ir.Add, ir.Sub, ir.Mul:
		needsParens := hasParent && precedence(op) < precedence(parent)
		if needsParens {
			b.WriteByte('(')
		}

		for i, a := range args {
			if i > 0 {
				fmt.Fprintf(b, " %s ", op)
			}

			prettyExpr(b, a, op, true)
		}

		if needsParens {
			b.WriteByte(')')
		}
	case ir.Exp:
		prettyExpr(b, args[0], op, true)
		b.WriteByte('^')
		prettyExpr(b, args[1], op, true)
	case ir.Shift:
		prettyExpr(b, args[0], op, false)
		b.WriteByte('[')
		prettyExpr(b, args[1], op, false)
		b.WriteByte(']')
	case ir.Neg:
		b.WriteByte('-')
		prettyExpr(b, args[0], parent, hasParent)
	case ir.Inv:
		b.WriteString("inv(")
		prettyExpr(b, args[0], op, false)
		b.WriteByte(')')
	case ir.Normalize:
		b.WriteString("normalize(")
		prettyExpr(b, args[0], op, false)
		b.WriteByte(')')
	case ir.Not:
		b.WriteByte('!')
		prettyExpr(b, args[0], op, false)
	case ir.Eq:
		prettyExpr(b, args[0], op, false)
		b.WriteString(" == ")
		prettyExpr(b, args[1], op, false)
	case ir.Nth:
		prettyExpr(b, args[0], op, false)
		b.WriteByte('[')
		prettyExpr(b, args[1], op, false)
		b.WriteByte(']')
	case ir.Begin:
		for i, a := range args {
			if i > 0 {
				b.WriteString("; ")
			}

			prettyExpr(b, a, op, false)
		}
	case ir.IfZero, ir.IfNotZero:
		if op == ir.IfZero {
			b.WriteString("if-zero(")
		} else {
			b.WriteString("if-not-zero(")
		}

		prettyExpr(b, args[0], op, false)
		b.WriteString(", ")
		prettyExpr(b, args[1], op, false)

		if len(args) > 2 {
			b.WriteString(", ")
			prettyExpr(b, args[2], op, false)
		}

		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "(%s", op)

		for _, a := range args {
			b.WriteByte(' ')
			prettyExpr(b, a, op, false)
		}

		b.WriteByte(')')
	}
}

// Pretty renders a single expression using infix/bracket notation, with no
// enclosing parentheses.
func Pretty(n ir.Node) string {
	var b strings.Builder

	prettyExpr(&b, n, 0, false)

	return b.String()
}

// prettyNodes renders a comma-joined list of expressions.
func prettyNodes(ns []ir.Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = Pretty(n)
	}

	return strings.Join(parts, ", ")
}

// prettyRefs renders a comma-joined list of column references by handle.
func prettyRefs(refs []ir.ColumnRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.Handle.Display()
	}

	return strings.Join(parts, ", ")
}

// describeConstraint renders a one-line, back-end-neutral description of a
// constraint, shared by every emitter's constraint section.
func describeConstraint(c schema.Constraint) string {
	switch c.Kind() {
	case schema.KindVanishes:
		return fmt.Sprintf("%s: %s == 0", c.Handle().Display(), Pretty(c.Expr()))
	case schema.KindInRange:
		return fmt.Sprintf("%s: 0 <= %s < %s", c.Handle().Display(), Pretty(c.Expr()), c.Max().String())
	case schema.KindPlookup:
		return fmt.Sprintf("{%s} ⊂ {%s}", prettyNodes(c.Included()), prettyNodes(c.Including()))
	case schema.KindPermutation:
		return fmt.Sprintf("[%s] is a permutation of [%s]", prettyNodes(c.Tos()), prettyNodes(c.Froms()))
	case schema.KindNormalization:
		return fmt.Sprintf("%s: %s == inv(%s)", c.Handle().Display(), c.Inverted().Handle.Display(), Pretty(c.Reference()))
	default:
		return "?"
	}
}

// describeComputation renders a one-line, back-end-neutral description of a
// computation, shared by every emitter's computation section.
func describeComputation(c schema.Computation) string {
	switch c.Kind() {
	case schema.KindComposite:
		return fmt.Sprintf("%s = %s", c.Target().Handle.Display(), Pretty(c.Expr()))
	case schema.KindInterleaved:
		return fmt.Sprintf("%s interleaves [%s]", c.Target().Handle.Display(), prettyRefs(c.Froms()))
	case schema.KindSorted:
		return fmt.Sprintf("[%s] = sorted([%s])", prettyRefs(c.Tos()), prettyRefs(c.Froms()))
	case schema.KindCyclicFrom:
		return fmt.Sprintf("%s cycles through [%s]", c.Target().Handle.Display(), prettyRefs(c.Froms()))
	case schema.KindSortingConstraints:
		return fmt.Sprintf("sorting constraints for [%s]", prettyRefs(c.Tos()))
	default:
		return "?"
	}
}
