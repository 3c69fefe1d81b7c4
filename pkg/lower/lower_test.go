package lower

import (
	"testing"

	"github.com/airlang/corset/pkg/corset"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
	"github.com/airlang/corset/pkg/sexp"

	"github.com/airlang/corset/pkg/ast"
)

func compileSource(t *testing.T, src string) *schema.ConstraintSet {
	t.Helper()

	sf := sexp.NewSourceFile("test.lisp", []byte(src))
	p := sexp.NewParser(sf)

	var forms []sexp.SExp

	for {
		form, err := p.Parse()
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if form == nil {
			break
		}

		forms = append(forms, form)
	}

	translator := ast.NewTranslator(sf, p)

	nodes, terrs := translator.TranslateAll(forms)
	if len(terrs) > 0 {
		t.Fatalf("translation errors: %v", terrs)
	}

	cs, err := corset.Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	return cs
}

// containsUnexpanded reports whether n or any descendant is a Normalize,
// IfZero or IfNotZero funcall.
func containsUnexpanded(n ir.Node) bool {
	switch n.Kind() {
	case ir.NodeFuncall:
		switch n.Intrinsic() {
		case ir.Normalize, ir.IfZero, ir.IfNotZero:
			return true
		}

		fallthrough
	case ir.NodeList:
		for _, a := range n.Args() {
			if containsUnexpanded(a) {
				return true
			}
		}
	}

	return false
}

func TestNormalize_BooleanShortcut(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns (b :bool)) (defconstraint c1 () (normalize b))`)

	if err := Normalize(cs); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if expr.Kind() != ir.NodeColumn || expr.Column().Handle.Name != "b" {
		t.Fatalf("expected normalize of a boolean column to vanish, got %v", expr)
	}

	if len(cs.Computations) != 0 {
		t.Fatalf("expected no inverse column introduced for a boolean, got %d computations", len(cs.Computations))
	}
}

func TestNormalize_CreatesInverseColumn(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns a) (defconstraint c1 () (normalize a))`)

	if err := Normalize(cs); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if expr.Kind() != ir.NodeFuncall || expr.Intrinsic() != ir.Mul {
		t.Fatalf("expected Normalize(a) to become Mul(a, inv_a), got %v", expr)
	}

	if len(cs.Computations) != 1 || cs.Computations[0].Kind() != schema.KindComposite {
		t.Fatalf("expected one Composite computation for the inverse column, got %v", cs.Computations)
	}

	foundNormalization := false

	for _, c := range cs.Constraints {
		if c.Kind() == schema.KindNormalization {
			foundNormalization = true
		}
	}

	if !foundNormalization {
		t.Fatalf("expected a Normalization constraint to be added")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns a) (defconstraint c1 () (normalize a))`)

	if err := Normalize(cs); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	constraintsAfterFirst := len(cs.Constraints)
	computationsAfterFirst := len(cs.Computations)

	if err := Normalize(cs); err != nil {
		t.Fatalf("second Normalize: %v", err)
	}

	if len(cs.Constraints) != constraintsAfterFirst || len(cs.Computations) != computationsAfterFirst {
		t.Fatalf("expected re-running Normalize to add nothing, got %d constraints (was %d), %d computations (was %d)",
			len(cs.Constraints), constraintsAfterFirst, len(cs.Computations), computationsAfterFirst)
	}
}

func TestNormalize_SharesInverseAcrossConstraints(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns a) (defconstraint c1 () (normalize a)) (defconstraint c2 () (- (normalize a) 1))`)

	if err := Normalize(cs); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(cs.Computations) != 1 {
		t.Fatalf("expected both constraints to share one inverse column, got %d computations", len(cs.Computations))
	}
}

func TestExpandIfs_NoneRemain(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns a b c) (defconstraint c1 () (if-zero a b c))`)

	if err := Lower(cs); err != nil {
		t.Fatalf("Lower: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if containsUnexpanded(expr) {
		t.Fatalf("expected no if-zero/if-not-zero/normalize node to remain, got %v", expr)
	}

	if expr.Kind() != ir.NodeFuncall || expr.Intrinsic() != ir.Add {
		t.Fatalf("expected the top-level node to be the weighted Add, got %v", expr)
	}
}

func TestExpandIfs_WithoutElseDefaultsToZero(t *testing.T) {
	cs := compileSource(t, `(defmodule m) (defcolumns a b) (defconstraint c1 () (if-not-zero a b))`)

	if err := Lower(cs); err != nil {
		t.Fatalf("Lower: %v", err)
	}

	if containsUnexpanded(cs.Constraints[0].Expr()) {
		t.Fatalf("expected full expansion")
	}
}
