package corset

import (
	"math/big"
	"testing"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
	"github.com/airlang/corset/pkg/sexp"
)

func translateSource(t *testing.T, src string) []ast.Node {
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

	return nodes
}

func TestCorset_0(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defcolumns a b) (defconstraint c1 () (- a b))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(cs.Constraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(cs.Constraints))
	}

	vc := cs.Constraints[0]
	if vc.Kind() != schema.KindVanishes {
		t.Fatalf("expected a Vanishes constraint")
	}

	if vc.Expr().Kind() != ir.NodeFuncall || vc.Expr().Intrinsic() != ir.Sub {
		t.Fatalf("expected (- a b), got %v", vc.Expr())
	}
}

func TestCorset_ConstantFolding(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defconst K 5) (defconstraint c2 () (- K 5))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if !expr.IsConst() || expr.ConstValue().Sign() != 0 {
		t.Fatalf("expected constraint to fold to 0, got %v", expr)
	}
}

func TestCorset_PureFunCall(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defpurefun (sq a) (* a a)) (defconstraint c3 () (- (sq 3) 9))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if !expr.IsConst() || expr.ConstValue().Sign() != 0 {
		t.Fatalf("expected (sq 3) - 9 to fold to 0, got %v", expr)
	}
}

func TestCorset_ImpureReference(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defcolumns x) (defpurefun (bad a) (+ a x)) (defconstraint c4 () (bad 1))`)

	if _, err := Compile(nodes); err == nil {
		t.Fatalf("expected ImpureReferenceError, got nil")
	}
}

func TestCorset_ArrayNth(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defcolumns (v [0:2])) (defconstraint c5 () (nth v 1))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if expr.Kind() != ir.NodeColumn || expr.Column().Handle.Name != "v_1" {
		t.Fatalf("expected (nth v 1) to resolve directly to column v_1, got %v", expr)
	}
}

func TestCorset_ArrayNthOutOfRange(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defcolumns (v [0:2])) (defconstraint c6 () (nth v 5))`)

	if _, err := Compile(nodes); err == nil {
		t.Fatalf("expected OutOfRange error, got nil")
	}
}

func TestCorset_ForExpansion(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defconstraint c7 () (for i [0:2] (+ i i)))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if expr.Kind() != ir.NodeConst {
		t.Fatalf("expected a fully folded Begin of constants, got kind %v", expr.Kind())
	}

	// (+ 0 0), (+ 1 1), (+ 2 2) sequenced by Begin evaluates to the last: 4.
	if expr.ConstValue().Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("expected 4, got %v", expr.ConstValue())
	}
}

func TestCorset_UnknownSymbol(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defconstraint c8 () (+ undeclared 1))`)

	if _, err := Compile(nodes); err == nil {
		t.Fatalf("expected unresolved symbol error")
	}
}

func TestCorset_Alias(t *testing.T) {
	nodes := translateSource(t, `(defmodule m) (defcolumns a) (defalias (b a)) (defconstraint c9 () (- a b))`)

	cs, err := Compile(nodes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	expr := cs.Constraints[0].Expr()
	if expr.Kind() != ir.NodeFuncall || expr.Intrinsic() != ir.Sub || len(expr.Args()) != 2 {
		t.Fatalf("expected a - b to remain a subtraction of two columns, got %v", expr)
	}

	for _, arg := range expr.Args() {
		if arg.Kind() != ir.NodeColumn || arg.Column().Handle.Name != "a" {
			t.Fatalf("expected alias b to resolve to column a, got %v", expr)
		}
	}
}
