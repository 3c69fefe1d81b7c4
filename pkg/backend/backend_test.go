package backend

import (
	"strings"
	"testing"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/corset"
	"github.com/airlang/corset/pkg/lower"
	"github.com/airlang/corset/pkg/schema"
	"github.com/airlang/corset/pkg/sexp"
)

func compile(t *testing.T, src string) *schema.ConstraintSet {
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

	if err := lower.Lower(cs); err != nil {
		t.Fatalf("Lower: %v", err)
	}

	return cs
}

func testConstraintSet(t *testing.T) *schema.ConstraintSet {
	return compile(t, `
(defmodule m)
(defcolumns a b)
(defconstraint vanish () (- a b))
(deflookup l1 (a) (b))
`)
}

func TestPretty_Subtraction(t *testing.T) {
	cs := testConstraintSet(t)

	for _, c := range cs.Constraints {
		if c.Kind() == schema.KindVanishes {
			rendered := Pretty(c.Expr())
			if !strings.Contains(rendered, "-") {
				t.Fatalf("expected the vanishing expression to render its subtraction, got %q", rendered)
			}
		}
	}
}

func TestRenderGo(t *testing.T) {
	cs := testConstraintSet(t)

	out, err := RenderGo(cs, "mypkg")
	if err != nil {
		t.Fatalf("RenderGo: %v", err)
	}

	if !strings.Contains(out, "package mypkg") {
		t.Fatalf("expected a package clause, got:\n%s", out)
	}

	if !strings.Contains(out, "func Check") {
		t.Fatalf("expected at least one Check function, got:\n%s", out)
	}
}

func TestRenderLatex(t *testing.T) {
	cs := testConstraintSet(t)

	out, err := RenderLatex(cs, "My Constraints")
	if err != nil {
		t.Fatalf("RenderLatex: %v", err)
	}

	if !strings.Contains(out, "\\begin{document}") || !strings.Contains(out, "\\end{document}") {
		t.Fatalf("expected a well-formed LaTeX document, got:\n%s", out)
	}
}

func TestRenderWizardIOP(t *testing.T) {
	cs := testConstraintSet(t)

	out, err := RenderWizardIOP(cs)
	if err != nil {
		t.Fatalf("RenderWizardIOP: %v", err)
	}

	if !strings.Contains(out, "MODULE m") {
		t.Fatalf("expected a MODULE line, got:\n%s", out)
	}

	if !strings.Contains(out, "CONSTRAINT VANISHES") {
		t.Fatalf("expected a VANISHES constraint line, got:\n%s", out)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	cs := testConstraintSet(t)

	if _, err := Render(cs, Format("bogus"), ""); err == nil {
		t.Fatalf("expected an ErrUnknownFormat")
	}
}
