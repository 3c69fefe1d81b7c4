package binfile

import (
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

// TestRoundTrip checks deserialise(serialise(cs)) == cs for a
// constraint set exercising four constraint kinds and one computation kind:
// a Vanishes constraint, a Normalization constraint (and its Composite
// inverse-column computation, introduced by pkg/lower), a Plookup, and an
// InRange constraint.
func TestRoundTrip(t *testing.T) {
	cs := compile(t, `
(defmodule m)
(defcolumns a b c)
(defconstraint vanish () (- a b))
(defconstraint norm () (normalize a))
(deflookup l1 (a) (b))
(definrange c 256)
`)

	bf, err := NewBinaryFile(cs, Metadata{"source": "test.lisp"})
	if err != nil {
		t.Fatalf("NewBinaryFile: %v", err)
	}

	data, err := bf.Serialise()
	if err != nil {
		t.Fatalf("Serialise: %v", err)
	}

	if !IsBinaryFile(data) {
		t.Fatalf("serialised output does not begin with the ZKBINARY magic")
	}

	got, err := Deserialise(data)
	if err != nil {
		t.Fatalf("Deserialise: %v", err)
	}

	meta, err := got.Header.GetMetaData()
	if err != nil {
		t.Fatalf("GetMetaData: %v", err)
	}

	if meta["source"] != "test.lisp" {
		t.Fatalf("expected metadata to round-trip, got %v", meta)
	}

	cs2, err := got.ConstraintSet()
	if err != nil {
		t.Fatalf("ConstraintSet: %v", err)
	}

	if len(cs2.Constraints) != len(cs.Constraints) {
		t.Fatalf("expected %d constraints, got %d", len(cs.Constraints), len(cs2.Constraints))
	}

	if len(cs2.Computations) != len(cs.Computations) {
		t.Fatalf("expected %d computations, got %d", len(cs.Computations), len(cs2.Computations))
	}

	for _, module := range cs.Store.Modules() {
		want := cs.Store.IterModule(module)
		got := cs2.Store.IterModule(module)

		if len(want) != len(got) {
			t.Fatalf("module %q: expected %d columns, got %d", module, len(want), len(got))
		}

		for i, h := range want {
			if h != got[i] {
				t.Fatalf("module %q column %d: expected %s, got %s", module, i, h.Display(), got[i].Display())
			}
		}
	}

	data2, err := bf.Serialise()
	if err != nil {
		t.Fatalf("Serialise (second pass): %v", err)
	}

	bf2, err := NewBinaryFile(cs2, Metadata{"source": "test.lisp"})
	if err != nil {
		t.Fatalf("NewBinaryFile (second pass): %v", err)
	}

	data3, err := bf2.Serialise()
	if err != nil {
		t.Fatalf("Serialise (third pass): %v", err)
	}

	if string(data2) != string(data3) {
		t.Fatalf("serialise(deserialise(serialise(cs))) != serialise(cs): encoding is not deterministic")
	}
}

func TestDeserialise_Incompatible(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a)`)

	bf, err := NewBinaryFile(cs, nil)
	if err != nil {
		t.Fatalf("NewBinaryFile: %v", err)
	}

	bf.Header.MajorVersion = BINFILE_MAJOR_VERSION + 1

	data, err := bf.Serialise()
	if err != nil {
		t.Fatalf("Serialise: %v", err)
	}

	if _, err := Deserialise(data); err == nil {
		t.Fatalf("expected an incompatibility error")
	}
}

func TestIsBinaryFile(t *testing.T) {
	if IsBinaryFile([]byte("not a binary file")) {
		t.Fatalf("expected non-magic input to be rejected")
	}
}
