package trace

import (
	"math/big"
	"testing"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/corset"
	"github.com/airlang/corset/pkg/field"
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

// TestCheck_S1 mirrors end-to-end scenario S1: a-b vanishes on a==b traces
// and fails exactly at the mismatching row.
func TestCheck_S1(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a b) (defconstraint c1 () (- a b))`)

	if err := Load(cs, []byte(`{"m": {"a": [0,1,2], "b": [0,1,2]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if fails := Check(cs, &field.GF_251, 1); len(fails) != 0 {
		t.Fatalf("expected no failures, got %v", fails)
	}

	cs2 := compile(t, `(defmodule m) (defcolumns a b) (defconstraint c1 () (- a b))`)
	if err := Load(cs2, []byte(`{"m": {"a": [0,1,2], "b": [0,1,3]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fails := Check(cs2, &field.GF_251, 1)
	if len(fails) != 1 || fails[0].Row() != 2 {
		t.Fatalf("expected exactly one failure at row 2, got %v", fails)
	}
}

// TestCheck_S3 mirrors scenario S3: if-zero gives the else-branch when
// non-zero, so (if-zero x 1 0) fails wherever x is non-zero.
func TestCheck_S3(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns x) (defconstraint nz () (if-zero x 1 0))`)

	if err := Load(cs, []byte(`{"m": {"x": [0,3,0]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := Expand(cs, &field.GF_251); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	fails := Check(cs, &field.GF_251, 1)
	if len(fails) != 2 {
		t.Fatalf("expected failures at rows 0 and 2, got %v", fails)
	}
}

func TestLoad_InsufficientSpilling(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a) (defconstraint c1 () (- (shift a -3) a))`)

	err := Load(cs, []byte(`{"m": {"a": [1,2,3]}}`), 2)
	if err == nil {
		t.Fatalf("expected InsufficientSpilling error")
	}

	if _, ok := err.(*ErrInsufficientSpilling); !ok {
		t.Fatalf("expected *ErrInsufficientSpilling, got %T: %v", err, err)
	}
}

func TestLoad_UnknownColumn(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a)`)

	err := Load(cs, []byte(`{"m": {"bogus": [1,2,3]}}`), 0)
	if _, ok := err.(*ErrUnknownColumn); !ok {
		t.Fatalf("expected *ErrUnknownColumn, got %T: %v", err, err)
	}
}

func TestLoad_DecimalStrings(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a)`)

	if err := Load(cs, []byte(`{"m": {"a": ["1","2","3"]}}`), 0); err != nil {
		t.Fatalf("Load with string-encoded integers: %v", err)
	}
}

func TestCheck_Normalization(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a) (defconstraint c1 () (normalize a))`)

	if err := Load(cs, []byte(`{"m": {"a": [0,1,2]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := Expand(cs, &field.GF_251); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	fails := Check(cs, &field.GF_251, 2)

	for _, f := range fails {
		if _, ok := f.(*NormalizationFailure); ok {
			t.Fatalf("unexpected normalization failure: %v", f)
		}
	}
}

// TestInterleave_S5 mirrors scenario S5: a=[1,2], b=[3,4] interleave to
// t=[1,3,2,4].
func TestInterleave_S5(t *testing.T) {
	a := []*big.Int{big.NewInt(1), big.NewInt(2)}
	b := []*big.Int{big.NewInt(3), big.NewInt(4)}

	got := Interleave([][]*big.Int{a, b})

	want := []int64{1, 3, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected length %d, got %d", len(want), len(got))
	}

	for i, w := range want {
		if got[i].Cmp(big.NewInt(w)) != 0 {
			t.Fatalf("row %d: expected %d, got %s", i, w, got[i])
		}
	}
}

func TestCheck_Plookup(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a b) (deflookup l1 (a) (b))`)

	if err := Load(cs, []byte(`{"m": {"a": [1,2,3], "b": [3,2,1]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fails := Check(cs, &field.GF_251, 2)
	for _, f := range fails {
		if _, ok := f.(*PlookupFailure); ok {
			t.Fatalf("unexpected plookup failure: %v", f)
		}
	}
}

func TestCheck_Plookup_Missing(t *testing.T) {
	cs := compile(t, `(defmodule m) (defcolumns a b) (deflookup l1 (a) (b))`)

	if err := Load(cs, []byte(`{"m": {"a": [1,9,3], "b": [3,2,1]}}`), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	found := false

	for _, f := range Check(cs, &field.GF_251, 2) {
		if _, ok := f.(*PlookupFailure); ok {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a plookup failure for the row with value 9")
	}
}
