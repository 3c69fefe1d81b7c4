package sexp

import (
	"reflect"
	"testing"
)

func parseOk(t *testing.T, input string) SExp {
	t.Helper()

	term, err := Parse(NewSourceFile("<test>", []byte(input)))
	if err != nil {
		t.Fatalf("unexpected error parsing %q: %v", input, err)
	}

	return term
}

func checkRoundtrip(t *testing.T, input string) {
	t.Helper()

	term := parseOk(t, input)
	if term == nil {
		t.Fatalf("expected non-nil term for %q", input)
	}

	if got := term.String(false); got != input {
		t.Errorf("roundtrip mismatch: parsed %q, printed %q", input, got)
	}
}

func TestSexp_0(t *testing.T) {
	term, err := Parse(NewSourceFile("<test>", []byte("")))
	if err != nil || term != nil {
		t.Fatalf("expected (nil,nil) for empty input, got (%v,%v)", term, err)
	}
}

func TestSexp_1(t *testing.T) {
	checkRoundtrip(t, "()")
}

func TestSexp_2(t *testing.T) {
	checkRoundtrip(t, "(())")
}

func TestSexp_3(t *testing.T) {
	checkRoundtrip(t, "(a b c)")
}

func TestSexp_4(t *testing.T) {
	checkRoundtrip(t, "[0 1 2]")
}

func TestSexp_5(t *testing.T) {
	term := parseOk(t, "(+ 1 (* 2 3))")
	list := term.AsList()

	if list == nil || list.Len() != 3 {
		t.Fatalf("expected 3-element list, got %v", term)
	}

	inner := list.Get(2).AsList()
	if inner == nil || !inner.MatchSymbols(1, "*") {
		t.Fatalf("expected inner list headed by '*', got %v", list.Get(2))
	}
}

func TestSexp_6(t *testing.T) {
	// Comments are discarded before any pass runs.
	term := parseOk(t, "(a ; a comment\n b)")
	list := term.AsList()

	if list == nil || !reflect.DeepEqual(list.String(false), "(a b)") {
		t.Fatalf("expected comment to be stripped, got %v", term)
	}
}

func TestSexpBad_0(t *testing.T) {
	if _, err := Parse(NewSourceFile("<test>", []byte("(a b"))); err == nil {
		t.Fatalf("expected error for unterminated list")
	}
}

func TestSexpBad_1(t *testing.T) {
	if _, err := Parse(NewSourceFile("<test>", []byte(")"))); err == nil {
		t.Fatalf("expected error for unexpected close paren")
	}
}

func TestSexpBad_2(t *testing.T) {
	if _, err := Parse(NewSourceFile("<test>", []byte("(a) (b)"))); err == nil {
		t.Fatalf("expected error for unexpected remainder")
	}
}
