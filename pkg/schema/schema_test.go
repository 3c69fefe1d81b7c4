package schema

import (
	"math/big"
	"testing"

	"github.com/airlang/corset/pkg/ir"
)

func TestColumnStore_0(t *testing.T) {
	s := NewColumnStore()
	h := ir.NewHandle("m", "x")

	s.Declare(Column{Handle: h, Type: ir.Numeric, Kind: Atomic})

	col, ok := s.Get(h)
	if !ok || col.Handle != h {
		t.Fatalf("expected to find declared column %v", h)
	}
}

func TestColumnStore_EffectiveLenOrSet(t *testing.T) {
	s := NewColumnStore()

	if n, err := s.EffectiveLenOrSet("m", 8); err != nil || n != 8 {
		t.Fatalf("first call: got (%d,%v), want (8,nil)", n, err)
	}

	if n, err := s.EffectiveLenOrSet("m", 8); err != nil || n != 8 {
		t.Fatalf("second agreeing call: got (%d,%v), want (8,nil)", n, err)
	}

	if _, err := s.EffectiveLenOrSet("m", 9); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestColumnStore_SetColumnValue_LengthMismatch(t *testing.T) {
	s := NewColumnStore()
	a := ir.NewHandle("m", "a")
	b := ir.NewHandle("m", "b")

	s.Declare(Column{Handle: a, Type: ir.Numeric, Kind: Atomic})
	s.Declare(Column{Handle: b, Type: ir.Numeric, Kind: Atomic})

	vals := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	if err := s.SetColumnValue(a, vals, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	short := []*big.Int{big.NewInt(1)}
	if err := s.SetColumnValue(b, short, nil); err == nil {
		t.Fatalf("expected length mismatch error when column b disagrees with a")
	}
}

func TestColumnStore_GetSpillingAndPadding(t *testing.T) {
	s := NewColumnStore()
	h := ir.NewHandle("m", "x")

	pad := big.NewInt(7)
	s.Declare(Column{Handle: h, Type: ir.Numeric, Kind: Atomic, PaddingValue: pad})

	vals := []*big.Int{big.NewInt(1), big.NewInt(2)}
	spill := []*big.Int{big.NewInt(0)}

	if err := s.SetColumnValue(h, vals, spill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := s.Get(h, -5, false); !ok || v.Cmp(pad) != 0 {
		t.Fatalf("expected padding value %v for far-negative row, got %v", pad, v)
	}

	if v, ok := s.Get(h, 0, false); !ok || v.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected row 0 = 1, got %v", v)
	}

	if _, ok := s.Get(h, 5, false); ok {
		t.Fatalf("expected past-end read without allowPastEnd to fail")
	}

	if v, ok := s.Get(h, 5, true); !ok || v.Cmp(pad) != 0 {
		t.Fatalf("expected past-end read with allowPastEnd to return padding, got %v", v)
	}
}

func TestArrayColumn_ContainsAndElementHandle(t *testing.T) {
	arr := ArrayColumn{Handle: ir.NewHandle("m", "v"), Domain: []int{0, 1, 2}, Type: ir.Numeric}

	if !arr.Contains(1) || arr.Contains(5) {
		t.Fatalf("Contains() disagreed with declared domain")
	}

	if got := arr.ElementHandle(2).Name; got != "v_2" {
		t.Errorf("ElementHandle(2).Name = %q, want %q", got, "v_2")
	}
}

func TestConstraintSet_PerspectiveGuard(t *testing.T) {
	cs := NewConstraintSet(NewColumnStore())
	guard := ir.NewConst(big.NewInt(1))

	cs.SetPerspectiveGuard("m", "p", guard)

	got, ok := cs.PerspectiveGuard("m", "p")
	if !ok || got.IsConst() != guard.IsConst() {
		t.Fatalf("expected to retrieve recorded perspective guard")
	}

	if _, ok := cs.PerspectiveGuard("m", "other"); ok {
		t.Fatalf("expected no guard for unrecorded perspective")
	}
}

func TestConstraintSet_ConstraintsInModule(t *testing.T) {
	cs := NewConstraintSet(NewColumnStore())

	vanishesA := NewVanishes(ir.NewHandle("a", "c1"), nil, ir.NewConst(big.NewInt(0)))
	vanishesB := NewVanishes(ir.NewHandle("b", "c2"), nil, ir.NewConst(big.NewInt(0)))
	perm := NewPermutation(nil, nil, nil)

	cs.AddConstraint(vanishesA)
	cs.AddConstraint(vanishesB)
	cs.AddConstraint(perm)

	inA := cs.ConstraintsInModule("a")
	if len(inA) != 1 || inA[0].Handle() != vanishesA.Handle() {
		t.Fatalf("expected exactly vanishesA in module a, got %v", inA)
	}
}
