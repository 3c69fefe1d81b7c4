package ir

import (
	"math/big"
	"testing"
)

func TestHandle_0(t *testing.T) {
	h := NewHandle("m", "a(b).c")
	if got := h.Mangle(); got != "m__a_b__c" {
		t.Errorf("Mangle() = %q, want %q", got, "m__a_b__c")
	}
}

func TestHandle_1(t *testing.T) {
	h := NewHandle("", "x")
	if got := h.Mangle(); got != "x" {
		t.Errorf("Mangle() with no module = %q, want %q", got, "x")
	}
}

func TestHandle_2(t *testing.T) {
	h := NewHandle("m", "v")
	if got := h.Ith(3).Name; got != "v_3" {
		t.Errorf("Ith(3).Name = %q, want %q", got, "v_3")
	}
}

// TestHandle_Mangling_Injectivity checks that Mangle stays injective over a
// curated set of distinct handles with no purifiable character collisions.
func TestHandle_Mangling_Injectivity(t *testing.T) {
	handles := []Handle{
		NewHandle("a", "x"),
		NewHandle("a", "y"),
		NewHandle("b", "x"),
		NewHandle("", "ax"),
		NewPerspectiveHandle("a", "x", "p"),
	}

	seen := make(map[string]Handle)

	for _, h := range handles {
		m := h.Mangle()
		if other, ok := seen[m]; ok && !other.Equals(h) {
			t.Errorf("mangle collision: %v and %v both mangle to %q", other, h, m)
		}

		seen[m] = h
	}
}

func TestTypeLattice_Order(t *testing.T) {
	if !Void.LessEq(Boolean) || !Boolean.LessEq(Numeric) || !Void.LessEq(Numeric) {
		t.Fatalf("expected Void <= Boolean <= Numeric")
	}

	if Numeric.LessEq(Boolean) {
		t.Fatalf("expected Numeric > Boolean")
	}
}

func TestTypeLattice_JoinCommutative(t *testing.T) {
	types := []Type{Void, Boolean, Numeric}

	for _, a := range types {
		for _, b := range types {
			if Join(a, b) != Join(b, a) {
				t.Errorf("Join(%v,%v) != Join(%v,%v)", a, b, b, a)
			}
		}
	}
}

func TestTypeLattice_JoinAssociative(t *testing.T) {
	types := []Type{Void, Boolean, Numeric}

	for _, a := range types {
		for _, b := range types {
			for _, c := range types {
				lhs := Join(Join(a, b), c)
				rhs := Join(a, Join(b, c))

				if lhs != rhs {
					t.Errorf("associativity failed for %v,%v,%v", a, b, c)
				}
			}
		}
	}
}

func TestTypeLattice_JoinIdempotent(t *testing.T) {
	for _, a := range []Type{Void, Boolean, Numeric} {
		if Join(a, a) != a {
			t.Errorf("Join(%v,%v) != %v", a, a, a)
		}
	}
}

func TestArity_Validation(t *testing.T) {
	tests := []struct {
		name  string
		arity Arity
		n     int
		ok    bool
	}{
		{"monadic ok", Monadic(), 1, true},
		{"monadic bad", Monadic(), 2, false},
		{"dyadic ok", Dyadic(), 2, true},
		{"atleast ok", AtLeast(1), 5, true},
		{"atleast bad", AtLeast(2), 1, false},
		{"between ok", Between(2, 3), 3, true},
		{"between bad", Between(2, 3), 4, false},
	}

	for _, tc := range tests {
		err := tc.arity.Validate(tc.n)
		if (err == nil) != tc.ok {
			t.Errorf("%s: Validate(%d) error = %v, want ok=%v", tc.name, tc.n, err, tc.ok)
		}
	}
}

func TestArity_EveryIntrinsicValidated(t *testing.T) {
	intrinsics := []Intrinsic{Add, Sub, Mul, Neg, Inv, Normalize, Exp, Shift, Nth, Eq, Not, Begin, IfZero, IfNotZero}

	for _, i := range intrinsics {
		arity := ArityOf(i)
		// Every intrinsic takes at least one argument, so every declared
		// arity must reject a call with no arguments.
		if err := arity.Validate(0); err == nil {
			t.Errorf("%v: expected arity to reject a call with no arguments", i)
		}
	}
}

func TestNode_Dependencies(t *testing.T) {
	a := NewColumn(ColumnRef{NewHandle("m", "a")}, Numeric)
	b := NewColumn(ColumnRef{NewHandle("m", "b")}, Numeric)
	add := NewFuncall(Add, []Node{a, b, a}, Numeric)

	deps := add.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("expected 2 distinct dependencies, got %d: %v", len(deps), deps)
	}
}

func TestNode_Const(t *testing.T) {
	c := NewConst(big.NewInt(5))
	if !c.IsConst() || c.ConstValue().Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected constant 5, got %v", c)
	}

	if c.Type() != Numeric {
		t.Fatalf("expected 5 to have Numeric type, got %v", c.Type())
	}

	one := NewConst(big.NewInt(1))
	if one.Type() != Boolean {
		t.Fatalf("expected 1 to have Boolean type, got %v", one.Type())
	}
}
