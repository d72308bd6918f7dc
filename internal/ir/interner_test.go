package ir_test

import (
	"testing"

	"spvlower/internal/ir"
)

func TestInternerDeduplicates(t *testing.T) {
	types := ir.NewInterner()
	bt := types.Builtins()

	a := types.Intern(ir.MakeVector(bt.F32, 4))
	b := types.Intern(ir.MakeVector(bt.F32, 4))
	if a != b {
		t.Fatalf("same descriptor got two ids: %d and %d", a, b)
	}
	c := types.Intern(ir.MakeVector(bt.F32, 8))
	if c == a {
		t.Fatalf("distinct descriptors share id %d", a)
	}
	if types.Intern(ir.MakeInt(ir.Width32)) != bt.I32 {
		t.Fatal("re-interning a builtin must return the seeded id")
	}
}

func TestInternerQueries(t *testing.T) {
	types := ir.NewInterner()
	bt := types.Builtins()

	vec := types.Intern(ir.MakeVector(bt.BF16, 3))
	if !types.IsVector(vec) {
		t.Fatal("vector not recognized")
	}
	if types.VectorWidth(vec) != 3 {
		t.Fatalf("vector width = %d, want 3", types.VectorWidth(vec))
	}
	if types.VectorWidth(bt.F32) != 1 {
		t.Fatalf("scalar width = %d, want 1", types.VectorWidth(bt.F32))
	}
	if types.Elem(vec) != bt.BF16 {
		t.Fatal("element of vector<3xbf16> must be bf16")
	}
	if types.Elem(bt.F64) != bt.F64 {
		t.Fatal("element of a scalar must be the scalar itself")
	}
	if !types.IsBFloat(bt.BF16) {
		t.Fatal("bf16 not recognized")
	}

	reshaped := types.SameShape(vec, bt.I16)
	if types.VectorWidth(reshaped) != 3 || types.Elem(reshaped) != bt.I16 {
		t.Fatalf("SameShape produced %s", types.TypeString(reshaped))
	}
	if types.SameShape(bt.F32, bt.I16) != bt.I16 {
		t.Fatal("SameShape of a scalar must return the new element")
	}
}

func TestInternerLookupBounds(t *testing.T) {
	types := ir.NewInterner()
	if _, ok := types.Lookup(ir.NoTypeID); ok {
		t.Fatal("NoTypeID must not resolve")
	}
	if _, ok := types.Lookup(ir.TypeID(1 << 20)); ok {
		t.Fatal("out-of-range id must not resolve")
	}
}
