package ir_test

import (
	"testing"

	"spvlower/internal/ir"
)

// newTestFunc builds an empty kernel function inside a module and
// positions a builder at its entry.
func newTestFunc(t *testing.T, types *ir.Interner) (*ir.Func, *ir.Builder) {
	t.Helper()
	bt := types.Builtins()
	m := ir.NewKernelModule("m")
	f := ir.NewFunc("k", []ir.TypeID{bt.F32}, bt.Void)
	f.Kernel = true
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	return f, b
}

func TestReplaceAllUsesThenErase(t *testing.T) {
	types := ir.NewInterner()
	bt := types.Builtins()
	f, b := newTestFunc(t, types)

	old := b.ConstantFloat(ir.Loc{}, 1.0, bt.F32)
	add := b.Create(ir.Loc{}, ir.OpAddF, bt.F32, []*ir.Value{old.Result, f.Params[0]}, ir.Attrs{})
	mul := b.Create(ir.Loc{}, ir.OpMulF, bt.F32, []*ir.Value{old.Result, add.Result}, ir.Attrs{})

	if err := old.Erase(); err == nil {
		t.Fatal("erasing a value with live uses must fail")
	}

	repl := b.ConstantFloat(ir.Loc{}, 2.0, bt.F32)
	old.Result.ReplaceAllUses(repl.Result)

	if old.Result.NumUses() != 0 {
		t.Fatalf("old result still has %d uses", old.Result.NumUses())
	}
	if add.Operands[0] != repl.Result || mul.Operands[0] != repl.Result {
		t.Fatal("uses were not re-routed")
	}
	if repl.Result.NumUses() != 2 {
		t.Fatalf("replacement has %d uses, want 2", repl.Result.NumUses())
	}
	if err := old.Erase(); err != nil {
		t.Fatalf("erase after replacement: %v", err)
	}
	if !old.Erased() {
		t.Fatal("op not marked erased")
	}
	for _, op := range f.Entry().Ops {
		if op == old {
			t.Fatal("erased op still in block")
		}
	}
}

func TestEraseReleasesOneUsePerSlot(t *testing.T) {
	types := ir.NewInterner()
	bt := types.Builtins()
	_, b := newTestFunc(t, types)

	c := b.ConstantFloat(ir.Loc{}, 3.0, bt.F32)
	// Same value through both operand slots.
	add := b.Create(ir.Loc{}, ir.OpAddF, bt.F32, []*ir.Value{c.Result, c.Result}, ir.Attrs{})
	if c.Result.NumUses() != 2 {
		t.Fatalf("constant has %d uses, want 2", c.Result.NumUses())
	}
	if err := add.Erase(); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if c.Result.NumUses() != 0 {
		t.Fatalf("constant still has %d uses after erase", c.Result.NumUses())
	}
}

func TestSetOperandKeepsUseLists(t *testing.T) {
	types := ir.NewInterner()
	bt := types.Builtins()
	_, b := newTestFunc(t, types)

	a := b.ConstantFloat(ir.Loc{}, 1.0, bt.F32)
	c := b.ConstantFloat(ir.Loc{}, 2.0, bt.F32)
	add := b.Create(ir.Loc{}, ir.OpAddF, bt.F32, []*ir.Value{a.Result, a.Result}, ir.Attrs{})

	add.SetOperand(1, c.Result)
	if a.Result.NumUses() != 1 {
		t.Fatalf("first operand value has %d uses, want 1", a.Result.NumUses())
	}
	if c.Result.NumUses() != 1 {
		t.Fatalf("swapped-in value has %d uses, want 1", c.Result.NumUses())
	}
	if !a.Result.HasOneUse() {
		t.Fatal("HasOneUse disagrees with NumUses")
	}
}
