package conversion_test

import (
	"testing"

	"spvlower/internal/conversion"
	"spvlower/internal/ir"
)

// buildSaxpyProgram assembles a one-kernel program covering memory
// access, arithmetic and a builtin query:
//
//	tid = gpu.thread_id x
//	a   = memref.load  %x[tid]
//	b   = memref.load  %y[tid]
//	s   = arith.addf   a, b
//	      memref.store s, %y[tid]
//	      gpu.return
func buildSaxpyProgram(t *testing.T) (*ir.Program, *ir.KernelModule) {
	t.Helper()
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()

	memref := types.Intern(ir.MakeMemRef(bt.F32, 16, ir.SpaceGlobal))

	m := ir.NewKernelModule("saxpy_module")
	f := ir.NewFunc("saxpy", []ir.TypeID{memref, memref}, bt.Void)
	f.Kernel = true
	f.LocalSize = [3]uint32{16, 1, 1}
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}

	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	tid := b.Create(ir.Loc{File: "saxpy.mlir", Line: 1}, ir.OpThreadID, bt.Index, nil, ir.Attrs{Dim: ir.DimX})
	la := b.Create(ir.Loc{}, ir.OpLoad, bt.F32, []*ir.Value{f.Params[0], tid.Result}, ir.Attrs{})
	lb := b.Create(ir.Loc{}, ir.OpLoad, bt.F32, []*ir.Value{f.Params[1], tid.Result}, ir.Attrs{})
	sum := b.Create(ir.Loc{}, ir.OpAddF, bt.F32, []*ir.Value{la.Result, lb.Result}, ir.Attrs{})
	b.Create(ir.Loc{}, ir.OpStore, ir.NoTypeID, []*ir.Value{sum.Result, f.Params[1], tid.Result}, ir.Attrs{})
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})

	prog.AddKernel(m)
	if err := ir.ValidateProgram(prog); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return prog, m
}

// countKind tallies ops of one kind across the module, globals included.
func countKind(m *ir.KernelModule, kind ir.OpKind) int {
	n := 0
	ir.WalkModule(m, func(op *ir.Op) {
		if op.Kind == kind {
			n++
		}
	})
	return n
}

// countIllegal reports how many ops of the module the target rejects.
func countIllegal(m *ir.KernelModule, ct *conversion.ConversionTarget) int {
	n := 0
	ir.WalkModule(m, func(op *ir.Op) {
		if !ct.IsLegal(op) {
			n++
		}
	})
	return n
}
