package conversion_test

import (
	"errors"
	"testing"

	"spvlower/internal/conversion"
	"spvlower/internal/ir"
)

func TestRemapMemorySpacesRetypesParamsAndResults(t *testing.T) {
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()

	shared := types.Intern(ir.MakeMemRef(bt.F32, 64, ir.SpaceWorkgroup))

	m := ir.NewKernelModule("m")
	f := ir.NewFunc("k", []ir.TypeID{shared}, bt.Void)
	f.Kernel = true
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})

	if err := conversion.RemapMemorySpaces(m, types); err != nil {
		t.Fatalf("RemapMemorySpaces: %v", err)
	}
	desc := types.MustLookup(f.Params[0].Type())
	if desc.Kind != ir.KindPointer {
		t.Fatalf("param remapped to %s", types.TypeString(f.Params[0].Type()))
	}
	if ir.StorageClass(desc.Space) != ir.ClassWorkgroup {
		t.Fatalf("storage class %s, want Workgroup", ir.StorageClass(desc.Space))
	}
}

func TestRemapMemorySpacesFailsFastOnUnknownSpace(t *testing.T) {
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()

	odd := types.Intern(ir.MakeMemRef(bt.F32, 8, 9))

	m := ir.NewKernelModule("m")
	f := ir.NewFunc("k", []ir.TypeID{odd}, bt.Void)
	f.Kernel = true
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})

	err := conversion.RemapMemorySpaces(m, types)
	if err == nil {
		t.Fatal("expected remap failure, got nil")
	}
	if !errors.Is(err, conversion.ErrRemapFailed) {
		t.Fatalf("unexpected error: %v", err)
	}
}
