package conversion_test

import (
	"context"
	"testing"

	"spvlower/internal/conversion"
	"spvlower/internal/ir"
	"spvlower/internal/target"
)

func TestPassConvertsSaxpyEndToEnd(t *testing.T) {
	prog, orig := buildSaxpyProgram(t)

	pass := conversion.NewPass(conversion.Options{})
	if err := pass.Run(context.Background(), prog); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(prog.Kernels) != 2 {
		t.Fatalf("kernels = %d, want original plus clone", len(prog.Kernels))
	}
	if prog.Kernels[0] != orig {
		t.Fatal("original must keep its position")
	}
	clone := prog.Kernels[1]
	if !clone.TargetForm {
		t.Fatal("clone not marked converted")
	}
	if orig.TargetForm {
		t.Fatal("original must stay in host form")
	}

	// The original is byte-for-byte the host module it was before.
	if countKind(orig, ir.OpLoad) != 2 || countKind(orig, ir.OpStore) != 1 || countKind(orig, ir.OpThreadID) != 1 {
		t.Fatal("original module was mutated")
	}

	// All-or-nothing: the clone carries no host op the target rejects.
	ct := conversion.NewSPIRVTarget(prog.Types, target.Default())
	if n := countIllegal(clone, ct); n != 0 {
		t.Fatalf("clone still has %d illegal ops", n)
	}

	// Structure of the lowered kernel.
	if got := countKind(clone, ir.SpvAccessChain); got != 3 {
		t.Fatalf("access chains = %d, want 3", got)
	}
	// Two element loads plus the builtin variable load.
	if got := countKind(clone, ir.SpvLoad); got != 3 {
		t.Fatalf("loads = %d, want 3", got)
	}
	if got := countKind(clone, ir.SpvStore); got != 1 {
		t.Fatalf("stores = %d, want 1", got)
	}
	if got := countKind(clone, ir.SpvFAdd); got != 1 {
		t.Fatalf("fadds = %d, want 1", got)
	}
	if got := countKind(clone, ir.SpvReturn); got != 1 {
		t.Fatalf("returns = %d, want 1", got)
	}

	// The thread-id query becomes a lane extract of the builtin input.
	if got := countKind(clone, ir.SpvCompositeExtract); got != 1 {
		t.Fatalf("extracts = %d, want 1", got)
	}
	var builtin *ir.Op
	for _, g := range clone.Globals {
		if g.Kind == ir.SpvGlobalVariable {
			builtin = g
		}
	}
	if builtin == nil {
		t.Fatal("builtin input variable missing")
	}
	if builtin.Attrs.Builtin != "LocalInvocationId" {
		t.Fatalf("builtin %q, want LocalInvocationId", builtin.Attrs.Builtin)
	}
	desc := prog.Types.MustLookup(builtin.Result.Type())
	if desc.Kind != ir.KindPointer || ir.StorageClass(desc.Space) != ir.ClassInput {
		t.Fatalf("builtin type %s, want Input pointer", prog.Types.TypeString(builtin.Result.Type()))
	}
	vec := prog.Types.MustLookup(desc.Elem)
	// Default target addresses with 64 bits, so lanes are i64.
	if vec.Kind != ir.KindVector || vec.Count != 3 || vec.Elem != prog.Types.Builtins().I64 {
		t.Fatalf("builtin element type %s, want vector<3xi64>", prog.Types.TypeString(desc.Elem))
	}

	// Kernel signature was retyped to pointers.
	cf := clone.Funcs[0]
	pdesc := prog.Types.MustLookup(cf.Params[0].Type())
	if pdesc.Kind != ir.KindPointer || ir.StorageClass(pdesc.Space) != ir.ClassCrossWorkgroup {
		t.Fatalf("param type %s, want CrossWorkgroup pointer", prog.Types.TypeString(cf.Params[0].Type()))
	}

	if err := ir.Validate(clone); err != nil {
		t.Fatalf("clone invalid: %v", err)
	}
}

func TestPassWithMemorySpaceRemap(t *testing.T) {
	prog, orig := buildSaxpyProgram(t)

	pass := conversion.NewPass(conversion.Options{MapMemorySpace: true})
	if err := pass.Run(context.Background(), prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	clone := prog.Kernels[1]
	cf := clone.Funcs[0]
	pdesc := prog.Types.MustLookup(cf.Params[0].Type())
	if pdesc.Kind != ir.KindPointer || ir.StorageClass(pdesc.Space) != ir.ClassCrossWorkgroup {
		t.Fatalf("param type %s, want CrossWorkgroup pointer", prog.Types.TypeString(cf.Params[0].Type()))
	}
	ct := conversion.NewSPIRVTarget(prog.Types, target.Default())
	if n := countIllegal(clone, ct); n != 0 {
		t.Fatalf("clone still has %d illegal ops", n)
	}
	if orig.TargetForm {
		t.Fatal("original must stay in host form")
	}
}

func TestPassRemapFailureAbortsModule(t *testing.T) {
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()
	odd := types.Intern(ir.MakeMemRef(bt.F32, 8, 11))

	m := ir.NewKernelModule("m")
	f := ir.NewFunc("k", []ir.TypeID{odd}, bt.Void)
	f.Kernel = true
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})
	prog.AddKernel(m)

	pass := conversion.NewPass(conversion.Options{MapMemorySpace: true})
	if err := pass.Run(context.Background(), prog); err == nil {
		t.Fatal("expected remap failure, got nil")
	}
	if len(prog.Kernels) != 1 {
		t.Fatal("failed module must not commit a clone")
	}
}

func TestPassScalarizesWideVectors(t *testing.T) {
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()
	vec5 := types.Intern(ir.MakeVector(bt.F32, 5))

	m := ir.NewKernelModule("m")
	f := ir.NewFunc("k", []ir.TypeID{vec5}, bt.Void)
	f.Kernel = true
	if err := m.AddFunc(f); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(f.Entry())
	b.Create(ir.Loc{}, ir.OpExp, vec5, f.Params, ir.Attrs{})
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})
	prog.AddKernel(m)

	pass := conversion.NewPass(conversion.Options{})
	if err := pass.Run(context.Background(), prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	clone := prog.Kernels[1]

	// Width 5 is outside the allow-list: one scalar exp per lane, one
	// reassembly.
	if got := countKind(clone, ir.SpvCLExp); got != 5 {
		t.Fatalf("scalar exps = %d, want 5", got)
	}
	if got := countKind(clone, ir.SpvCompositeExtract); got != 5 {
		t.Fatalf("extracts = %d, want 5", got)
	}
	if got := countKind(clone, ir.SpvCompositeConstruct); got != 1 {
		t.Fatalf("constructs = %d, want 1", got)
	}
	ct := conversion.NewSPIRVTarget(prog.Types, target.Default())
	if n := countIllegal(clone, ct); n != 0 {
		t.Fatalf("clone still has %d illegal ops", n)
	}
}

func TestFullConversionIsIdempotentOnLegalModules(t *testing.T) {
	prog, _ := buildSaxpyProgram(t)
	pass := conversion.NewPass(conversion.Options{})
	if err := pass.Run(context.Background(), prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	clone := prog.Kernels[1]
	before := countKind(clone, ir.SpvLoad) + countKind(clone, ir.SpvStore) + countKind(clone, ir.SpvAccessChain)

	env := target.Default()
	ct := conversion.NewSPIRVTarget(prog.Types, env)
	ct.AddDynamicallyLegal(ir.SpvConvertFToBF16, func(*ir.Op) bool { return true })
	ct.AddDynamicallyLegal(ir.SpvConvertBF16ToF, func(*ir.Op) bool { return true })
	patterns := conversion.NewPatternSet()
	conversion.PopulateArithToSPIRVPatterns(patterns)
	conversion.PopulateMemRefToSPIRVPatterns(patterns)
	tc := conversion.NewTypeConverter(prog.Types, env, conversion.TypeConverterOptions{Use64BitIndex: true})
	rw := conversion.NewRewriter(ir.NewBuilder(prog.Types), tc)

	if err := conversion.ApplyFullConversion(clone, ct, patterns, rw); err != nil {
		t.Fatalf("re-running conversion on a legal module: %v", err)
	}
	after := countKind(clone, ir.SpvLoad) + countKind(clone, ir.SpvStore) + countKind(clone, ir.SpvAccessChain)
	if before != after {
		t.Fatalf("op counts changed from %d to %d", before, after)
	}
}
