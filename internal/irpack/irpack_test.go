package irpack_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"spvlower/internal/ir"
	"spvlower/internal/irpack"
	"spvlower/internal/target"
)

// Wire-level mirrors of the payload records, for crafting inputs the
// encoder itself would never produce.
type rawOp struct {
	Kind       uint16
	ResultType uint32
	Operands   []uint32
	Succs      []uint32
	Attrs      ir.Attrs
	Loc        ir.Loc
}

type rawBlock struct {
	Ops []rawOp
}

type rawFunc struct {
	Name       string
	ParamTypes []uint32
	ResultType uint32
	Kernel     bool
	LocalSize  [3]uint32
	Blocks     []rawBlock
}

type rawModule struct {
	Name       string
	Env        *target.Env
	Globals    []rawOp
	Funcs      []rawFunc
	TargetForm bool
}

type rawPayload struct {
	Schema  uint16
	Funcs   []rawFunc
	Kernels []rawModule
}

func decodeRaw(t *testing.T, raw rawPayload) error {
	t.Helper()
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&raw); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := irpack.Decode(&buf)
	return err
}

// buildProgram assembles a program exercising every record shape the
// encoding has: host function with a launch site, kernel module with a
// target env, globals, branches and symbolic references.
func buildProgram(t *testing.T) *ir.Program {
	t.Helper()
	prog := ir.NewProgram()
	types := prog.Types
	bt := types.Builtins()

	memref := types.Intern(ir.MakeMemRef(bt.F32, 32, ir.SpaceGlobal))

	m := ir.NewKernelModule("kernels")
	m.Env = &target.Env{
		Version:        "1.2",
		Capabilities:   []string{"Kernel"},
		AddressingBits: 64,
		VectorWidths:   []uint32{1, 2, 4},
	}

	k := ir.NewFunc("scale", []ir.TypeID{memref, bt.F32}, bt.Void)
	k.Kernel = true
	k.LocalSize = [3]uint32{32, 1, 1}
	if err := m.AddFunc(k); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	body := k.AddBlock()
	exit := k.AddBlock()

	b := ir.NewBuilder(types)
	b.SetInsertionPointToEnd(k.Entry())
	tid := b.Create(ir.Loc{File: "scale.mlir", Line: 3, Col: 5}, ir.OpThreadID, bt.Index, nil, ir.Attrs{Dim: ir.DimX})
	n := b.ConstantInt(ir.Loc{}, 32, bt.Index)
	inBounds := b.Create(ir.Loc{}, ir.OpCmpI, bt.Bool, []*ir.Value{tid.Result, n.Result}, ir.Attrs{Pred: ir.CmpSLT})
	b.CreateTerm(ir.Loc{}, ir.OpCondBranch, []*ir.Value{inBounds.Result}, []*ir.Block{body, exit}, ir.Attrs{})

	b.SetInsertionPointToEnd(body)
	v := b.Create(ir.Loc{}, ir.OpLoad, bt.F32, []*ir.Value{k.Params[0], tid.Result}, ir.Attrs{})
	scaled := b.Create(ir.Loc{}, ir.OpMulF, bt.F32, []*ir.Value{v.Result, k.Params[1]}, ir.Attrs{})
	b.Create(ir.Loc{}, ir.OpStore, ir.NoTypeID, []*ir.Value{scaled.Result, k.Params[0], tid.Result}, ir.Attrs{})
	b.Create(ir.Loc{}, ir.OpPrintf, ir.NoTypeID, []*ir.Value{scaled.Result}, ir.Attrs{Format: "%f\n"})
	b.CreateTerm(ir.Loc{}, ir.OpBranch, nil, []*ir.Block{exit}, ir.Attrs{})

	b.SetInsertionPointToEnd(exit)
	b.CreateTerm(ir.Loc{}, ir.OpGPUReturn, nil, nil, ir.Attrs{})

	prog.AddKernel(m)

	host := ir.NewFunc("main", nil, bt.Void)
	b.SetInsertionPointToEnd(host.Entry())
	b.Create(ir.Loc{}, ir.OpLaunchKernel, ir.NoTypeID, nil, ir.Attrs{Callee: "scale"})
	b.CreateTerm(ir.Loc{}, ir.OpReturn, nil, nil, ir.Attrs{})
	prog.Funcs = append(prog.Funcs, host)

	if err := ir.ValidateProgram(prog); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return prog
}

func dump(t *testing.T, prog *ir.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ir.DumpProgram(&buf, prog, ir.DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	return buf.String()
}

func TestEncodeDecodePreservesProgram(t *testing.T) {
	prog := buildProgram(t)

	var buf bytes.Buffer
	if err := irpack.Encode(&buf, prog); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := irpack.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := ir.ValidateProgram(decoded); err != nil {
		t.Fatalf("decoded program invalid: %v", err)
	}

	want := dump(t, prog)
	got := dump(t, decoded)
	if got != want {
		t.Fatalf("decoded program differs:\n--- want ---\n%s\n--- got ---\n%s", want, got)
	}

	m := decoded.Kernels[0]
	if m.Env == nil || m.Env.Version != "1.2" || m.Env.AddressingBits != 64 {
		t.Fatal("target env not preserved")
	}
	if m.Env.AllowsVectorWidth(8) {
		t.Fatal("vector width allow-list not preserved")
	}
	k := m.Funcs[0]
	if !k.Kernel || k.LocalSize != [3]uint32{32, 1, 1} {
		t.Fatal("kernel attributes not preserved")
	}
	if _, ok := m.LookupSymbol("scale"); !ok {
		t.Fatal("symbol table not rebuilt")
	}
}

func TestWriteFileThenReadFile(t *testing.T) {
	prog := buildProgram(t)
	path := filepath.Join(t.TempDir(), "out", "prog.irpk")

	if err := irpack.WriteFile(path, prog); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	decoded, err := irpack.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if dump(t, decoded) != dump(t, prog) {
		t.Fatal("file round trip changed the program")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir has %d entries, want 1", len(entries))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := irpack.Decode(bytes.NewReader([]byte{0xc1, 0x00, 0x01})); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestDecodeRejectsDuplicateGlobalSymbols(t *testing.T) {
	err := decodeRaw(t, rawPayload{
		Schema: 1,
		Kernels: []rawModule{{
			Name: "m",
			Globals: []rawOp{
				{Kind: uint16(ir.SpvGlobalVariable), Attrs: ir.Attrs{Name: "x"}},
				{Kind: uint16(ir.SpvGlobalVariable), Attrs: ir.Attrs{Name: "x"}},
			},
		}},
	})
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate symbol") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeRejectsUnknownOpKinds(t *testing.T) {
	// 256+OpAddI would alias a real kind under a narrowing cast.
	for _, kind := range []uint16{200, 256 + uint16(ir.OpAddI), 65535} {
		err := decodeRaw(t, rawPayload{
			Schema: 1,
			Kernels: []rawModule{{
				Name:    "m",
				Globals: []rawOp{{Kind: kind, Attrs: ir.Attrs{Name: "g"}}},
			}},
		})
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Fatalf("global kind %d: unexpected error: %v", kind, err)
		}
	}
}

func TestDecodeRejectsUnknownOpKindInFunctionBody(t *testing.T) {
	err := decodeRaw(t, rawPayload{
		Schema: 1,
		Funcs: []rawFunc{{
			Name: "main",
			Blocks: []rawBlock{{
				Ops: []rawOp{{Kind: 256 + uint16(ir.OpReturn)}},
			}},
		}},
	})
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("unexpected error: %v", err)
	}
}
