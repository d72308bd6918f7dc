package conversion

import (
	"fmt"

	"spvlower/internal/ir"
)

// Builtin variable names the id/dim queries lower onto.
const (
	builtinLocalInvocationID = "LocalInvocationId"
	builtinWorkgroupID       = "WorkgroupId"
	builtinWorkgroupSize     = "WorkgroupSize"
)

// PopulateGPUToSPIRVPatterns contributes rewrites for device-side
// kernel ops: thread/block queries, barriers and kernel returns.
func PopulateGPUToSPIRVPatterns(ps *PatternSet) {
	ps.Add(
		builtinQueryPattern{from: ir.OpThreadID, builtin: builtinLocalInvocationID},
		builtinQueryPattern{from: ir.OpBlockID, builtin: builtinWorkgroupID},
		builtinQueryPattern{from: ir.OpBlockDim, builtin: builtinWorkgroupSize},
		barrierPattern{},
		returnPattern{kind: ir.OpGPUReturn},
	)
}

// builtinQueryPattern lowers an id/dim query to a load of the
// corresponding builtin input variable followed by a lane extract.
// The builtin variable is created once per module and reused.
type builtinQueryPattern struct {
	from    ir.OpKind
	builtin string
}

func (p builtinQueryPattern) Kind() ir.OpKind { return p.from }

func (p builtinQueryPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	mod := ir.NearestSymbolTable(op)
	if mod == nil {
		return false, fmt.Errorf("builtin lowering: op has no enclosing symbol table")
	}
	types := rw.Types()
	tc := rw.TypeConverter()
	b := rw.Builder()

	idxType := tc.IndexType()
	vecType := types.Intern(ir.MakeVector(idxType, 3))
	ptrType := types.Intern(ir.MakePointer(vecType, ir.ClassInput))

	global := findBuiltinVar(mod, p.builtin)
	if global == nil {
		restore := b.GuardInsertion()
		name := NewSymbolRegistry(mod).Fresh("__builtin_" + p.builtin + "_")
		b.SetInsertionPointModuleTop(mod)
		global = b.Create(op.Loc, ir.SpvGlobalVariable, ptrType, nil, ir.Attrs{
			Name:    name,
			Builtin: p.builtin,
		})
		restore()
	}

	addr := b.Create(op.Loc, ir.SpvAddressOf, ptrType, nil, ir.Attrs{Sym: global.Attrs.Name})
	vec := b.Create(op.Loc, ir.SpvLoad, vecType, []*ir.Value{addr.Result}, ir.Attrs{})
	lane := b.Create(op.Loc, ir.SpvCompositeExtract, idxType, []*ir.Value{vec.Result}, ir.Attrs{Index: uint32(op.Attrs.Dim)})
	return true, rw.ReplaceOp(op, lane.Result)
}

func findBuiltinVar(mod *ir.KernelModule, builtin string) *ir.Op {
	for _, g := range mod.Globals {
		if g.Kind == ir.SpvGlobalVariable && g.Attrs.Builtin == builtin {
			return g
		}
	}
	return nil
}

type barrierPattern struct{}

func (barrierPattern) Kind() ir.OpKind { return ir.OpBarrier }

func (barrierPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	rw.Builder().Create(op.Loc, ir.SpvControlBarrier, ir.NoTypeID, nil, ir.Attrs{})
	return true, rw.EraseOp(op)
}
