package conversion

import (
	"fmt"

	"spvlower/internal/ir"
)

// formatStringPrefix names the constant-pool globals a printf lowering
// synthesizes.
const formatStringPrefix = "printfMsg"

// printfPattern lowers a formatted-print op into a constant-pool
// definition of the format string plus a call to the target's native
// printf intrinsic.
//
// The format string becomes, at module scope: one spec constant per
// UTF-8 byte (named <base>_sc<i>), one spec-constant composite naming
// them in order (<base>_scc), and one read-only global variable
// initialized from the composite. A trailing NUL byte is appended
// unconditionally; embedded NUL bytes in the format are not
// distinguished from that terminator.
type printfPattern struct{}

// PopulatePrintfPatterns registers the custom printf lowering.
func PopulatePrintfPatterns(ps *PatternSet) {
	ps.Add(printfPattern{})
}

func (printfPattern) Kind() ir.OpKind { return ir.OpPrintf }

func (printfPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	bt := types.Builtins()

	// Vector-typed arguments have no target printf encoding: decline,
	// do not fail.
	for _, arg := range op.Operands {
		if types.IsVector(arg.Type()) {
			return false, nil
		}
	}

	mod := ir.NearestSymbolTable(op)
	if mod == nil {
		return false, fmt.Errorf("printf lowering: op has no enclosing symbol table")
	}

	registry := NewSymbolRegistry(mod)
	varName := registry.Fresh(formatStringPrefix)

	data := append([]byte(op.Attrs.Format), 0)
	arrayType := types.Intern(ir.MakeArray(bt.I8, uint32(len(data))))
	ptrType := types.Intern(ir.MakePointer(arrayType, ir.ClassUniformConstant))

	b := rw.Builder()
	loc := op.Loc

	// Global definitions must land at the start of the nearest symbol
	// table's top scope, not the call site. The guard restores the
	// builder on every exit path.
	func() {
		restore := b.GuardInsertion()
		defer restore()
		b.SetInsertionPointModuleTop(mod)

		constituents := make([]string, 0, len(data))
		for i, c := range data {
			scName := fmt.Sprintf("%s_sc%d", varName, i)
			b.Create(loc, ir.SpvSpecConstant, bt.I8, nil, ir.Attrs{Name: scName, IVal: int64(c)})
			constituents = append(constituents, scName)
		}
		b.Create(loc, ir.SpvSpecConstantComposite, arrayType, nil, ir.Attrs{
			Name: varName + "_scc",
			Syms: constituents,
		})
		b.Create(loc, ir.SpvGlobalVariable, ptrType, nil, ir.Attrs{
			Name:     varName,
			Sym:      varName + "_scc",
			Constant: true,
		})
	}()

	// At the call site: take the address of the global, reinterpret it
	// as a byte pointer, and call the native printf with the pointer
	// followed by the original scalar arguments.
	addr := b.Create(loc, ir.SpvAddressOf, ptrType, nil, ir.Attrs{Sym: varName})
	bytePtr := types.Intern(ir.MakePointer(bt.I8, ir.ClassUniformConstant))
	fmtStr := b.Create(loc, ir.SpvBitcast, bytePtr, []*ir.Value{addr.Result}, ir.Attrs{})

	args := make([]*ir.Value, 0, len(op.Operands)+1)
	args = append(args, fmtStr.Result)
	args = append(args, op.Operands...)
	b.Create(loc, ir.SpvCLPrintf, bt.I32, args, ir.Attrs{})

	if err := rw.EraseOp(op); err != nil {
		return false, err
	}
	return true, nil
}
