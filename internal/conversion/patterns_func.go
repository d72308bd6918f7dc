package conversion

import (
	"fmt"

	"spvlower/internal/ir"
)

// PopulateFuncToSPIRVPatterns contributes rewrites for calls and
// returns.
func PopulateFuncToSPIRVPatterns(ps *PatternSet) {
	ps.Add(callPattern{}, returnPattern{kind: ir.OpReturn})
}

type callPattern struct{}

func (callPattern) Kind() ir.OpKind { return ir.OpCall }

func (callPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ := ir.NoTypeID
	if op.Result != nil {
		var err error
		typ, err = rw.TypeConverter().Convert(op.Result.Type())
		if err != nil {
			return false, nil
		}
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvFunctionCall, typ, op.Operands, ir.Attrs{Callee: op.Attrs.Callee})
	if op.Result == nil {
		return true, rw.EraseOp(op)
	}
	return true, rw.ReplaceOp(op, repl.Result)
}

// returnPattern lowers both func.return and gpu.return.
type returnPattern struct {
	kind ir.OpKind
}

func (p returnPattern) Kind() ir.OpKind { return p.kind }

func (p returnPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	b := rw.Builder()
	switch len(op.Operands) {
	case 0:
		b.CreateTerm(op.Loc, ir.SpvReturn, nil, nil, ir.Attrs{})
	case 1:
		b.CreateTerm(op.Loc, ir.SpvReturnValue, op.Operands, nil, ir.Attrs{})
	default:
		return false, fmt.Errorf("return with %d operands has no target form", len(op.Operands))
	}
	return true, rw.EraseOp(op)
}

// ConvertFunctionSignatures retypes every function's parameters and
// result through the type converter. This is the signature family of
// the combined pattern set; it runs once per module before op-level
// patterns because operand types feed their matching.
func ConvertFunctionSignatures(mod *ir.KernelModule, tc *TypeConverter) error {
	for _, f := range mod.Funcs {
		for i, p := range f.Params {
			typ, err := tc.Convert(p.Type())
			if err != nil {
				return fmt.Errorf("function %s: parameter %d: %w", f.Name, i, err)
			}
			p.SetType(typ)
		}
		if f.ResultType != ir.NoTypeID {
			typ, err := tc.Convert(f.ResultType)
			if err != nil {
				return fmt.Errorf("function %s: result: %w", f.Name, err)
			}
			f.ResultType = typ
		}
	}
	return nil
}
