package conversion

import "spvlower/internal/ir"

// PopulateMathToSPIRVPatterns contributes rewrites of math functions
// onto the target's CL extended instruction set.
func PopulateMathToSPIRVPatterns(ps *PatternSet) {
	ps.Add(
		unaryMathPattern{from: ir.OpExp, to: ir.SpvCLExp},
		unaryMathPattern{from: ir.OpSqrt, to: ir.SpvCLSqrt},
	)
}

type unaryMathPattern struct {
	from ir.OpKind
	to   ir.OpKind
}

func (p unaryMathPattern) Kind() ir.OpKind { return p.from }

func (p unaryMathPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, p.to, typ, op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}
