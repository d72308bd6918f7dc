package conversion

import "spvlower/internal/ir"

// The Populate*Patterns functions below are the pre-built pattern
// families the driver assembles into one set. Each family is consumed
// uniformly: it only contributes rules, the full-conversion driver
// decides when they fire.

// PopulateArithToSPIRVPatterns contributes rewrites for constants,
// integer/float arithmetic, comparisons, selects and casts.
func PopulateArithToSPIRVPatterns(ps *PatternSet) {
	ps.Add(
		constantPattern{},
		binaryPattern{from: ir.OpAddI, to: ir.SpvIAdd},
		binaryPattern{from: ir.OpSubI, to: ir.SpvISub},
		binaryPattern{from: ir.OpMulI, to: ir.SpvIMul},
		binaryPattern{from: ir.OpAddF, to: ir.SpvFAdd},
		binaryPattern{from: ir.OpSubF, to: ir.SpvFSub},
		binaryPattern{from: ir.OpMulF, to: ir.SpvFMul},
		binaryPattern{from: ir.OpDivF, to: ir.SpvFDiv},
		binaryPattern{from: ir.OpMaxF, to: ir.SpvCLFMax},
		cmpIPattern{},
		selectPattern{},
		fConvertPattern{from: ir.OpTruncF},
		fConvertPattern{from: ir.OpExtF},
		bitcastPattern{},
		indexCastPattern{},
	)
}

type constantPattern struct{}

func (constantPattern) Kind() ir.OpKind { return ir.OpConstant }

func (constantPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvConstant, typ, nil, op.Attrs)
	return true, rw.ReplaceOp(op, repl.Result)
}

// binaryPattern converts a two-operand elementwise op one-to-one.
type binaryPattern struct {
	from ir.OpKind
	to   ir.OpKind
}

func (p binaryPattern) Kind() ir.OpKind { return p.from }

func (p binaryPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, p.to, typ, op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type cmpIPattern struct{}

func (cmpIPattern) Kind() ir.OpKind { return ir.OpCmpI }

func (cmpIPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	var kind ir.OpKind
	switch op.Attrs.Pred {
	case ir.CmpEQ:
		kind = ir.SpvIEqual
	case ir.CmpNE:
		kind = ir.SpvINotEqual
	case ir.CmpSLT:
		kind = ir.SpvSLessThan
	case ir.CmpSLE:
		kind = ir.SpvSLessThanEqual
	case ir.CmpSGT:
		kind = ir.SpvSGreaterThan
	case ir.CmpSGE:
		kind = ir.SpvSGreaterThanEqual
	default:
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, kind, op.Result.Type(), op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type selectPattern struct{}

func (selectPattern) Kind() ir.OpKind { return ir.OpSelect }

func (selectPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvSelect, typ, op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

// fConvertPattern handles float precision changes between IEEE widths.
// bf16 chains are fused before conversion runs; a lone truncation or
// extension touching bf16 has no direct target form and is declined.
type fConvertPattern struct {
	from ir.OpKind
}

func (p fConvertPattern) Kind() ir.OpKind { return p.from }

func (p fConvertPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	if types.IsBFloat(types.Elem(op.Result.Type())) || types.IsBFloat(types.Elem(op.Operands[0].Type())) {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvFConvert, op.Result.Type(), op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type bitcastPattern struct{}

func (bitcastPattern) Kind() ir.OpKind { return ir.OpBitcast }

func (bitcastPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	if types.IsBFloat(types.Elem(op.Result.Type())) || types.IsBFloat(types.Elem(op.Operands[0].Type())) {
		return false, nil
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvBitcast, op.Result.Type(), op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type indexCastPattern struct{}

func (indexCastPattern) Kind() ir.OpKind { return ir.OpIndexCast }

func (indexCastPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	if typ == op.Operands[0].Type() {
		// Width already matches after index lowering.
		op.Result.ReplaceAllUses(op.Operands[0])
		return true, rw.EraseOp(op)
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvSConvert, typ, op.Operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}
