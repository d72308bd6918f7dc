package conversion

import "spvlower/internal/ir"

// PopulateVectorToSPIRVPatterns contributes rewrites for vector
// shuffling ops plus the splitting strategy that scalarizes
// elementwise CL ops whose vector width the target does not accept.
func PopulateVectorToSPIRVPatterns(ps *PatternSet) {
	ps.Add(
		broadcastPattern{},
		vecExtractPattern{},
		vecInsertPattern{},
		splitCLPattern{kind: ir.SpvCLExp},
		splitCLPattern{kind: ir.SpvCLFMax},
	)
}

type broadcastPattern struct{}

func (broadcastPattern) Kind() ir.OpKind { return ir.OpBroadcast }

func (broadcastPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	typ, err := rw.TypeConverter().Convert(op.Result.Type())
	if err != nil {
		return false, nil
	}
	n := types.VectorWidth(typ)
	operands := make([]*ir.Value, 0, n)
	for i := uint32(0); i < n; i++ {
		operands = append(operands, op.Operands[0])
	}
	repl := rw.Builder().Create(op.Loc, ir.SpvCompositeConstruct, typ, operands, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type vecExtractPattern struct{}

func (vecExtractPattern) Kind() ir.OpKind { return ir.OpVecExtract }

func (vecExtractPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	repl := rw.Builder().Create(op.Loc, ir.SpvCompositeExtract, op.Result.Type(), op.Operands, ir.Attrs{Index: op.Attrs.Index})
	return true, rw.ReplaceOp(op, repl.Result)
}

type vecInsertPattern struct{}

func (vecInsertPattern) Kind() ir.OpKind { return ir.OpVecInsert }

func (vecInsertPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	repl := rw.Builder().Create(op.Loc, ir.SpvCompositeInsert, op.Result.Type(), op.Operands, ir.Attrs{Index: op.Attrs.Index})
	return true, rw.ReplaceOp(op, repl.Result)
}

// splitCLPattern scalarizes an elementwise CL op whose vector width is
// outside the target allow-list: extract each lane, apply the scalar
// op, and reassemble the result.
type splitCLPattern struct {
	kind ir.OpKind
}

func (p splitCLPattern) Kind() ir.OpKind { return p.kind }

func (p splitCLPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	env := rw.TypeConverter().Env()

	typ := op.Result.Type()
	width := types.VectorWidth(typ)
	if env.AllowsVectorWidth(width) {
		// Already legal for this target; nothing to split.
		return false, nil
	}
	elem := types.Elem(typ)

	b := rw.Builder()
	lanes := make([]*ir.Value, 0, width)
	for i := uint32(0); i < width; i++ {
		args := make([]*ir.Value, 0, len(op.Operands))
		for _, operand := range op.Operands {
			ext := b.Create(op.Loc, ir.SpvCompositeExtract, elem, []*ir.Value{operand}, ir.Attrs{Index: i})
			args = append(args, ext.Result)
		}
		lane := b.Create(op.Loc, p.kind, elem, args, ir.Attrs{})
		lanes = append(lanes, lane.Result)
	}
	repl := b.Create(op.Loc, ir.SpvCompositeConstruct, typ, lanes, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}
