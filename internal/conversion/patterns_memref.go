package conversion

import "spvlower/internal/ir"

// PopulateMemRefToSPIRVPatterns contributes rewrites of memory
// reference access onto pointer access chains. They rely on signature
// conversion having retyped memref values to target pointers; a load
// or store whose reference operand is not yet pointer-typed declines
// and is retried on a later sweep.
func PopulateMemRefToSPIRVPatterns(ps *PatternSet) {
	ps.Add(loadPattern{}, storePattern{})
}

type loadPattern struct{}

func (loadPattern) Kind() ir.OpKind { return ir.OpLoad }

func (loadPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	types := rw.Types()
	ref := op.Operands[0]
	t, ok := types.Lookup(ref.Type())
	if !ok || t.Kind != ir.KindPointer {
		return false, nil
	}
	elemPtr := types.Intern(ir.MakePointer(t.Elem, ir.StorageClass(t.Space)))
	b := rw.Builder()
	chain := b.Create(op.Loc, ir.SpvAccessChain, elemPtr, op.Operands, ir.Attrs{})
	repl := b.Create(op.Loc, ir.SpvLoad, t.Elem, []*ir.Value{chain.Result}, ir.Attrs{})
	return true, rw.ReplaceOp(op, repl.Result)
}

type storePattern struct{}

func (storePattern) Kind() ir.OpKind { return ir.OpStore }

func (storePattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	// store operands: value, ref, indices...
	types := rw.Types()
	ref := op.Operands[1]
	t, ok := types.Lookup(ref.Type())
	if !ok || t.Kind != ir.KindPointer {
		return false, nil
	}
	elemPtr := types.Intern(ir.MakePointer(t.Elem, ir.StorageClass(t.Space)))
	b := rw.Builder()
	chainOperands := append([]*ir.Value{ref}, op.Operands[2:]...)
	chain := b.Create(op.Loc, ir.SpvAccessChain, elemPtr, chainOperands, ir.Attrs{})
	b.Create(op.Loc, ir.SpvStore, ir.NoTypeID, []*ir.Value{chain.Result, op.Operands[0]}, ir.Attrs{})
	return true, rw.EraseOp(op)
}
