package conversion

import "spvlower/internal/ir"

// PopulateControlFlowToSPIRVPatterns contributes rewrites for
// unstructured branches.
func PopulateControlFlowToSPIRVPatterns(ps *PatternSet) {
	ps.Add(
		branchPattern{from: ir.OpBranch, to: ir.SpvBranch},
		branchPattern{from: ir.OpCondBranch, to: ir.SpvBranchConditional},
	)
}

type branchPattern struct {
	from ir.OpKind
	to   ir.OpKind
}

func (p branchPattern) Kind() ir.OpKind { return p.from }

func (p branchPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	rw.Builder().CreateTerm(op.Loc, p.to, op.Operands, op.Succs, ir.Attrs{})
	return true, rw.EraseOp(op)
}
