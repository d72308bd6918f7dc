package ir

import "fmt"

// Loc records the source position an operation was derived from.
type Loc struct {
	File string
	Line uint32
	Col  uint32
}

func (l Loc) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// CmpPred enumerates integer comparison predicates.
type CmpPred uint8

const (
	CmpEQ CmpPred = iota
	CmpNE
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
)

// Dim selects a dimension for thread/block id queries.
type Dim uint8

const (
	DimX Dim = iota
	DimY
	DimZ
)

// Attrs is the typed attribute bag attached to operations. Only the
// fields relevant to an operation's kind are populated.
type Attrs struct {
	// Name is the symbol this op defines (globals, spec constants).
	Name string
	// Sym is a symbol this op references (address-of, global init).
	Sym string
	// Callee names the function a call or kernel launch targets.
	Callee string
	// Syms lists the constituents of a composite constant.
	Syms []string

	IVal   int64
	FVal   float64
	BVal   bool
	Format string // printf format string

	Constant bool // read-only marker on global variables
	Builtin  string
	Pred     CmpPred
	Dim      Dim
	Index    uint32 // composite/vector element index
}

// Op is a single operation node: a kind, ordered operands, an optional
// result value, and successor blocks for terminators.
type Op struct {
	Kind     OpKind
	Operands []*Value
	Result   *Value
	Succs    []*Block
	Attrs    Attrs
	Loc      Loc

	block  *Block        // owner when nested in a function body
	module *KernelModule // owner when at module scope
	erased bool
}

// Block returns the block the op lives in, or nil for module-scope ops.
func (op *Op) Block() *Block { return op.block }

// Module returns the kernel module the op belongs to, walking up from
// its block when nested.
func (op *Op) Module() *KernelModule {
	if op.module != nil {
		return op.module
	}
	if op.block != nil && op.block.fn != nil {
		return op.block.fn.module
	}
	return nil
}

// Func returns the enclosing function, or nil for module-scope ops.
func (op *Op) Func() *Func {
	if op.block == nil {
		return nil
	}
	return op.block.fn
}

// Erased reports whether the op has been removed from its owner.
func (op *Op) Erased() bool { return op.erased }

// SetOperand swaps operand i to v, keeping use lists consistent.
func (op *Op) SetOperand(i int, v *Value) {
	old := op.Operands[i]
	if old == v {
		return
	}
	old.removeUse(op)
	op.Operands[i] = v
	v.addUse(op)
}

// Erase detaches the op from its owner and releases its operand uses.
// It fails while the op's result still has uses: callers must sequence
// replace-then-erase.
func (op *Op) Erase() error {
	if op.erased {
		return nil
	}
	if op.Result != nil && op.Result.NumUses() > 0 {
		return fmt.Errorf("ir: erase %s: result still has %d uses", op.Kind, op.Result.NumUses())
	}
	for _, v := range op.Operands {
		v.removeUse(op)
	}
	switch {
	case op.block != nil:
		op.block.removeOp(op)
	case op.module != nil:
		op.module.removeGlobal(op)
	}
	op.erased = true
	return nil
}

func (op *Op) String() string {
	return op.Kind.String()
}
