package ir

// insertionPoint addresses a position either inside a block or in a
// module's globals list.
type insertionPoint struct {
	block  *Block
	module *KernelModule
	idx    int
}

// Builder creates operations at a movable insertion point and wires
// their def-use edges.
type Builder struct {
	types *Interner
	ip    insertionPoint
}

// NewBuilder constructs a builder over the given interner with no
// insertion point set.
func NewBuilder(types *Interner) *Builder {
	return &Builder{types: types}
}

// Types returns the interner the builder creates values against.
func (b *Builder) Types() *Interner { return b.types }

// SetInsertionPointToEnd places new ops at the end of bl.
func (b *Builder) SetInsertionPointToEnd(bl *Block) {
	b.ip = insertionPoint{block: bl, idx: len(bl.Ops)}
}

// SetInsertionPointToStart places new ops at the beginning of bl.
func (b *Builder) SetInsertionPointToStart(bl *Block) {
	b.ip = insertionPoint{block: bl}
}

// SetInsertionPointBefore places new ops immediately before op.
func (b *Builder) SetInsertionPointBefore(op *Op) {
	if op.block != nil {
		b.ip = insertionPoint{block: op.block, idx: op.block.indexOf(op)}
		return
	}
	if op.module != nil {
		for i, g := range op.module.Globals {
			if g == op {
				b.ip = insertionPoint{module: op.module, idx: i}
				return
			}
		}
	}
}

// SetInsertionPointModuleTop places new ops at the start of the
// module's top scope, where the target form requires global
// definitions to live.
func (b *Builder) SetInsertionPointModuleTop(m *KernelModule) {
	b.ip = insertionPoint{module: m}
}

// SetInsertionPointModuleEnd places new ops after the module's existing
// globals, preserving definition order when rebuilding a module.
func (b *Builder) SetInsertionPointModuleEnd(m *KernelModule) {
	b.ip = insertionPoint{module: m, idx: len(m.Globals)}
}

// GuardInsertion captures the current insertion point and returns a
// restore func. Callers defer it so the point is restored on every
// exit path.
func (b *Builder) GuardInsertion() func() {
	saved := b.ip
	return func() { b.ip = saved }
}

// Create builds an op of the given kind at the insertion point and
// advances past it. resultType NoTypeID produces a result-less op.
func (b *Builder) Create(loc Loc, kind OpKind, resultType TypeID, operands []*Value, attrs Attrs) *Op {
	op := &Op{
		Kind:     kind,
		Operands: append([]*Value(nil), operands...),
		Attrs:    attrs,
		Loc:      loc,
	}
	for _, v := range op.Operands {
		v.addUse(op)
	}
	if resultType != NoTypeID {
		op.Result = &Value{def: op, typ: resultType}
	}
	b.insert(op)
	return op
}

// CreateTerm builds a terminator with successor blocks.
func (b *Builder) CreateTerm(loc Loc, kind OpKind, operands []*Value, succs []*Block, attrs Attrs) *Op {
	op := b.Create(loc, kind, NoTypeID, operands, attrs)
	op.Succs = append([]*Block(nil), succs...)
	return op
}

func (b *Builder) insert(op *Op) {
	switch {
	case b.ip.block != nil:
		b.ip.block.insertAt(b.ip.idx, op)
	case b.ip.module != nil:
		b.ip.module.insertGlobalAt(b.ip.idx, op)
	default:
		panic("ir: builder has no insertion point")
	}
	b.ip.idx++
}

// Convenience constructors --------------------------------------------------

// ConstantInt creates an arith constant of integer or index type.
func (b *Builder) ConstantInt(loc Loc, val int64, typ TypeID) *Op {
	return b.Create(loc, OpConstant, typ, nil, Attrs{IVal: val})
}

// ConstantFloat creates an arith constant of float type.
func (b *Builder) ConstantFloat(loc Loc, val float64, typ TypeID) *Op {
	return b.Create(loc, OpConstant, typ, nil, Attrs{FVal: val})
}
