package ir

// Block is an ordered list of operations inside a function body. The
// last op of a complete block is a terminator.
type Block struct {
	Ops []*Op

	fn *Func
}

// Func returns the owning function.
func (b *Block) Func() *Func { return b.fn }

// Index returns the block's position within its function, or -1.
func (b *Block) Index() int {
	if b.fn == nil {
		return -1
	}
	for i, bb := range b.fn.Blocks {
		if bb == b {
			return i
		}
	}
	return -1
}

// Terminator returns the block's final op when it is a terminator.
func (b *Block) Terminator() *Op {
	if len(b.Ops) == 0 {
		return nil
	}
	last := b.Ops[len(b.Ops)-1]
	if !last.Kind.IsTerminator() {
		return nil
	}
	return last
}

// indexOf returns op's position in the block, or -1.
func (b *Block) indexOf(op *Op) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (b *Block) insertAt(idx int, op *Op) {
	if idx < 0 || idx > len(b.Ops) {
		idx = len(b.Ops)
	}
	b.Ops = append(b.Ops, nil)
	copy(b.Ops[idx+1:], b.Ops[idx:])
	b.Ops[idx] = op
	op.block = b
	op.module = nil
}

func (b *Block) removeOp(op *Op) {
	idx := b.indexOf(op)
	if idx < 0 {
		return
	}
	b.Ops = append(b.Ops[:idx], b.Ops[idx+1:]...)
	op.block = nil
}
