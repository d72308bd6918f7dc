package ir

// CloneModule deep-copies a kernel module: functions, blocks, ops and
// the symbol table. Value references are remapped into the clone, so
// the original and the clone share nothing mutable. The target-env
// descriptor is shared (it is read-only during conversion).
func CloneModule(m *KernelModule) *KernelModule {
	clone := NewKernelModule(m.Name)
	clone.Env = m.Env

	vmap := make(map[*Value]*Value)

	for _, g := range m.Globals {
		cg := cloneOp(g, vmap, nil)
		clone.insertGlobalAt(len(clone.Globals), cg)
	}

	for _, f := range m.Funcs {
		cf := &Func{
			Name:       f.Name,
			ResultType: f.ResultType,
			Kernel:     f.Kernel,
			LocalSize:  f.LocalSize,
		}
		for _, p := range f.Params {
			cp := NewParam(cf, p.Type())
			cf.Params = append(cf.Params, cp)
			vmap[p] = cp
		}
		bmap := make(map[*Block]*Block, len(f.Blocks))
		for _, bl := range f.Blocks {
			bmap[bl] = cf.AddBlock()
		}
		for _, bl := range f.Blocks {
			cb := bmap[bl]
			for _, op := range bl.Ops {
				cop := cloneOp(op, vmap, bmap)
				cb.insertAt(len(cb.Ops), cop)
			}
		}
		if err := clone.AddFunc(cf); err != nil {
			// The source table was consistent, so the clone's is too.
			panic(err)
		}
	}
	return clone
}

func cloneOp(op *Op, vmap map[*Value]*Value, bmap map[*Block]*Block) *Op {
	attrs := op.Attrs
	attrs.Syms = append([]string(nil), op.Attrs.Syms...)
	cop := &Op{
		Kind:  op.Kind,
		Attrs: attrs,
		Loc:   op.Loc,
	}
	for _, v := range op.Operands {
		cv, ok := vmap[v]
		if !ok {
			// Defs precede uses textually, so this indicates a
			// malformed source module.
			panic("ir: clone saw a use before its def")
		}
		cop.Operands = append(cop.Operands, cv)
		cv.addUse(cop)
	}
	for _, s := range op.Succs {
		cop.Succs = append(cop.Succs, bmap[s])
	}
	if op.Result != nil {
		cop.Result = &Value{def: cop, typ: op.Result.Type()}
		vmap[op.Result] = cop.Result
	}
	return cop
}
