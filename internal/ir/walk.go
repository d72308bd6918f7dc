package ir

// WalkFunc visits every op of f in textual order. The op list is
// snapshotted per block, so callers may create ops during the walk;
// deletions must still be deferred until the walk completes.
func WalkFunc(f *Func, visit func(*Op)) {
	for _, bl := range f.Blocks {
		ops := make([]*Op, len(bl.Ops))
		copy(ops, bl.Ops)
		for _, op := range ops {
			if !op.erased {
				visit(op)
			}
		}
	}
}

// WalkModule visits module-scope ops, then every op of every function.
func WalkModule(m *KernelModule, visit func(*Op)) {
	globals := make([]*Op, len(m.Globals))
	copy(globals, m.Globals)
	for _, g := range globals {
		if !g.erased {
			visit(g)
		}
	}
	for _, f := range m.Funcs {
		WalkFunc(f, visit)
	}
}
