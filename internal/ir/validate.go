package ir

import (
	"errors"
	"fmt"
)

// Validate checks kernel-module invariants: block termination, the
// def-dominates-use ordering, use-list consistency and symbol
// resolution. Returns a joined error listing every violation.
func Validate(m *KernelModule) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, g := range m.Globals {
		if len(g.Operands) > 0 {
			errs = append(errs, fmt.Errorf("global %s %q: module-scope ops take no operands", g.Kind, g.Attrs.Name))
		}
		if err := validateSymbolRefs(m, g); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range m.Funcs {
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *KernelModule, f *Func) error {
	var errs []error

	if len(f.Blocks) == 0 {
		return errors.New("no blocks")
	}

	// Positions of every def visible inside the function.
	type pos struct {
		block int
		idx   int
	}
	defs := make(map[*Value]pos)
	for _, p := range f.Params {
		defs[p] = pos{block: -1, idx: -1}
	}

	for bi, bl := range f.Blocks {
		for oi, op := range bl.Ops {
			if op.Kind.IsTerminator() && oi != len(bl.Ops)-1 {
				errs = append(errs, fmt.Errorf("bb%d: terminator %s not last", bi, op.Kind))
			}
			if op.Result != nil {
				defs[op.Result] = pos{block: bi, idx: oi}
			}
		}
		if bl.Terminator() == nil {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", bi))
		}
	}

	for bi, bl := range f.Blocks {
		for oi, op := range bl.Ops {
			for k, v := range op.Operands {
				dp, ok := defs[v]
				if !ok {
					errs = append(errs, fmt.Errorf("bb%d op %d (%s): operand %d defined outside function", bi, oi, op.Kind, k))
					continue
				}
				if dp.block == bi && dp.idx >= oi {
					errs = append(errs, fmt.Errorf("bb%d op %d (%s): operand %d does not dominate its use", bi, oi, op.Kind, k))
				}
				if dp.block > bi {
					errs = append(errs, fmt.Errorf("bb%d op %d (%s): operand %d defined in later block bb%d", bi, oi, op.Kind, k, dp.block))
				}
				if !hasUse(v, op) {
					errs = append(errs, fmt.Errorf("bb%d op %d (%s): use-list of operand %d is missing this op", bi, oi, op.Kind, k))
				}
			}
			for si, s := range op.Succs {
				if s == nil || s.fn != f {
					errs = append(errs, fmt.Errorf("bb%d op %d (%s): successor %d outside function", bi, oi, op.Kind, si))
				}
			}
			if err := validateSymbolRefs(m, op); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func hasUse(v *Value, op *Op) bool {
	for _, u := range v.uses {
		if u == op {
			return true
		}
	}
	return false
}

// validateSymbolRefs resolves symbol attributes against the nearest
// enclosing symbol table.
func validateSymbolRefs(m *KernelModule, op *Op) error {
	if m == nil {
		return nil
	}
	var errs []error
	if op.Attrs.Sym != "" && !m.HasSymbol(op.Attrs.Sym) {
		errs = append(errs, fmt.Errorf("%s: unresolved symbol %q", op.Kind, op.Attrs.Sym))
	}
	for _, s := range op.Attrs.Syms {
		if !m.HasSymbol(s) {
			errs = append(errs, fmt.Errorf("%s: unresolved constituent %q", op.Kind, s))
		}
	}
	// Launch sites name entities in another module's table; they only
	// occur in host functions, which are not validated against m.
	if op.Attrs.Callee != "" && op.Kind != OpLaunchKernel {
		if !m.HasSymbol(op.Attrs.Callee) {
			errs = append(errs, fmt.Errorf("%s: unresolved callee %q", op.Kind, op.Attrs.Callee))
		}
	}
	return errors.Join(errs...)
}

// ValidateProgram validates every kernel module of the program.
func ValidateProgram(p *Program) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, m := range p.Kernels {
		if err := Validate(m); err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", m.Name, err))
		}
	}
	return errors.Join(errs...)
}
