package ir

import (
	"fmt"

	"spvlower/internal/target"
)

// KernelModule is a named container of kernel functions plus
// module-scope operations (globals, constant-pool entries). It owns a
// symbol table mapping unique names to those entities.
type KernelModule struct {
	Name string
	// Env is the target-capability attribute, nil when the module
	// relies on the default target.
	Env *target.Env
	// Globals holds module-scope ops in definition order.
	Globals []*Op
	Funcs   []*Func

	// TargetForm is set once the module has been fully converted.
	TargetForm bool

	symbols map[string]any // *Op or *Func
}

// NewKernelModule constructs an empty kernel module.
func NewKernelModule(name string) *KernelModule {
	return &KernelModule{
		Name:    name,
		symbols: make(map[string]any),
	}
}

// AddFunc inserts a function and registers its symbol.
func (m *KernelModule) AddFunc(f *Func) error {
	if err := m.defineSymbol(f.Name, f); err != nil {
		return err
	}
	f.module = m
	m.Funcs = append(m.Funcs, f)
	return nil
}

// HasSymbol reports whether name is taken in the module's table.
func (m *KernelModule) HasSymbol(name string) bool {
	_, ok := m.symbols[name]
	return ok
}

// LookupSymbol resolves name to a module-scope op or function.
func (m *KernelModule) LookupSymbol(name string) (any, bool) {
	v, ok := m.symbols[name]
	return v, ok
}

// LookupGlobal resolves name to a module-scope op.
func (m *KernelModule) LookupGlobal(name string) (*Op, bool) {
	v, ok := m.symbols[name]
	if !ok {
		return nil, false
	}
	op, ok := v.(*Op)
	return op, ok
}

func (m *KernelModule) defineSymbol(name string, entity any) error {
	if name == "" {
		return fmt.Errorf("ir: empty symbol name in module %q", m.Name)
	}
	if _, taken := m.symbols[name]; taken {
		return fmt.Errorf("ir: duplicate symbol %q in module %q", name, m.Name)
	}
	if m.symbols == nil {
		m.symbols = make(map[string]any)
	}
	m.symbols[name] = entity
	return nil
}

// insertGlobalAt places op at idx in the globals list and registers
// its symbol when it defines one. Symbol collisions panic: callers
// generate fresh names through the symbol registry first.
func (m *KernelModule) insertGlobalAt(idx int, op *Op) {
	if op.Attrs.Name != "" {
		if err := m.defineSymbol(op.Attrs.Name, op); err != nil {
			panic(err)
		}
	}
	if idx < 0 || idx > len(m.Globals) {
		idx = len(m.Globals)
	}
	m.Globals = append(m.Globals, nil)
	copy(m.Globals[idx+1:], m.Globals[idx:])
	m.Globals[idx] = op
	op.module = m
	op.block = nil
}

func (m *KernelModule) removeGlobal(op *Op) {
	for i, g := range m.Globals {
		if g == op {
			m.Globals = append(m.Globals[:i], m.Globals[i+1:]...)
			break
		}
	}
	// Symbol-table entries are never deleted during conversion; the
	// table keeps the name reserved even for erased ops.
	op.module = nil
}

// NearestSymbolTable returns the symbol table enclosing op. Functions
// do not own tables, so this is always the kernel module.
func NearestSymbolTable(op *Op) *KernelModule {
	return op.Module()
}

// Program is the top-level container: host functions (which reference
// kernel modules from launch sites) plus the kernel modules themselves.
type Program struct {
	Types   *Interner
	Funcs   []*Func
	Kernels []*KernelModule
}

// NewProgram constructs an empty program with a fresh type interner.
func NewProgram() *Program {
	return &Program{Types: NewInterner()}
}

// AddKernel appends a kernel module.
func (p *Program) AddKernel(m *KernelModule) {
	p.Kernels = append(p.Kernels, m)
}

// UnconvertedKernels returns the kernel modules still in host form, by
// identity rather than traversal position.
func (p *Program) UnconvertedKernels() []*KernelModule {
	var out []*KernelModule
	for _, m := range p.Kernels {
		if !m.TargetForm {
			out = append(out, m)
		}
	}
	return out
}

// InsertKernelAfter places clone immediately after orig in the kernel
// list, preserving the original's position.
func (p *Program) InsertKernelAfter(orig, clone *KernelModule) {
	for i, m := range p.Kernels {
		if m == orig {
			p.Kernels = append(p.Kernels, nil)
			copy(p.Kernels[i+2:], p.Kernels[i+1:])
			p.Kernels[i+1] = clone
			return
		}
	}
	p.Kernels = append(p.Kernels, clone)
}
