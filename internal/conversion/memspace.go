package conversion

import (
	"errors"
	"fmt"

	"spvlower/internal/ir"
)

// ErrRemapFailed reports that memory-space remapping could not assign
// a storage class to every memory reference in the module.
var ErrRemapFailed = errors.New("conversion: memory-space remapping failed")

// RemapMemorySpaces is the independent sub-pass that retypes every
// memref in the module into a target pointer of the storage class its
// memory space maps to. It is fully converting: a single reference
// with an unmappable space fails the whole remap, fail-fast, before
// any pattern-based conversion is attempted.
func RemapMemorySpaces(mod *ir.KernelModule, types *ir.Interner) error {
	remap := func(id ir.TypeID) (ir.TypeID, bool, error) {
		t, ok := types.Lookup(id)
		if !ok || t.Kind != ir.KindMemRef {
			return id, false, nil
		}
		class, err := StorageClassForMemorySpace(t.Space)
		if err != nil {
			return ir.NoTypeID, false, fmt.Errorf("%w: %w", ErrRemapFailed, err)
		}
		return types.Intern(ir.MakePointer(t.Elem, class)), true, nil
	}

	for _, f := range mod.Funcs {
		for i, p := range f.Params {
			id, changed, err := remap(p.Type())
			if err != nil {
				return fmt.Errorf("function %s: parameter %d: %w", f.Name, i, err)
			}
			if changed {
				p.SetType(id)
			}
		}
		var walkErr error
		ir.WalkFunc(f, func(op *ir.Op) {
			if walkErr != nil || op.Result == nil {
				return
			}
			id, changed, err := remap(op.Result.Type())
			if err != nil {
				walkErr = fmt.Errorf("function %s: %s: %w", f.Name, op.Kind, err)
				return
			}
			if changed {
				op.Result.SetType(id)
			}
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}
