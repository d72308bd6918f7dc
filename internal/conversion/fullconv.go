package conversion

import (
	"errors"
	"fmt"

	"spvlower/internal/ir"
)

// ErrUnconvertible reports that full conversion could not make every
// operation of a module legal.
var ErrUnconvertible = errors.New("conversion: module cannot be fully legalized")

// maxSweeps bounds pattern application; conversion of a well-formed
// module converges in a handful of sweeps, so hitting the cap means a
// pattern set that cycles.
const maxSweeps = 64

// ApplyFullConversion repeatedly applies patterns to illegal ops until
// the whole module is legal. It is all-or-nothing: any op that stays
// illegal with no applicable pattern fails the conversion.
func ApplyFullConversion(mod *ir.KernelModule, ct *ConversionTarget, patterns *PatternSet, rw *Rewriter) error {
	for sweep := 0; sweep < maxSweeps; sweep++ {
		illegal := collectIllegal(mod, ct)
		if len(illegal) == 0 {
			return nil
		}

		changed := false
		var stuck *ir.Op
		for _, op := range illegal {
			if op.Erased() {
				// A previous rewrite in this sweep consumed it.
				changed = true
				continue
			}
			applied, err := applyAny(op, patterns, rw)
			if err != nil {
				return fmt.Errorf("%w: rewriting %s at %s: %w", ErrUnconvertible, op.Kind, op.Loc, err)
			}
			if applied {
				changed = true
			} else if stuck == nil {
				stuck = op
			}
		}

		if !changed {
			return fmt.Errorf("%w: no pattern applies to illegal op %s at %s", ErrUnconvertible, stuck.Kind, stuck.Loc)
		}
	}
	return fmt.Errorf("%w: pattern application did not converge after %d sweeps", ErrUnconvertible, maxSweeps)
}

// collectIllegal snapshots the illegal ops of the module. Rewrites
// happen against the snapshot, never during traversal.
func collectIllegal(mod *ir.KernelModule, ct *ConversionTarget) []*ir.Op {
	var illegal []*ir.Op
	ir.WalkModule(mod, func(op *ir.Op) {
		if !ct.IsLegal(op) {
			illegal = append(illegal, op)
		}
	})
	return illegal
}

func applyAny(op *ir.Op, patterns *PatternSet, rw *Rewriter) (bool, error) {
	restore := rw.Builder().GuardInsertion()
	defer restore()

	for _, p := range patterns.For(op.Kind) {
		rw.Builder().SetInsertionPointBefore(op)
		ok, err := p.MatchAndRewrite(op, rw)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
