package conversion

import "spvlower/internal/ir"

// FuseBF16Casts walks every kernel function and fuses the two
// symmetric bf16 cast chains into single target-native conversions:
//
//	arith.truncf (f32 -> bf16) ; arith.bitcast (bf16 -> i16)
//	  => spirv.INTEL.ConvertFToBF16 (f32 -> i16)
//	arith.bitcast (i16 -> bf16) ; arith.extf (bf16 -> f32)
//	  => spirv.INTEL.ConvertBF16ToF (i16 -> f32)
//
// Scalar and vector shapes are handled identically (element count
// preserved). Matches are collected and erased after the walk; erasing
// mid-traversal would invalidate iteration.
func FuseBF16Casts(mod *ir.KernelModule, b *ir.Builder) {
	types := b.Types()
	bt := types.Builtins()

	var eraseOps []*ir.Op
	restore := b.GuardInsertion()
	defer restore()

	for _, f := range mod.Funcs {
		if !f.Kernel {
			continue
		}
		ir.WalkFunc(f, func(op *ir.Op) {
			switch op.Kind {
			case ir.OpBitcast:
				// Narrowing chain, rooted at the consuming bitcast.
				if !elementIs(types, op.Result.Type(), bt.I16) {
					return
				}
				producer := op.Operands[0].Def()
				if producer == nil || producer.Kind != ir.OpTruncF {
					return
				}
				if !elementIs(types, producer.Result.Type(), bt.BF16) {
					return
				}
				if !elementIs(types, producer.Operands[0].Type(), bt.F32) {
					return
				}
				if !sameCount(types, op.Result.Type(), producer.Operands[0].Type()) {
					return
				}
				b.SetInsertionPointBefore(producer)
				fused := b.Create(producer.Loc, ir.SpvConvertFToBF16,
					types.SameShape(producer.Operands[0].Type(), bt.I16),
					[]*ir.Value{producer.Operands[0]}, ir.Attrs{})
				op.Result.ReplaceAllUses(fused.Result)
				eraseOps = append(eraseOps, op, producer)

			case ir.OpExtF:
				// Widening chain, rooted at the consuming extension.
				if !elementIs(types, op.Result.Type(), bt.F32) {
					return
				}
				producer := op.Operands[0].Def()
				if producer == nil || producer.Kind != ir.OpBitcast {
					return
				}
				if !elementIs(types, producer.Result.Type(), bt.BF16) {
					return
				}
				if !elementIs(types, producer.Operands[0].Type(), bt.I16) {
					return
				}
				if !sameCount(types, op.Result.Type(), producer.Operands[0].Type()) {
					return
				}
				b.SetInsertionPointBefore(producer)
				fused := b.Create(producer.Loc, ir.SpvConvertBF16ToF,
					types.SameShape(producer.Operands[0].Type(), bt.F32),
					[]*ir.Value{producer.Operands[0]}, ir.Attrs{})
				op.Result.ReplaceAllUses(fused.Result)
				eraseOps = append(eraseOps, op, producer)
			}
		})
	}

	// Deferred erasure: the consumer goes first so the producer's
	// result is use-free by the time it is erased.
	for _, op := range eraseOps {
		if err := op.Erase(); err != nil {
			// The producer result may still feed other consumers; in
			// that case it legitimately survives the fusion.
			continue
		}
	}
}

// elementIs reports whether id is elem or a vector of elem.
func elementIs(types *ir.Interner, id, elem ir.TypeID) bool {
	return types.Elem(id) == elem
}

// sameCount reports whether two types have the same vector width
// (scalars count as width 1).
func sameCount(types *ir.Interner, a, b ir.TypeID) bool {
	return types.VectorWidth(a) == types.VectorWidth(b)
}
