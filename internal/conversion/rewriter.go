package conversion

import (
	"fmt"

	"spvlower/internal/ir"
)

// Rewriter is the mutation surface handed to rewrite patterns. It
// wraps a builder positioned at the matched op and enforces the
// replace-then-erase discipline.
type Rewriter struct {
	b  *ir.Builder
	tc *TypeConverter
}

// NewRewriter builds a rewriter over the given builder and converter.
func NewRewriter(b *ir.Builder, tc *TypeConverter) *Rewriter {
	return &Rewriter{b: b, tc: tc}
}

// Builder exposes the underlying builder for op creation.
func (rw *Rewriter) Builder() *ir.Builder { return rw.b }

// Types returns the type interner.
func (rw *Rewriter) Types() *ir.Interner { return rw.b.Types() }

// TypeConverter returns the host-to-target type mapping in effect.
func (rw *Rewriter) TypeConverter() *TypeConverter { return rw.tc }

// ReplaceOp re-routes all uses of op's result to repl and erases op.
func (rw *Rewriter) ReplaceOp(op *ir.Op, repl *ir.Value) error {
	if op.Result != nil {
		if repl == nil {
			return fmt.Errorf("conversion: replacing %s requires a replacement value", op.Kind)
		}
		op.Result.ReplaceAllUses(repl)
	}
	return op.Erase()
}

// EraseOp removes a result-less op (or one whose result is unused).
func (rw *Rewriter) EraseOp(op *ir.Op) error {
	return op.Erase()
}
