package conversion

import (
	"spvlower/internal/ir"
	"spvlower/internal/target"
)

// ConversionTarget is the legality policy: per-dialect defaults plus
// per-kind dynamic predicates over an operation's concrete shape.
// Dynamic predicates take precedence over the dialect default.
type ConversionTarget struct {
	legalDialects map[ir.Dialect]bool
	dynamic       map[ir.OpKind]func(*ir.Op) bool
}

// NewConversionTarget returns a target where every dialect is illegal.
func NewConversionTarget() *ConversionTarget {
	return &ConversionTarget{
		legalDialects: make(map[ir.Dialect]bool),
		dynamic:       make(map[ir.OpKind]func(*ir.Op) bool),
	}
}

// AddLegalDialect marks a whole dialect as legal by default.
func (t *ConversionTarget) AddLegalDialect(d ir.Dialect) {
	t.legalDialects[d] = true
}

// AddDynamicallyLegal installs a shape-dependent predicate for kind.
func (t *ConversionTarget) AddDynamicallyLegal(kind ir.OpKind, pred func(*ir.Op) bool) {
	t.dynamic[kind] = pred
}

// IsLegal decides whether op already satisfies target constraints.
func (t *ConversionTarget) IsLegal(op *ir.Op) bool {
	if pred, ok := t.dynamic[op.Kind]; ok {
		return pred(op)
	}
	return t.legalDialects[op.Kind.Dialect()]
}

// NewSPIRVTarget builds the legality policy for one kernel module: the
// spirv dialect is legal, every host dialect must be rewritten, and
// elementwise CL ops are only legal at the allow-listed vector widths.
func NewSPIRVTarget(types *ir.Interner, env *target.Env) *ConversionTarget {
	if env == nil {
		env = target.Default()
	}
	t := NewConversionTarget()
	t.AddLegalDialect(ir.DialectSPIRV)

	genericWidth := func(op *ir.Op) bool {
		if op.Result == nil {
			return true
		}
		return env.AllowsVectorWidth(types.VectorWidth(op.Result.Type()))
	}
	// Elementwise math on large vectors needs splitting before the
	// target accepts it. Not an exhaustive list of affected ops.
	t.AddDynamicallyLegal(ir.SpvCLExp, genericWidth)
	t.AddDynamicallyLegal(ir.SpvCLFMax, genericWidth)

	return t
}
