// Package conversion lowers kernel modules from the host GPU-style
// dialects into the target spirv dialect.
//
// The pass clones each kernel module before converting it: the
// original stays in the program because launch sites elsewhere still
// reference it. Conversion is all-or-nothing per module; the first
// module that cannot be fully legalized fails the pass with no partial
// commit of that module.
package conversion

import (
	"context"
	"fmt"

	"spvlower/internal/ir"
	"spvlower/internal/target"
)

// Options configure the lowering pass at construction time.
type Options struct {
	// MapMemorySpace runs the memory-space-to-storage-class remap as a
	// sub-pass over each clone before anything else.
	MapMemorySpace bool
}

// Pass is the GPU-to-SPIRV lowering pass.
type Pass struct {
	opts Options
}

// NewPass constructs the pass.
func NewPass(opts Options) *Pass {
	return &Pass{opts: opts}
}

// Name identifies the pass in pipeline output.
func (p *Pass) Name() string { return "lower-gpu-to-spirv" }

// Run converts every kernel module of the program. Modules are
// processed in discovery order but independently; clones of modules
// converted before a failure remain in the program.
func (p *Pass) Run(ctx context.Context, prog *ir.Program) error {
	// Snapshot by identity: insertion of converted clones must not
	// feed the discovery loop.
	kernels := prog.UnconvertedKernels()

	for _, orig := range kernels {
		if err := ctx.Err(); err != nil {
			return err
		}
		clone, err := p.convertModule(prog, orig)
		if err != nil {
			return fmt.Errorf("module %s: %w", orig.Name, err)
		}
		clone.TargetForm = true
		prog.InsertKernelAfter(orig, clone)
	}
	return nil
}

func (p *Pass) convertModule(prog *ir.Program, orig *ir.KernelModule) (*ir.KernelModule, error) {
	clone := ir.CloneModule(orig)

	if p.opts.MapMemorySpace {
		if err := RemapMemorySpaces(clone, prog.Types); err != nil {
			return nil, err
		}
	}

	env := clone.Env
	if env == nil {
		env = target.Default()
	}
	tc := NewTypeConverter(prog.Types, env, TypeConverterOptions{
		Use64BitIndex: env.AddressingBits == 64,
	})
	b := ir.NewBuilder(prog.Types)

	// Peephole fusion runs before pattern-based conversion; absence of
	// a match is not an error.
	FuseBF16Casts(clone, b)

	ct := NewSPIRVTarget(prog.Types, env)
	// The fused conversions are the scanner's own output: they are
	// unconditionally legal and must never be re-matched.
	ct.AddDynamicallyLegal(ir.SpvConvertFToBF16, func(*ir.Op) bool { return true })
	ct.AddDynamicallyLegal(ir.SpvConvertBF16ToF, func(*ir.Op) bool { return true })

	patterns := NewPatternSet()
	PopulateArithToSPIRVPatterns(patterns)
	PopulateMathToSPIRVPatterns(patterns)
	PopulateMemRefToSPIRVPatterns(patterns)
	PopulateFuncToSPIRVPatterns(patterns)
	PopulateControlFlowToSPIRVPatterns(patterns)
	PopulateVectorToSPIRVPatterns(patterns)
	PopulateGPUToSPIRVPatterns(patterns)
	PopulatePrintfPatterns(patterns)

	if err := ConvertFunctionSignatures(clone, tc); err != nil {
		return nil, err
	}

	rw := NewRewriter(b, tc)
	if err := ApplyFullConversion(clone, ct, patterns, rw); err != nil {
		return nil, err
	}
	return clone, nil
}
