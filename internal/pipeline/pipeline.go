// Package pipeline orchestrates program-transformation passes.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"spvlower/internal/ir"
)

// Pass is one program transformation. Run mutates the program in place
// and fails fast: a returned error aborts the remaining passes.
type Pass interface {
	Name() string
	Run(ctx context.Context, prog *ir.Program) error
}

// Request configures one pipeline execution.
type Request struct {
	File     string
	Passes   []Pass
	Progress ProgressSink
	Validate bool
}

// Result captures pipeline timings.
type Result struct {
	Timings Timings
}

// Run executes the passes of the request in order over prog.
func Run(ctx context.Context, prog *ir.Program, req *Request) (Result, error) {
	var result Result
	if req == nil {
		return result, fmt.Errorf("missing pipeline request")
	}
	if prog == nil {
		return result, fmt.Errorf("missing program")
	}

	if req.Validate {
		start := time.Now()
		emit(req.Progress, req.File, StageValidate, StatusWorking, nil, 0)
		if err := ir.ValidateProgram(prog); err != nil {
			emit(req.Progress, req.File, StageValidate, StatusError, err, time.Since(start))
			return result, fmt.Errorf("input validation: %w", err)
		}
		result.Timings.Set(StageValidate, time.Since(start))
		emit(req.Progress, req.File, StageValidate, StatusDone, nil, result.Timings.Duration(StageValidate))
	}

	lowerStart := time.Now()
	emit(req.Progress, req.File, StageLower, StatusWorking, nil, 0)
	for _, pass := range req.Passes {
		if err := ctx.Err(); err != nil {
			emit(req.Progress, req.File, StageLower, StatusError, err, time.Since(lowerStart))
			return result, err
		}
		if err := pass.Run(ctx, prog); err != nil {
			err = fmt.Errorf("pass %s: %w", pass.Name(), err)
			emit(req.Progress, req.File, StageLower, StatusError, err, time.Since(lowerStart))
			return result, err
		}
	}
	result.Timings.Set(StageLower, time.Since(lowerStart))
	emit(req.Progress, req.File, StageLower, StatusDone, nil, result.Timings.Duration(StageLower))

	return result, nil
}

func emit(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
