package main

import (
	"fmt"
	"io"
	"time"

	"spvlower/internal/pipeline"
)

func printStageTimings(out io.Writer, file string, timings pipeline.Timings) {
	if out == nil {
		return
	}
	var printErr error
	if timings.Has(pipeline.StageValidate) {
		_, printErr = fmt.Fprintf(out, "%s: validated %.1f ms\n", file, toMillis(timings.Duration(pipeline.StageValidate)))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(pipeline.StageLower) {
		_, printErr = fmt.Fprintf(out, "%s: lowered %.1f ms\n", file, toMillis(timings.Duration(pipeline.StageLower)))
		if printErr != nil {
			panic(printErr)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
