package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spvlower/internal/conversion"
	"spvlower/internal/irpack"
	"spvlower/internal/pipeline"
	"spvlower/internal/target"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <file>...",
	Short: "Lower kernel modules to the SPIR-V dialect",
	Long:  "Lower every kernel module of each program file into its SPIR-V dialect form, leaving the host side untouched.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  convertExecution,
}

func init() {
	convertCmd.Flags().Bool("map-memory-space", false, "remap memref memory spaces to storage classes before lowering")
	convertCmd.Flags().String("target", "", "path to a target descriptor TOML overriding module targets")
	convertCmd.Flags().Int("jobs", 0, "maximum parallel file conversions (0 = GOMAXPROCS)")
	convertCmd.Flags().StringP("out-dir", "o", "", "directory for converted programs (default: alongside inputs)")
	convertCmd.Flags().Bool("no-validate", false, "skip input validation")
}

func convertExecution(cmd *cobra.Command, args []string) error {
	mapMemorySpace, err := cmd.Flags().GetBool("map-memory-space")
	if err != nil {
		return err
	}
	targetPath, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return err
	}
	noValidate, err := cmd.Flags().GetBool("no-validate")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	var env *target.Env
	if targetPath != "" {
		env, err = target.LoadFile(targetPath)
		if err != nil {
			return fmt.Errorf("loading target descriptor: %w", err)
		}
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))

	timings := make([]pipeline.Timings, len(args))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			prog, err := irpack.ReadFile(path)
			if err != nil {
				return err
			}
			if env != nil {
				for _, m := range prog.Kernels {
					m.Env = env
				}
			}

			req := pipeline.Request{
				File:     path,
				Passes:   []pipeline.Pass{conversion.NewPass(conversion.Options{MapMemorySpace: mapMemorySpace})},
				Validate: !noValidate,
			}
			result, err := pipeline.Run(gctx, prog, &req)
			timings[i] = result.Timings
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			out := outputPath(path, outDir)
			if err := irpack.WriteFile(out, prog); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !quiet {
				_, printErr := fmt.Fprintf(cmd.OutOrStdout(), "lowered %s\n", out)
				if printErr != nil {
					return printErr
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if showTimings {
		for i, path := range args {
			printStageTimings(cmd.OutOrStdout(), path, timings[i])
		}
	}
	return nil
}

// outputPath derives the destination for a converted program:
// <name>.spv.irpk alongside the input, or under outDir when set.
func outputPath(input, outDir string) string {
	base := filepath.Base(input)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	name := base + ".spv.irpk"
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}
