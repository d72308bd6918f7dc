package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spvlower/internal/ir"
	"spvlower/internal/irpack"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a program file in textual form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kernelsOnly, err := cmd.Flags().GetBool("kernels")
		if err != nil {
			return err
		}

		prog, err := irpack.ReadFile(args[0])
		if err != nil {
			return err
		}

		if kernelsOnly {
			for _, m := range prog.Kernels {
				if err := ir.DumpModule(cmd.OutOrStdout(), prog.Types, m, ir.DumpOptions{}); err != nil {
					return fmt.Errorf("failed to dump module %s: %w", m.Name, err)
				}
			}
			return nil
		}
		if err := ir.DumpProgram(cmd.OutOrStdout(), prog, ir.DumpOptions{}); err != nil {
			return fmt.Errorf("failed to dump program: %w", err)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().Bool("kernels", false, "dump only kernel modules")
}
