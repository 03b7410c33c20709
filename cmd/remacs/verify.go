package main

import (
	"fmt"

	"github.com/jsjolen/remacs/bytecode"
	"github.com/spf13/cobra"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check a procedure for decode, operand and branch errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, data, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			bc, err := loadProcedure(path, data, cfg)
			if err != nil {
				return err
			}
			if err := bytecode.Verify(bc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}
