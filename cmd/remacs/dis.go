package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jsjolen/remacs/dis"
	"github.com/jsjolen/remacs/object"
	"github.com/spf13/cobra"
)

func newDisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a procedure",
		RunE:  disHandler,
	}
	addInputFlags(cmd)
	cmd.Flags().String("func", "", "Function to disassemble")
	cmd.Flags().Bool("all", false, "Also disassemble nested procedures")
	cmd.Flags().Bool("constants", false, "Print the constants vector")
	return cmd
}

func disHandler(cmd *cobra.Command, args []string) error {
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

	// If a function name was provided, disassemble its code only
	if name, _ := cmd.Flags().GetString("func"); name != "" {
		if bc, err = findFunction(bc, name); err != nil {
			return err
		}
	}
	targets := []*object.ByteCode{bc}
	if all, _ := cmd.Flags().GetBool("all"); all {
		targets = append(targets, dis.Functions(bc)...)
	}
	showConstants, _ := cmd.Flags().GetBool("constants")
	w := cmd.OutOrStdout()
	for i, fn := range targets {
		if len(targets) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, color.New(color.Bold).Sprint(fn.Inspect()))
		}
		instructions, err := dis.Disassemble(fn)
		if err != nil {
			return err
		}
		dis.Print(instructions, w)
		if showConstants && len(fn.Constants()) > 0 {
			dis.PrintConstants(fn, w)
		}
	}
	return nil
}
