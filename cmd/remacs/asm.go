package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsjolen/remacs/bytecode"
	"github.com/spf13/cobra"
)

func newAsmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm [file]",
		Short: "Assemble text into a verified procedure image",
		RunE:  asmHandler,
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Output path (default: input path with "+ImageExt+")")
	return cmd
}

func asmHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, data, rest, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		if path == "" {
			return errors.New("--out is required when reading from --code or --stdin")
		}
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ImageExt
	}
	if isImage(path, data) {
		return fmt.Errorf("%s is already an image", path)
	}
	bc, err := loadProcedure(path, data, cfg)
	if err != nil {
		return err
	}
	if err := bytecode.Verify(bc); err != nil {
		return err
	}
	image, err := bytecode.Marshal(bc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, image, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
