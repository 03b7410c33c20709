package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jsjolen/remacs/bytecode"
	"github.com/jsjolen/remacs/dis"
	"github.com/jsjolen/remacs/object"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file] [args...]",
		Short: "Run a procedure from assembly text or an image",
		Long: `Run a procedure from assembly text or an image.

Arguments following the file are read as Lisp values and passed to the
procedure. With --code or --stdin every positional argument is a value.`,
		RunE: runHandler,
	}
	addInputFlags(cmd)
	cmd.Flags().String("func", "", "Run the named procedure from the constants vector")
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	cmd.Flags().Bool("timing", false, "Show execution time")
	cmd.Flags().Bool("no-verify", false, "Skip static verification")
	return cmd
}

func runHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, data, rest, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	bc, err := loadProcedure(path, data, cfg)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("func"); name != "" {
		if bc, err = findFunction(bc, name); err != nil {
			return err
		}
	}
	if noVerify, _ := cmd.Flags().GetBool("no-verify"); !noVerify {
		if err := bytecode.Verify(bc); err != nil {
			return err
		}
	}
	fnArgs := make([]object.Object, 0, len(rest))
	for _, arg := range rest {
		value, err := bytecode.ReadString(arg, object.DefaultObarray())
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		fnArgs = append(fnArgs, value)
	}

	session, err := newSession(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	start := time.Now()
	result, err := session.Call(cmd.Context(), bc, fnArgs)
	if err != nil {
		return err
	}
	dt := time.Since(start)

	format, _ := cmd.Flags().GetString("output")
	output, err := formatOutput(result, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	if timing, _ := cmd.Flags().GetBool("timing"); timing {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", dt)
	}
	return nil
}

func formatOutput(result object.Object, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return object.Inspect(result), nil
	case "json":
		output, err := json.MarshalIndent(result.Interface(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(output), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func findFunction(bc *object.ByteCode, name string) (*object.ByteCode, error) {
	for _, fn := range dis.Functions(bc) {
		if fn.Name() == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("function %q not found", name)
}
