package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jsjolen/remacs/bytecode"
	"github.com/jsjolen/remacs/config"
	"github.com/jsjolen/remacs/object"
	"github.com/spf13/cobra"
)

// ImageExt is the file extension of serialized procedure images.
const ImageExt = ".elcb"

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Assembly text to use instead of a file")
	cmd.Flags().Bool("stdin", false, "Read the procedure from stdin")
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// readInput determines the procedure source. There are three possibilities:
// --code <text>, --stdin, or a path as args[0]. It returns the arguments
// left over after the path.
func readInput(cmd *cobra.Command, args []string) (string, []byte, []string, error) {
	codeFlagSet := flagChanged(cmd, "code")
	stdinFlagSet := flagChanged(cmd, "stdin")
	if codeFlagSet && stdinFlagSet {
		return "", nil, nil, errors.New("multiple input sources specified")
	}
	if codeFlagSet {
		code, _ := cmd.Flags().GetString("code")
		return "", []byte(code), args, nil
	}
	if stdinFlagSet {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, nil, err
		}
		return "", data, args, nil
	}
	if len(args) == 0 {
		return "", nil, nil, errors.New("no input provided")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, nil, err
	}
	return args[0], data, args[1:], nil
}

func isImage(path string, data []byte) bool {
	return filepath.Ext(path) == ImageExt || !utf8.Valid(data)
}

// loadProcedure decodes an image or assembles text, depending on the input.
func loadProcedure(path string, data []byte, cfg *config.Config) (*object.ByteCode, error) {
	if isImage(path, data) {
		return bytecode.Unmarshal(data, object.DefaultObarray())
	}
	return bytecode.ParseString(string(data), object.DefaultObarray(),
		bytecode.WithDefaultMaxDepth(cfg.Assembler.DefaultMaxDepth))
}
