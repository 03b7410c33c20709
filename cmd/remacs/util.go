package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = formatError(msg)
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

// formatError renders uncaught exits the way a Lisp user reads them and
// fatal errors with their procedure stack.
func formatError(err error) string {
	var sig *object.Signal
	var thr *object.Throw
	var vmErr *errz.VMError
	switch {
	case errors.As(err, &sig):
		return fmt.Sprintf("%s %s", sig.Error(), object.Inspect(sig.Payload()))
	case errors.As(err, &thr):
		return thr.Error()
	case errors.As(err, &vmErr):
		return vmErr.FriendlyErrorMessage()
	}
	return err.Error()
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") || !isTerminalIO() {
		color.NoColor = true
	}
}
