package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "remacs",
		Short:         "Run, assemble and inspect byte-code procedures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			processGlobalFlags()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a remacs.toml file")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console, json)")
	flags.Bool("trace", false, "Log every executed instruction")
	viper.BindPFlags(flags)
	viper.SetEnvPrefix("remacs")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(
		newRunCommand(),
		newAsmCommand(),
		newDisCommand(),
		newVerifyCommand(),
		newVersionCommand(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fatal(err)
	}
}
