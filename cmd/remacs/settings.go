package main

import (
	"io"

	"github.com/jsjolen/remacs/builtins"
	"github.com/jsjolen/remacs/config"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/vm"
	"github.com/spf13/viper"
)

// loadConfig reads the configuration file and applies flag and environment
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	if viper.GetBool("trace") {
		cfg.Trace.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cfg *config.Config, logOutput io.Writer) (*vm.Session, error) {
	logger, err := cfg.Logger(logOutput)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SessionOptions(logger)
	if err != nil {
		return nil, err
	}
	builtins.Install(object.DefaultObarray())
	return vm.New(opts...), nil
}
