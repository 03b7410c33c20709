// Package config handles remacs.toml session configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/jsjolen/remacs/bytecode"
	"github.com/jsjolen/remacs/vm"
	"github.com/rs/zerolog"
)

// FileName is the name of the configuration file looked up by FindAndLoad.
const FileName = "remacs.toml"

// Config represents a remacs.toml configuration.
type Config struct {
	Limits    Limits    `toml:"limits"`
	Log       Log       `toml:"log"`
	Trace     Trace     `toml:"trace"`
	Assembler Assembler `toml:"assembler"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Limits bounds the resources a session may use.
type Limits struct {
	MaxEvalDepth         int `toml:"max-eval-depth"`
	MaxSpecpdlSize       int `toml:"max-specpdl-size"`
	ContextCheckInterval int `toml:"context-check-interval"`
}

// Log configures session diagnostics.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Trace configures the execution tracer.
type Trace struct {
	Enabled        bool   `toml:"enabled"`
	Steps          string `toml:"steps"`
	SampleInterval int    `toml:"sample-interval"`
}

// Assembler configures the text assembler.
type Assembler struct {
	DefaultMaxDepth int `toml:"default-max-depth"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Limits: Limits{
			MaxEvalDepth:         vm.DefaultMaxEvalDepth,
			MaxSpecpdlSize:       vm.DefaultMaxSpecpdlSize,
			ContextCheckInterval: vm.DefaultContextCheckInterval,
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
		Trace: Trace{
			Steps:          "all",
			SampleInterval: 1000,
		},
		Assembler: Assembler{
			DefaultMaxDepth: bytecode.DefaultMaxDepth,
		},
	}
}

// Load parses the configuration file at path. Settings missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes and validates a configuration document.
func Parse(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a remacs.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Limits.MaxEvalDepth <= 0 {
		result = multierror.Append(result, fmt.Errorf("limits.max-eval-depth must be positive (got %d)", c.Limits.MaxEvalDepth))
	}
	if c.Limits.MaxSpecpdlSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("limits.max-specpdl-size must be positive (got %d)", c.Limits.MaxSpecpdlSize))
	}
	if c.Limits.ContextCheckInterval < 0 {
		result = multierror.Append(result, fmt.Errorf("limits.context-check-interval must not be negative (got %d)", c.Limits.ContextCheckInterval))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		result = multierror.Append(result, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if _, err := c.stepMode(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Trace.Steps == "sampled" && c.Trace.SampleInterval <= 0 {
		result = multierror.Append(result, fmt.Errorf("trace.sample-interval must be positive (got %d)", c.Trace.SampleInterval))
	}
	if c.Assembler.DefaultMaxDepth <= 0 {
		result = multierror.Append(result, fmt.Errorf("assembler.default-max-depth must be positive (got %d)", c.Assembler.DefaultMaxDepth))
	}
	return result.ErrorOrNil()
}

func (c *Config) stepMode() (vm.StepMode, error) {
	switch c.Trace.Steps {
	case "all":
		return vm.StepAll, nil
	case "sampled":
		return vm.StepSampled, nil
	case "none":
		return vm.StepNone, nil
	}
	return 0, fmt.Errorf("trace.steps: unknown mode %q", c.Trace.Steps)
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if c.Trace.Enabled && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	if c.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// SessionOptions returns the vm options selected by the configuration.
// The logger is attached to the session and, when tracing is enabled,
// receives the trace records.
func (c *Config) SessionOptions(logger zerolog.Logger) ([]vm.Option, error) {
	opts := []vm.Option{
		vm.WithLogger(logger),
		vm.WithMaxEvalDepth(c.Limits.MaxEvalDepth),
		vm.WithMaxSpecpdlSize(c.Limits.MaxSpecpdlSize),
		vm.WithContextCheckInterval(c.Limits.ContextCheckInterval),
	}
	if c.Trace.Enabled {
		mode, err := c.stepMode()
		if err != nil {
			return nil, err
		}
		tracer := vm.NewTraceObserver(logger, mode)
		if mode == vm.StepSampled {
			tracer.WithSampleInterval(c.Trace.SampleInterval)
		}
		opts = append(opts, vm.WithObserver(tracer))
	}
	return opts, nil
}
