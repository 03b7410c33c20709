package vm

import (
	"github.com/jsjolen/remacs/op"
	"github.com/rs/zerolog"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: profilers that only need Call/Return events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveCalls and ObserveReturns default to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing execution events. Implementations
// can be used for profiling, debugging or tracing.
//
// Implementations can embed NoOpObserver to provide default no-op
// implementations for methods they don't need.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once at the start of each top-level call.
	Config() ObserverConfig

	// OnStep is called based on the StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnCall is called when a function is invoked (if ObserveCalls is true).
	// Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function returns (if ObserveReturns is true).
	// Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// Offset is the byte offset of the instruction.
	Offset int

	// Opcode is the canonical opcode being executed.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Operand is the decoded operand, 0 if the opcode has none.
	Operand int

	// StackDepth is the current depth of the frame's operand stack.
	StackDepth int

	// BindingDepth is the current depth of the binding stack.
	BindingDepth int

	// HandlerDepth is the current depth of the handler stack.
	HandlerDepth int

	// FrameDepth is the number of active byte-code frames.
	FrameDepth int
}

// CallEvent contains information about a function call.
type CallEvent struct {
	// FunctionName is the name of the function being called.
	// Anonymous functions will have an empty name.
	FunctionName string

	// ArgCount is the number of arguments passed to the function.
	ArgCount int

	// EvalDepth is the call nesting depth after the call.
	EvalDepth int
}

// ReturnEvent contains information about a function return.
type ReturnEvent struct {
	// FunctionName is the name of the function returning.
	FunctionName string

	// Exited is true when the function left through a signal, throw or
	// fatal error rather than returning a value.
	Exited bool

	// EvalDepth is the call nesting depth after returning.
	EvalDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

// TraceObserver writes every execution event to a zerolog logger at debug
// level.
type TraceObserver struct {
	logger zerolog.Logger
	config ObserverConfig
}

// NewTraceObserver returns an observer that logs events to logger.
func NewTraceObserver(logger zerolog.Logger, mode StepMode) *TraceObserver {
	return &TraceObserver{logger: logger, config: NewObserverConfig(mode)}
}

// WithSampleInterval sets the number of instructions between step records
// when the observer was created with StepSampled.
func (t *TraceObserver) WithSampleInterval(n int) *TraceObserver {
	t.config.SampleInterval = n
	t.config = NormalizeConfig(t.config)
	return t
}

func (t *TraceObserver) Config() ObserverConfig {
	return t.config
}

func (t *TraceObserver) OnStep(e StepEvent) bool {
	t.logger.Debug().
		Int("offset", e.Offset).
		Str("op", e.OpcodeName).
		Int("arg", e.Operand).
		Int("stack", e.StackDepth).
		Int("bindings", e.BindingDepth).
		Int("handlers", e.HandlerDepth).
		Int("frames", e.FrameDepth).
		Msg("step")
	return true
}

func (t *TraceObserver) OnCall(e CallEvent) bool {
	t.logger.Debug().
		Str("fn", e.FunctionName).
		Int("args", e.ArgCount).
		Int("depth", e.EvalDepth).
		Msg("call")
	return true
}

func (t *TraceObserver) OnReturn(e ReturnEvent) bool {
	t.logger.Debug().
		Str("fn", e.FunctionName).
		Bool("exited", e.Exited).
		Int("depth", e.EvalDepth).
		Msg("return")
	return true
}

var _ Observer = (*TraceObserver)(nil)
