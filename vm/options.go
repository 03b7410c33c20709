package vm

import (
	"github.com/jsjolen/remacs/object"
	"github.com/rs/zerolog"
)

// Option is a configuration function for a Session.
type Option func(*Session)

// WithLogger sets the logger used for session diagnostics. Every record
// carries the session id. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithObarray sets the obarray used to resolve primitives named by
// opcodes such as car or concat. The default is object.DefaultObarray().
// The obarray does not isolate value cells by itself: programs run by
// concurrent sessions must also have been parsed or unmarshaled into
// distinct obarrays so that they bind distinct symbols.
func WithObarray(obarray *object.Obarray) Option {
	return func(s *Session) {
		s.obarray = obarray
	}
}

// WithMaxEvalDepth limits how deeply calls may nest. Exceeding the limit
// signals excessive-lisp-nesting. The default is DefaultMaxEvalDepth.
func WithMaxEvalDepth(depth int) Option {
	return func(s *Session) {
		s.maxEvalDepth = depth
	}
}

// WithMaxSpecpdlSize limits the number of entries on the binding stack.
// Exceeding the limit signals excessive-variable-binding. The default is
// DefaultMaxSpecpdlSize.
func WithMaxSpecpdlSize(size int) Option {
	return func(s *Session) {
		s.maxSpecpdlSize = size
	}
}

// WithContextCheckInterval sets how often the session checks ctx.Done()
// during execution. The interval is specified in number of instructions.
// A value of 0 disables the check. The default is
// DefaultContextCheckInterval.
//
// When the context is cancelled the session signals quit, which unwinds
// like any other signal.
func WithContextCheckInterval(interval int) Option {
	return func(s *Session) {
		s.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution with
// ErrHalted.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}
