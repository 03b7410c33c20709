// Package vm implements the byte-code interpreter.
//
// A Session owns the state shared by every active invocation: the dynamic
// binding stack, the handler stack and the call depth. Each invocation gets
// its own frame with an operand stack bounded by the procedure's declared
// maximum depth.
//
// Signals and throws are ordinary Go errors (*object.Signal and
// *object.Throw). They unwind frame by frame until a matching handler
// resumes execution or they reach the caller of Execute. Malformed code
// produces an *errz.VMError instead, which no handler can intercept.
package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxEvalDepth is the default limit on nested calls.
	DefaultMaxEvalDepth = 1600

	// DefaultMaxSpecpdlSize is the default limit on binding stack entries.
	DefaultMaxSpecpdlSize = 2500

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// ErrHalted is returned when an observer asks to stop execution.
var ErrHalted = errors.New("execution halted by observer")

// Session executes compiled procedures. A Session is not safe for
// concurrent use; give each goroutine its own.
type Session struct {
	id      uuid.UUID
	logger  zerolog.Logger
	obarray *object.Obarray

	specpdl  []specBinding
	handlers []handler
	frames   []*frame

	evalDepth            int
	maxEvalDepth         int
	maxSpecpdlSize       int
	contextCheckInterval int
	instructionCount     int

	observer       Observer
	observerConfig ObserverConfig
	stepCount      int

	running  bool
	runMutex sync.Mutex
}

// New creates a new Session.
//
// Dynamic bindings live in symbol value cells, so sessions whose programs
// refer to the same symbols share those bindings. By default every session
// resolves through object.DefaultObarray. Sessions that run concurrently
// must load their programs into separate obarrays and pass the matching
// one with WithObarray.
func New(options ...Option) *Session {
	s := &Session{
		id:                   uuid.Must(uuid.NewV4()),
		logger:               zerolog.Nop(),
		obarray:              object.DefaultObarray(),
		maxEvalDepth:         DefaultMaxEvalDepth,
		maxSpecpdlSize:       DefaultMaxSpecpdlSize,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id.String()).Logger()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Obarray returns the obarray used to resolve primitives.
func (s *Session) Obarray() *object.Obarray {
	return s.obarray
}

// BindingDepth returns the current depth of the binding stack. It is zero
// whenever the session is idle.
func (s *Session) BindingDepth() int {
	return len(s.specpdl)
}

// HandlerDepth returns the current depth of the handler stack.
func (s *Session) HandlerDepth() int {
	return len(s.handlers)
}

func (s *Session) start() error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.running {
		return fmt.Errorf("session is already running")
	}
	s.running = true
	s.instructionCount = 0
	s.stepCount = 0
	if s.observer != nil {
		s.observerConfig = NormalizeConfig(s.observer.Config())
	}
	return nil
}

func (s *Session) stop() {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	s.running = false
}

func (s *Session) initContext(ctx context.Context) context.Context {
	ctx = object.WithCallFunc(ctx, s.funcall)
	return object.WithObarray(ctx, s.obarray)
}

// Execute runs a procedure given as its parts: the code, the constant
// pool, the maximum operand stack depth and the argument template
// (object.NoArgTemplate for the unchecked calling convention).
//
// The result is the value returned by the procedure. A signal or throw
// that no handler catches is returned as the error, as is any fatal
// *errz.VMError.
func (s *Session) Execute(
	ctx context.Context,
	code []byte,
	constants []object.Object,
	maxDepth int,
	template object.ArgTemplate,
	args []object.Object,
) (object.Object, error) {
	fn := object.NewByteCode(object.ByteCodeParams{
		Code:      code,
		Constants: constants,
		MaxDepth:  maxDepth,
		Template:  template,
	})
	return s.Funcall(ctx, fn, args)
}

// Call runs a compiled procedure with the given arguments.
func (s *Session) Call(ctx context.Context, fn *object.ByteCode, args []object.Object) (object.Object, error) {
	return s.Funcall(ctx, fn, args)
}

// Funcall calls any function object: a compiled procedure, a primitive or
// a symbol whose function cell holds one. If the session is already
// running, an error is returned; primitives that need to call back into
// the session use object.GetCallFunc instead.
func (s *Session) Funcall(ctx context.Context, fn object.Object, args []object.Object) (result object.Object, err error) {
	if err := s.start(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errz.New(errz.ErrInternal, s.currentOffset(), s.currentOpcode(), "panic: %v", r)
			result = nil
		}
		if err != nil {
			s.logExit(err)
		}
		s.abandon()
		s.stop()
	}()
	return s.funcall(s.initContext(ctx), fn, args)
}

// abandon resets the session stacks after a top-level call. Normally they
// are already empty; after a panic the dynamic bindings still need to be
// undone.
func (s *Session) abandon() {
	s.restoreBindings(0)
	s.handlers = s.handlers[:0]
	s.frames = s.frames[:0]
	s.evalDepth = 0
}

func (s *Session) currentOffset() int {
	if n := len(s.frames); n > 0 {
		return s.frames[n-1].opOffset
	}
	return 0
}

func (s *Session) currentOpcode() byte {
	if n := len(s.frames); n > 0 {
		return s.frames[n-1].opcode
	}
	return 0
}

func (s *Session) logExit(err error) {
	if vmErr, ok := errz.AsVMError(err); ok {
		s.logger.Error().
			Str("kind", vmErr.Kind.String()).
			Int("offset", vmErr.Offset).
			Str("opcode", fmt.Sprintf("0o%o", vmErr.Opcode)).
			Msg(vmErr.Message)
		return
	}
	if object.IsNonLocalExit(err) {
		s.logger.Debug().Err(err).Msg("unhandled non-local exit")
		return
	}
	s.logger.Warn().Err(err).Msg("execution stopped")
}
