// Package errz defines the fatal errors raised by the virtual machine.
//
// Fatal errors are distinct from signals and throws: they mean the procedure
// being executed is corrupt or the interpreter reached an impossible state.
// No handler intercepts them and they abort the whole run.
package errz

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrDecode indicates malformed code: an unknown or obsolete opcode, a
	// truncated operand, a bad constant index or a jump out of range.
	ErrDecode ErrorKind = iota
	// ErrStack indicates operand stack overflow or underflow, or a handler
	// pop with no handler established.
	ErrStack
	// ErrType indicates an operand of the wrong kind where the code itself
	// is at fault, such as a switch target that is not an integer.
	ErrType
	// ErrInternal indicates a broken interpreter invariant.
	ErrInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrDecode:
		return "decode error"
	case ErrStack:
		return "stack error"
	case ErrType:
		return "type error"
	case ErrInternal:
		return "internal error"
	default:
		return "error"
	}
}

// StackFrame identifies a procedure that was active when the error occurred.
type StackFrame struct {
	Function string
	Offset   int
}

// VMError is a fatal interpreter error.
type VMError struct {
	Message string
	Kind    ErrorKind
	// Offset is the byte offset of the failing instruction.
	Offset int
	// Opcode is the raw opcode byte of the failing instruction.
	Opcode byte
	Stack  []StackFrame
	Cause  error
}

// Error implements the error interface.
func (e *VMError) Error() string {
	return fmt.Sprintf("%s: %s (offset %d, opcode 0o%o)", e.Kind, e.Message, e.Offset, e.Opcode)
}

// Unwrap returns the underlying cause of the error.
func (e *VMError) Unwrap() error {
	return e.Cause
}

// IsFatal always returns true. It lets callers distinguish VM errors from
// recoverable exits through an interface check.
func (e *VMError) IsFatal() bool {
	return true
}

// WithCause wraps the error with a cause.
func (e *VMError) WithCause(cause error) *VMError {
	e.Cause = cause
	return e
}

// AddFrame records a procedure the error propagated through. Frames are
// added innermost first.
func (e *VMError) AddFrame(fn string, offset int) {
	e.Stack = append(e.Stack, StackFrame{Function: fn, Offset: offset})
}

// FriendlyErrorMessage returns the error message followed by the procedure
// stack.
func (e *VMError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")
	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatStackTrace(e.Stack))
	}
	return msg.String()
}

// New creates a new VMError with a formatted message.
func New(kind ErrorKind, offset int, opcode byte, format string, args ...any) *VMError {
	return &VMError{
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
		Offset:  offset,
		Opcode:  opcode,
	}
}

// FormatStackTrace renders frames one per line, innermost first.
func FormatStackTrace(frames []StackFrame) string {
	var buf bytes.Buffer
	buf.WriteString("Stack trace:\n")
	for _, f := range frames {
		name := f.Function
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&buf, "  at %s (offset %d)\n", name, f.Offset)
	}
	return buf.String()
}

// AsVMError returns the VMError in err's chain, if any.
func AsVMError(err error) (*VMError, bool) {
	var vmErr *VMError
	if errors.As(err, &vmErr) {
		return vmErr, true
	}
	return nil, false
}

// IsFatal reports whether err is a fatal VM error.
func IsFatal(err error) bool {
	_, ok := AsVMError(err)
	return ok
}
