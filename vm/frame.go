package vm

import (
	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
)

// initialStackCap bounds the preallocated operand stack. Frames declaring a
// larger depth grow on demand.
const initialStackCap = 64

// frame is the activation record of one byte-code invocation.
type frame struct {
	fn        *object.ByteCode
	code      []byte
	constants []object.Object
	stack     []object.Object
	maxDepth  int
	pc        int

	// opOffset and opcode identify the instruction being executed.
	opOffset int
	opcode   byte

	// Depths of the session stacks on entry. The frame only ever unwinds
	// entries above these.
	specBase    int
	handlerBase int
}

func newFrame(fn *object.ByteCode, specBase, handlerBase int) *frame {
	capacity := fn.MaxDepth()
	if capacity > initialStackCap {
		capacity = initialStackCap
	}
	if capacity < 0 {
		capacity = 0
	}
	return &frame{
		fn:          fn,
		code:        fn.Code(),
		constants:   fn.Constants(),
		stack:       make([]object.Object, 0, capacity),
		maxDepth:    fn.MaxDepth(),
		specBase:    specBase,
		handlerBase: handlerBase,
	}
}

func (f *frame) name() string {
	return f.fn.Name()
}

func (f *frame) fatal(kind errz.ErrorKind, format string, args ...any) *errz.VMError {
	return errz.New(kind, f.opOffset, f.opcode, format, args...)
}

func (f *frame) depth() int {
	return len(f.stack)
}

func (f *frame) push(obj object.Object) error {
	if len(f.stack) >= f.maxDepth {
		return f.fatal(errz.ErrStack, "stack overflow: max depth %d exceeded", f.maxDepth)
	}
	f.stack = append(f.stack, obj)
	return nil
}

func (f *frame) pop() (object.Object, error) {
	n := len(f.stack)
	if n == 0 {
		return nil, f.fatal(errz.ErrStack, "stack underflow")
	}
	obj := f.stack[n-1]
	f.stack[n-1] = nil
	f.stack = f.stack[:n-1]
	return obj, nil
}

// popN removes the top n values and returns them in push order.
func (f *frame) popN(n int) ([]object.Object, error) {
	size := len(f.stack)
	if n > size {
		return nil, f.fatal(errz.ErrStack, "stack underflow: need %d values, have %d", n, size)
	}
	items := make([]object.Object, n)
	copy(items, f.stack[size-n:])
	f.truncate(size - n)
	return items, nil
}

func (f *frame) drop(n int) error {
	if n > len(f.stack) {
		return f.fatal(errz.ErrStack, "stack underflow: discard %d, have %d", n, len(f.stack))
	}
	f.truncate(len(f.stack) - n)
	return nil
}

func (f *frame) truncate(depth int) {
	for i := depth; i < len(f.stack); i++ {
		f.stack[i] = nil
	}
	f.stack = f.stack[:depth]
}

// ref returns the value n slots below the top. ref(0) is the top.
func (f *frame) ref(n int) (object.Object, error) {
	i := len(f.stack) - 1 - n
	if i < 0 {
		return nil, f.fatal(errz.ErrStack, "stack underflow: reference %d below top, depth %d",
			n, len(f.stack))
	}
	return f.stack[i], nil
}

// set replaces the value n slots below the top.
func (f *frame) set(n int, obj object.Object) error {
	i := len(f.stack) - 1 - n
	if i < 0 {
		return f.fatal(errz.ErrStack, "stack underflow: set %d below top, depth %d",
			n, len(f.stack))
	}
	f.stack[i] = obj
	return nil
}

func (f *frame) top() (object.Object, error) {
	return f.ref(0)
}

func (f *frame) setTop(obj object.Object) error {
	return f.set(0, obj)
}

func (f *frame) constant(i int) (object.Object, error) {
	if i < 0 || i >= len(f.constants) {
		return nil, f.fatal(errz.ErrDecode, "constant index %d out of range (%d constants)",
			i, len(f.constants))
	}
	return f.constants[i], nil
}

// symbol returns constant i, which must be a symbol.
func (f *frame) symbol(i int) (*object.Symbol, error) {
	c, err := f.constant(i)
	if err != nil {
		return nil, err
	}
	sym, ok := c.(*object.Symbol)
	if !ok {
		return nil, f.fatal(errz.ErrType, "variable operand %s is not a symbol", object.Inspect(c))
	}
	return sym, nil
}

func (f *frame) jump(target int) error {
	if target < 0 || target >= len(f.code) {
		return f.fatal(errz.ErrDecode, "jump target %d out of range (code length %d)",
			target, len(f.code))
	}
	f.pc = target
	return nil
}
