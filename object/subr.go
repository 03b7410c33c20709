package object

import (
	"context"
	"fmt"
)

// Many is the maximum argument count of a primitive taking any number of
// arguments.
const Many = -1

// BuiltinFunction holds the type of a primitive implemented in Go.
type BuiltinFunction func(ctx context.Context, args ...Object) (Object, error)

// Subr wraps a BuiltinFunction together with its name and arity.
type Subr struct {
	fn      BuiltinFunction
	name    string
	minArgs int
	maxArgs int
}

// NewSubr returns a primitive accepting between minArgs and maxArgs
// arguments. maxArgs may be Many.
func NewSubr(name string, minArgs, maxArgs int, fn BuiltinFunction) *Subr {
	return &Subr{fn: fn, name: name, minArgs: minArgs, maxArgs: maxArgs}
}

func (s *Subr) Type() Type {
	return SUBR
}

func (s *Subr) Name() string {
	return s.name
}

// Arity returns the minimum and maximum argument counts.
func (s *Subr) Arity() (int, int) {
	return s.minArgs, s.maxArgs
}

// Call invokes the primitive after checking the argument count.
func (s *Subr) Call(ctx context.Context, args ...Object) (Object, error) {
	if len(args) < s.minArgs || (s.maxArgs != Many && len(args) > s.maxArgs) {
		return nil, NewSignal(WrongNumberOfArguments, s, Int(len(args)))
	}
	return s.fn(ctx, args...)
}

func (s *Subr) Inspect() string {
	return fmt.Sprintf("#<subr %s>", s.name)
}

func (s *Subr) String() string {
	return s.Inspect()
}

func (s *Subr) Interface() interface{} {
	return s.fn
}

func (s *Subr) Equals(other Object) bool {
	return Object(s) == other
}
