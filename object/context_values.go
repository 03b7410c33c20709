package object

import (
	"context"
)

type contextKey string

// CallFunc is a type signature for a function that can call any callable
// object: a symbol with a function definition, a primitive or a compiled
// procedure.
type CallFunc func(ctx context.Context, fn Object, args []Object) (Object, error)

////////////////////////////////////////////////////////////////////////////////

const callFuncKey = contextKey("remacs:call")

// WithCallFunc adds a CallFunc to the context, which primitives such as
// funcall and apply use to call back into the running session.
func WithCallFunc(ctx context.Context, fn CallFunc) context.Context {
	return context.WithValue(ctx, callFuncKey, fn)
}

// GetCallFunc returns the CallFunc from the context, if it exists.
func GetCallFunc(ctx context.Context) (CallFunc, bool) {
	if fn, ok := ctx.Value(callFuncKey).(CallFunc); ok {
		if fn != nil {
			return fn, ok
		}
	}
	return nil, false
}

const obarrayKey = contextKey("remacs:obarray")

// WithObarray adds the session's obarray to the context.
func WithObarray(ctx context.Context, ob *Obarray) context.Context {
	return context.WithValue(ctx, obarrayKey, ob)
}

// GetObarray returns the obarray from the context, falling back to the
// default obarray.
func GetObarray(ctx context.Context) *Obarray {
	if ob, ok := ctx.Value(obarrayKey).(*Obarray); ok && ob != nil {
		return ob
	}
	return defaultObarray
}
