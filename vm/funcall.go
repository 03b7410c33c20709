package vm

import (
	"context"

	"github.com/jsjolen/remacs/object"
)

// maxFunctionIndirection bounds symbol alias chains, which may be circular.
const maxFunctionIndirection = 100

// funcall calls fn with args. It is the Apply capability shared by the
// call instruction, primitive opcodes and, through the context, primitives
// such as funcall and apply.
func (s *Session) funcall(ctx context.Context, fn object.Object, args []object.Object) (result object.Object, err error) {
	if s.maxEvalDepth > 0 && s.evalDepth >= s.maxEvalDepth {
		return nil, object.NewSignal(object.ExcessiveLispNesting, object.Int(s.maxEvalDepth))
	}
	target, err := resolveFunction(fn)
	if err != nil {
		return nil, err
	}
	s.evalDepth++
	defer func() { s.evalDepth-- }()

	name := functionName(fn, target)
	if s.observer != nil && s.observerConfig.ObserveCalls {
		if !s.observer.OnCall(CallEvent{
			FunctionName: name,
			ArgCount:     len(args),
			EvalDepth:    s.evalDepth,
		}) {
			return nil, ErrHalted
		}
	}

	switch f := target.(type) {
	case *object.Subr:
		result, err = f.Call(ctx, args...)
	case *object.ByteCode:
		result, err = s.exec(ctx, f, args)
	}

	if s.observer != nil && s.observerConfig.ObserveReturns {
		if !s.observer.OnReturn(ReturnEvent{
			FunctionName: name,
			Exited:       err != nil,
			EvalDepth:    s.evalDepth - 1,
		}) && err == nil {
			return nil, ErrHalted
		}
	}
	return result, err
}

// resolveFunction follows symbol function cells until it reaches a
// primitive or a compiled procedure.
func resolveFunction(fn object.Object) (object.Object, error) {
	cur := fn
	for i := 0; i < maxFunctionIndirection; i++ {
		switch f := cur.(type) {
		case *object.Subr, *object.ByteCode:
			return f, nil
		case *object.Symbol:
			if object.IsNil(f) {
				return nil, object.NewSignal(object.VoidFunction, f)
			}
			def, ok := f.Function()
			if !ok {
				return nil, object.NewSignal(object.VoidFunction, f)
			}
			cur = def
		default:
			return nil, object.NewSignal(object.InvalidFunction, fn)
		}
	}
	return nil, object.NewSignal(object.InvalidFunction, fn)
}

// isCallable reports whether fn resolves to something funcall accepts.
func isCallable(fn object.Object) bool {
	_, err := resolveFunction(fn)
	return err == nil
}

func functionName(fn, target object.Object) string {
	if sym, ok := fn.(*object.Symbol); ok {
		return sym.Name()
	}
	switch f := target.(type) {
	case *object.Subr:
		return f.Name()
	case *object.ByteCode:
		return f.Name()
	}
	return ""
}

func (s *Session) callNamed(ctx context.Context, name string, args ...object.Object) (object.Object, error) {
	return s.funcall(ctx, s.obarray.Intern(name), args)
}
