package builtins

import (
	"context"

	"github.com/jsjolen/remacs/object"
)

func callFunc(ctx context.Context, name string) (object.CallFunc, error) {
	call, ok := object.GetCallFunc(ctx)
	if !ok {
		return nil, object.Errorf("%s: no session available", name)
	}
	return call, nil
}

func Funcall(ctx context.Context, args ...object.Object) (object.Object, error) {
	call, err := callFunc(ctx, "funcall")
	if err != nil {
		return nil, err
	}
	return call(ctx, args[0], args[1:])
}

// Apply calls a function with the given arguments, the last of which is a
// list spread into the argument list.
func Apply(ctx context.Context, args ...object.Object) (object.Object, error) {
	call, err := callFunc(ctx, "apply")
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		items, err := object.AsList(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, object.NewSignal(object.WrongNumberOfArguments, object.Intern("apply"), object.Int(1))
		}
		return call(ctx, items[0], items[1:])
	}
	spread, err := object.AsList(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	callArgs := make([]object.Object, 0, len(args)-2+len(spread))
	callArgs = append(callArgs, args[1:len(args)-1]...)
	callArgs = append(callArgs, spread...)
	return call(ctx, args[0], callArgs)
}

func Throw(ctx context.Context, args ...object.Object) (object.Object, error) {
	return nil, object.NewThrow(args[0], args[1])
}

// Signal raises the error symbol with the given data list.
func Signal(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	return nil, &object.Signal{Symbol: sym, Data: args[1]}
}

// Error formats a message and signals it with the error condition.
func Error(ctx context.Context, args ...object.Object) (object.Object, error) {
	msg, err := formatString(args)
	if err != nil {
		return nil, err
	}
	return nil, object.NewSignal(object.Error, object.NewString(msg))
}

func Identity(ctx context.Context, args ...object.Object) (object.Object, error) {
	return args[0], nil
}

func Eq(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Bool(object.Eq(args[0], args[1])), nil
}

func Eql(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Bool(object.Eql(args[0], args[1])), nil
}

func Equal(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Bool(object.Equal(args[0], args[1])), nil
}

func Not(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Bool(object.IsNil(args[0])), nil
}

func TypeOf(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.GetObarray(ctx).Intern(string(args[0].Type())), nil
}

// predicate builds a one-argument type predicate.
func predicate(test func(object.Object) bool) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return object.Bool(test(args[0])), nil
	}
}

func isSymbol(obj object.Object) bool {
	_, ok := obj.(*object.Symbol)
	return ok
}

func isCons(obj object.Object) bool {
	_, ok := obj.(*object.Cons)
	return ok
}

func isString(obj object.Object) bool {
	_, ok := obj.(*object.String)
	return ok
}

func isInteger(obj object.Object) bool {
	_, ok := obj.(object.Int)
	return ok
}

func isFloat(obj object.Object) bool {
	_, ok := obj.(*object.Float)
	return ok
}

func isVector(obj object.Object) bool {
	_, ok := obj.(*object.Vector)
	return ok
}

func isHashTable(obj object.Object) bool {
	_, ok := obj.(*object.HashTable)
	return ok
}

func isFunction(obj object.Object) bool {
	if sym, ok := obj.(*object.Symbol); ok {
		fn, ok := sym.Function()
		return ok && object.IsFunction(fn)
	}
	return object.IsFunction(obj)
}

// InteractiveP always returns nil: nothing runs as an interactive command.
func InteractiveP(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Nil, nil
}
