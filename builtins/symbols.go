package builtins

import (
	"context"

	"github.com/jsjolen/remacs/object"
)

func SymbolValue(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	v, ok := sym.Value()
	if !ok {
		return nil, object.NewSignal(object.VoidVariable, sym)
	}
	return v, nil
}

func SymbolFunction(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	fn, ok := sym.Function()
	if !ok {
		return object.Nil, nil
	}
	return fn, nil
}

func SymbolName(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	return object.NewString(sym.Name()), nil
}

func Set(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	if err := sym.SetValue(args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func Fset(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	if err := sym.SetFunction(args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func Get(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	return sym.Get(args[1]), nil
}

func Put(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	sym.Put(args[1], args[2])
	return args[2], nil
}

func Boundp(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	_, ok := sym.Value()
	return object.Bool(ok), nil
}

func Fboundp(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	_, ok := sym.Function()
	return object.Bool(ok), nil
}

func Makunbound(ctx context.Context, args ...object.Object) (object.Object, error) {
	sym, err := object.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	if err := sym.Makunbound(); err != nil {
		return nil, err
	}
	return sym, nil
}

// Intern interns a name in the session's obarray.
func Intern(ctx context.Context, args ...object.Object) (object.Object, error) {
	name, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	return object.GetObarray(ctx).Intern(name), nil
}
