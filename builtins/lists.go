package builtins

import (
	"context"

	"github.com/jsjolen/remacs/object"
)

func Car(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Cons:
		return arg.Car(), nil
	}
	if object.IsNil(args[0]) {
		return object.Nil, nil
	}
	return nil, object.WrongType(object.Listp, args[0])
}

func Cdr(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Cons:
		return arg.Cdr(), nil
	}
	if object.IsNil(args[0]) {
		return object.Nil, nil
	}
	return nil, object.WrongType(object.Listp, args[0])
}

func CarSafe(ctx context.Context, args ...object.Object) (object.Object, error) {
	if c, ok := args[0].(*object.Cons); ok {
		return c.Car(), nil
	}
	return object.Nil, nil
}

func CdrSafe(ctx context.Context, args ...object.Object) (object.Object, error) {
	if c, ok := args[0].(*object.Cons); ok {
		return c.Cdr(), nil
	}
	return object.Nil, nil
}

func Cons(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewCons(args[0], args[1]), nil
}

func List(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewList(args...), nil
}

func Length(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.String:
		return object.Int(arg.Len()), nil
	case *object.Vector:
		return object.Int(arg.Len()), nil
	}
	items, err := object.AsSequence(args[0])
	if err != nil {
		return nil, err
	}
	return object.Int(len(items)), nil
}

func nthcdr(n int64, list object.Object) (object.Object, error) {
	for ; n > 0; n-- {
		if object.IsNil(list) {
			return object.Nil, nil
		}
		c, ok := list.(*object.Cons)
		if !ok {
			return nil, object.WrongType(object.Listp, list)
		}
		list = c.Cdr()
	}
	return list, nil
}

func Nthcdr(ctx context.Context, args ...object.Object) (object.Object, error) {
	n, err := object.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	return nthcdr(n, args[1])
}

func Nth(ctx context.Context, args ...object.Object) (object.Object, error) {
	n, err := object.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	tail, err := nthcdr(n, args[1])
	if err != nil {
		return nil, err
	}
	return Car(ctx, tail)
}

func Elt(ctx context.Context, args ...object.Object) (object.Object, error) {
	if object.IsList(args[0]) {
		return Nth(ctx, args[1], args[0])
	}
	return Aref(ctx, args...)
}

func Memq(ctx context.Context, args ...object.Object) (object.Object, error) {
	return member(args[0], args[1], object.Eq)
}

func Member(ctx context.Context, args ...object.Object) (object.Object, error) {
	return member(args[0], args[1], object.Equal)
}

func member(elt, list object.Object, same func(a, b object.Object) bool) (object.Object, error) {
	for !object.IsNil(list) {
		c, ok := list.(*object.Cons)
		if !ok {
			return nil, object.WrongType(object.Listp, list)
		}
		if same(c.Car(), elt) {
			return c, nil
		}
		list = c.Cdr()
	}
	return object.Nil, nil
}

func Assq(ctx context.Context, args ...object.Object) (object.Object, error) {
	list := args[1]
	for !object.IsNil(list) {
		c, ok := list.(*object.Cons)
		if !ok {
			return nil, object.WrongType(object.Listp, list)
		}
		if entry, ok := c.Car().(*object.Cons); ok && entry.Car() == args[0] {
			return entry, nil
		}
		list = c.Cdr()
	}
	return object.Nil, nil
}

func Nreverse(ctx context.Context, args ...object.Object) (object.Object, error) {
	if v, ok := args[0].(*object.Vector); ok {
		items := v.Items()
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		return v, nil
	}
	var prev object.Object = object.Nil
	list := args[0]
	for !object.IsNil(list) {
		c, ok := list.(*object.Cons)
		if !ok {
			return nil, object.WrongType(object.Listp, args[0])
		}
		next := c.Cdr()
		c.SetCdr(prev)
		prev, list = c, next
	}
	return prev, nil
}

func Reverse(ctx context.Context, args ...object.Object) (object.Object, error) {
	if v, ok := args[0].(*object.Vector); ok {
		items := make([]object.Object, v.Len())
		for i, item := range v.Items() {
			items[len(items)-1-i] = item
		}
		return object.NewVector(items...), nil
	}
	items, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	var result object.Object = object.Nil
	for _, item := range items {
		result = object.NewCons(item, result)
	}
	return result, nil
}

func Setcar(ctx context.Context, args ...object.Object) (object.Object, error) {
	c, err := object.AsCons(args[0])
	if err != nil {
		return nil, err
	}
	c.SetCar(args[1])
	return args[1], nil
}

func Setcdr(ctx context.Context, args ...object.Object) (object.Object, error) {
	c, err := object.AsCons(args[0])
	if err != nil {
		return nil, err
	}
	c.SetCdr(args[1])
	return args[1], nil
}

// Nconc destructively concatenates lists. The last argument may be any
// object and becomes the tail of the result.
func Nconc(ctx context.Context, args ...object.Object) (object.Object, error) {
	var result object.Object = object.Nil
	var last *object.Cons
	for i, arg := range args {
		if object.IsNil(arg) {
			continue
		}
		if last != nil {
			last.SetCdr(arg)
		} else {
			result = arg
		}
		if i == len(args)-1 {
			break
		}
		c, ok := arg.(*object.Cons)
		if !ok {
			return nil, object.WrongType(object.Consp, arg)
		}
		for {
			next, ok := c.Cdr().(*object.Cons)
			if !ok {
				break
			}
			c = next
		}
		last = c
	}
	return result, nil
}

// Append copies every argument but the last into a new list whose tail is
// the last argument.
func Append(ctx context.Context, args ...object.Object) (object.Object, error) {
	if len(args) == 0 {
		return object.Nil, nil
	}
	var items []object.Object
	for _, arg := range args[:len(args)-1] {
		seq, err := object.AsSequence(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, seq...)
	}
	result := args[len(args)-1]
	for i := len(items) - 1; i >= 0; i-- {
		result = object.NewCons(items[i], result)
	}
	return result, nil
}

func Vector(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewVector(args...), nil
}

func MakeVector(ctx context.Context, args ...object.Object) (object.Object, error) {
	n, err := object.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, object.WrongType(object.Intern("wholenump"), args[0])
	}
	return object.MakeVector(int(n), args[1]), nil
}

func Aref(ctx context.Context, args ...object.Object) (object.Object, error) {
	idx, err := object.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	switch arr := args[0].(type) {
	case *object.Vector:
		if v, ok := arr.At(int(idx)); ok {
			return v, nil
		}
	case *object.String:
		if r, ok := arr.CharAt(int(idx)); ok {
			return object.Int(r), nil
		}
	default:
		return nil, object.WrongType(object.Arrayp, args[0])
	}
	return nil, object.OutOfRange(args[0], args[1])
}

func Aset(ctx context.Context, args ...object.Object) (object.Object, error) {
	idx, err := object.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	switch arr := args[0].(type) {
	case *object.Vector:
		if arr.Set(int(idx), args[2]) {
			return args[2], nil
		}
	case *object.String:
		ch, ok := args[2].(object.Int)
		if !ok {
			return nil, object.WrongType(object.Characterp, args[2])
		}
		if arr.SetCharAt(int(idx), rune(ch)) {
			return args[2], nil
		}
	default:
		return nil, object.WrongType(object.Arrayp, args[0])
	}
	return nil, object.OutOfRange(args[0], args[1])
}

// Mapcar calls fn on each element of a sequence and returns the results
// as a list.
func Mapcar(ctx context.Context, args ...object.Object) (object.Object, error) {
	call, ok := object.GetCallFunc(ctx)
	if !ok {
		return nil, object.Errorf("mapcar: no session available")
	}
	items, err := object.AsSequence(args[1])
	if err != nil {
		return nil, err
	}
	results := make([]object.Object, 0, len(items))
	for _, item := range items {
		v, err := call(ctx, args[0], []object.Object{item})
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return object.NewList(results...), nil
}
