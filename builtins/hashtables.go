package builtins

import (
	"context"

	"github.com/jsjolen/remacs/object"
)

// MakeHashTable accepts the keyword argument :test (eq, eql or equal).
// Other keywords are accepted and ignored.
func MakeHashTable(ctx context.Context, args ...object.Object) (object.Object, error) {
	var test *object.Symbol
	for i := 0; i+1 < len(args); i += 2 {
		kw, ok := args[i].(*object.Symbol)
		if !ok || kw.Name() != ":test" {
			continue
		}
		sym, err := object.AsSymbol(args[i+1])
		if err != nil {
			return nil, err
		}
		test = sym
	}
	ht, err := object.NewHashTable(test)
	if err != nil {
		return nil, object.Errorf("Invalid hash table test")
	}
	return ht, nil
}

func Gethash(ctx context.Context, args ...object.Object) (object.Object, error) {
	ht, err := object.AsHashTable(args[1])
	if err != nil {
		return nil, err
	}
	if v, ok := ht.Get(args[0]); ok {
		return v, nil
	}
	if len(args) > 2 {
		return args[2], nil
	}
	return object.Nil, nil
}

func Puthash(ctx context.Context, args ...object.Object) (object.Object, error) {
	ht, err := object.AsHashTable(args[2])
	if err != nil {
		return nil, err
	}
	ht.Put(args[0], args[1])
	return args[1], nil
}

func Remhash(ctx context.Context, args ...object.Object) (object.Object, error) {
	ht, err := object.AsHashTable(args[1])
	if err != nil {
		return nil, err
	}
	ht.Remove(args[0])
	return object.Nil, nil
}

func HashTableCount(ctx context.Context, args ...object.Object) (object.Object, error) {
	ht, err := object.AsHashTable(args[0])
	if err != nil {
		return nil, err
	}
	return object.Int(ht.Count()), nil
}
