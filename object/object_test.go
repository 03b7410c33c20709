package object

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqFixnums(t *testing.T) {
	require.True(t, Eq(Int(5), Int(5)))
	require.False(t, Eq(Int(5), Int(6)))
	require.False(t, Eq(NewFloat(1.5), NewFloat(1.5)))
	require.True(t, Eql(NewFloat(1.5), NewFloat(1.5)))
	require.False(t, Eq(NewString("a"), NewString("a")))
	require.True(t, Equal(NewString("a"), NewString("a")))
}

func TestEqualLists(t *testing.T) {
	a := NewList(Int(1), NewString("x"), NewList(Intern("foo")))
	b := NewList(Int(1), NewString("x"), NewList(Intern("foo")))
	require.True(t, Equal(a, b))
	require.False(t, Eq(a, b))
	require.False(t, Equal(a, NewList(Int(1))))
	require.True(t, Equal(NewVector(Int(1), Int(2)), NewVector(Int(1), Int(2))))
}

func TestInspect(t *testing.T) {
	tests := []struct {
		obj  Object
		want string
	}{
		{Nil, "nil"},
		{T, "t"},
		{Int(-3), "-3"},
		{NewFloat(2), "2.0"},
		{NewFloat(0.5), "0.5"},
		{NewString(`a"b`), `"a\"b"`},
		{NewList(Int(1), Int(2)), "(1 2)"},
		{NewCons(Int(1), Int(2)), "(1 . 2)"},
		{NewVector(Intern("a"), NewString("b")), `[a "b"]`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.obj.Inspect())
	}
	require.Equal(t, "b", Princ(NewString("b")))
}

func TestListToSlice(t *testing.T) {
	items, ok := ListToSlice(NewList(Int(1), Int(2), Int(3)))
	require.True(t, ok)
	require.Equal(t, []Object{Int(1), Int(2), Int(3)}, items)

	_, ok = ListToSlice(NewCons(Int(1), Int(2)))
	require.False(t, ok)

	items, ok = ListToSlice(Nil)
	require.True(t, ok)
	require.Empty(t, items)
}

func TestObarray(t *testing.T) {
	ob := NewObarray()
	a := ob.Intern("foo")
	require.Same(t, a, ob.Intern("foo"))
	require.Same(t, Nil, ob.Intern("nil"))
	require.NotSame(t, a, Intern("foo"))

	kw := ob.Intern(":test")
	require.True(t, kw.IsKeyword())
	v, ok := kw.Value()
	require.True(t, ok)
	require.Equal(t, Object(kw), v)
	require.Error(t, kw.SetValue(Int(1)))
}

func TestSymbolCells(t *testing.T) {
	sym := NewSymbol("x")
	_, ok := sym.Value()
	require.False(t, ok)
	require.NoError(t, sym.SetValue(Int(3)))
	v, ok := sym.Value()
	require.True(t, ok)
	require.Equal(t, Object(Int(3)), v)

	_, ok = sym.Function()
	require.False(t, ok)

	sym.Put(Intern("color"), Intern("red"))
	sym.Put(Intern("size"), Int(2))
	sym.Put(Intern("color"), Intern("blue"))
	require.Equal(t, Object(Intern("blue")), sym.Get(Intern("color")))
	require.Equal(t, Object(Int(2)), sym.Get(Intern("size")))
	require.Equal(t, Object(Nil), sym.Get(Intern("missing")))

	var sig *Signal
	require.True(t, errors.As(Nil.SetValue(Int(1)), &sig))
	require.Equal(t, SettingConstant, sig.Symbol)
	require.True(t, errors.As(T.SetFunction(Int(1)), &sig))
}

func TestArgTemplate(t *testing.T) {
	tmpl, err := NewArgTemplate(1, 2, true)
	require.NoError(t, err)
	require.Equal(t, ArgTemplate(0x201|0x80), tmpl)
	require.Equal(t, 1, tmpl.Mandatory())
	require.Equal(t, 2, tmpl.NonRest())
	require.True(t, tmpl.HasRest())
	require.Equal(t, 3, tmpl.Slots())
	require.Equal(t, "(a0 &optional a1 &rest rest)", tmpl.String())

	tmpl, err = NewArgTemplate(2, 2, false)
	require.NoError(t, err)
	require.Equal(t, ArgTemplate(0x202), tmpl)
	require.False(t, tmpl.HasRest())

	_, err = NewArgTemplate(3, 2, false)
	require.Error(t, err)
	_, err = NewArgTemplate(128, 128, false)
	require.Error(t, err)
	require.False(t, NoArgTemplate.IsSet())
}

func TestHashTableTests(t *testing.T) {
	eq, err := NewHashTable(HashEq)
	require.NoError(t, err)
	eq.Put(NewString("a"), Int(1))
	_, ok := eq.Get(NewString("a"))
	require.False(t, ok)
	eq.Put(Int(7), Int(2))
	v, ok := eq.Get(Int(7))
	require.True(t, ok)
	require.Equal(t, Object(Int(2)), v)

	equal, err := NewHashTable(HashEqual)
	require.NoError(t, err)
	equal.Put(NewString("a"), Int(1))
	equal.Put(NewList(Int(1), Int(2)), Int(2))
	v, ok = equal.Get(NewString("a"))
	require.True(t, ok)
	require.Equal(t, Object(Int(1)), v)
	v, ok = equal.Get(NewList(Int(1), Int(2)))
	require.True(t, ok)
	require.Equal(t, Object(Int(2)), v)
	_, ok = equal.Get(Intern("a"))
	require.False(t, ok)

	eql, err := NewHashTable(nil)
	require.NoError(t, err)
	require.Equal(t, HashEql, eql.Test())
	eql.Put(NewFloat(1.5), T)
	_, ok = eql.Get(NewFloat(1.5))
	require.True(t, ok)

	equal.Remove(NewString("a"))
	require.Equal(t, 1, equal.Count())
	v, ok = equal.Get(NewList(Int(1), Int(2)))
	require.True(t, ok)
	require.Equal(t, Object(Int(2)), v)

	_, err = NewHashTable(Intern("bogus"))
	require.Error(t, err)
}

func TestSignalHandles(t *testing.T) {
	sig := NewSignal(ArithError)
	require.True(t, sig.Handles(T))
	require.True(t, sig.Handles(Error))
	require.True(t, sig.Handles(ArithError))
	require.True(t, sig.Handles(NewList(VoidVariable, ArithError)))
	require.False(t, sig.Handles(VoidVariable))
	require.False(t, sig.Handles(Nil))

	quit := NewSignal(Quit)
	require.False(t, quit.Handles(Error))
	require.True(t, quit.Handles(Quit))

	custom := DefineError(NewSymbol("my-error"), "Mine", ArithError)
	sig = NewSignal(custom, Int(1))
	require.True(t, sig.Handles(Error))
	require.True(t, sig.Handles(ArithError))
	require.Equal(t, "(my-error 1)", sig.Payload().Inspect())
}

func TestSignalError(t *testing.T) {
	sig := WrongType(Integerp, NewString("x"))
	require.Equal(t, `Wrong type argument: integerp, "x"`, sig.Error())

	sig = Errorf("boom %d", 3)
	require.Equal(t, "boom 3", sig.Error())

	wrapped := fmt.Errorf("wrapped: %w", NewThrow(Intern("tag"), Int(1)))
	require.True(t, IsNonLocalExit(wrapped))
	require.False(t, IsNonLocalExit(errors.New("fatal")))
}

func TestSubrArity(t *testing.T) {
	subr := NewSubr("two", 1, 2, func(ctx context.Context, args ...Object) (Object, error) {
		return Int(len(args)), nil
	})
	result, err := subr.Call(context.Background(), Int(1))
	require.NoError(t, err)
	require.Equal(t, Object(Int(1)), result)

	_, err = subr.Call(context.Background())
	var sig *Signal
	require.True(t, errors.As(err, &sig))
	require.Equal(t, WrongNumberOfArguments, sig.Symbol)
	require.Equal(t, "(#<subr two> 0)", sig.Data.Inspect())
}

func TestCallFuncContext(t *testing.T) {
	_, ok := GetCallFunc(context.Background())
	require.False(t, ok)

	ctx := WithCallFunc(context.Background(), func(ctx context.Context, fn Object, args []Object) (Object, error) {
		return Int(42), nil
	})
	fn, ok := GetCallFunc(ctx)
	require.True(t, ok)
	result, err := fn(ctx, Nil, nil)
	require.NoError(t, err)
	require.Equal(t, Object(Int(42)), result)

	require.Same(t, DefaultObarray(), GetObarray(context.Background()))
}

func TestHashTableEqualDistinguishesSamePrintedKeys(t *testing.T) {
	table, err := NewHashTable(HashEqual)
	require.NoError(t, err)
	k1 := NewList(NewSymbol("x"))
	k2 := NewList(NewSymbol("x"))
	require.False(t, Equal(k1, k2))
	table.Put(k1, Int(1))
	table.Put(k2, Int(2))
	require.Equal(t, 2, table.Count())

	_, ok := table.Get(NewList(NewSymbol("x")))
	require.False(t, ok)
	v, ok := table.Get(k2)
	require.True(t, ok)
	require.Equal(t, Object(Int(2)), v)

	table.Remove(k1)
	require.Equal(t, 1, table.Count())
	v, ok = table.Get(k2)
	require.True(t, ok)
	require.Equal(t, Object(Int(2)), v)
}

func TestSxhash(t *testing.T) {
	require.Equal(t, Sxhash(NewList(Int(1), NewString("a"))), Sxhash(NewList(Int(1), NewString("a"))))
	require.Equal(t, Sxhash(NewVector(Int(1), Int(2))), Sxhash(NewVector(Int(1), Int(2))))
	require.NotEqual(t, Sxhash(NewString("a")), Sxhash(NewString("b")))

	// Cyclic structure still hashes.
	cell := NewCons(Int(1), Nil)
	cell.SetCdr(cell)
	Sxhash(cell)
	nested := NewCons(Nil, Nil)
	nested.SetCar(nested)
	Sxhash(nested)
}

func TestEqlFloatBits(t *testing.T) {
	require.False(t, Eql(NewFloat(0.0), NewFloat(math.Copysign(0, -1))))
	require.True(t, Eql(NewFloat(math.NaN()), NewFloat(math.NaN())))
}
