package bytecode

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/stretchr/testify/require"
)

func testProcedure(t *testing.T) *object.ByteCode {
	t.Helper()
	inner := NewAssembler("inner")
	inner.StackRef(0).Op(op.Add1).Op(op.Return)
	tmpl, err := object.NewArgTemplate(1, 1, false)
	require.NoError(t, err)
	innerBC, err := inner.Assemble(2, tmpl)
	require.NoError(t, err)

	outer := NewAssembler("outer")
	outer.PushConst(innerBC).
		PushConst(object.Int(41)).
		Call(1).
		PushConst(object.NewFloat(2.5)).
		PushConst(object.NewString("hello")).
		PushConst(object.NewList(object.Intern("a"), object.Int(1))).
		PushConst(object.NewCons(object.Int(1), object.Int(2))).
		PushConst(object.NewVector(object.T, object.Nil)).
		Emit(op.DiscardN, 6).
		Op(op.Return)
	bc, err := outer.Assemble(8, object.NoArgTemplate)
	require.NoError(t, err)
	return bc
}

func TestImageRoundTrip(t *testing.T) {
	bc := testProcedure(t)
	data, err := Marshal(bc)
	require.NoError(t, err)

	ob := object.DefaultObarray()
	decoded, err := Unmarshal(data, ob)
	require.NoError(t, err)
	require.Equal(t, "outer", decoded.Name())
	require.True(t, bc.Equals(decoded))

	inner, ok := decoded.Constants()[0].(*object.ByteCode)
	require.True(t, ok)
	require.Equal(t, "inner", inner.Name())
	require.Equal(t, 1, inner.Template().Mandatory())

	a, ok := ob.Lookup("a")
	require.True(t, ok)
	list, ok := decoded.Constants()[4].(*object.Cons)
	require.True(t, ok)
	require.Same(t, a, list.Car())
}

func TestImageDeterministic(t *testing.T) {
	bc := testProcedure(t)
	first, err := Marshal(bc)
	require.NoError(t, err)
	second, err := Marshal(bc)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestImageHashTable(t *testing.T) {
	a := NewAssembler("")
	a.StackRef(0).Switch(object.HashEqual, []Case{
		{Key: object.NewString("x"), Label: "x"},
	}).Op(op.Return).Label("x").Op(op.Return)
	bc, err := a.Assemble(2, object.NoArgTemplate)
	require.NoError(t, err)

	data, err := Marshal(bc)
	require.NoError(t, err)
	decoded, err := Unmarshal(data, object.NewObarray())
	require.NoError(t, err)
	table, ok := decoded.Constants()[0].(*object.HashTable)
	require.True(t, ok)
	require.Same(t, object.HashEqual, table.Test())
	target, ok := table.Get(object.NewString("x"))
	require.True(t, ok)
	require.Equal(t, object.Int(4), target)
}

func TestImageErrors(t *testing.T) {
	sub := object.NewSubr("f", 0, 0, nil)
	bc := object.NewByteCode(object.ByteCodeParams{Constants: []object.Object{sub}})
	_, err := Marshal(bc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot serialize")

	_, err = Unmarshal([]byte{0xff, 0x00}, object.NewObarray())
	require.Error(t, err)

	data, err := cbor.Marshal(&image{Version: 99, Function: &wireFunction{}})
	require.NoError(t, err)
	_, err = Unmarshal(data, object.NewObarray())
	require.ErrorIs(t, err, ErrImageVersion)
}

func TestImageCircularConstant(t *testing.T) {
	cell := object.NewCons(object.Int(1), object.Nil)
	cell.SetCdr(cell)
	bc := object.NewByteCode(object.ByteCodeParams{Constants: []object.Object{cell}})
	_, err := Marshal(bc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular")

	inner := object.NewCons(object.Int(2), object.Nil)
	outer := object.NewCons(inner, object.Nil)
	inner.SetCdr(outer)
	bc = object.NewByteCode(object.ByteCodeParams{Constants: []object.Object{outer}})
	_, err = Marshal(bc)
	require.Error(t, err)

	vec := object.NewVector(object.Int(1))
	vec.Set(0, vec)
	bc = object.NewByteCode(object.ByteCodeParams{Constants: []object.Object{vec}})
	_, err = Marshal(bc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular")
}

func TestImageSharedStructure(t *testing.T) {
	shared := object.NewList(object.Int(1), object.Int(2))
	bc := object.NewByteCode(object.ByteCodeParams{
		Constants: []object.Object{object.NewList(shared, shared), shared},
	})
	data, err := Marshal(bc)
	require.NoError(t, err)
	decoded, err := Unmarshal(data, object.NewObarray())
	require.NoError(t, err)
	require.True(t, object.Equal(bc.Constants()[0], decoded.Constants()[0]))
	require.True(t, object.Equal(shared, decoded.Constants()[1]))
}

func TestImageUninternedSymbols(t *testing.T) {
	x1 := object.NewSymbol("x")
	x2 := object.NewSymbol("x")
	bc := object.NewByteCode(object.ByteCodeParams{
		Constants: []object.Object{x1, object.NewList(x1, x2), x2, object.Intern("y")},
	})
	data, err := Marshal(bc)
	require.NoError(t, err)

	obarray := object.NewObarray()
	decoded, err := Unmarshal(data, obarray)
	require.NoError(t, err)
	constants := decoded.Constants()

	first, ok := constants[0].(*object.Symbol)
	require.True(t, ok)
	require.False(t, first.Interned())
	require.Equal(t, "x", first.Name())
	last, ok := constants[2].(*object.Symbol)
	require.True(t, ok)
	require.False(t, last.Interned())
	require.NotSame(t, first, last)

	list, ok := constants[1].(*object.Cons)
	require.True(t, ok)
	require.Same(t, first, list.Car())
	rest, ok := list.Cdr().(*object.Cons)
	require.True(t, ok)
	require.Same(t, last, rest.Car())

	_, found := obarray.Lookup("x")
	require.False(t, found)
	y, found := obarray.Lookup("y")
	require.True(t, found)
	require.Same(t, y, constants[3])
}
