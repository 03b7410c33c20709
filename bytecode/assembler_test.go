package bytecode

import (
	"testing"

	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/stretchr/testify/require"
)

func TestAssembleConstants(t *testing.T) {
	a := NewAssembler("add")
	a.PushConst(object.Int(1)).PushConst(object.Int(2)).Op(op.Plus).PushConst(object.Int(1)).Op(op.Return)
	bc, err := a.Assemble(2, object.NoArgTemplate)
	require.NoError(t, err)
	require.Equal(t, "add", bc.Name())
	require.Equal(t, []byte{0o300, 0o301, 0o134, 0o300, 0o207}, bc.Code())
	require.Len(t, bc.Constants(), 2)
	require.Equal(t, 2, bc.MaxDepth())
}

func TestAssembleAbsoluteJump(t *testing.T) {
	a := NewAssembler("")
	a.PushConst(object.Nil).
		Jump(op.Gotoifnil, "else").
		PushConst(object.Int(1)).
		Op(op.Return).
		Label("else").
		PushConst(object.Int(2)).
		Op(op.Return)
	bc, err := a.Assemble(1, object.NoArgTemplate)
	require.NoError(t, err)
	require.Equal(t, []byte{0o300, 0o203, 6, 0, 0o301, 0o207, 0o302, 0o207}, bc.Code())
}

func TestAssembleRelativeJump(t *testing.T) {
	a := NewAssembler("")
	a.PushConst(object.Nil).
		Jump(op.RGotoifnil, "else").
		PushConst(object.Int(1)).
		Op(op.Return).
		Label("else").
		PushConst(object.Int(2)).
		Op(op.Return)
	bc, err := a.Assemble(1, object.NoArgTemplate)
	require.NoError(t, err)
	require.Equal(t, []byte{0o300, 0o253, 130, 0o301, 0o207, 0o302, 0o207}, bc.Code())

	instr, err := op.Decode(bc.Code(), 1)
	require.NoError(t, err)
	require.Equal(t, 5, 1+instr.Size+instr.Arg)
}

func TestAssembleBackwardJump(t *testing.T) {
	a := NewAssembler("")
	a.Label("top").PushConst(object.T).Jump(op.RGotoifnonnil, "top").Jump(op.Goto, "top")
	bc, err := a.Assemble(1, object.NoArgTemplate)
	require.NoError(t, err)
	// Rgoto-if-not-nil at 1 with its operand at 2: target 0 = 3 + (-3).
	require.Equal(t, []byte{0o300, 0o254, 125, 0o202, 0, 0}, bc.Code())
}

func TestAssembleSwitch(t *testing.T) {
	a := NewAssembler("")
	a.StackRef(0).
		Switch(object.HashEql, []Case{
			{Key: object.Int(1), Label: "one"},
			{Key: object.Int(2), Label: "two"},
		}).
		PushConst(object.Nil).
		Op(op.Return).
		Label("one").
		PushConst(object.Intern("one")).
		Op(op.Return).
		Label("two").
		PushConst(object.Intern("two")).
		Op(op.Return)
	bc, err := a.Assemble(3, object.NoArgTemplate)
	require.NoError(t, err)

	table, ok := bc.Constants()[0].(*object.HashTable)
	require.True(t, ok)
	one, ok := table.Get(object.Int(1))
	require.True(t, ok)
	two, ok := table.Get(object.Int(2))
	require.True(t, ok)
	// stack-ref 0, constant 0, switch, constant 1, return
	require.Equal(t, object.Int(5), one)
	require.Equal(t, object.Int(7), two)
}

func TestAssembleErrors(t *testing.T) {
	a := NewAssembler("broken")
	a.Jump(op.Goto, "missing").Label("x").Label("x").Jump(op.Dup, "x")
	_, err := a.Assemble(1, object.NoArgTemplate)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
	require.Contains(t, err.Error(), `undefined label "missing"`)
	require.Contains(t, err.Error(), `duplicate label "x"`)
	require.Contains(t, err.Error(), "dup is not a branch")
}

func TestAssembleRelativeOutOfRange(t *testing.T) {
	a := NewAssembler("")
	a.Jump(op.RGoto, "far")
	for i := 0; i < 200; i++ {
		a.Op(op.Dup)
	}
	a.Label("far").Op(op.Return)
	_, err := a.Assemble(1, object.NoArgTemplate)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}
