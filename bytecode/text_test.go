package bytecode

import (
	"testing"

	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/stretchr/testify/require"
)

const chooseSource = `
; returns "yes" when the argument is non-nil
.name choose
.maxdepth 4
.args 1 1
	dup
	goto-if-nil else   ; branch
	push "yes"
	return
else:
	push "no;x"
	return
`

func TestParse(t *testing.T) {
	bc, err := ParseString(chooseSource, object.NewObarray())
	require.NoError(t, err)
	require.Equal(t, "choose", bc.Name())
	require.Equal(t, 4, bc.MaxDepth())
	tmpl, err := object.NewArgTemplate(1, 1, false)
	require.NoError(t, err)
	require.Equal(t, tmpl, bc.Template())
	require.Equal(t, []byte{0o211, 0o203, 6, 0, 0o300, 0o207, 0o301, 0o207}, bc.Code())
	require.True(t, object.Equal(object.NewString("no;x"), bc.Constants()[1]))
}

func TestParseOperands(t *testing.T) {
	ob := object.NewObarray()
	bc, err := ParseString(`
.const 10
.args dynamic
	varref foo
	varset 'foo
	constant 0
	constant '(1 2)
	call 7
	stack-ref 2
	listN 9
	return
`, ob)
	require.NoError(t, err)
	require.Equal(t, object.NoArgTemplate, bc.Template())
	require.Equal(t, DefaultMaxDepth, bc.MaxDepth())
	foo, ok := ob.Lookup("foo")
	require.True(t, ok)
	constants := bc.Constants()
	require.Len(t, constants, 3)
	require.Equal(t, object.Int(10), constants[0])
	require.Same(t, foo, constants[1])
	require.Equal(t, []byte{
		byte(op.Varref) + 1,
		byte(op.Varset) + 1,
		byte(op.Constant),
		byte(op.Constant) + 2,
		byte(op.Call) + 6, 7,
		byte(op.StackRef) + 2,
		byte(op.ListN), 9,
		byte(op.Return),
	}, bc.Code())
}

func TestParseSwitch(t *testing.T) {
	bc, err := ParseString(`
	switch eq a one b two
	push nil
	return
one:
	push 1
	return
two:
	push 2
	return
`, object.NewObarray())
	require.NoError(t, err)
	table, ok := bc.Constants()[0].(*object.HashTable)
	require.True(t, ok)
	require.Same(t, object.HashEq, table.Test())
	require.Equal(t, 2, table.Count())
	require.NoError(t, Verify(bc))
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString(`
	frobnicate
	dup 3
	varref
	.args 2 1
	.bogus
`, object.NewObarray())
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, `line 2: unknown mnemonic "frobnicate"`)
	require.Contains(t, msg, "line 3: dup takes no operand")
	require.Contains(t, msg, "line 4: varref requires an operand")
	require.Contains(t, msg, "line 5:")
	require.Contains(t, msg, `line 6: unknown directive ".bogus"`)
}

func TestLookupMnemonic(t *testing.T) {
	code, ok := LookupMnemonic("varref")
	require.True(t, ok)
	require.Equal(t, op.Varref, code)
	code, ok = LookupMnemonic("constant")
	require.True(t, ok)
	require.Equal(t, op.Constant, code)
	_, ok = LookupMnemonic("nope")
	require.False(t, ok)
}

func TestParseDefaultMaxDepth(t *testing.T) {
	bc, err := ParseString("return", object.NewObarray(), WithDefaultMaxDepth(7))
	require.NoError(t, err)
	require.Equal(t, 7, bc.MaxDepth())

	bc, err = ParseString(".maxdepth 3\nreturn", object.NewObarray(), WithDefaultMaxDepth(7))
	require.NoError(t, err)
	require.Equal(t, 3, bc.MaxDepth())
}
