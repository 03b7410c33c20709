package vm

import (
	"context"
	"testing"

	"github.com/jsjolen/remacs/bytecode"
	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/stretchr/testify/require"
)

func TestFatalErrors(t *testing.T) {
	tests := []struct {
		name      string
		bc        []byte
		constants []object.Object
		maxDepth  int
		kind      errz.ErrorKind
		offset    int
	}{
		{"invalid opcode", code(constant(0), 0o63), ints(1), 1, errz.ErrDecode, 1},
		{"obsolete opcode", code(op.ConditionCase), nil, 1, errz.ErrDecode, 0},
		{"truncated operand", code(op.Goto, 1), nil, 1, errz.ErrDecode, 0},
		{"constant out of range", code(constant(3), op.Return), ints(1), 1, errz.ErrDecode, 0},
		{"underflow", code(op.Return), nil, 1, errz.ErrStack, 0},
		{"binary underflow", code(constant(0), op.Eq, op.Return), ints(1), 2, errz.ErrStack, 1},
		{"overflow", code(constant(0), constant(0), op.Return), ints(1), 1, errz.ErrStack, 1},
		{"varref non-symbol", code(op.Varref, op.Return), ints(1), 1, errz.ErrType, 0},
		{"jump out of range", code(op.Goto, 100, 0), nil, 1, errz.ErrDecode, 0},
		{"fell off the end", code(constant(0)), ints(1), 1, errz.ErrDecode, 1},
		{"pushcatch target out of range", code(constant(0), op.Pushcatch, 50, 0), ints(1), 1, errz.ErrDecode, 1},
		{"switch on non-table", code(constant(0), constant(0), op.Switch), ints(1), 2, errz.ErrType, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := execute(t, s, tt.bc, tt.constants, tt.maxDepth)
			vmErr := requireFatal(t, err, tt.kind)
			require.Equal(t, tt.offset, vmErr.Offset)
			if tt.offset < len(tt.bc) {
				require.Equal(t, tt.bc[tt.offset], vmErr.Opcode)
			}
			require.Equal(t, 0, s.BindingDepth())
			require.Equal(t, 0, s.HandlerDepth())
		})
	}
}

func TestFatalErrorNotCatchable(t *testing.T) {
	var log []string
	bc := code(
		constant(0), op.Pushconditioncase, 7, 0,
		constant(1), op.UnwindProtect,
		0o63,
		op.Return, // 7
	)
	_, err := execute(t, New(), bc, consts(object.T, recorder(&log, "cleanup", nil)), 2)
	requireFatal(t, err, errz.ErrDecode)
	require.Equal(t, []string{"cleanup"}, log)
}

func TestFatalErrorKeptOverCleanupExit(t *testing.T) {
	var log []string
	cleanup := recorder(&log, "cleanup", object.NewThrow(testSymbol("tag"), object.Nil))
	bc := code(constant(0), op.UnwindProtect, 0o63)
	_, err := execute(t, New(), bc, consts(cleanup), 1)
	requireFatal(t, err, errz.ErrDecode)
}

func TestFatalErrorStackTrace(t *testing.T) {
	inner := object.NewByteCode(object.ByteCodeParams{
		Name:     "inner",
		Code:     code(op.Dup),
		MaxDepth: 2,
		Template: object.NoArgTemplate,
	})
	outer := object.NewByteCode(object.ByteCodeParams{
		Name:      "outer",
		Code:      code(constant(0), op.Call, op.Return),
		Constants: consts(inner),
		MaxDepth:  1,
		Template:  object.NoArgTemplate,
	})
	_, err := New().Call(context.Background(), outer, nil)
	vmErr := requireFatal(t, err, errz.ErrStack)
	require.Len(t, vmErr.Stack, 2)
	require.Equal(t, "inner", vmErr.Stack[0].Function)
	require.Equal(t, "outer", vmErr.Stack[1].Function)
	require.Equal(t, 1, vmErr.Stack[1].Offset)
}

func TestSwitch(t *testing.T) {
	a, b := object.Intern("a"), object.Intern("b")
	asm := bytecode.NewAssembler("switch")
	asm.Switch(object.HashEq, []bytecode.Case{
		{Key: a, Label: "a"},
		{Key: b, Label: "b"},
	}).
		PushConst(object.Intern("none")).Op(op.Return).
		Label("a").PushConst(object.Int(1)).Op(op.Return).
		Label("b").PushConst(object.Int(2)).Op(op.Return)
	fn, err := asm.Assemble(2, object.NoArgTemplate)
	require.NoError(t, err)

	s := New()
	for _, tt := range []struct {
		arg      object.Object
		expected object.Object
	}{
		{a, object.Int(1)},
		{b, object.Int(2)},
		{object.Intern("c"), object.Intern("none")},
	} {
		result, err := s.Call(context.Background(), fn, []object.Object{tt.arg})
		require.NoError(t, err)
		require.Equal(t, tt.expected, result)
	}
}

func TestSwitchLargeTable(t *testing.T) {
	asm := bytecode.NewAssembler("")
	var cases []bytecode.Case
	for i := 0; i < 10; i++ {
		cases = append(cases, bytecode.Case{Key: object.NewString(string(rune('a' + i))), Label: string(rune('a' + i))})
	}
	asm.Switch(object.HashEqual, cases).PushConst(object.Nil).Op(op.Return)
	for i := 0; i < 10; i++ {
		asm.Label(string(rune('a' + i))).PushConst(object.Int(int64(i))).Op(op.Return)
	}
	fn, err := asm.Assemble(2, object.NoArgTemplate)
	require.NoError(t, err)

	s := New()
	result, err := s.Call(context.Background(), fn, []object.Object{object.NewString("h")})
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Int(7)), result)

	result, err = s.Call(context.Background(), fn, []object.Object{object.NewString("z")})
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Nil), result)
}

func TestSwitchScanMatchesLookup(t *testing.T) {
	for _, test := range []*object.Symbol{object.HashEq, object.HashEql, object.HashEqual} {
		table, err := object.NewHashTable(test)
		require.NoError(t, err)
		keys := []object.Object{object.Int(1), object.NewFloat(2.5), object.NewString("s"), object.Intern("k")}
		for i, k := range keys {
			table.Put(k, object.Int(i))
		}
		lookups := append(keys, object.NewFloat(2.5), object.NewString("s"), object.Int(9))
		for _, key := range lookups {
			scanned, scanOK := switchLookup(table, key)
			looked, lookOK := table.Get(key)
			require.Equal(t, lookOK, scanOK, "%s %s", test.Name(), object.Inspect(key))
			require.Equal(t, looked, scanned)
		}
	}
}

func TestSwitchContainerKeys(t *testing.T) {
	table, err := object.NewHashTable(object.HashEqual)
	require.NoError(t, err)
	x1, x2 := object.NewSymbol("x"), object.NewSymbol("x")
	inner, _ := object.NewHashTable(object.HashEq)
	other, _ := object.NewHashTable(object.HashEq)
	third, _ := object.NewHashTable(object.HashEq)
	keys := []object.Object{
		object.NewList(x1),
		object.NewList(x2),
		object.NewList(inner),
		object.NewList(other),
		object.NewVector(object.NewString("a"), object.Int(1)),
		object.NewList(object.Int(1), object.NewList(object.Int(2), object.Int(3))),
		object.NewString("plain"),
	}
	for i, k := range keys {
		table.Put(k, object.Int(i))
	}
	require.Equal(t, len(keys), table.Count())

	scan := func(v object.Object) (object.Object, bool) {
		var found object.Object
		table.Each(func(key, value object.Object) {
			if found == nil && object.Equal(key, v) {
				found = value
			}
		})
		return found, found != nil
	}
	lookups := append([]object.Object{
		object.NewList(object.NewSymbol("x")),
		object.NewList(x2),
		object.NewList(third),
		object.NewVector(object.NewString("a"), object.Int(1)),
		object.NewList(object.Int(1), object.NewList(object.Int(2), object.Int(4))),
	}, keys...)
	for _, key := range lookups {
		want, wantOK := scan(key)
		got, gotOK := switchLookup(table, key)
		require.Equal(t, wantOK, gotOK, object.Inspect(key))
		require.Equal(t, want, got, object.Inspect(key))
	}
	got, ok := switchLookup(table, object.NewList(x2))
	require.True(t, ok)
	require.Equal(t, object.Object(object.Int(1)), got)
	_, ok = switchLookup(table, object.NewList(object.NewSymbol("x")))
	require.False(t, ok)
}

func TestEvalDepth(t *testing.T) {
	self := object.NewSymbol("recurse")
	fn := object.NewByteCode(object.ByteCodeParams{
		Name:      "recurse",
		Code:      code(constant(0), op.Call, op.Return),
		Constants: consts(self),
		MaxDepth:  1,
		Template:  object.NoArgTemplate,
	})
	require.NoError(t, self.SetFunction(fn))
	s := New(WithMaxEvalDepth(20))
	_, err := s.Funcall(context.Background(), self, nil)
	sig := requireSignal(t, err, object.ExcessiveLispNesting)
	requireEqual(t, object.NewList(object.Int(20)), sig.Data)

	// The session is reusable afterwards.
	result, err := execute(t, s, code(constant(0), op.Return), ints(1), 1)
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Int(1)), result)
}

func TestContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Execute(ctx, code(op.Goto, 0, 0), nil, 1, object.NoArgTemplate, nil)
	requireSignal(t, err, object.Quit)
}

func TestContextCancelQuitsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := object.NewSubr("stop", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		cancel()
		return object.Nil, nil
	})
	bc := code(constant(0), op.Call, op.Discard, op.Goto, 3, 0)
	_, err := New(WithContextCheckInterval(10)).Execute(ctx, bc, consts(stop), 1, object.NoArgTemplate, nil)
	requireSignal(t, err, object.Quit)
}

func TestQuitIsCatchable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := object.NewSubr("stop", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		cancel()
		return object.Nil, nil
	})
	bc := code(
		constant(0), op.Pushconditioncase, 10, 0, // 0
		constant(1), op.Call, op.Discard,         // 4
		op.Goto, 7, 0,                            // 7
		op.Car, op.Return,                        // 10
	)
	s := New(WithContextCheckInterval(3))
	result, err := s.Execute(ctx, bc, consts(object.Quit, stop), 1, object.NoArgTemplate, nil)
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Quit), result)
}

func TestPanicRecovery(t *testing.T) {
	x := testSymbol("x")
	require.NoError(t, x.SetValue(object.Int(1)))
	boom := object.NewSubr("boom", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		panic("boom")
	})
	bc := code(constant(1), op.Varbind, constant(2), op.Call, op.Return)
	s := New()
	_, err := execute(t, s, bc, consts(x, object.Int(10), boom), 1)
	vmErr := requireFatal(t, err, errz.ErrInternal)
	require.Contains(t, vmErr.Message, "boom")
	require.Equal(t, 3, vmErr.Offset)
	v, _ := x.Value()
	require.Equal(t, object.Object(object.Int(1)), v)
	require.Equal(t, 0, s.BindingDepth())
}

func TestSessionNotReentrant(t *testing.T) {
	s := New()
	var inner error
	reenter := object.NewSubr("reenter", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		_, inner = s.Funcall(ctx, object.Intern("list"), nil)
		return object.Nil, nil
	})
	_, err := execute(t, s, code(constant(0), op.Call, op.Return), consts(reenter), 1)
	require.NoError(t, err)
	require.Error(t, inner)
	require.Contains(t, inner.Error(), "already running")
}

func TestFuncallPrimitive(t *testing.T) {
	result, err := New().Funcall(context.Background(), object.Intern("+"), ints(1, 2, 3))
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Int(6)), result)
}
