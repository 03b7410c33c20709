package vm

import (
	"context"
	"testing"

	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/stretchr/testify/require"
)

// fakeEditor provides the buffer primitives the save-* opcodes rely on.
type fakeEditor struct {
	buffer      object.Object
	point       object.Object
	restriction object.Object
}

func (e *fakeEditor) install(t *testing.T, ob *object.Obarray) {
	def := func(name string, min, max int, fn object.BuiltinFunction) {
		require.NoError(t, ob.Intern(name).SetFunction(object.NewSubr(name, min, max, fn)))
	}
	def("current-buffer", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return e.buffer, nil
	})
	def("set-buffer", 1, 1, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		e.buffer = args[0]
		return args[0], nil
	})
	def("point", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return e.point, nil
	})
	def("goto-char", 1, 1, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		e.point = args[0]
		return args[0], nil
	})
	def("save-restriction-save", 0, 0, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return e.restriction, nil
	})
	def("save-restriction-restore", 1, 1, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		e.restriction = args[0]
		return object.Nil, nil
	})
	def("narrow-to-region", 2, 2, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		e.restriction = object.NewCons(args[0], args[1])
		return object.Nil, nil
	})
}

func newEditorSession(t *testing.T) (*Session, *fakeEditor, *object.Obarray) {
	t.Helper()
	ob := object.NewObarray()
	ed := &fakeEditor{
		buffer:      object.NewString("main"),
		point:       object.Int(1),
		restriction: object.Nil,
	}
	ed.install(t, ob)
	return New(WithObarray(ob)), ed, ob
}

func TestSaveCurrentBuffer(t *testing.T) {
	s, ed, _ := newEditorSession(t)
	other := object.NewString("other")
	bc := code(
		op.SaveCurrentBuffer,
		constant(0), op.SetBuffer, op.Discard,
		op.CurrentBuffer,
		op.Unbind+1,
		op.Return,
	)
	result, err := execute(t, s, bc, consts(other), 1)
	require.NoError(t, err)
	require.Same(t, other, result)
	require.Equal(t, "main", object.Princ(ed.buffer))
}

func TestSaveExcursionOnExit(t *testing.T) {
	s, ed, ob := newEditorSession(t)
	bc := code(
		op.SaveExcursion,
		constant(0), op.SetBuffer, op.Discard,
		constant(1), op.GotoChar, op.Discard,
		constant(2), op.Call, // void function
		op.Return,
	)
	_, err := execute(t, s, bc, consts(object.NewString("other"), object.Int(50), ob.Intern("missing")), 1)
	requireSignal(t, err, object.VoidFunction)
	require.Equal(t, "main", object.Princ(ed.buffer))
	require.Equal(t, object.Object(object.Int(1)), ed.point)
}

func TestSaveRestriction(t *testing.T) {
	s, ed, _ := newEditorSession(t)
	bc := code(
		op.SaveRestriction,
		constant(0), constant(1), op.NarrowToRegion, op.Discard,
		op.Unbind+1,
		constant(0),
		op.Return,
	)
	_, err := execute(t, s, bc, ints(2, 5), 2)
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Nil), ed.restriction)
}

func TestMissingBufferPrimitive(t *testing.T) {
	_, err := execute(t, New(WithObarray(object.NewObarray())), code(op.Point, op.Return), nil, 1)
	sig := requireSignal(t, err, object.VoidFunction)
	require.Equal(t, "point", object.Princ(sig.Data.(*object.Cons).Car()))
}
