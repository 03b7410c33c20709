package vm

import (
	"context"

	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

// switchScanLimit is the table size up to which switch scans entries
// instead of hashing. Both give the same result.
const switchScanLimit = 5

func (f *frame) branch(code op.Code, target int) error {
	switch code {
	case op.Goto, op.RGoto:
		return f.jump(target)
	case op.Gotoifnil, op.RGotoifnil, op.Gotoifnonnil, op.RGotoifnonnil:
		v, err := f.pop()
		if err != nil {
			return err
		}
		wantNil := code == op.Gotoifnil || code == op.RGotoifnil
		if object.IsNil(v) == wantNil {
			return f.jump(target)
		}
		return nil
	default:
		// The else-pop variants leave the tested value on the stack when
		// they jump.
		v, err := f.top()
		if err != nil {
			return err
		}
		wantNil := code == op.Gotoifnilelsepop || code == op.RGotoifnilelsepop
		if object.IsNil(v) == wantNil {
			return f.jump(target)
		}
		_, err = f.pop()
		return err
	}
}

func (f *frame) unary(fn func(object.Object) object.Object) error {
	v, err := f.top()
	if err != nil {
		return err
	}
	return f.setTop(fn(v))
}

func (f *frame) binary(fn func(a, b object.Object) object.Object) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.top()
	if err != nil {
		return err
	}
	return f.setTop(fn(a, b))
}

func (f *frame) list(n int) error {
	items, err := f.popN(n)
	if err != nil {
		return err
	}
	return f.push(object.NewList(items...))
}

// doSwitch pops a jump table and a value and jumps to the table entry for
// the value, if there is one.
func (s *Session) doSwitch(fr *frame) error {
	tbl, err := fr.pop()
	if err != nil {
		return err
	}
	v, err := fr.pop()
	if err != nil {
		return err
	}
	ht, ok := tbl.(*object.HashTable)
	if !ok {
		return fr.fatal(errz.ErrType, "switch table is a %s, not a hash table", tbl.Type())
	}
	target, found := switchLookup(ht, v)
	if !found {
		return nil
	}
	pc, ok := target.(object.Int)
	if !ok {
		return fr.fatal(errz.ErrType, "switch target %s is not an integer", object.Inspect(target))
	}
	return fr.jump(int(pc))
}

func switchLookup(ht *object.HashTable, v object.Object) (object.Object, bool) {
	if ht.Count() > switchScanLimit {
		return ht.Get(v)
	}
	same := object.Eql
	switch ht.Test() {
	case object.HashEq:
		same = object.Eq
	case object.HashEqual:
		same = object.Equal
	}
	var target object.Object
	found := false
	ht.Each(func(key, value object.Object) {
		if !found && same(key, v) {
			target, found = value, true
		}
	})
	return target, found
}

// callPrimitive pops n operands and applies the named primitive to them.
func (s *Session) callPrimitive(ctx context.Context, fr *frame, name string, n int) error {
	args, err := fr.popN(n)
	if err != nil {
		return err
	}
	v, err := s.callNamed(ctx, name, args...)
	if err != nil {
		return err
	}
	return fr.push(v)
}

// unwindProtect pops a cleanup function and records it on the binding
// stack.
func (s *Session) unwindProtect(fr *frame) error {
	handler, err := fr.pop()
	if err != nil {
		return err
	}
	if !isCallable(handler) {
		return object.NewSignal(object.InvalidFunction, handler)
	}
	return s.recordUnwind(func(ctx context.Context) error {
		_, err := s.funcall(ctx, handler, nil)
		return err
	})
}

func (s *Session) saveCurrentBuffer(ctx context.Context) error {
	buf, err := s.callNamed(ctx, "current-buffer")
	if err != nil {
		return err
	}
	return s.recordUnwind(func(ctx context.Context) error {
		_, err := s.callNamed(ctx, "set-buffer", buf)
		return err
	})
}

func (s *Session) saveExcursion(ctx context.Context) error {
	buf, err := s.callNamed(ctx, "current-buffer")
	if err != nil {
		return err
	}
	pt, err := s.callNamed(ctx, "point")
	if err != nil {
		return err
	}
	return s.recordUnwind(func(ctx context.Context) error {
		if _, err := s.callNamed(ctx, "set-buffer", buf); err != nil {
			return err
		}
		_, err := s.callNamed(ctx, "goto-char", pt)
		return err
	})
}

func (s *Session) saveRestriction(ctx context.Context) error {
	state, err := s.callNamed(ctx, "save-restriction-save")
	if err != nil {
		return err
	}
	return s.recordUnwind(func(ctx context.Context) error {
		_, err := s.callNamed(ctx, "save-restriction-restore", state)
		return err
	})
}

// legacyCatch pops a body function and replaces the tag below it with the
// body's result, or with the value of a throw to the tag.
func (s *Session) legacyCatch(ctx context.Context, fr *frame) error {
	body, err := fr.pop()
	if err != nil {
		return err
	}
	tag, err := fr.top()
	if err != nil {
		return err
	}
	if !isCallable(body) {
		return object.NewSignal(object.InvalidFunction, body)
	}
	result, err := s.internalCatch(ctx, tag, func(ctx context.Context) (object.Object, error) {
		return s.funcall(ctx, body, nil)
	})
	if err != nil {
		return err
	}
	return fr.setTop(result)
}
