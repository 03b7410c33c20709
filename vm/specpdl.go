package vm

import (
	"context"

	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
)

type specKind uint8

const (
	specLet specKind = iota
	specUnwind
)

// specBinding is one entry of the binding stack: either a dynamic binding
// to undo or a cleanup to run.
type specBinding struct {
	kind    specKind
	symbol  *object.Symbol
	saved   object.Object
	cleanup func(ctx context.Context) error
}

func (s *Session) reserveSpecpdl() error {
	if s.maxSpecpdlSize > 0 && len(s.specpdl) >= s.maxSpecpdlSize {
		return object.NewSignal(object.ExcessiveVariableBinding, object.Int(s.maxSpecpdlSize))
	}
	return nil
}

// specbind dynamically binds sym to value, saving its previous value.
func (s *Session) specbind(sym *object.Symbol, value object.Object) error {
	if sym.IsConstant() {
		return object.NewSignal(object.SettingConstant, sym)
	}
	if err := s.reserveSpecpdl(); err != nil {
		return err
	}
	s.specpdl = append(s.specpdl, specBinding{
		kind:   specLet,
		symbol: sym,
		saved:  sym.RawValue(),
	})
	sym.RestoreValue(value)
	return nil
}

// recordUnwind pushes a cleanup that runs when the entry is unbound, either
// by an unbind instruction or by a non-local exit passing through.
func (s *Session) recordUnwind(cleanup func(ctx context.Context) error) error {
	if err := s.reserveSpecpdl(); err != nil {
		return err
	}
	s.specpdl = append(s.specpdl, specBinding{kind: specUnwind, cleanup: cleanup})
	return nil
}

// unbind pops n entries bound by the frame.
func (s *Session) unbind(ctx context.Context, fr *frame, n int) error {
	depth := len(s.specpdl) - n
	if depth < fr.specBase {
		return fr.fatal(errz.ErrStack, "unbind %d exceeds the %d bindings of this frame",
			n, len(s.specpdl)-fr.specBase)
	}
	return s.unbindTo(ctx, depth)
}

// unbindTo pops entries until the binding stack has the given depth,
// restoring saved values and running cleanups in LIFO order. Every entry is
// popped even if a cleanup fails. A non-local exit raised by a cleanup
// replaces any earlier one. A fatal error is never replaced.
func (s *Session) unbindTo(ctx context.Context, depth int) error {
	var exit error
	for len(s.specpdl) > depth {
		i := len(s.specpdl) - 1
		b := s.specpdl[i]
		s.specpdl[i] = specBinding{}
		s.specpdl = s.specpdl[:i]
		switch b.kind {
		case specLet:
			b.symbol.RestoreValue(b.saved)
		case specUnwind:
			if err := b.cleanup(ctx); err != nil && !errz.IsFatal(exit) {
				exit = err
			}
		}
	}
	return exit
}

// restoreBindings undoes dynamic bindings down to depth without running
// cleanups. It is used after a panic, when running more code is unsafe.
func (s *Session) restoreBindings(depth int) {
	for len(s.specpdl) > depth {
		i := len(s.specpdl) - 1
		if b := s.specpdl[i]; b.kind == specLet {
			b.symbol.RestoreValue(b.saved)
		}
		s.specpdl[i] = specBinding{}
		s.specpdl = s.specpdl[:i]
	}
}
