package vm

import (
	"context"
	"errors"

	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
)

type handlerKind uint8

const (
	catchHandler handlerKind = iota
	conditionCaseHandler
)

func (k handlerKind) String() string {
	if k == catchHandler {
		return "catch"
	}
	return "condition-case"
}

// handler is a catch or condition-case established by pushcatch or
// pushconditioncase.
type handler struct {
	kind handlerKind
	// tag is the catch tag or the condition spec.
	tag          object.Object
	target       int
	stackDepth   int
	bindingDepth int
	owner        *frame
}

func (s *Session) pushHandler(fr *frame, kind handlerKind, tag object.Object, target int) error {
	if target < 0 || target >= len(fr.code) {
		return fr.fatal(errz.ErrDecode, "handler target %d out of range (code length %d)",
			target, len(fr.code))
	}
	s.handlers = append(s.handlers, handler{
		kind:         kind,
		tag:          tag,
		target:       target,
		stackDepth:   fr.depth(),
		bindingDepth: len(s.specpdl),
		owner:        fr,
	})
	return nil
}

func (s *Session) popHandler(fr *frame) error {
	n := len(s.handlers)
	if n <= fr.handlerBase {
		return fr.fatal(errz.ErrStack, "pophandler with no handler established")
	}
	s.handlers[n-1] = handler{}
	s.handlers = s.handlers[:n-1]
	return nil
}

// findHandler searches the frame's handlers from the top for the nearest
// one matching the exit. It returns the handler index and the value to
// resume with, or -1.
func (s *Session) findHandler(fr *frame, exit error) (int, object.Object) {
	var thr *object.Throw
	if errors.As(exit, &thr) {
		for i := len(s.handlers) - 1; i >= fr.handlerBase; i-- {
			h := s.handlers[i]
			if h.kind == catchHandler && h.tag == thr.Tag {
				return i, thr.Value
			}
		}
		return -1, nil
	}
	var sig *object.Signal
	if errors.As(exit, &sig) {
		for i := len(s.handlers) - 1; i >= fr.handlerBase; i-- {
			h := s.handlers[i]
			if h.kind == conditionCaseHandler && sig.Handles(h.tag) {
				return i, sig.Payload()
			}
		}
	}
	return -1, nil
}

// handleExit transfers control to the handler matching a signal or throw.
// It returns nil when execution can resume in fr, or the error to propagate
// out of the frame. A cleanup that raises a new exit while unwinding to the
// handler restarts the search with that exit.
func (s *Session) handleExit(ctx context.Context, fr *frame, exit error) error {
	for {
		if !object.IsNonLocalExit(exit) {
			return exit
		}
		idx, value := s.findHandler(fr, exit)
		if idx < 0 {
			return exit
		}
		h := s.handlers[idx]
		if h.owner != fr || h.stackDepth > fr.depth() || h.bindingDepth > len(s.specpdl) {
			return fr.fatal(errz.ErrInternal,
				"corrupt %s handler: stack depth %d/%d, binding depth %d/%d",
				h.kind, h.stackDepth, fr.depth(), h.bindingDepth, len(s.specpdl))
		}
		for i := idx; i < len(s.handlers); i++ {
			s.handlers[i] = handler{}
		}
		s.handlers = s.handlers[:idx]
		if err := s.unbindTo(ctx, h.bindingDepth); err != nil {
			exit = err
			continue
		}
		fr.truncate(h.stackDepth)
		if err := fr.push(value); err != nil {
			return err
		}
		fr.pc = h.target
		s.logger.Debug().
			Str("handler", h.kind.String()).
			Int("target", h.target).
			Int("stack", h.stackDepth).
			Msg("resuming at handler")
		return nil
	}
}

// internalCatch runs body and returns the value of a throw to tag that
// escapes it. The binding and handler stacks are restored to their depths
// at entry.
func (s *Session) internalCatch(
	ctx context.Context,
	tag object.Object,
	body func(ctx context.Context) (object.Object, error),
) (object.Object, error) {
	specDepth, handlerDepth := len(s.specpdl), len(s.handlers)
	result, err := body(ctx)
	if err == nil {
		return result, nil
	}
	var thr *object.Throw
	if !errors.As(err, &thr) || thr.Tag != tag {
		return nil, err
	}
	if len(s.handlers) > handlerDepth {
		s.handlers = s.handlers[:handlerDepth]
	}
	if err := s.unbindTo(ctx, specDepth); err != nil {
		return nil, err
	}
	return thr.Value, nil
}
