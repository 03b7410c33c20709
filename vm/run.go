package vm

import (
	"context"

	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

// exec runs a compiled procedure in a new frame.
func (s *Session) exec(ctx context.Context, fn *object.ByteCode, args []object.Object) (object.Object, error) {
	fr := newFrame(fn, len(s.specpdl), len(s.handlers))
	s.frames = append(s.frames, fr)

	result, err := s.enter(ctx, fr, args)

	// Whatever the frame left behind is unwound here, on return as well as
	// on exit. Fatal errors are never replaced by an exit from a cleanup.
	if len(s.handlers) > fr.handlerBase {
		s.handlers = s.handlers[:fr.handlerBase]
	}
	if uerr := s.unbindTo(ctx, fr.specBase); uerr != nil && !errz.IsFatal(err) {
		result, err = nil, uerr
	}
	s.frames = s.frames[:len(s.frames)-1]

	if vmErr, ok := errz.AsVMError(err); ok {
		vmErr.AddFrame(fr.name(), fr.opOffset)
	}
	return result, err
}

func (s *Session) enter(ctx context.Context, fr *frame, args []object.Object) (object.Object, error) {
	if err := bindArgs(fr, fr.fn.Template(), args); err != nil {
		return nil, err
	}
	if s.contextCheckInterval > 0 && ctx.Err() != nil {
		return nil, object.NewSignal(object.Quit)
	}
	return s.eval(ctx, fr)
}

// eval is the dispatch loop. It returns when the frame executes return or
// when an exit finds no handler in this frame.
func (s *Session) eval(ctx context.Context, fr *frame) (object.Object, error) {
	for {
		err := s.checkContext(ctx)
		var result object.Object
		var done bool
		if err == nil {
			result, done, err = s.step(ctx, fr)
		}
		if err != nil {
			if err = s.handleExit(ctx, fr, err); err != nil {
				return nil, err
			}
			continue
		}
		if done {
			return result, nil
		}
	}
}

// checkContext signals quit once the context is done. It only looks every
// contextCheckInterval instructions.
func (s *Session) checkContext(ctx context.Context) error {
	if s.contextCheckInterval <= 0 {
		return nil
	}
	s.instructionCount++
	if s.instructionCount < s.contextCheckInterval {
		return nil
	}
	s.instructionCount = 0
	select {
	case <-ctx.Done():
		s.logger.Debug().Err(ctx.Err()).Msg("context done, signaling quit")
		return object.NewSignal(object.Quit)
	default:
		return nil
	}
}

func (s *Session) observeStep(fr *frame, instr op.Instruction) bool {
	if s.observer == nil {
		return true
	}
	switch s.observerConfig.StepMode {
	case StepNone:
		return true
	case StepSampled:
		s.stepCount++
		if s.stepCount < s.observerConfig.SampleInterval {
			return true
		}
		s.stepCount = 0
	}
	return s.observer.OnStep(StepEvent{
		Offset:       fr.opOffset,
		Opcode:       instr.Op,
		OpcodeName:   instr.Info().Name,
		Operand:      instr.Arg,
		StackDepth:   fr.depth(),
		BindingDepth: len(s.specpdl),
		HandlerDepth: len(s.handlers),
		FrameDepth:   len(s.frames),
	})
}

// step executes one instruction. done is true when the frame returned
// result.
func (s *Session) step(ctx context.Context, fr *frame) (result object.Object, done bool, err error) {
	if fr.pc < 0 || fr.pc >= len(fr.code) {
		fr.opOffset, fr.opcode = fr.pc, 0
		return nil, false, fr.fatal(errz.ErrDecode, "pc %d outside code of length %d", fr.pc, len(fr.code))
	}
	fr.opOffset, fr.opcode = fr.pc, fr.code[fr.pc]
	instr, derr := op.Decode(fr.code, fr.pc)
	if derr != nil {
		return nil, false, fr.fatal(errz.ErrDecode, "%v", derr).WithCause(derr)
	}
	fr.pc += instr.Size

	if !s.observeStep(fr, instr) {
		return nil, false, ErrHalted
	}

	switch instr.Op {
	case op.StackRef:
		var v object.Object
		if v, err = fr.ref(instr.Arg); err == nil {
			err = fr.push(v)
		}

	case op.Varref:
		var sym *object.Symbol
		if sym, err = fr.symbol(instr.Arg); err != nil {
			return
		}
		v, ok := sym.Value()
		if !ok {
			return nil, false, object.NewSignal(object.VoidVariable, sym)
		}
		err = fr.push(v)

	case op.Varset:
		var sym *object.Symbol
		if sym, err = fr.symbol(instr.Arg); err != nil {
			return
		}
		var v object.Object
		if v, err = fr.pop(); err == nil {
			err = sym.SetValue(v)
		}

	case op.Varbind:
		var sym *object.Symbol
		if sym, err = fr.symbol(instr.Arg); err != nil {
			return
		}
		var v object.Object
		if v, err = fr.pop(); err == nil {
			err = s.specbind(sym, v)
		}

	case op.Call:
		var items []object.Object
		if items, err = fr.popN(instr.Arg + 1); err != nil {
			return
		}
		var v object.Object
		if v, err = s.funcall(ctx, items[0], items[1:]); err == nil {
			err = fr.push(v)
		}

	case op.Unbind:
		err = s.unbind(ctx, fr, instr.Arg)

	case op.UnbindAll:
		err = s.unbindTo(ctx, fr.specBase)

	case op.Pophandler:
		err = s.popHandler(fr)

	case op.Pushcatch, op.Pushconditioncase:
		kind := catchHandler
		if instr.Op == op.Pushconditioncase {
			kind = conditionCaseHandler
		}
		var tag object.Object
		if tag, err = fr.pop(); err == nil {
			err = s.pushHandler(fr, kind, tag, instr.Arg)
		}

	case op.Constant, op.Constant2:
		var c object.Object
		if c, err = fr.constant(instr.Arg); err == nil {
			err = fr.push(c)
		}

	case op.Goto, op.Gotoifnil, op.Gotoifnonnil, op.Gotoifnilelsepop, op.Gotoifnonnilelsepop:
		err = fr.branch(instr.Op, instr.Arg)

	case op.RGoto, op.RGotoifnil, op.RGotoifnonnil, op.RGotoifnilelsepop, op.RGotoifnonnilelsepop:
		err = fr.branch(instr.Op, fr.pc+instr.Arg)

	case op.Return:
		var v object.Object
		if v, err = fr.pop(); err != nil {
			return
		}
		return v, true, nil

	case op.Discard:
		_, err = fr.pop()

	case op.DiscardN:
		n := instr.Arg
		if n&0x80 != 0 {
			n &= 0x7f
			var v object.Object
			if v, err = fr.top(); err != nil {
				return
			}
			if err = fr.set(n, v); err != nil {
				return
			}
		}
		err = fr.drop(n)

	case op.Dup:
		var v object.Object
		if v, err = fr.top(); err == nil {
			err = fr.push(v)
		}

	case op.StackSet, op.StackSet2:
		var v object.Object
		if v, err = fr.top(); err != nil {
			return
		}
		if err = fr.set(instr.Arg, v); err == nil {
			_, err = fr.pop()
		}

	case op.Switch:
		err = s.doSwitch(fr)

	case op.Symbolp:
		err = fr.unary(func(v object.Object) object.Object {
			_, ok := v.(*object.Symbol)
			return object.Bool(ok)
		})

	case op.Consp:
		err = fr.unary(func(v object.Object) object.Object {
			_, ok := v.(*object.Cons)
			return object.Bool(ok)
		})

	case op.Stringp:
		err = fr.unary(func(v object.Object) object.Object {
			_, ok := v.(*object.String)
			return object.Bool(ok)
		})

	case op.Listp:
		err = fr.unary(func(v object.Object) object.Object {
			return object.Bool(object.IsList(v))
		})

	case op.Numberp:
		err = fr.unary(func(v object.Object) object.Object {
			return object.Bool(object.IsNumber(v))
		})

	case op.Integerp:
		err = fr.unary(func(v object.Object) object.Object {
			_, ok := v.(object.Int)
			return object.Bool(ok)
		})

	case op.Not:
		err = fr.unary(func(v object.Object) object.Object {
			return object.Bool(object.IsNil(v))
		})

	case op.Eq:
		err = fr.binary(func(a, b object.Object) object.Object {
			return object.Bool(object.Eq(a, b))
		})

	case op.Equal:
		err = fr.binary(func(a, b object.Object) object.Object {
			return object.Bool(object.Equal(a, b))
		})

	case op.List1, op.List2, op.List3, op.List4:
		err = fr.list(int(instr.Op-op.List1) + 1)

	case op.ListN:
		err = fr.list(instr.Arg)

	case op.UnwindProtect:
		err = s.unwindProtect(fr)

	case op.SaveCurrentBuffer, op.SaveCurrentBuffer1:
		err = s.saveCurrentBuffer(ctx)

	case op.SaveExcursion:
		err = s.saveExcursion(ctx)

	case op.SaveRestriction:
		err = s.saveRestriction(ctx)

	case op.Catch:
		err = s.legacyCatch(ctx, fr)

	default:
		info := instr.Info()
		switch {
		case info.Obsolete:
			err = fr.fatal(errz.ErrDecode, "obsolete opcode %s", info.Name)
		case info.Primitive != "":
			n := info.Args
			if n < 0 {
				n = instr.Arg
			}
			err = s.callPrimitive(ctx, fr, info.Primitive, n)
		default:
			err = fr.fatal(errz.ErrInternal, "unhandled opcode %s", info.Name)
		}
	}
	return nil, false, err
}
