package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jsjolen/remacs/errz"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

// Verify checks a procedure for problems the interpreter would otherwise
// only report when reaching them: unknown or obsolete opcodes, truncated
// operands, constant indexes out of range, variable operands that are not
// symbols, and branch or jump table targets that do not land on an
// instruction boundary. All problems found are returned together.
func Verify(bc *object.ByteCode) error {
	var errs *multierror.Error
	report := func(kind errz.ErrorKind, offset int, opcode byte, format string, args ...any) {
		errs = multierror.Append(errs, errz.New(kind, offset, opcode, format, args...))
	}

	tmpl := bc.Template()
	if tmpl.IsSet() {
		if _, err := object.NewArgTemplate(tmpl.Mandatory(), tmpl.NonRest(), tmpl.HasRest()); err != nil {
			report(errz.ErrDecode, 0, 0, "argument template: %v", err)
		}
	}

	code := bc.Code()
	constants := bc.Constants()
	boundaries := make(map[int]bool)
	type target struct {
		from   int
		opcode byte
		to     int
	}
	var targets []target
	var prev op.Instruction
	prevOK := false

	for pc := 0; pc < len(code); {
		instr, err := op.Decode(code, pc)
		if err != nil {
			report(errz.ErrDecode, pc, code[pc], "%v", err)
			break
		}
		boundaries[pc] = true
		info := instr.Info()
		raw := byte(instr.Raw)
		if info.Obsolete {
			report(errz.ErrDecode, pc, raw, "obsolete opcode %s", info.Name)
		}
		switch instr.Op {
		case op.Constant, op.Constant2:
			if instr.Arg >= len(constants) {
				report(errz.ErrDecode, pc, raw, "constant index %d out of range", instr.Arg)
			}
		case op.Varref, op.Varset, op.Varbind:
			if instr.Arg >= len(constants) {
				report(errz.ErrDecode, pc, raw, "constant index %d out of range", instr.Arg)
			} else if _, ok := constants[instr.Arg].(*object.Symbol); !ok {
				report(errz.ErrType, pc, raw, "%s operand %s is not a symbol",
					info.Name, object.Inspect(constants[instr.Arg]))
			}
		case op.Switch:
			if prevOK && (prev.Op == op.Constant || prev.Op == op.Constant2) && prev.Arg < len(constants) {
				if table, ok := constants[prev.Arg].(*object.HashTable); ok {
					table.Each(func(key, value object.Object) {
						to, ok := value.(object.Int)
						if !ok {
							report(errz.ErrType, pc, raw, "jump table target for %s is not an integer",
								object.Inspect(key))
							return
						}
						targets = append(targets, target{from: pc, opcode: raw, to: int(to)})
					})
				}
			}
		}
		if op.IsBranch(instr.Op) {
			to := instr.Arg
			if info.Operand == op.OperandRelative {
				to = pc + instr.Size + instr.Arg
			}
			targets = append(targets, target{from: pc, opcode: raw, to: to})
		}
		prev, prevOK = instr, true
		pc += instr.Size
	}

	for _, t := range targets {
		if !boundaries[t.to] {
			report(errz.ErrDecode, t.from, t.opcode, "branch target %d is not an instruction boundary", t.to)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("verify %s: %w", displayName(bc), err)
	}
	return nil
}

func displayName(bc *object.ByteCode) string {
	if bc.Name() == "" {
		return "<anonymous>"
	}
	return bc.Name()
}
