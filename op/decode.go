package op

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOpcode is returned when a byte does not name a known opcode.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrTruncated is returned when an operand extends past the end of the
	// code.
	ErrTruncated = errors.New("truncated operand")
)

// Instruction is a single decoded instruction.
type Instruction struct {
	// Op is the canonical opcode. For family members and inline constants
	// this is the family base (e.g. Varref, Constant) rather than the raw
	// byte.
	Op Code

	// Raw is the opcode byte as it appeared in the code.
	Raw Code

	// Arg is the decoded operand. Relative branches hold the signed offset
	// already unbiased. Instructions without operands hold 0.
	Arg int

	// Size is the total encoded size in bytes, including the opcode.
	Size int
}

// Info returns the opcode info for the instruction.
func (i Instruction) Info() Info {
	return infos[i.Raw]
}

// Decode decodes the instruction at code[pc].
func Decode(code []byte, pc int) (Instruction, error) {
	if pc < 0 || pc >= len(code) {
		return Instruction{}, fmt.Errorf("%w: pc %d outside code of length %d",
			ErrTruncated, pc, len(code))
	}
	raw := Code(code[pc])
	info := infos[raw]
	if !info.Valid() {
		return Instruction{Raw: raw, Size: 1}, fmt.Errorf("%w: 0o%o", ErrInvalidOpcode, raw)
	}
	instr := Instruction{Op: raw, Raw: raw, Size: 1}
	switch info.Operand {
	case OperandFamily:
		base, _ := FamilyBase(raw)
		instr.Op = base
		switch n := int(raw - base); n {
		case 6:
			b, err := operand1(code, pc)
			if err != nil {
				return instr, err
			}
			instr.Arg, instr.Size = b, 2
		case 7:
			w, err := operand2(code, pc)
			if err != nil {
				return instr, err
			}
			instr.Arg, instr.Size = w, 3
		default:
			instr.Arg = n
		}
	case OperandByte:
		b, err := operand1(code, pc)
		if err != nil {
			return instr, err
		}
		instr.Arg, instr.Size = b, 2
	case OperandRelative:
		b, err := operand1(code, pc)
		if err != nil {
			return instr, err
		}
		instr.Arg, instr.Size = b-128, 2
	case OperandWord:
		w, err := operand2(code, pc)
		if err != nil {
			return instr, err
		}
		instr.Arg, instr.Size = w, 3
	case OperandConstant:
		instr.Op = Constant
		instr.Arg = int(raw - Constant)
	}
	return instr, nil
}

func operand1(code []byte, pc int) (int, error) {
	if pc+1 >= len(code) {
		return 0, fmt.Errorf("%w: 0o%o at offset %d", ErrTruncated, code[pc], pc)
	}
	return int(code[pc+1]), nil
}

func operand2(code []byte, pc int) (int, error) {
	if pc+2 >= len(code) {
		return 0, fmt.Errorf("%w: 0o%o at offset %d", ErrTruncated, code[pc], pc)
	}
	return int(code[pc+1]) | int(code[pc+2])<<8, nil
}

// Encode appends the encoding of op with the given operand to dst. For
// families the shortest form is chosen. For Constant, operands below 64 are
// encoded inline and larger ones use Constant2.
func Encode(dst []byte, code Code, arg int) ([]byte, error) {
	info := infos[code]
	if !info.Valid() {
		return dst, fmt.Errorf("%w: 0o%o", ErrInvalidOpcode, code)
	}
	if arg < 0 && info.Operand != OperandRelative {
		return dst, fmt.Errorf("negative operand %d for %s", arg, info.Name)
	}
	switch info.Operand {
	case OperandNone:
		return append(dst, byte(code)), nil
	case OperandFamily:
		base, _ := FamilyBase(code)
		switch {
		case arg < 6:
			return append(dst, byte(base)+byte(arg)), nil
		case arg <= 0xff:
			return append(dst, byte(base)+6, byte(arg)), nil
		case arg <= 0xffff:
			return append(dst, byte(base)+7, byte(arg), byte(arg>>8)), nil
		}
	case OperandByte:
		if arg <= 0xff {
			return append(dst, byte(code), byte(arg)), nil
		}
	case OperandRelative:
		if arg >= -128 && arg <= 127 {
			return append(dst, byte(code), byte(arg+128)), nil
		}
	case OperandWord:
		if arg <= 0xffff {
			return append(dst, byte(code), byte(arg), byte(arg>>8)), nil
		}
	case OperandConstant:
		if arg < ConstantRange {
			return append(dst, byte(Constant)+byte(arg)), nil
		}
		if arg <= 0xffff {
			return append(dst, byte(Constant2), byte(arg), byte(arg>>8)), nil
		}
	}
	return dst, fmt.Errorf("operand %d out of range for %s", arg, info.Name)
}
