// Package dis supports analysis of byte-code procedures by disassembling
// them. It works with the opcodes defined in the `op` package and annotates
// each instruction with the constants, variables and branch targets it
// refers to.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jsjolen/remacs/internal/table"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

// Instruction represents a single decoded instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []int
	Annotation string
	Constant   object.Object
	Target     int
	IsBranch   bool
}

// Disassemble returns a parsed representation of the given procedure.
func Disassemble(bc *object.ByteCode) ([]Instruction, error) {
	code := bc.Code()
	var instructions []Instruction
	for pc := 0; pc < len(code); {
		instr, err := op.Decode(code, pc)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", pc, err)
		}
		info := instr.Info()
		result := Instruction{
			Offset: pc,
			Name:   info.Name,
			Opcode: instr.Raw,
		}
		if info.Operand != op.OperandNone {
			result.Operands = []int{instr.Arg}
		}
		switch {
		case instr.Op == op.Constant || instr.Op == op.Constant2:
			c, err := getConstantValue(bc, instr.Arg)
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", pc, err)
			}
			result.Constant = c
		case instr.Op == op.Varref || instr.Op == op.Varset || instr.Op == op.Varbind:
			c, err := getConstantValue(bc, instr.Arg)
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", pc, err)
			}
			result.Annotation = variableName(c)
		case op.IsBranch(instr.Op):
			result.IsBranch = true
			result.Target = instr.Arg
			if info.Operand == op.OperandRelative {
				result.Target = pc + instr.Size + instr.Arg
			}
			result.Annotation = fmt.Sprintf("-> %d", result.Target)
		case info.Obsolete:
			result.Annotation = "obsolete"
		case info.Primitive != "" && info.Primitive != info.Name:
			result.Annotation = info.Primitive
		}
		instructions = append(instructions, result)
		pc += instr.Size
	}
	return instructions, nil
}

func variableName(obj object.Object) string {
	if sym, ok := obj.(*object.Symbol); ok {
		return sym.Name()
	}
	return object.Inspect(obj)
}

// italic applies italic formatting (ANSI code 3) if colors are enabled.
func italic(s string) string {
	return color.New(color.Italic).Sprint(s)
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		if instr.Constant != nil {
			values = append(values, formatConstant(instr.Constant))
		} else if instr.Annotation != "" {
			values = append(values, color.HiCyanString("%s", instr.Annotation))
		} else {
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintConstants writes the constant vector of a procedure as a table.
func PrintConstants(bc *object.ByteCode, writer io.Writer) {
	var lines [][]string
	for i, c := range bc.Constants() {
		lines = append(lines, []string{
			fmt.Sprintf("%d", i),
			string(c.Type()),
			formatConstant(c),
		})
	}
	table.NewTable(writer).
		WithHeader([]string{"INDEX", "TYPE", "VALUE"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func formatConstant(c object.Object) string {
	switch c := c.(type) {
	case object.Int:
		return color.YellowString("%d", int64(c))
	case *object.Float:
		return color.YellowString("%s", c.Inspect())
	case *object.String:
		s := c.Inspect()
		if len(s) > 80 {
			s = s[:77] + "..."
		}
		return color.GreenString("%s", s)
	case *object.ByteCode:
		name := c.Name()
		if name == "" {
			name = italic("<anonymous>")
		}
		return color.MagentaString("fn:%s", name)
	case *object.Symbol:
		return color.HiCyanString("'%s", c.Name())
	default:
		return bold(object.Inspect(c))
	}
}

func formatOperands(ops []int) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}

func getConstantValue(bc *object.ByteCode, index int) (object.Object, error) {
	c, ok := bc.Constant(index)
	if !ok {
		return nil, fmt.Errorf("constant index out of range: %d", index)
	}
	return c, nil
}

// Functions returns the procedures nested in the constant vector of bc,
// depth first, excluding bc itself.
func Functions(bc *object.ByteCode) []*object.ByteCode {
	var result []*object.ByteCode
	for _, c := range bc.Constants() {
		if fn, ok := c.(*object.ByteCode); ok {
			result = append(result, fn)
			result = append(result, Functions(fn)...)
		}
	}
	return result
}
