package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

// Parse reads a procedure in text assembly form. Symbols are interned in
// obarray.
//
// The format is line oriented. Comments start with ';'. Directives start
// with '.':
//
//	.name NAME            procedure name
//	.maxdepth N           operand stack limit
//	.args M N [&rest]     argument template (or ".args dynamic")
//	.const VALUE          append VALUE to the constants vector
//
// A line ending in ':' defines a label. Every other line is an opcode
// mnemonic followed by an optional operand. Branches take a label name.
// Opcodes that index the constants vector take either an index or a quoted
// value ('VALUE), and varref, varset and varbind also accept a bare symbol
// name. "push VALUE" pushes a constant, and "switch TEST KEY LABEL ..."
// emits a jump table dispatch.
func Parse(src io.Reader, obarray *object.Obarray, opts ...ParseOption) (*object.ByteCode, error) {
	p := &parser{
		obarray:         obarray,
		maxDepth:        -1,
		defaultMaxDepth: DefaultMaxDepth,
		template:        object.NoArgTemplate,
	}
	for _, opt := range opts {
		opt(p)
	}
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			p.errs = multierror.Append(p.errs, fmt.Errorf("line %d: %w", p.line, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if p.asm == nil {
		p.asm = NewAssembler(p.name)
	}
	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	maxDepth := p.maxDepth
	if maxDepth < 0 {
		maxDepth = p.defaultMaxDepth
	}
	return p.asm.Assemble(maxDepth, p.template)
}

// ParseString is Parse over a string.
func ParseString(src string, obarray *object.Obarray, opts ...ParseOption) (*object.ByteCode, error) {
	return Parse(strings.NewReader(src), obarray, opts...)
}

// ParseOption configures Parse.
type ParseOption func(*parser)

// WithDefaultMaxDepth sets the operand stack limit used when the text has
// no .maxdepth directive.
func WithDefaultMaxDepth(n int) ParseOption {
	return func(p *parser) {
		p.defaultMaxDepth = n
	}
}

// DefaultMaxDepth is the operand stack limit used when the text does not
// set one.
const DefaultMaxDepth = 32

var mnemonics = map[string]op.Code{}

func init() {
	for i := 0; i < 256; i++ {
		info := op.GetInfo(op.Code(i))
		if !info.Valid() {
			continue
		}
		if _, ok := mnemonics[info.Name]; !ok {
			mnemonics[info.Name] = op.Code(i)
		}
	}
}

// LookupMnemonic returns the opcode named name. Family members resolve to
// the family base.
func LookupMnemonic(name string) (op.Code, bool) {
	code, ok := mnemonics[name]
	return code, ok
}

type parser struct {
	obarray         *object.Obarray
	asm             *Assembler
	name            string
	maxDepth        int
	defaultMaxDepth int
	template        object.ArgTemplate
	line            int
	errs            *multierror.Error
}

func (p *parser) assembler() *Assembler {
	if p.asm == nil {
		p.asm = NewAssembler(p.name)
	}
	return p.asm
}

func (p *parser) parseLine(line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ".") {
		return p.parseDirective(line)
	}
	if strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t") {
		p.assembler().Label(strings.TrimSuffix(line, ":"))
		return nil
	}
	mnemonic, operand := splitFirst(line)
	switch mnemonic {
	case "push":
		value, err := ReadString(operand, p.obarray)
		if err != nil {
			return err
		}
		p.assembler().PushConst(value)
		return nil
	case "switch":
		if operand != "" {
			return p.parseSwitch(operand)
		}
	}
	code, ok := LookupMnemonic(mnemonic)
	if !ok {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	return p.parseInstruction(code, operand)
}

func (p *parser) parseDirective(line string) error {
	directive, rest := splitFirst(line)
	switch directive {
	case ".name":
		if p.asm != nil {
			return fmt.Errorf(".name must come before any code")
		}
		p.name = rest
	case ".maxdepth":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max depth %q", rest)
		}
		p.maxDepth = n
	case ".args":
		tmpl, err := parseTemplate(rest)
		if err != nil {
			return err
		}
		p.template = tmpl
	case ".const":
		value, err := ReadString(rest, p.obarray)
		if err != nil {
			return err
		}
		p.assembler().AddConstant(value)
	default:
		return fmt.Errorf("unknown directive %q", directive)
	}
	return nil
}

func parseTemplate(s string) (object.ArgTemplate, error) {
	fields := strings.Fields(s)
	if len(fields) == 1 && fields[0] == "dynamic" {
		return object.NoArgTemplate, nil
	}
	if len(fields) < 2 || len(fields) > 3 {
		return object.NoArgTemplate, fmt.Errorf("invalid argument template %q", s)
	}
	mandatory, err := strconv.Atoi(fields[0])
	if err != nil {
		return object.NoArgTemplate, fmt.Errorf("invalid mandatory count %q", fields[0])
	}
	nonrest, err := strconv.Atoi(fields[1])
	if err != nil {
		return object.NoArgTemplate, fmt.Errorf("invalid positional count %q", fields[1])
	}
	rest := false
	if len(fields) == 3 {
		if fields[2] != "&rest" {
			return object.NoArgTemplate, fmt.Errorf("expected &rest, got %q", fields[2])
		}
		rest = true
	}
	return object.NewArgTemplate(mandatory, nonrest, rest)
}

func (p *parser) parseInstruction(code op.Code, operand string) error {
	asm := p.assembler()
	info := op.GetInfo(code)
	if info.Operand == op.OperandNone {
		if operand != "" {
			return fmt.Errorf("%s takes no operand", info.Name)
		}
		asm.Op(code)
		return nil
	}
	if operand == "" {
		return fmt.Errorf("%s requires an operand", info.Name)
	}
	if op.IsBranch(code) {
		if n, err := strconv.Atoi(operand); err == nil && info.Operand == op.OperandWord {
			asm.Emit(code, n)
			return nil
		}
		asm.Jump(code, operand)
		return nil
	}
	switch code {
	case op.Constant, op.Constant2, op.Varref, op.Varset, op.Varbind:
		idx, err := p.constantOperand(code, operand)
		if err != nil {
			return err
		}
		asm.Emit(code, idx)
		return nil
	}
	n, err := strconv.Atoi(operand)
	if err != nil {
		return fmt.Errorf("invalid operand %q for %s", operand, info.Name)
	}
	asm.Emit(code, n)
	return nil
}

func (p *parser) constantOperand(code op.Code, operand string) (int, error) {
	if strings.HasPrefix(operand, "'") {
		value, err := ReadString(operand[1:], p.obarray)
		if err != nil {
			return 0, err
		}
		return p.asm.Constant(value), nil
	}
	if n, err := strconv.Atoi(operand); err == nil {
		return n, nil
	}
	if code == op.Constant || code == op.Constant2 {
		return 0, fmt.Errorf("invalid constant operand %q", operand)
	}
	return p.asm.Constant(p.obarray.Intern(operand)), nil
}

func (p *parser) parseSwitch(operand string) error {
	src := bufio.NewReader(strings.NewReader(operand))
	first, err := Read(src, p.obarray)
	if err != nil {
		return fmt.Errorf("switch: %w", err)
	}
	test, ok := first.(*object.Symbol)
	if !ok {
		return fmt.Errorf("switch: test must be a symbol")
	}
	var cases []Case
	for {
		key, err := Read(src, p.obarray)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("switch: %w", err)
		}
		label, err := Read(src, p.obarray)
		if err != nil {
			return fmt.Errorf("switch: missing label for %s", object.Inspect(key))
		}
		sym, ok := label.(*object.Symbol)
		if !ok {
			return fmt.Errorf("switch: label must be a name, got %s", object.Inspect(label))
		}
		cases = append(cases, Case{Key: key, Label: sym.Name()})
	}
	p.assembler().Switch(test, cases)
	return nil
}

func splitFirst(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && inString:
			i++
		case c == '"':
			inString = !inString
		case c == ';' && !inString:
			return line[:i]
		}
	}
	return line
}
