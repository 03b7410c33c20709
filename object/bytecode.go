package object

import (
	"bytes"
	"fmt"
	"strings"
)

// ArgTemplate is the packed argument descriptor of a compiled procedure.
// Bits 0-6 hold the mandatory count, bit 7 the rest flag and bits 8 and up
// the count of non-rest parameters.
type ArgTemplate int

// NoArgTemplate marks a legacy procedure that binds its parameters
// dynamically.
const NoArgTemplate ArgTemplate = -1

// MaxMandatory is the largest mandatory count a template can encode.
const MaxMandatory = 127

// NewArgTemplate packs a template.
func NewArgTemplate(mandatory, nonrest int, rest bool) (ArgTemplate, error) {
	if mandatory < 0 || mandatory > MaxMandatory {
		return 0, fmt.Errorf("mandatory argument count %d out of range", mandatory)
	}
	if nonrest < mandatory {
		return 0, fmt.Errorf("non-rest count %d is less than mandatory count %d",
			nonrest, mandatory)
	}
	t := mandatory | nonrest<<8
	if rest {
		t |= 1 << 7
	}
	return ArgTemplate(t), nil
}

// IsSet reports whether the template describes lexical arguments.
func (t ArgTemplate) IsSet() bool {
	return t >= 0
}

// Mandatory returns the number of required arguments.
func (t ArgTemplate) Mandatory() int {
	return int(t) & 127
}

// NonRest returns the number of required plus optional arguments.
func (t ArgTemplate) NonRest() int {
	return int(t) >> 8
}

// HasRest reports whether extra arguments are collected into a list.
func (t ArgTemplate) HasRest() bool {
	return int(t)&128 != 0
}

// Slots returns the number of stack slots the arguments occupy.
func (t ArgTemplate) Slots() int {
	n := t.NonRest()
	if t.HasRest() {
		n++
	}
	return n
}

func (t ArgTemplate) String() string {
	if !t.IsSet() {
		return "(dynamic)"
	}
	var parts []string
	for i := 0; i < t.Mandatory(); i++ {
		parts = append(parts, fmt.Sprintf("a%d", i))
	}
	if t.NonRest() > t.Mandatory() {
		parts = append(parts, "&optional")
		for i := t.Mandatory(); i < t.NonRest(); i++ {
			parts = append(parts, fmt.Sprintf("a%d", i))
		}
	}
	if t.HasRest() {
		parts = append(parts, "&rest", "rest")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ByteCode is a compiled procedure: its instructions, constant pool, stack
// depth limit and argument template. A ByteCode is immutable once created.
type ByteCode struct {
	name      string
	code      []byte
	constants []Object
	maxDepth  int
	template  ArgTemplate
}

// ByteCodeParams holds the fields of a new ByteCode.
type ByteCodeParams struct {
	Name      string
	Code      []byte
	Constants []Object
	MaxDepth  int
	Template  ArgTemplate
}

// NewByteCode returns a procedure built from a copy of the given code and
// constants.
func NewByteCode(params ByteCodeParams) *ByteCode {
	code := make([]byte, len(params.Code))
	copy(code, params.Code)
	constants := make([]Object, len(params.Constants))
	copy(constants, params.Constants)
	return &ByteCode{
		name:      params.Name,
		code:      code,
		constants: constants,
		maxDepth:  params.MaxDepth,
		template:  params.Template,
	}
}

func (b *ByteCode) Type() Type {
	return BYTE_CODE
}

// Name returns the procedure's name, if it was given one.
func (b *ByteCode) Name() string {
	return b.name
}

func (b *ByteCode) Code() []byte {
	return b.code
}

func (b *ByteCode) Constants() []Object {
	return b.constants
}

// Constant returns constant i.
func (b *ByteCode) Constant(i int) (Object, bool) {
	if i < 0 || i >= len(b.constants) {
		return nil, false
	}
	return b.constants[i], true
}

func (b *ByteCode) MaxDepth() int {
	return b.maxDepth
}

func (b *ByteCode) Template() ArgTemplate {
	return b.template
}

func (b *ByteCode) Inspect() string {
	if b.name != "" {
		return fmt.Sprintf("#<bytecode %s>", b.name)
	}
	return fmt.Sprintf("#<bytecode %s>", b.template)
}

func (b *ByteCode) String() string {
	return b.Inspect()
}

func (b *ByteCode) Interface() interface{} {
	return nil
}

func (b *ByteCode) Equals(other Object) bool {
	o, ok := other.(*ByteCode)
	if !ok {
		return false
	}
	if o == b {
		return true
	}
	if o.maxDepth != b.maxDepth || o.template != b.template ||
		!bytes.Equal(o.code, b.code) || len(o.constants) != len(b.constants) {
		return false
	}
	for i, c := range b.constants {
		if !Equal(c, o.constants[i]) {
			return false
		}
	}
	return true
}
