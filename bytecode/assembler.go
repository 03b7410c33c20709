package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
)

type fixupKind uint8

const (
	fixupAbsolute fixupKind = iota
	fixupRelative
	fixupTable
)

// For branch fixups, at is the offset of the operand.
type fixup struct {
	kind  fixupKind
	label string
	at    int
	table *object.HashTable
	key   object.Object
}

// Case is one arm of a jump table built by Assembler.Switch.
type Case struct {
	Key   object.Object
	Label string
}

// Assembler builds the code and constants vector of a compiled procedure.
// Errors are accumulated and reported together by Assemble, so calls may be
// chained without checking each one.
type Assembler struct {
	name      string
	code      []byte
	constants []object.Object
	labels    map[string]int
	fixups    []fixup
	errs      *multierror.Error
}

// NewAssembler returns an empty assembler for a procedure with the given
// name. The name is used in error messages and traces only.
func NewAssembler(name string) *Assembler {
	return &Assembler{name: name, labels: map[string]int{}}
}

// Name returns the procedure name.
func (a *Assembler) Name() string {
	return a.name
}

// Offset returns the offset of the next instruction.
func (a *Assembler) Offset() int {
	return len(a.code)
}

func (a *Assembler) errorf(format string, args ...interface{}) {
	a.errs = multierror.Append(a.errs, fmt.Errorf("offset %d: "+format,
		append([]interface{}{len(a.code)}, args...)...))
}

// AddConstant appends value to the constants vector and returns its index.
func (a *Assembler) AddConstant(value object.Object) int {
	a.constants = append(a.constants, value)
	return len(a.constants) - 1
}

// Constant returns the index of a constant eq to value, adding it if it is
// not present yet.
func (a *Assembler) Constant(value object.Object) int {
	for i, c := range a.constants {
		if object.Eq(c, value) {
			return i
		}
	}
	return a.AddConstant(value)
}

// Emit appends an instruction with the given operand.
func (a *Assembler) Emit(code op.Code, arg int) *Assembler {
	out, err := op.Encode(a.code, code, arg)
	if err != nil {
		a.errorf("%v", err)
		return a
	}
	a.code = out
	return a
}

// Op appends an instruction that takes no operand.
func (a *Assembler) Op(code op.Code) *Assembler {
	return a.Emit(code, 0)
}

// PushConst appends an instruction pushing value, adding it to the
// constants vector if needed.
func (a *Assembler) PushConst(value object.Object) *Assembler {
	return a.Emit(op.Constant, a.Constant(value))
}

func (a *Assembler) symbolOp(code op.Code, sym *object.Symbol) *Assembler {
	return a.Emit(code, a.Constant(sym))
}

// Varref appends an instruction pushing the dynamic value of sym.
func (a *Assembler) Varref(sym *object.Symbol) *Assembler {
	return a.symbolOp(op.Varref, sym)
}

// Varset appends an instruction popping a value into sym.
func (a *Assembler) Varset(sym *object.Symbol) *Assembler {
	return a.symbolOp(op.Varset, sym)
}

// Varbind appends an instruction popping a value and dynamically binding
// sym to it.
func (a *Assembler) Varbind(sym *object.Symbol) *Assembler {
	return a.symbolOp(op.Varbind, sym)
}

// Call appends a call with nargs arguments.
func (a *Assembler) Call(nargs int) *Assembler {
	return a.Emit(op.Call, nargs)
}

// Unbind appends an instruction undoing n dynamic bindings.
func (a *Assembler) Unbind(n int) *Assembler {
	return a.Emit(op.Unbind, n)
}

// StackRef appends an instruction pushing the stack slot n below the top.
func (a *Assembler) StackRef(n int) *Assembler {
	return a.Emit(op.StackRef, n)
}

// Label defines name at the current offset.
func (a *Assembler) Label(name string) *Assembler {
	if _, ok := a.labels[name]; ok {
		a.errorf("duplicate label %q", name)
		return a
	}
	a.labels[name] = len(a.code)
	return a
}

// Jump appends a branch to label. Relative branches (RGoto and friends)
// are resolved to a signed one-byte displacement, the rest to an absolute
// two-byte offset.
func (a *Assembler) Jump(code op.Code, label string) *Assembler {
	info := op.GetInfo(code)
	if !op.IsBranch(code) {
		a.errorf("%s is not a branch", info.Name)
		return a
	}
	kind := fixupAbsolute
	if info.Operand == op.OperandRelative {
		kind = fixupRelative
	}
	a.fixups = append(a.fixups, fixup{kind: kind, label: label, at: len(a.code) + 1})
	return a.Emit(code, 0)
}

// PushCatch appends a pushcatch whose handler resumes at label. The tag
// must already be on the stack.
func (a *Assembler) PushCatch(label string) *Assembler {
	return a.Jump(op.Pushcatch, label)
}

// PushConditionCase appends a pushconditioncase whose handler resumes at
// label. The condition list must already be on the stack.
func (a *Assembler) PushConditionCase(label string) *Assembler {
	return a.Jump(op.Pushconditioncase, label)
}

// Switch appends a jump table dispatch on the value at the top of the
// stack. The table is added to the constants vector with each key mapped
// to the offset of its label.
func (a *Assembler) Switch(test *object.Symbol, cases []Case) *Assembler {
	table, err := object.NewHashTable(test)
	if err != nil {
		a.errorf("%v", err)
		return a
	}
	for _, c := range cases {
		table.Put(c.Key, object.Int(0))
		a.fixups = append(a.fixups, fixup{kind: fixupTable, label: c.Label, table: table, key: c.Key})
	}
	a.Emit(op.Constant, a.AddConstant(table))
	return a.Op(op.Switch)
}

func (a *Assembler) resolve() {
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok {
			a.errs = multierror.Append(a.errs, fmt.Errorf("undefined label %q", f.label))
			continue
		}
		switch f.kind {
		case fixupAbsolute:
			a.code[f.at] = byte(target)
			a.code[f.at+1] = byte(target >> 8)
		case fixupRelative:
			delta := target - (f.at + 1)
			if delta < -128 || delta > 127 {
				a.errs = multierror.Append(a.errs,
					fmt.Errorf("label %q out of range for relative branch at %d", f.label, f.at-1))
				continue
			}
			a.code[f.at] = byte(delta + 128)
		case fixupTable:
			f.table.Put(f.key, object.Int(target))
		}
	}
	a.fixups = nil
}

// Assemble resolves labels and returns the finished procedure.
func (a *Assembler) Assemble(maxDepth int, template object.ArgTemplate) (*object.ByteCode, error) {
	a.resolve()
	if maxDepth < 0 {
		a.errs = multierror.Append(a.errs, fmt.Errorf("negative max depth %d", maxDepth))
	}
	if err := a.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("assemble %s: %w", a.displayName(), err)
	}
	return object.NewByteCode(object.ByteCodeParams{
		Name:      a.name,
		Code:      a.code,
		Constants: a.constants,
		MaxDepth:  maxDepth,
		Template:  template,
	}), nil
}

func (a *Assembler) displayName() string {
	if a.name == "" {
		return "<anonymous>"
	}
	return a.name
}
