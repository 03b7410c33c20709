package object

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errorConditions = Intern("error-conditions")
	errorMessage    = Intern("error-message")
)

// Standard error symbols.
var (
	Error                    = defineError("error", "error")
	Quit                     = defineError("quit", "Quit")
	WrongNumberOfArguments   = defineError("wrong-number-of-arguments", "Wrong number of arguments", Error)
	WrongTypeArgument        = defineError("wrong-type-argument", "Wrong type argument", Error)
	VoidVariable             = defineError("void-variable", "Symbol's value as variable is void", Error)
	VoidFunction             = defineError("void-function", "Symbol's function definition is void", Error)
	InvalidFunction          = defineError("invalid-function", "Invalid function", Error)
	SettingConstant          = defineError("setting-constant", "Attempt to set a constant symbol", Error)
	ArgsOutOfRange           = defineError("args-out-of-range", "Args out of range", Error)
	ArithError               = defineError("arith-error", "Arithmetic error", Error)
	NoCatch                  = defineError("no-catch", "No catch for tag", Error)
	ExcessiveLispNesting     = defineError("excessive-lisp-nesting", "Lisp nesting exceeds `max-lisp-eval-depth'", Error)
	ExcessiveVariableBinding = defineError("excessive-variable-binding", "Variable binding depth exceeds max-specpdl-size", Error)
)

// Type predicate symbols used in wrong-type-argument data.
var (
	Consp           = Intern("consp")
	Listp           = Intern("listp")
	Symbolp         = Intern("symbolp")
	Stringp         = Intern("stringp")
	Integerp        = Intern("integerp")
	Numberp         = Intern("numberp")
	NumberOrMarkerp = Intern("number-or-marker-p")
	Arrayp          = Intern("arrayp")
	Sequencep       = Intern("sequencep")
	HashTablep      = Intern("hash-table-p")
	Functionp       = Intern("functionp")
	Characterp      = Intern("characterp")
)

func defineError(name, message string, parents ...*Symbol) *Symbol {
	return DefineError(defaultObarray.Intern(name), message, parents...)
}

// DefineError gives sym the error-conditions and error-message properties
// that make it usable as a signal. The conditions are sym followed by the
// conditions of each parent.
func DefineError(sym *Symbol, message string, parents ...*Symbol) *Symbol {
	conditions := []Object{sym}
	seen := map[*Symbol]bool{sym: true}
	for _, parent := range parents {
		for _, c := range ConditionsOf(parent) {
			if !seen[c] {
				seen[c] = true
				conditions = append(conditions, c)
			}
		}
	}
	sym.Put(errorConditions, NewList(conditions...))
	sym.Put(errorMessage, NewString(message))
	return sym
}

// ConditionsOf returns the condition names an error symbol belongs to.
func ConditionsOf(sym *Symbol) []*Symbol {
	items, _ := ListToSlice(sym.Get(errorConditions))
	result := make([]*Symbol, 0, len(items))
	for _, item := range items {
		if s, ok := item.(*Symbol); ok {
			result = append(result, s)
		}
	}
	return result
}

// Signal is a raised error condition. It is returned as a Go error and
// propagates until a matching condition-case handler resumes execution.
type Signal struct {
	Symbol *Symbol
	Data   Object
}

// NewSignal returns a signal with the given error symbol and data items.
func NewSignal(sym *Symbol, data ...Object) *Signal {
	return &Signal{Symbol: sym, Data: NewList(data...)}
}

// Errorf returns a signal of the plain error condition carrying a
// formatted message.
func Errorf(format string, args ...interface{}) *Signal {
	return NewSignal(Error, NewString(fmt.Sprintf(format, args...)))
}

// WrongType returns a wrong-type-argument signal for value, which failed
// the predicate pred.
func WrongType(pred *Symbol, value Object) *Signal {
	return NewSignal(WrongTypeArgument, pred, value)
}

// OutOfRange returns an args-out-of-range signal.
func OutOfRange(args ...Object) *Signal {
	return NewSignal(ArgsOutOfRange, args...)
}

// Payload returns the value a condition-case handler receives:
// (error-symbol . data).
func (s *Signal) Payload() Object {
	return NewCons(s.Symbol, s.Data)
}

// Conditions returns the condition names of the signal.
func (s *Signal) Conditions() []*Symbol {
	conds := ConditionsOf(s.Symbol)
	if len(conds) == 0 {
		// Undeclared symbols are treated as their own single condition.
		return []*Symbol{s.Symbol}
	}
	return conds
}

// Handles reports whether a condition-case handler with the given spec
// catches the signal. A spec is t, a condition symbol or a list of
// condition symbols (in which t matches anything).
func (s *Signal) Handles(spec Object) bool {
	if spec == Object(T) {
		return true
	}
	conds := s.Conditions()
	matches := func(obj Object) bool {
		if obj == Object(T) {
			return true
		}
		for _, c := range conds {
			if obj == Object(c) {
				return true
			}
		}
		return false
	}
	if sym, ok := spec.(*Symbol); ok {
		return !IsNil(sym) && matches(sym)
	}
	items, _ := ListToSlice(spec)
	for _, item := range items {
		if matches(item) {
			return true
		}
	}
	return false
}

func (s *Signal) Error() string {
	var sb strings.Builder
	msg, ok := s.Symbol.Get(errorMessage).(*String)
	if ok {
		sb.WriteString(msg.value)
	} else {
		sb.WriteString("peculiar error")
	}
	items, proper := ListToSlice(s.Data)
	if !proper {
		sb.WriteString(": ")
		sb.WriteString(Inspect(s.Data))
		return sb.String()
	}
	// A plain error with a single string argument prints just the message.
	if s.Symbol == Error && len(items) > 0 {
		if str, ok := items[0].(*String); ok {
			sb.Reset()
			sb.WriteString(str.value)
			items = items[1:]
		}
	}
	for i, item := range items {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(Inspect(item))
	}
	return sb.String()
}

// Throw is a non-local exit to the catch whose tag is eq to Tag.
type Throw struct {
	Tag   Object
	Value Object
}

// NewThrow returns a throw to tag carrying value.
func NewThrow(tag, value Object) *Throw {
	return &Throw{Tag: tag, Value: value}
}

func (t *Throw) Error() string {
	return fmt.Sprintf("No catch for tag: %s, %s", Inspect(t.Tag), Inspect(t.Value))
}

// IsNonLocalExit reports whether err is a signal or throw, the two kinds
// of recoverable exits.
func IsNonLocalExit(err error) bool {
	var sig *Signal
	var thr *Throw
	return errors.As(err, &sig) || errors.As(err, &thr)
}
