package object

import (
	"strings"
	"sync"
)

// Symbol is an interned name with value, function and property list cells.
//
// The value and function cells are nil when void. Cells are shared program
// data: a Symbol may be read by several sessions, but sessions that bind or
// assign the same symbol must not run concurrently.
type Symbol struct {
	name     string
	value    Object
	function Object
	plist    Object
	constant bool
	interned bool
}

// NewSymbol returns an uninterned symbol with the given name.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

func newConstantSymbol(name string) *Symbol {
	s := &Symbol{name: name, constant: true, interned: true}
	s.value = s
	return s
}

var (
	// Nil is the empty list and the false value.
	Nil = newConstantSymbol("nil")

	// T is the canonical true value.
	T = newConstantSymbol("t")
)

// Interned reports whether the symbol was created by an obarray.
func (s *Symbol) Interned() bool { return s.interned }

func (s *Symbol) Type() Type {
	return SYMBOL
}

func (s *Symbol) Name() string {
	return s.name
}

func (s *Symbol) Inspect() string {
	return s.name
}

func (s *Symbol) String() string {
	return s.name
}

func (s *Symbol) Interface() interface{} {
	switch s {
	case Nil:
		return nil
	case T:
		return true
	}
	return s.name
}

func (s *Symbol) Equals(other Object) bool {
	return Object(s) == other
}

// IsConstant reports whether the symbol's value may not be changed. This
// holds for nil, t and keywords.
func (s *Symbol) IsConstant() bool {
	return s.constant
}

// IsKeyword reports whether the symbol is a keyword such as :test.
func (s *Symbol) IsKeyword() bool {
	return s.constant && strings.HasPrefix(s.name, ":")
}

// MarkConstant makes the symbol's value immutable.
func (s *Symbol) MarkConstant() {
	s.constant = true
}

// Value returns the symbol's value and whether it is bound.
func (s *Symbol) Value() (Object, bool) {
	return s.value, s.value != nil
}

// SetValue assigns the value cell. Constant symbols signal setting-constant.
func (s *Symbol) SetValue(value Object) error {
	if s.constant {
		return NewSignal(SettingConstant, s)
	}
	s.value = value
	return nil
}

// RawValue returns the value cell, nil when void.
func (s *Symbol) RawValue() Object {
	return s.value
}

// RestoreValue sets the value cell without the constant check. Passing nil
// makes the symbol void. It is used to undo dynamic bindings.
func (s *Symbol) RestoreValue(value Object) {
	s.value = value
}

// Makunbound makes the value cell void.
func (s *Symbol) Makunbound() error {
	if s.constant {
		return NewSignal(SettingConstant, s)
	}
	s.value = nil
	return nil
}

// Function returns the function cell and whether it is set.
func (s *Symbol) Function() (Object, bool) {
	if s.function == nil || s.function == Object(Nil) {
		return nil, false
	}
	return s.function, true
}

// SetFunction assigns the function cell. Setting the function of nil or t
// signals setting-constant.
func (s *Symbol) SetFunction(fn Object) error {
	if s == Nil || s == T {
		return NewSignal(SettingConstant, s)
	}
	s.function = fn
	return nil
}

// Plist returns the symbol's property list.
func (s *Symbol) Plist() Object {
	if s.plist == nil {
		return Nil
	}
	return s.plist
}

// Get returns the value of property prop, or nil.
func (s *Symbol) Get(prop Object) Object {
	cur := s.plist
	for {
		c, ok := cur.(*Cons)
		if !ok {
			return Nil
		}
		next, ok := c.cdr.(*Cons)
		if !ok {
			return Nil
		}
		if c.car == prop {
			return next.car
		}
		cur = next.cdr
	}
}

// Put sets property prop to value.
func (s *Symbol) Put(prop, value Object) {
	cur := s.plist
	for {
		c, ok := cur.(*Cons)
		if !ok {
			break
		}
		next, ok := c.cdr.(*Cons)
		if !ok {
			break
		}
		if c.car == prop {
			next.car = value
			return
		}
		cur = next.cdr
	}
	s.plist = NewCons(prop, NewCons(value, s.Plist()))
}

// Obarray is a table of interned symbols. It is safe for concurrent use.
type Obarray struct {
	mu      sync.RWMutex
	symbols map[string]*Symbol
}

// NewObarray returns an obarray containing nil and t.
func NewObarray() *Obarray {
	return &Obarray{
		symbols: map[string]*Symbol{
			Nil.name: Nil,
			T.name:   T,
		},
	}
}

// Intern returns the symbol with the given name, creating it if needed.
// Names starting with a colon create self-evaluating constant keywords.
func (o *Obarray) Intern(name string) *Symbol {
	o.mu.RLock()
	sym, ok := o.symbols[name]
	o.mu.RUnlock()
	if ok {
		return sym
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if sym, ok := o.symbols[name]; ok {
		return sym
	}
	if len(name) > 1 && strings.HasPrefix(name, ":") {
		sym = newConstantSymbol(name)
	} else {
		sym = NewSymbol(name)
	}
	sym.interned = true
	o.symbols[name] = sym
	return sym
}

// Lookup returns the symbol with the given name if it has been interned.
func (o *Obarray) Lookup(name string) (*Symbol, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	sym, ok := o.symbols[name]
	return sym, ok
}

// Len returns the number of interned symbols.
func (o *Obarray) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.symbols)
}

var defaultObarray = NewObarray()

// DefaultObarray returns the process-wide obarray used by Intern.
func DefaultObarray() *Obarray {
	return defaultObarray
}

// Intern interns name in the default obarray.
func Intern(name string) *Symbol {
	return defaultObarray.Intern(name)
}
