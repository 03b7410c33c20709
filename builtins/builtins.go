// Package builtins defines the default set of primitives.
//
// The virtual machine delegates most data opcodes (car, concat, +, ...) to
// the function cell of the symbol naming the primitive, so a session needs
// these installed in its obarray before running code that uses them.
package builtins

import (
	"github.com/jsjolen/remacs/object"
)

const many = object.Many

type spec struct {
	name     string
	min, max int
	fn       object.BuiltinFunction
}

var specs = []spec{
	// Lists and sequences
	{"car", 1, 1, Car},
	{"cdr", 1, 1, Cdr},
	{"car-safe", 1, 1, CarSafe},
	{"cdr-safe", 1, 1, CdrSafe},
	{"cons", 2, 2, Cons},
	{"list", 0, many, List},
	{"length", 1, 1, Length},
	{"nth", 2, 2, Nth},
	{"nthcdr", 2, 2, Nthcdr},
	{"elt", 2, 2, Elt},
	{"memq", 2, 2, Memq},
	{"member", 2, 2, Member},
	{"assq", 2, 2, Assq},
	{"nreverse", 1, 1, Nreverse},
	{"reverse", 1, 1, Reverse},
	{"setcar", 2, 2, Setcar},
	{"setcdr", 2, 2, Setcdr},
	{"nconc", 0, many, Nconc},
	{"append", 0, many, Append},
	{"vector", 0, many, Vector},
	{"make-vector", 2, 2, MakeVector},
	{"aref", 2, 2, Aref},
	{"aset", 3, 3, Aset},
	{"mapcar", 2, 2, Mapcar},

	// Numbers
	{"+", 0, many, Plus},
	{"-", 0, many, Minus},
	{"*", 0, many, Times},
	{"/", 1, many, Quo},
	{"%", 2, 2, Rem},
	{"1+", 1, 1, Add1},
	{"1-", 1, 1, Sub1},
	{"=", 1, many, NumEq},
	{"<", 1, many, Less},
	{">", 1, many, Greater},
	{"<=", 1, many, LessEq},
	{">=", 1, many, GreaterEq},
	{"max", 1, many, Max},
	{"min", 1, many, Min},

	// Strings
	{"concat", 0, many, Concat},
	{"substring", 1, 3, Substring},
	{"upcase", 1, 1, Upcase},
	{"downcase", 1, 1, Downcase},
	{"string=", 2, 2, StringEq},
	{"string<", 2, 2, StringLess},
	{"number-to-string", 1, 1, NumberToString},
	{"string-to-number", 1, 1, StringToNumber},
	{"format", 1, many, Format},

	// Symbols
	{"symbol-value", 1, 1, SymbolValue},
	{"symbol-function", 1, 1, SymbolFunction},
	{"symbol-name", 1, 1, SymbolName},
	{"set", 2, 2, Set},
	{"fset", 2, 2, Fset},
	{"get", 2, 2, Get},
	{"put", 3, 3, Put},
	{"boundp", 1, 1, Boundp},
	{"fboundp", 1, 1, Fboundp},
	{"makunbound", 1, 1, Makunbound},
	{"intern", 1, 1, Intern},

	// Hash tables
	{"make-hash-table", 0, many, MakeHashTable},
	{"gethash", 2, 3, Gethash},
	{"puthash", 3, 3, Puthash},
	{"remhash", 2, 2, Remhash},
	{"hash-table-count", 1, 1, HashTableCount},

	// Control and equality
	{"funcall", 1, many, Funcall},
	{"apply", 1, many, Apply},
	{"throw", 2, 2, Throw},
	{"signal", 2, 2, Signal},
	{"error", 1, many, Error},
	{"identity", 1, 1, Identity},
	{"eq", 2, 2, Eq},
	{"eql", 2, 2, Eql},
	{"equal", 2, 2, Equal},
	{"not", 1, 1, Not},
	{"null", 1, 1, Not},
	{"type-of", 1, 1, TypeOf},
	{"interactive-p", 0, 0, InteractiveP},

	// Type predicates
	{"symbolp", 1, 1, predicate(isSymbol)},
	{"consp", 1, 1, predicate(isCons)},
	{"atom", 1, 1, predicate(func(o object.Object) bool { return !isCons(o) })},
	{"listp", 1, 1, predicate(object.IsList)},
	{"stringp", 1, 1, predicate(isString)},
	{"integerp", 1, 1, predicate(isInteger)},
	{"floatp", 1, 1, predicate(isFloat)},
	{"numberp", 1, 1, predicate(object.IsNumber)},
	{"vectorp", 1, 1, predicate(isVector)},
	{"hash-table-p", 1, 1, predicate(isHashTable)},
	{"functionp", 1, 1, predicate(isFunction)},
}

// Builtins returns a fresh set of the default primitives keyed by name.
func Builtins() map[string]*object.Subr {
	result := make(map[string]*object.Subr, len(specs))
	for _, s := range specs {
		result[s.name] = object.NewSubr(s.name, s.min, s.max, s.fn)
	}
	return result
}

// Install sets the function cell of each primitive's symbol in obarray.
// Existing definitions are replaced.
func Install(obarray *object.Obarray) {
	for name, subr := range Builtins() {
		// Only nil and t reject a function definition.
		_ = obarray.Intern(name).SetFunction(subr)
	}
}
