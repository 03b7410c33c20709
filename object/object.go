// Package object provides the value types manipulated by the byte-code
// virtual machine.
//
// Values are passed around as the Object interface and type asserted to a
// concrete type when needed:
//
//	switch obj := obj.(type) {
//	case object.Int:
//		// obj is a fixnum
//	case *object.Cons:
//		// do something with obj.Car()
//	}
//
// Int is a value type so that two equal fixnums are also eq. Every other
// type is a pointer and eq compares identity.
package object

import (
	"fmt"
	"math"
)

// Type of an object as a string. The names follow type-of.
type Type string

// Type constants
const (
	BYTE_CODE  Type = "compiled-function"
	CONS       Type = "cons"
	FLOAT      Type = "float"
	HASH_TABLE Type = "hash-table"
	INTEGER    Type = "integer"
	STRING     Type = "string"
	SUBR       Type = "subr"
	SYMBOL     Type = "symbol"
	VECTOR     Type = "vector"
)

// Object is the interface that all value types implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns the printed representation of the object, in the form
	// prin1 would produce.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() interface{}

	// Equals reports whether the object is structurally equal to other, in
	// the sense of the equal predicate.
	Equals(other Object) bool
}

// Eq reports whether a and b are the same object.
func Eq(a, b Object) bool {
	return a == b
}

// Eql is like Eq but also compares floats by their bit patterns, so 0.0
// and -0.0 differ and a NaN is eql to itself.
func Eql(a, b Object) bool {
	if a == b {
		return true
	}
	if af, ok := a.(*Float); ok {
		if bf, ok := b.(*Float); ok {
			return math.Float64bits(af.value) == math.Float64bits(bf.value)
		}
	}
	return false
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equals(b)
}

// IsNil reports whether obj is the symbol nil. An unset Go interface also
// counts as nil.
func IsNil(obj Object) bool {
	return obj == nil || obj == Object(Nil)
}

// Bool converts a Go boolean to t or nil.
func Bool(b bool) Object {
	if b {
		return T
	}
	return Nil
}

// Princ returns the representation of obj the way princ prints it: strings
// appear without quotes.
func Princ(obj Object) string {
	if obj == nil {
		return "nil"
	}
	if s, ok := obj.(*String); ok {
		return s.value
	}
	return obj.Inspect()
}

// Inspect is a nil-safe wrapper around obj.Inspect.
func Inspect(obj Object) string {
	if obj == nil {
		return "nil"
	}
	return obj.Inspect()
}

// FromGoType converts a native Go value to an Object.
func FromGoType(v interface{}) (Object, error) {
	switch v := v.(type) {
	case nil:
		return Nil, nil
	case Object:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case float64:
		return NewFloat(v), nil
	case float32:
		return NewFloat(float64(v)), nil
	case string:
		return NewString(v), nil
	case []interface{}:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			obj, err := FromGoType(item)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		return NewList(items...), nil
	default:
		return nil, fmt.Errorf("type error: unsupported go type %T", v)
	}
}
