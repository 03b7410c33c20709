package object

import "strings"

// Vector is a fixed-length array of objects.
type Vector struct {
	items []Object
}

// NewVector returns a vector holding a copy of items.
func NewVector(items ...Object) *Vector {
	v := &Vector{items: make([]Object, len(items))}
	copy(v.items, items)
	return v
}

// MakeVector returns a vector of length n filled with init.
func MakeVector(n int, init Object) *Vector {
	v := &Vector{items: make([]Object, n)}
	for i := range v.items {
		v.items[i] = init
	}
	return v
}

func (v *Vector) Type() Type {
	return VECTOR
}

func (v *Vector) Len() int {
	return len(v.items)
}

// At returns the element at index i.
func (v *Vector) At(i int) (Object, bool) {
	if i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// Set replaces the element at index i.
func (v *Vector) Set(i int, obj Object) bool {
	if i < 0 || i >= len(v.items) {
		return false
	}
	v.items[i] = obj
	return true
}

// Items returns the vector's backing slice.
func (v *Vector) Items() []Object {
	return v.items
}

func (v *Vector) Inspect() string {
	parts := make([]string, 0, len(v.items))
	for _, item := range v.items {
		parts = append(parts, Inspect(item))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v *Vector) String() string {
	return v.Inspect()
}

func (v *Vector) Interface() interface{} {
	result := make([]interface{}, 0, len(v.items))
	for _, item := range v.items {
		result = append(result, item.Interface())
	}
	return result
}

func (v *Vector) Equals(other Object) bool {
	o, ok := other.(*Vector)
	if !ok || len(o.items) != len(v.items) {
		return false
	}
	for i, item := range v.items {
		if !Equal(item, o.items[i]) {
			return false
		}
	}
	return true
}
