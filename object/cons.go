package object

import "strings"

// Cons is a pair, the building block of lists.
type Cons struct {
	car Object
	cdr Object
}

// NewCons returns a new cons cell.
func NewCons(car, cdr Object) *Cons {
	return &Cons{car: car, cdr: cdr}
}

func (c *Cons) Type() Type {
	return CONS
}

func (c *Cons) Car() Object {
	return c.car
}

func (c *Cons) Cdr() Object {
	return c.cdr
}

func (c *Cons) SetCar(v Object) {
	c.car = v
}

func (c *Cons) SetCdr(v Object) {
	c.cdr = v
}

func (c *Cons) Inspect() string {
	var sb strings.Builder
	sb.WriteByte('(')
	var cur Object = c
	// Cap output on circular lists.
	for n := 0; ; n++ {
		cell, ok := cur.(*Cons)
		if !ok {
			break
		}
		if n > 0 {
			sb.WriteByte(' ')
		}
		if n >= 10000 {
			sb.WriteString("...")
			cur = Nil
			break
		}
		sb.WriteString(Inspect(cell.car))
		cur = cell.cdr
	}
	if !IsNil(cur) {
		sb.WriteString(" . ")
		sb.WriteString(Inspect(cur))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (c *Cons) String() string {
	return c.Inspect()
}

func (c *Cons) Interface() interface{} {
	items, ok := ListToSlice(c)
	if !ok {
		return [2]interface{}{c.car.Interface(), c.cdr.Interface()}
	}
	result := make([]interface{}, 0, len(items))
	for _, item := range items {
		result = append(result, item.Interface())
	}
	return result
}

func (c *Cons) Equals(other Object) bool {
	a, b := Object(c), other
	for {
		ac, ok := a.(*Cons)
		if !ok {
			return Equal(a, b)
		}
		bc, ok := b.(*Cons)
		if !ok {
			return false
		}
		if ac == bc {
			return true
		}
		if !Equal(ac.car, bc.car) {
			return false
		}
		a, b = ac.cdr, bc.cdr
	}
}

// NewList builds a proper list from items.
func NewList(items ...Object) Object {
	var result Object = Nil
	for i := len(items) - 1; i >= 0; i-- {
		result = NewCons(items[i], result)
	}
	return result
}

// ListToSlice returns the elements of a proper list. The boolean is false if
// obj is not a proper list.
func ListToSlice(obj Object) ([]Object, bool) {
	var items []Object
	for {
		if IsNil(obj) {
			return items, true
		}
		c, ok := obj.(*Cons)
		if !ok {
			return nil, false
		}
		items = append(items, c.car)
		obj = c.cdr
	}
}

// IsList reports whether obj is a cons or nil.
func IsList(obj Object) bool {
	if IsNil(obj) {
		return true
	}
	_, ok := obj.(*Cons)
	return ok
}
