package object

import (
	"math"
	"strconv"
	"strings"
)

// Int is a fixnum. It is a value type: equal fixnums are eq.
type Int int64

// NewInt returns the fixnum v.
func NewInt(v int64) Int {
	return Int(v)
}

func (i Int) Type() Type {
	return INTEGER
}

func (i Int) Value() int64 {
	return int64(i)
}

func (i Int) Inspect() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i Int) String() string {
	return i.Inspect()
}

func (i Int) Interface() interface{} {
	return int64(i)
}

func (i Int) Equals(other Object) bool {
	o, ok := other.(Int)
	return ok && o == i
}

// Float is a boxed floating point number.
type Float struct {
	value float64
}

// NewFloat returns a new float.
func NewFloat(value float64) *Float {
	return &Float{value: value}
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Value() float64 {
	return f.value
}

func (f *Float) Inspect() string {
	switch {
	case math.IsInf(f.value, 1):
		return "1.0e+INF"
	case math.IsInf(f.value, -1):
		return "-1.0e+INF"
	case math.IsNaN(f.value):
		return "0.0e+NaN"
	}
	s := strconv.FormatFloat(f.value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (f *Float) String() string {
	return f.Inspect()
}

func (f *Float) Interface() interface{} {
	return f.value
}

func (f *Float) Equals(other Object) bool {
	o, ok := other.(*Float)
	return ok && math.Float64bits(o.value) == math.Float64bits(f.value)
}

// IsNumber reports whether obj is an integer or a float.
func IsNumber(obj Object) bool {
	switch obj.(type) {
	case Int, *Float:
		return true
	}
	return false
}
