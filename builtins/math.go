package builtins

import (
	"context"
	"math"

	"github.com/jsjolen/remacs/object"
)

// number is a fixnum or float operand after type checking.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func toNumber(obj object.Object) (number, error) {
	switch obj := obj.(type) {
	case object.Int:
		return number{i: int64(obj), f: float64(obj)}, nil
	case *object.Float:
		return number{f: obj.Value(), isFloat: true}, nil
	}
	return number{}, object.WrongType(object.NumberOrMarkerp, obj)
}

func toNumbers(args []object.Object) ([]number, bool, error) {
	nums := make([]number, len(args))
	anyFloat := false
	for i, arg := range args {
		n, err := toNumber(arg)
		if err != nil {
			return nil, false, err
		}
		nums[i] = n
		anyFloat = anyFloat || n.isFloat
	}
	return nums, anyFloat, nil
}

func (n number) object(asFloat bool) object.Object {
	if asFloat {
		return object.NewFloat(n.f)
	}
	return object.Int(n.i)
}

type arithOp struct {
	ints   func(a, b int64) (int64, error)
	floats func(a, b float64) float64
}

func arith(args []object.Object, identity int64, o arithOp) (object.Object, error) {
	nums, anyFloat, err := toNumbers(args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return object.Int(identity), nil
	}
	if anyFloat {
		acc := nums[0].f
		for _, n := range nums[1:] {
			acc = o.floats(acc, n.f)
		}
		return object.NewFloat(acc), nil
	}
	acc := nums[0].i
	for _, n := range nums[1:] {
		if acc, err = o.ints(acc, n.i); err != nil {
			return nil, err
		}
	}
	return object.Int(acc), nil
}

func Plus(ctx context.Context, args ...object.Object) (object.Object, error) {
	return arith(args, 0, arithOp{
		ints:   func(a, b int64) (int64, error) { return a + b, nil },
		floats: func(a, b float64) float64 { return a + b },
	})
}

func Minus(ctx context.Context, args ...object.Object) (object.Object, error) {
	if len(args) == 1 {
		n, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		if n.isFloat {
			return object.NewFloat(-n.f), nil
		}
		return object.Int(-n.i), nil
	}
	return arith(args, 0, arithOp{
		ints:   func(a, b int64) (int64, error) { return a - b, nil },
		floats: func(a, b float64) float64 { return a - b },
	})
}

func Times(ctx context.Context, args ...object.Object) (object.Object, error) {
	return arith(args, 1, arithOp{
		ints:   func(a, b int64) (int64, error) { return a * b, nil },
		floats: func(a, b float64) float64 { return a * b },
	})
}

// Quo divides the first argument by the rest. Integer division truncates
// toward zero and signals arith-error on a zero divisor.
func Quo(ctx context.Context, args ...object.Object) (object.Object, error) {
	if len(args) == 1 {
		args = []object.Object{object.Int(1), args[0]}
	}
	return arith(args, 1, arithOp{
		ints: func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, object.NewSignal(object.ArithError)
			}
			return a / b, nil
		},
		floats: func(a, b float64) float64 { return a / b },
	})
}

func Rem(ctx context.Context, args ...object.Object) (object.Object, error) {
	a, err := object.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	b, err := object.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, object.NewSignal(object.ArithError)
	}
	return object.Int(a % b), nil
}

func Add1(ctx context.Context, args ...object.Object) (object.Object, error) {
	return Plus(ctx, args[0], object.Int(1))
}

func Sub1(ctx context.Context, args ...object.Object) (object.Object, error) {
	return Minus(ctx, args[0], object.Int(1))
}

func compareNumbers(args []object.Object, ok func(c int) bool) (object.Object, error) {
	nums, anyFloat, err := toNumbers(args)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(nums); i++ {
		a, b := nums[i-1], nums[i]
		var c int
		if anyFloat {
			switch {
			case math.IsNaN(a.f) || math.IsNaN(b.f):
				return object.Nil, nil
			case a.f < b.f:
				c = -1
			case a.f > b.f:
				c = 1
			}
		} else {
			switch {
			case a.i < b.i:
				c = -1
			case a.i > b.i:
				c = 1
			}
		}
		if !ok(c) {
			return object.Nil, nil
		}
	}
	return object.T, nil
}

func NumEq(ctx context.Context, args ...object.Object) (object.Object, error) {
	return compareNumbers(args, func(c int) bool { return c == 0 })
}

func Less(ctx context.Context, args ...object.Object) (object.Object, error) {
	return compareNumbers(args, func(c int) bool { return c < 0 })
}

func Greater(ctx context.Context, args ...object.Object) (object.Object, error) {
	return compareNumbers(args, func(c int) bool { return c > 0 })
}

func LessEq(ctx context.Context, args ...object.Object) (object.Object, error) {
	return compareNumbers(args, func(c int) bool { return c <= 0 })
}

func GreaterEq(ctx context.Context, args ...object.Object) (object.Object, error) {
	return compareNumbers(args, func(c int) bool { return c >= 0 })
}

func extremum(args []object.Object, sign int) (object.Object, error) {
	nums, anyFloat, err := toNumbers(args)
	if err != nil {
		return nil, err
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if anyFloat {
			if math.IsNaN(n.f) {
				return object.NewFloat(n.f), nil
			}
			if (sign > 0 && n.f > best.f) || (sign < 0 && n.f < best.f) {
				best = n
			}
		} else if (sign > 0 && n.i > best.i) || (sign < 0 && n.i < best.i) {
			best = n
		}
	}
	return best.object(anyFloat), nil
}

func Max(ctx context.Context, args ...object.Object) (object.Object, error) {
	return extremum(args, 1)
}

func Min(ctx context.Context, args ...object.Object) (object.Object, error) {
	return extremum(args, -1)
}
