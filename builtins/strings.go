package builtins

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jsjolen/remacs/object"
)

// Concat joins sequences of characters into a new string.
func Concat(ctx context.Context, args ...object.Object) (object.Object, error) {
	var sb strings.Builder
	for _, arg := range args {
		if s, ok := arg.(*object.String); ok {
			sb.WriteString(s.Value())
			continue
		}
		items, err := object.AsSequence(arg)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			ch, ok := item.(object.Int)
			if !ok {
				return nil, object.WrongType(object.Characterp, item)
			}
			sb.WriteRune(rune(ch))
		}
	}
	return object.NewString(sb.String()), nil
}

// Substring returns characters from..to of a string. Negative indices
// count from the end and an omitted or nil end means the whole tail.
func Substring(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	n := int64(len(runes))
	from, to := int64(0), n
	if len(args) > 1 && !object.IsNil(args[1]) {
		if from, err = object.AsInt(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 && !object.IsNil(args[2]) {
		if to, err = object.AsInt(args[2]); err != nil {
			return nil, err
		}
	}
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	if from < 0 || to > n || from > to {
		return nil, object.OutOfRange(args...)
	}
	return object.NewString(string(runes[from:to])), nil
}

func mapCase(obj object.Object, str func(string) string, ch func(rune) rune) (object.Object, error) {
	switch arg := obj.(type) {
	case *object.String:
		return object.NewString(str(arg.Value())), nil
	case object.Int:
		return object.Int(ch(rune(arg))), nil
	}
	return nil, object.WrongType(object.Intern("char-or-string-p"), obj)
}

func Upcase(ctx context.Context, args ...object.Object) (object.Object, error) {
	return mapCase(args[0], strings.ToUpper, unicode.ToUpper)
}

func Downcase(ctx context.Context, args ...object.Object) (object.Object, error) {
	return mapCase(args[0], strings.ToLower, unicode.ToLower)
}

func StringEq(ctx context.Context, args ...object.Object) (object.Object, error) {
	a, err := object.AsStringDesignator(args[0])
	if err != nil {
		return nil, err
	}
	b, err := object.AsStringDesignator(args[1])
	if err != nil {
		return nil, err
	}
	return object.Bool(a == b), nil
}

func StringLess(ctx context.Context, args ...object.Object) (object.Object, error) {
	a, err := object.AsStringDesignator(args[0])
	if err != nil {
		return nil, err
	}
	b, err := object.AsStringDesignator(args[1])
	if err != nil {
		return nil, err
	}
	return object.Bool(a < b), nil
}

func NumberToString(ctx context.Context, args ...object.Object) (object.Object, error) {
	if !object.IsNumber(args[0]) {
		return nil, object.WrongType(object.Numberp, args[0])
	}
	return object.NewString(args[0].Inspect()), nil
}

func StringToNumber(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return object.Int(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return object.NewFloat(f), nil
	}
	return object.Int(0), nil
}

// Format supports the %s, %S, %d, %c and %% directives.
func Format(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := formatString(args)
	if err != nil {
		return nil, err
	}
	return object.NewString(s), nil
}

func formatString(args []object.Object) (string, error) {
	format, err := object.AsString(args[0])
	if err != nil {
		return "", err
	}
	rest := args[1:]
	next := func() (object.Object, error) {
		if len(rest) == 0 {
			return nil, object.Errorf("Not enough arguments for format string")
		}
		v := rest[0]
		rest = rest[1:]
		return v, nil
	}
	var sb strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch verb := runes[i]; verb {
		case '%':
			sb.WriteByte('%')
		case 's', 'S', 'd', 'c':
			v, err := next()
			if err != nil {
				return "", err
			}
			switch verb {
			case 's':
				sb.WriteString(object.Princ(v))
			case 'S':
				sb.WriteString(object.Inspect(v))
			case 'd':
				n, err := toNumber(v)
				if err != nil {
					return "", err
				}
				if n.isFloat {
					fmt.Fprintf(&sb, "%d", int64(n.f))
				} else {
					fmt.Fprintf(&sb, "%d", n.i)
				}
			case 'c':
				ch, err := object.AsInt(v)
				if err != nil {
					return "", err
				}
				sb.WriteRune(rune(ch))
			}
		default:
			return "", object.Errorf("Invalid format operation %%%c", verb)
		}
	}
	return sb.String(), nil
}
