package bytecode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsjolen/remacs/object"
)

var errUnexpectedClose = errors.New("unexpected closing delimiter")

func isWhiteSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isDelimiter(b byte) bool {
	return isWhiteSpace(b) || b == '(' || b == ')' || b == '[' || b == ']' || b == '"' || b == ';'
}

// ReadString reads a single printed value from s: an integer, float,
// string, symbol, list or vector. Symbols are interned in obarray.
func ReadString(s string, obarray *object.Obarray) (object.Object, error) {
	src := bufio.NewReader(strings.NewReader(s))
	value, err := Read(src, obarray)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read %q: unexpected end of input", s)
		}
		return nil, fmt.Errorf("read %q: %w", s, err)
	}
	if _, err := Read(src, obarray); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %q: trailing input", s)
	}
	return value, nil
}

// Read reads one printed value from src.
func Read(src io.ByteScanner, obarray *object.Obarray) (object.Object, error) {
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		switch {
		case isWhiteSpace(b):
			continue
		case b == ';':
			for b != '\n' {
				if b, err = src.ReadByte(); err != nil {
					return nil, err
				}
			}
			continue
		case b == '"':
			return readString(src)
		case b == '(':
			return readList(src, obarray)
		case b == '[':
			return readVector(src, obarray)
		case b == ')' || b == ']':
			return nil, errUnexpectedClose
		case b == '?':
			return readChar(src)
		default:
			return readAtom(src, b, obarray)
		}
	}
}

func readString(src io.ByteScanner) (object.Object, error) {
	var sb strings.Builder
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		switch b {
		case '"':
			return object.NewString(sb.String()), nil
		case '\\':
			esc, err := src.ReadByte()
			if err != nil {
				return nil, err
			}
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}
		default:
			sb.WriteByte(b)
		}
	}
}

func readChar(src io.ByteScanner) (object.Object, error) {
	b, err := src.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == '\\' {
		if b, err = src.ReadByte(); err != nil {
			return nil, err
		}
		switch b {
		case 'n':
			return object.Int('\n'), nil
		case 't':
			return object.Int('\t'), nil
		}
	}
	return object.Int(b), nil
}

func readList(src io.ByteScanner, obarray *object.Obarray) (object.Object, error) {
	var items []object.Object
	var tail object.Object = object.Nil
	dotted := false
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		if isWhiteSpace(b) {
			continue
		}
		if b == ')' {
			result := tail
			for i := len(items) - 1; i >= 0; i-- {
				result = object.NewCons(items[i], result)
			}
			return result, nil
		}
		if dotted {
			return nil, fmt.Errorf("more than one object after dot")
		}
		if err := src.UnreadByte(); err != nil {
			return nil, err
		}
		v, err := Read(src, obarray)
		if err != nil {
			return nil, err
		}
		if sym, ok := v.(*object.Symbol); ok && sym.Name() == "." && len(items) > 0 {
			if tail, err = Read(src, obarray); err != nil {
				return nil, err
			}
			dotted = true
			continue
		}
		items = append(items, v)
	}
}

func readVector(src io.ByteScanner, obarray *object.Obarray) (object.Object, error) {
	var items []object.Object
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		if isWhiteSpace(b) {
			continue
		}
		if b == ']' {
			return object.NewVector(items...), nil
		}
		if err := src.UnreadByte(); err != nil {
			return nil, err
		}
		v, err := Read(src, obarray)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

func readAtom(src io.ByteScanner, first byte, obarray *object.Obarray) (object.Object, error) {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		b, err := src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if isDelimiter(b) {
			if err := src.UnreadByte(); err != nil {
				return nil, err
			}
			break
		}
		sb.WriteByte(b)
	}
	token := sb.String()
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return object.Int(i), nil
	}
	if strings.ContainsAny(token, ".eE") && strings.ContainsAny(token, "0123456789") {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return object.NewFloat(f), nil
		}
	}
	return obarray.Intern(token), nil
}
