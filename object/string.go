package object

import "strings"

// String is a mutable sequence of characters.
type String struct {
	value string
}

// NewString returns a new string.
func NewString(s string) *String {
	return &String{value: s}
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s.value {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (s *String) String() string {
	return s.value
}

func (s *String) Interface() interface{} {
	return s.value
}

func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	return ok && o.value == s.value
}

// Len returns the number of characters in the string.
func (s *String) Len() int {
	return len([]rune(s.value))
}

// CharAt returns the character at index i.
func (s *String) CharAt(i int) (rune, bool) {
	runes := []rune(s.value)
	if i < 0 || i >= len(runes) {
		return 0, false
	}
	return runes[i], true
}

// SetCharAt replaces the character at index i.
func (s *String) SetCharAt(i int, r rune) bool {
	runes := []rune(s.value)
	if i < 0 || i >= len(runes) {
		return false
	}
	runes[i] = r
	s.value = string(runes)
	return true
}
