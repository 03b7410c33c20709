package object

// *****************************************************************************
// Type assertion helpers. Failures are wrong-type-argument signals so that
// primitives can return them directly.
// *****************************************************************************

func AsInt(obj Object) (int64, error) {
	if i, ok := obj.(Int); ok {
		return int64(i), nil
	}
	return 0, WrongType(Integerp, obj)
}

func AsNumber(obj Object) (Object, error) {
	switch obj.(type) {
	case Int, *Float:
		return obj, nil
	}
	return nil, WrongType(NumberOrMarkerp, obj)
}

func AsFloat(obj Object) (float64, error) {
	switch obj := obj.(type) {
	case Int:
		return float64(obj), nil
	case *Float:
		return obj.value, nil
	}
	return 0, WrongType(NumberOrMarkerp, obj)
}

func AsString(obj Object) (string, error) {
	if s, ok := obj.(*String); ok {
		return s.value, nil
	}
	return "", WrongType(Stringp, obj)
}

// AsStringDesignator accepts a string or a symbol, as string= does.
func AsStringDesignator(obj Object) (string, error) {
	switch obj := obj.(type) {
	case *String:
		return obj.value, nil
	case *Symbol:
		return obj.name, nil
	}
	return "", WrongType(Stringp, obj)
}

func AsSymbol(obj Object) (*Symbol, error) {
	if s, ok := obj.(*Symbol); ok {
		return s, nil
	}
	return nil, WrongType(Symbolp, obj)
}

func AsCons(obj Object) (*Cons, error) {
	if c, ok := obj.(*Cons); ok {
		return c, nil
	}
	return nil, WrongType(Consp, obj)
}

// AsList returns the elements of a proper list.
func AsList(obj Object) ([]Object, error) {
	items, ok := ListToSlice(obj)
	if !ok {
		return nil, WrongType(Listp, obj)
	}
	return items, nil
}

func AsHashTable(obj Object) (*HashTable, error) {
	if h, ok := obj.(*HashTable); ok {
		return h, nil
	}
	return nil, WrongType(HashTablep, obj)
}

// AsSequence returns the elements of a list, vector or string. String
// elements are characters, represented as integers.
func AsSequence(obj Object) ([]Object, error) {
	switch obj := obj.(type) {
	case *Vector:
		return obj.items, nil
	case *String:
		runes := []rune(obj.value)
		items := make([]Object, len(runes))
		for i, r := range runes {
			items[i] = Int(r)
		}
		return items, nil
	}
	items, ok := ListToSlice(obj)
	if !ok {
		return nil, WrongType(Sequencep, obj)
	}
	return items, nil
}

// IsFunction reports whether obj can be called directly, without going
// through a symbol's function cell.
func IsFunction(obj Object) bool {
	switch obj.(type) {
	case *Subr, *ByteCode:
		return true
	}
	return false
}
