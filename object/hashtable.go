package object

import (
	"fmt"
	"math"
	"strings"
)

// Hash table tests.
var (
	HashEq    = Intern("eq")
	HashEql   = Intern("eql")
	HashEqual = Intern("equal")
)

// HashTable maps keys to values using one of the eq, eql or equal tests.
// Iteration follows insertion order.
type HashTable struct {
	test   *Symbol
	keys   []Object
	values []Object

	// index serves the eq and eql tests. buckets serves equal: keys are
	// grouped by structural hash and confirmed with Equal.
	index   map[interface{}]int
	buckets map[uint64][]int
}

type floatKey uint64

// NewHashTable returns an empty table using the given test. A nil test
// means eql.
func NewHashTable(test *Symbol) (*HashTable, error) {
	if test == nil {
		test = HashEql
	}
	// Tests are matched by name so symbols from any obarray work.
	switch test.Name() {
	case "eq":
		test = HashEq
	case "eql":
		test = HashEql
	case "equal":
		test = HashEqual
	default:
		return nil, fmt.Errorf("invalid hash table test: %s", test.Name())
	}
	h := &HashTable{test: test}
	h.reindex()
	return h, nil
}

func (h *HashTable) hashKey(key Object) interface{} {
	if h.test == HashEql {
		if f, ok := key.(*Float); ok {
			return floatKey(math.Float64bits(f.value))
		}
	}
	return key
}

func (h *HashTable) find(key Object) (int, bool) {
	if h.test != HashEqual {
		i, ok := h.index[h.hashKey(key)]
		return i, ok
	}
	for _, i := range h.buckets[Sxhash(key)] {
		if Equal(h.keys[i], key) {
			return i, true
		}
	}
	return 0, false
}

func (h *HashTable) addIndex(key Object, i int) {
	if h.test != HashEqual {
		h.index[h.hashKey(key)] = i
		return
	}
	hash := Sxhash(key)
	h.buckets[hash] = append(h.buckets[hash], i)
}

func (h *HashTable) reindex() {
	if h.test == HashEqual {
		h.buckets = make(map[uint64][]int, len(h.keys))
	} else {
		h.index = make(map[interface{}]int, len(h.keys))
	}
	for i, key := range h.keys {
		h.addIndex(key, i)
	}
}

// Test returns the table's test symbol.
func (h *HashTable) Test() *Symbol {
	return h.test
}

// Get returns the value stored for key.
func (h *HashTable) Get(key Object) (Object, bool) {
	i, ok := h.find(key)
	if !ok {
		return nil, false
	}
	return h.values[i], true
}

// Put stores value under key.
func (h *HashTable) Put(key, value Object) {
	if i, ok := h.find(key); ok {
		h.values[i] = value
		return
	}
	h.addIndex(key, len(h.keys))
	h.keys = append(h.keys, key)
	h.values = append(h.values, value)
}

// Remove deletes key from the table.
func (h *HashTable) Remove(key Object) {
	i, ok := h.find(key)
	if !ok {
		return
	}
	h.keys = append(h.keys[:i], h.keys[i+1:]...)
	h.values = append(h.values[:i], h.values[i+1:]...)
	h.reindex()
}

// Count returns the number of entries.
func (h *HashTable) Count() int {
	return len(h.keys)
}

// Each calls fn for every entry in insertion order.
func (h *HashTable) Each(fn func(key, value Object)) {
	for i, key := range h.keys {
		fn(key, h.values[i])
	}
}

func (h *HashTable) Type() Type {
	return HASH_TABLE
}

func (h *HashTable) Inspect() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#s(hash-table test %s data (", h.test.Name())
	for i, key := range h.keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(Inspect(key))
		sb.WriteByte(' ')
		sb.WriteString(Inspect(h.values[i]))
	}
	sb.WriteString("))")
	return sb.String()
}

func (h *HashTable) String() string {
	return h.Inspect()
}

func (h *HashTable) Interface() interface{} {
	result := make(map[string]interface{}, len(h.keys))
	for i, key := range h.keys {
		result[Princ(key)] = h.values[i].Interface()
	}
	return result
}

func (h *HashTable) Equals(other Object) bool {
	return Object(h) == other
}
