package bytecode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/jsjolen/remacs/object"
)

// ImageVersion is the image format version written by Marshal.
const ImageVersion = 1

const maxImageDepth = 1000

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ErrImageVersion is returned when an image was written by an unsupported
// format version.
var ErrImageVersion = errors.New("unsupported image version")

type valueKind uint8

const (
	kindInt valueKind = iota + 1
	kindFloat
	kindString
	kindSymbol
	kindCons
	kindVector
	kindHashTable
	kindByteCode
)

type image struct {
	Version  int           `cbor:"1,keyasint"`
	Function *wireFunction `cbor:"2,keyasint"`
}

type wireFunction struct {
	Name      string      `cbor:"1,keyasint,omitempty"`
	Code      []byte      `cbor:"2,keyasint"`
	Constants []wireValue `cbor:"3,keyasint"`
	MaxDepth  int         `cbor:"4,keyasint"`
	Template  int         `cbor:"5,keyasint"`
}

// wireValue is a tagged constant. Lists are flattened into Items with the
// final cdr in Tail. Hash tables store alternating keys and values in Items
// and their test name in Text. Uninterned symbols carry a per-image id in
// Int.
type wireValue struct {
	Kind       valueKind     `cbor:"1,keyasint"`
	Int        int64         `cbor:"2,keyasint,omitempty"`
	Float      float64       `cbor:"3,keyasint,omitempty"`
	Text       string        `cbor:"4,keyasint,omitempty"`
	Items      []wireValue   `cbor:"5,keyasint,omitempty"`
	Tail       *wireValue    `cbor:"6,keyasint,omitempty"`
	Function   *wireFunction `cbor:"7,keyasint,omitempty"`
	Uninterned bool          `cbor:"8,keyasint,omitempty"`
}

// Marshal serializes a procedure, including nested procedures in its
// constants, to CBOR bytes.
func Marshal(bc *object.ByteCode) ([]byte, error) {
	fn, err := newEncoder().function(bc, 0)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal %s: %w", bc.Name(), err)
	}
	return cborEncMode.Marshal(&image{Version: ImageVersion, Function: fn})
}

// Unmarshal deserializes a procedure from CBOR bytes, interning symbols in
// obarray.
func Unmarshal(data []byte, obarray *object.Obarray) (*object.ByteCode, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: %w: %d", ErrImageVersion, img.Version)
	}
	if img.Function == nil {
		return nil, errors.New("bytecode: image has no function")
	}
	d := &decoder{obarray: obarray, uninterned: map[int64]*object.Symbol{}}
	bc, err := d.function(img.Function, 0)
	if err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	return bc, nil
}

// encoder tracks the containers on the current path so cycles are reported
// instead of followed, and numbers uninterned symbols so that references
// to the same symbol decode to one symbol.
type encoder struct {
	active     map[object.Object]bool
	uninterned map[*object.Symbol]int64
}

func newEncoder() *encoder {
	return &encoder{
		active:     map[object.Object]bool{},
		uninterned: map[*object.Symbol]int64{},
	}
}

// enter marks obj as being encoded. It fails if obj is already on the path.
func (e *encoder) enter(obj object.Object) error {
	if e.active[obj] {
		return fmt.Errorf("circular %s constant", obj.Type())
	}
	e.active[obj] = true
	return nil
}

func (e *encoder) leave(obj object.Object) {
	delete(e.active, obj)
}

func (e *encoder) function(bc *object.ByteCode, depth int) (*wireFunction, error) {
	if err := e.enter(bc); err != nil {
		return nil, err
	}
	defer e.leave(bc)
	constants := bc.Constants()
	fn := &wireFunction{
		Name:      bc.Name(),
		Code:      bc.Code(),
		Constants: make([]wireValue, 0, len(constants)),
		MaxDepth:  bc.MaxDepth(),
		Template:  int(bc.Template()),
	}
	for i, c := range constants {
		v, err := e.value(c, depth+1)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		fn.Constants = append(fn.Constants, v)
	}
	return fn, nil
}

func (e *encoder) symbol(sym *object.Symbol) wireValue {
	if sym.Interned() {
		return wireValue{Kind: kindSymbol, Text: sym.Name()}
	}
	id, ok := e.uninterned[sym]
	if !ok {
		id = int64(len(e.uninterned)) + 1
		e.uninterned[sym] = id
	}
	return wireValue{Kind: kindSymbol, Text: sym.Name(), Int: id, Uninterned: true}
}

func (e *encoder) value(obj object.Object, depth int) (wireValue, error) {
	if depth > maxImageDepth {
		return wireValue{}, errors.New("constant nesting too deep")
	}
	switch v := obj.(type) {
	case object.Int:
		return wireValue{Kind: kindInt, Int: int64(v)}, nil
	case *object.Float:
		return wireValue{Kind: kindFloat, Float: v.Value()}, nil
	case *object.String:
		return wireValue{Kind: kindString, Text: v.Value()}, nil
	case *object.Symbol:
		return e.symbol(v), nil
	case *object.Cons:
		return e.list(v, depth)
	case *object.Vector:
		if err := e.enter(v); err != nil {
			return wireValue{}, err
		}
		defer e.leave(v)
		w := wireValue{Kind: kindVector}
		for _, item := range v.Items() {
			iv, err := e.value(item, depth+1)
			if err != nil {
				return wireValue{}, err
			}
			w.Items = append(w.Items, iv)
		}
		return w, nil
	case *object.HashTable:
		if err := e.enter(v); err != nil {
			return wireValue{}, err
		}
		defer e.leave(v)
		w := wireValue{Kind: kindHashTable, Text: v.Test().Name()}
		var err error
		v.Each(func(key, value object.Object) {
			if err != nil {
				return
			}
			var k, val wireValue
			if k, err = e.value(key, depth+1); err != nil {
				return
			}
			if val, err = e.value(value, depth+1); err != nil {
				return
			}
			w.Items = append(w.Items, k, val)
		})
		return w, err
	case *object.ByteCode:
		fn, err := e.function(v, depth+1)
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{Kind: kindByteCode, Function: fn}, nil
	case nil:
		return wireValue{Kind: kindSymbol, Text: object.Nil.Name()}, nil
	}
	return wireValue{}, fmt.Errorf("cannot serialize %s", obj.Type())
}

func (e *encoder) list(head *object.Cons, depth int) (wireValue, error) {
	var cells []*object.Cons
	defer func() {
		for _, c := range cells {
			e.leave(c)
		}
	}()
	w := wireValue{Kind: kindCons}
	var cur object.Object = head
	for {
		cell, ok := cur.(*object.Cons)
		if !ok {
			break
		}
		if err := e.enter(cell); err != nil {
			return wireValue{}, err
		}
		cells = append(cells, cell)
		item, err := e.value(cell.Car(), depth+1)
		if err != nil {
			return wireValue{}, err
		}
		w.Items = append(w.Items, item)
		cur = cell.Cdr()
	}
	if !object.IsNil(cur) {
		tail, err := e.value(cur, depth+1)
		if err != nil {
			return wireValue{}, err
		}
		w.Tail = &tail
	}
	return w, nil
}

type decoder struct {
	obarray    *object.Obarray
	uninterned map[int64]*object.Symbol
}

func (d *decoder) function(fn *wireFunction, depth int) (*object.ByteCode, error) {
	tmpl := object.ArgTemplate(fn.Template)
	if tmpl.IsSet() {
		if _, err := object.NewArgTemplate(tmpl.Mandatory(), tmpl.NonRest(), tmpl.HasRest()); err != nil {
			return nil, err
		}
	}
	if fn.MaxDepth < 0 {
		return nil, fmt.Errorf("negative max depth %d", fn.MaxDepth)
	}
	constants := make([]object.Object, 0, len(fn.Constants))
	for i := range fn.Constants {
		c, err := d.value(&fn.Constants[i], depth+1)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants = append(constants, c)
	}
	return object.NewByteCode(object.ByteCodeParams{
		Name:      fn.Name,
		Code:      fn.Code,
		Constants: constants,
		MaxDepth:  fn.MaxDepth,
		Template:  tmpl,
	}), nil
}

func (d *decoder) value(w *wireValue, depth int) (object.Object, error) {
	if depth > maxImageDepth {
		return nil, errors.New("constant nesting too deep")
	}
	switch w.Kind {
	case kindInt:
		return object.Int(w.Int), nil
	case kindFloat:
		return object.NewFloat(w.Float), nil
	case kindString:
		return object.NewString(w.Text), nil
	case kindSymbol:
		if !w.Uninterned {
			return d.obarray.Intern(w.Text), nil
		}
		sym, ok := d.uninterned[w.Int]
		if !ok {
			sym = object.NewSymbol(w.Text)
			d.uninterned[w.Int] = sym
		}
		return sym, nil
	case kindCons:
		if len(w.Items) == 0 {
			return nil, errors.New("empty cons")
		}
		var result object.Object = object.Nil
		if w.Tail != nil {
			tail, err := d.value(w.Tail, depth+1)
			if err != nil {
				return nil, err
			}
			result = tail
		}
		for i := len(w.Items) - 1; i >= 0; i-- {
			car, err := d.value(&w.Items[i], depth+1)
			if err != nil {
				return nil, err
			}
			result = object.NewCons(car, result)
		}
		return result, nil
	case kindVector:
		items := make([]object.Object, 0, len(w.Items))
		for i := range w.Items {
			item, err := d.value(&w.Items[i], depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return object.NewVector(items...), nil
	case kindHashTable:
		if len(w.Items)%2 != 0 {
			return nil, errors.New("hash table with odd number of items")
		}
		table, err := object.NewHashTable(d.obarray.Intern(w.Text))
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(w.Items); i += 2 {
			key, err := d.value(&w.Items[i], depth+1)
			if err != nil {
				return nil, err
			}
			value, err := d.value(&w.Items[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			table.Put(key, value)
		}
		return table, nil
	case kindByteCode:
		if w.Function == nil {
			return nil, errors.New("missing function body")
		}
		return d.function(w.Function, depth+1)
	}
	return nil, fmt.Errorf("unknown constant kind %d", w.Kind)
}
