package object

import (
	"hash/fnv"
	"math"
)

// Structural hashing looks at most this deep into nested conses and
// vectors and at most this many elements per level.
const (
	sxhashMaxDepth = 3
	sxhashMaxLen   = 7
)

// Sxhash returns a hash code for obj such that Equal objects hash alike.
// Unequal objects may collide. Objects compared by identity (symbols,
// hash tables, procedures) hash by name or type, so cyclic structure
// always terminates.
func Sxhash(obj Object) uint64 {
	return sxhash(obj, 0)
}

func sxhashCombine(x, y uint64) uint64 {
	return (x<<4 | x>>60) + y
}

func sxhashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func sxhash(obj Object, depth int) uint64 {
	switch o := obj.(type) {
	case nil:
		return 0
	case Int:
		return uint64(o)
	case *Float:
		return math.Float64bits(o.value)
	case *String:
		return sxhashString(o.value)
	case *Symbol:
		return sxhashString(o.name)
	case *Cons:
		if depth > sxhashMaxDepth {
			return 0
		}
		var hash uint64
		var cur Object = o
		for n := 0; n < sxhashMaxLen; n++ {
			cell, ok := cur.(*Cons)
			if !ok {
				break
			}
			hash = sxhashCombine(hash, sxhash(cell.car, depth+1))
			cur = cell.cdr
		}
		if _, ok := cur.(*Cons); !ok {
			hash = sxhashCombine(hash, sxhash(cur, depth+1))
		}
		return hash
	case *Vector:
		hash := uint64(len(o.items))
		if depth > sxhashMaxDepth {
			return hash
		}
		for n, item := range o.items {
			if n >= sxhashMaxLen {
				break
			}
			hash = sxhashCombine(hash, sxhash(item, depth+1))
		}
		return hash
	}
	return sxhashString(string(obj.Type()))
}
