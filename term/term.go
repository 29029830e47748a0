package term

import (
	"math/big"
)

// Term is any Go value representable in the Erlang External Term Format.
// Decoded terms use the following Go types:
//
//	integers              int64, or *big.Int when outside the int64 range
//	floats                float64
//	atoms                 Atom (or string/[]byte/resolver value, per options)
//	booleans              bool (the atoms 'true' and 'false')
//	nil equivalent        untyped nil (the atom 'undefined')
//	binaries              []byte
//	bit strings           BitString
//	byte strings          string (or []byte/List, per options)
//	proper lists          List
//	improper lists        ImproperList
//	tuples                Tuple
//	maps                  *Map
//	pids                  Pid
//	references            Ref
//	funs                  Fun
type Term = interface{}

// Atom is an Erlang atom. The atoms 'true', 'false' and 'undefined' are never
// represented as Atom values; they fold to bool and nil in both directions.
type Atom string

// Tuple is a fixed-arity ordered sequence of terms.
type Tuple []Term

// List is a proper list. Its encoding is always terminated by NIL.
type List []Term

// ImproperList is a list whose terminating element is not the empty list.
// Elements holds the head segment and Tail whatever terminates it.
type ImproperList struct {
	Elements []Term
	Tail     Term
}

// BitString is a byte sequence whose last byte carries Bits significant bits,
// where Bits is between 1 and 8.
type BitString struct {
	Bytes []byte
	Bits  uint8
}

// Pid is an opaque Erlang process identifier qualified by its owning node.
type Pid struct {
	Node     Atom
	ID       uint32
	Serial   uint32
	Creation uint32
}

// Ref is an opaque Erlang reference. ID's length is always a multiple of four.
type Ref struct {
	Node     Atom
	Creation uint32
	ID       []byte
}

// Fun is a serialized Erlang closure descriptor.
type Fun struct {
	Module   Term
	Arity    uint8
	Pid      Term
	Index    uint32
	Uniq     [16]byte
	OldIndex Term
	OldUniq  Term
	FreeVars []Term
}

// Pair is a single map entry.
type Pair struct {
	Key   Term
	Value Term
}

// Map is an insertion-ordered mapping with structurally-compared keys. Keys
// need not be comparable in the Go sense, so lookups scan the pair list.
type Map struct {
	pairs []Pair
}

func NewMap() *Map {
	return &Map{}
}

// MapOf builds a map from the given pairs, overwriting on duplicate keys.
func MapOf(pairs ...Pair) *Map {
	m := NewMap()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set inserts or replaces the value stored under key. Replacement keeps the
// key's original position.
func (m *Map) Set(key, value Term) {
	for i, p := range m.pairs {
		if Equal(p.Key, key) {
			m.pairs[i].Value = value
			return
		}
	}
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Get returns the value stored under key, if any.
func (m *Map) Get(key Term) (Term, bool) {
	for _, p := range m.pairs {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

func (m *Map) Len() int {
	return len(m.pairs)
}

// Pairs returns the entries in insertion order. The slice is shared with the
// map and must not be mutated.
func (m *Map) Pairs() []Pair {
	return m.pairs
}

// Equal reports structural equality of two terms. Numeric terms compare by
// value regardless of their Go representation.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ai, ok := normInt(a); ok {
		bi, ok := normInt(b)
		return ok && ai.Cmp(bi) == 0
	}

	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := normFloat(b)
		return ok && av == bv
	case float32:
		af, _ := normFloat(a)
		bv, ok := normFloat(b)
		return ok && af == bv
	case Atom:
		bv, ok := b.(Atom)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytesEqual(av, bv)
	case BitString:
		bv, ok := b.(BitString)
		return ok && av.Bits == bv.Bits && bytesEqual(av.Bytes, bv.Bytes)
	case List:
		bv, ok := b.(List)
		return ok && sliceEqual(av, bv)
	case []Term:
		bv, ok := b.([]Term)
		return ok && sliceEqual(av, bv)
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && sliceEqual(av, bv)
	case ImproperList:
		bv, ok := b.(ImproperList)
		return ok && sliceEqual(av.Elements, bv.Elements) && Equal(av.Tail, bv.Tail)
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, p := range av.pairs {
			bval, found := bv.Get(p.Key)
			if !found || !Equal(p.Value, bval) {
				return false
			}
		}
		return true
	case Pid:
		bv, ok := b.(Pid)
		return ok && av.Node == bv.Node && av.ID == bv.ID &&
			av.Serial == bv.Serial && av.Creation == bv.Creation
	case Ref:
		bv, ok := b.(Ref)
		return ok && av.Node == bv.Node && av.Creation == bv.Creation &&
			bytesEqual(av.ID, bv.ID)
	case Fun:
		bv, ok := b.(Fun)
		return ok && Equal(av.Module, bv.Module) && av.Arity == bv.Arity &&
			Equal(av.Pid, bv.Pid) && av.Index == bv.Index && av.Uniq == bv.Uniq &&
			Equal(av.OldIndex, bv.OldIndex) && Equal(av.OldUniq, bv.OldUniq) &&
			sliceEqual(av.FreeVars, bv.FreeVars)
	}

	return a == b
}

func sliceEqual(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normInt(v Term) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return big.NewInt(int64(n)), true
	case uint16:
		return big.NewInt(int64(n)), true
	case uint32:
		return big.NewInt(int64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case *big.Int:
		return n, true
	}
	return nil, false
}

func normFloat(v Term) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}
