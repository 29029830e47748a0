package codec

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"etf/term"
)

func mustMarshal(t *testing.T, v term.Term) []byte {
	t.Helper()
	data, err := Marshal(v, nil)
	require.NoError(t, err)
	return data
}

func TestMarshal_Integers(t *testing.T) {
	tests := []struct {
		name string
		in   term.Term
		out  []byte
	}{
		{"zero", int64(0), []byte{131, 97, 0}},
		{"max small", int64(255), []byte{131, 97, 255}},
		{"past small", int64(256), []byte{131, 98, 0, 0, 1, 0}},
		{"negative", int64(-1), []byte{131, 98, 255, 255, 255, 255}},
		{"min int32", int64(math.MinInt32), []byte{131, 98, 128, 0, 0, 0}},
		{"max int32", int64(math.MaxInt32), []byte{131, 98, 127, 255, 255, 255}},
		{"past int32", int64(1) << 40, []byte{131, 110, 6, 0, 0, 0, 0, 0, 0, 1}},
		{"hundred billion", int64(100000000000), []byte{131, 110, 5, 0, 0, 232, 118, 72, 23}},
		{"negative bignum", -(int64(1) << 40), []byte{131, 110, 6, 1, 0, 0, 0, 0, 0, 1}},
		{"min int64", int64(math.MinInt64), []byte{131, 110, 8, 1, 0, 0, 0, 0, 0, 0, 0, 128}},
		{"max uint64", uint64(math.MaxUint64), []byte{131, 110, 8, 0, 255, 255, 255, 255, 255, 255, 255, 255}},
		{"past uint64", new(big.Int).Lsh(big.NewInt(1), 64), []byte{131, 110, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"narrow int type", int8(-5), []byte{131, 98, 255, 255, 255, 251}},
		{"unsigned type", uint16(300), []byte{131, 98, 0, 0, 1, 44}},
		{"small big.Int", big.NewInt(7), []byte{131, 97, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.EqualValues(t, tt.out, mustMarshal(t, tt.in))
		})
	}
}

func TestMarshal_Floats(t *testing.T) {
	require.EqualValues(t, []byte{131, 70, 64, 12, 0, 0, 0, 0, 0, 0}, mustMarshal(t, 3.5))
	require.EqualValues(t, []byte{131, 70, 191, 240, 0, 0, 0, 0, 0, 0}, mustMarshal(t, -1.0))
	require.EqualValues(t, []byte{131, 70, 64, 12, 0, 0, 0, 0, 0, 0}, mustMarshal(t, float32(3.5)))

	_, err := Marshal(math.NaN(), nil)
	require.ErrorIs(t, err, ErrNonFiniteFloat)
	_, err = Marshal(math.Inf(1), nil)
	require.ErrorIs(t, err, ErrNonFiniteFloat)
	_, err = Marshal(math.Inf(-1), nil)
	require.ErrorIs(t, err, ErrNonFiniteFloat)
}

func TestMarshal_Atoms(t *testing.T) {
	require.EqualValues(t, []byte{131, 119, 3, 'f', 'o', 'o'}, mustMarshal(t, term.Atom("foo")))
	require.EqualValues(t, []byte{131, 119, 0}, mustMarshal(t, term.Atom("")))

	// Sentinels encode as atoms without ever being Atom values.
	require.EqualValues(t, []byte{131, 119, 4, 't', 'r', 'u', 'e'}, mustMarshal(t, true))
	require.EqualValues(t, []byte{131, 119, 5, 'f', 'a', 'l', 's', 'e'}, mustMarshal(t, false))
	require.EqualValues(t, []byte{131, 119, 9, 'u', 'n', 'd', 'e', 'f', 'i', 'n', 'e', 'd'}, mustMarshal(t, nil))

	// Non-ASCII atom text counts UTF-8 bytes, not characters.
	require.EqualValues(t, []byte{131, 119, 6, 'h', 0xC3, 0xA9, 'l', 'l', 'o'}, mustMarshal(t, term.Atom("héllo")))

	long := term.Atom(strings.Repeat("a", 300))
	data := mustMarshal(t, long)
	require.EqualValues(t, []byte{131, 118, 1, 44}, data[:4])
	require.Len(t, data, 4+300)

	_, err := Marshal(term.Atom(strings.Repeat("a", 70000)), nil)
	require.ErrorIs(t, err, ErrAtomTooLong)
}

func TestMarshal_Strings(t *testing.T) {
	require.EqualValues(t, []byte{131, 107, 0, 0}, mustMarshal(t, ""))
	require.EqualValues(t, []byte{131, 107, 0, 3, 'a', 'b', 'c'}, mustMarshal(t, "abc"))

	// One byte per character, even past ASCII.
	require.EqualValues(t, []byte{131, 107, 0, 1, 233}, mustMarshal(t, "é"))

	// A character above 255 forces the code point list form.
	require.EqualValues(t,
		[]byte{131, 108, 0, 0, 0, 1, 98, 0, 0, 33, 146, 106},
		mustMarshal(t, "→"))

	// So does a character count past 16 bits.
	data := mustMarshal(t, strings.Repeat("a", 70000))
	require.EqualValues(t, TagListExt, data[1])
}

func TestMarshal_BinariesAndBitStrings(t *testing.T) {
	require.EqualValues(t, []byte{131, 109, 0, 0, 0, 3, 1, 2, 3}, mustMarshal(t, []byte{1, 2, 3}))
	require.EqualValues(t, []byte{131, 109, 0, 0, 0, 0}, mustMarshal(t, []byte{}))

	require.EqualValues(t,
		[]byte{131, 77, 0, 0, 0, 2, 3, 170, 192},
		mustMarshal(t, term.BitString{Bytes: []byte{170, 192}, Bits: 3}))

	_, err := Marshal(term.BitString{Bytes: []byte{1}, Bits: 0}, nil)
	require.Error(t, err)
	_, err = Marshal(term.BitString{Bytes: []byte{1}, Bits: 9}, nil)
	require.Error(t, err)
}

func TestMarshal_Lists(t *testing.T) {
	require.EqualValues(t, []byte{131, 106}, mustMarshal(t, term.List{}))
	require.EqualValues(t, []byte{131, 106}, mustMarshal(t, []term.Term{}))
	require.EqualValues(t,
		[]byte{131, 108, 0, 0, 0, 2, 97, 1, 119, 1, 'a', 106},
		mustMarshal(t, term.List{int64(1), term.Atom("a")}))
	require.EqualValues(t,
		[]byte{131, 108, 0, 0, 0, 1, 97, 1, 97, 2},
		mustMarshal(t, term.ImproperList{Elements: []term.Term{int64(1)}, Tail: int64(2)}))
}

func TestMarshal_Tuples(t *testing.T) {
	require.EqualValues(t, []byte{131, 104, 0}, mustMarshal(t, term.Tuple{}))
	require.EqualValues(t, []byte{131, 104, 2, 97, 1, 97, 2}, mustMarshal(t, term.Tuple{int64(1), int64(2)}))

	wide := make(term.Tuple, 256)
	for i := range wide {
		wide[i] = int64(0)
	}
	data := mustMarshal(t, wide)
	require.EqualValues(t, []byte{131, 105, 0, 0, 1, 0}, data[:6])
	require.Len(t, data, 6+256*2)
}

func TestMarshal_Maps(t *testing.T) {
	require.EqualValues(t, []byte{131, 116, 0, 0, 0, 0}, mustMarshal(t, term.NewMap()))
	require.EqualValues(t,
		[]byte{131, 116, 0, 0, 0, 1, 119, 1, 'a', 97, 1},
		mustMarshal(t, term.MapOf(term.Pair{Key: term.Atom("a"), Value: int64(1)})))

	// Map pairs encode in insertion order.
	m := term.NewMap()
	m.Set(int64(2), term.Atom("b"))
	m.Set(int64(1), term.Atom("a"))
	require.EqualValues(t,
		[]byte{131, 116, 0, 0, 0, 2, 97, 2, 119, 1, 'b', 97, 1, 119, 1, 'a'},
		mustMarshal(t, m))

	require.EqualValues(t,
		[]byte{131, 116, 0, 0, 0, 1, 107, 0, 1, 'a', 97, 1},
		mustMarshal(t, map[string]term.Term{"a": int64(1)}))
}

func TestMarshal_PidsAndRefs(t *testing.T) {
	require.EqualValues(t,
		[]byte{131, 88, 119, 1, 'n', 0, 0, 0, 5, 0, 0, 0, 6, 0, 0, 0, 7},
		mustMarshal(t, term.Pid{Node: "n", ID: 5, Serial: 6, Creation: 7}))

	require.EqualValues(t,
		[]byte{131, 90, 0, 2, 119, 1, 'n', 0, 0, 0, 7, 0, 0, 0, 9, 0, 0, 0, 8},
		mustMarshal(t, term.Ref{Node: "n", Creation: 7, ID: []byte{0, 0, 0, 9, 0, 0, 0, 8}}))

	_, err := Marshal(term.Ref{Node: "n", ID: []byte{1, 2, 3}}, nil)
	require.Error(t, err)
}

func TestMarshal_Fun(t *testing.T) {
	fun := term.Fun{
		Module:   term.Atom("m"),
		Arity:    2,
		Pid:      term.Pid{Node: "n", ID: 1, Serial: 0, Creation: 1},
		Index:    3,
		OldIndex: int64(3),
		OldUniq:  int64(4),
		FreeVars: []term.Term{int64(9)},
	}
	data := mustMarshal(t, fun)
	require.EqualValues(t, TagNewFunExt, data[1])

	// The size field counts everything after the tag byte.
	size := uint32(data[2])<<24 | uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5])
	require.EqualValues(t, len(data)-2, size)
}

func TestMarshal_EncodeHooks(t *testing.T) {
	opts := &Options{EncodeHooks: map[string]Hook{
		"int": func(v term.Term) (term.Term, error) {
			return term.Atom(strconv.FormatInt(v.(int64), 10)), nil
		},
	}}
	data, err := Marshal(int64(7), opts)
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 119, 1, '7'}, data)
}

func TestMarshal_EncodeHookChain(t *testing.T) {
	// A hook's output re-enters encoding from the top, so a second hook can
	// pick it up.
	opts := &Options{EncodeHooks: map[string]Hook{
		"int": func(v term.Term) (term.Term, error) {
			return term.Atom("seven"), nil
		},
		"atom": func(v term.Term) (term.Term, error) {
			return []byte(v.(term.Atom)), nil
		},
	}}
	data, err := Marshal(int64(7), opts)
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 109, 0, 0, 0, 5, 's', 'e', 'v', 'e', 'n'}, data)
}

func TestMarshal_HookDepthExceeded(t *testing.T) {
	identity := func(v term.Term) (term.Term, error) { return v, nil }

	_, err := Marshal(int64(7), &Options{
		EncodeHooks:  map[string]Hook{"int": identity},
		MaxHookDepth: 10,
	})
	require.ErrorIs(t, err, ErrHookDepthExceeded)

	_, err = Marshal(struct{}{}, &Options{CatchAllHook: identity})
	require.ErrorIs(t, err, ErrHookDepthExceeded)
}

type celsius struct {
	deg int64
}

type ratio struct {
	num, den int64
}

func (r ratio) MarshalETF() (term.Term, error) {
	return term.Tuple{term.Atom("ratio"), r.num, r.den}, nil
}

type reprSerializer struct {
	calls int
}

func (s *reprSerializer) SerializeObject(v term.Term) (term.Term, error) {
	s.calls++
	return fmt.Sprintf("%v", v), nil
}

func TestMarshal_CatchAllHook(t *testing.T) {
	opts := &Options{CatchAllHook: func(v term.Term) (term.Term, error) {
		c := v.(celsius)
		return term.Tuple{term.Atom("celsius"), c.deg}, nil
	}}
	data, err := Marshal(celsius{deg: 20}, opts)
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 104, 2, 119, 7, 'c', 'e', 'l', 's', 'i', 'u', 's', 97, 20}, data)
}

func TestMarshal_Marshaler(t *testing.T) {
	data, err := Marshal(ratio{num: 1, den: 2}, nil)
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 104, 3, 119, 5, 'r', 'a', 't', 'i', 'o', 97, 1, 97, 2}, data)
}

func TestMarshal_CatchAllBeatsMarshaler(t *testing.T) {
	opts := &Options{CatchAllHook: func(v term.Term) (term.Term, error) {
		return term.Atom("hooked"), nil
	}}
	data, err := Marshal(ratio{num: 1, den: 2}, opts)
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 119, 6, 'h', 'o', 'o', 'k', 'e', 'd'}, data)
}

func TestMarshal_GenericSerializer(t *testing.T) {
	ser := &reprSerializer{}
	data, err := Marshal(celsius{deg: 20}, &Options{GenericSerializer: ser})
	require.NoError(t, err)
	require.Equal(t, 1, ser.calls)
	require.EqualValues(t, mustMarshal(t, "{20}"), data)

	// A value the built-in rules cover never reaches the serializer.
	_, err = Marshal(int64(1), &Options{GenericSerializer: ser})
	require.NoError(t, err)
	require.Equal(t, 1, ser.calls)
}

func TestMarshal_UnsupportedType(t *testing.T) {
	_, err := Marshal(celsius{deg: 20}, nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestMarshal_BadOptions(t *testing.T) {
	_, err := Marshal(int64(1), &Options{AtomRepresentation: 42})
	require.ErrorIs(t, err, ErrBadOptions)
	_, err = Marshal(int64(1), &Options{ByteStrings: -1})
	require.ErrorIs(t, err, ErrBadOptions)
}

func TestEncoder_Reuse(t *testing.T) {
	e, err := NewEncoder(nil)
	require.NoError(t, err)

	require.NoError(t, e.Encode(int64(1)))
	require.NoError(t, e.Encode(term.Atom("a")))
	require.EqualValues(t, []byte{97, 1, 119, 1, 'a'}, e.Bytes())
	require.Equal(t, 5, e.Len())

	e.Reset()
	require.Zero(t, e.Len())
	require.NoError(t, e.Encode(int64(2)))
	require.EqualValues(t, []byte{97, 2}, e.Bytes())
}
