package codec

import (
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"etf/term"
)

// AtomRepresentation selects the Go value an atom decodes to.
type AtomRepresentation int

const (
	// AtomTerm decodes atoms as term.Atom values, or through the configured
	// Resolver when one is set.
	AtomTerm AtomRepresentation = iota
	// AtomString decodes atoms as plain strings.
	AtomString
	// AtomBytes decodes atoms as raw byte slices.
	AtomBytes
)

// ByteStringRepresentation selects the Go value a STRING_EXT payload decodes
// to.
type ByteStringRepresentation int

const (
	// ByteStringString decodes byte strings as plain strings.
	ByteStringString ByteStringRepresentation = iota
	// ByteStringBytes decodes byte strings as raw byte slices.
	ByteStringBytes
	// ByteStringCodepointList decodes byte strings as lists of integer code
	// points.
	ByteStringCodepointList
)

// Hook transforms a value during decoding or encoding. Decode hooks run once
// after a term of their kind is produced; encode hooks run before built-in
// encoding and their result re-enters encoding from the top.
type Hook func(v term.Term) (term.Term, error)

// Marshaler is the self-describing conversion capability consulted by the
// encoder for values with no specific hook and no built-in rule.
type Marshaler interface {
	MarshalETF() (term.Term, error)
}

// Resolver constructs host values for the structured kinds the codec does not
// build itself. A decoder resolves and caches each constructor once per
// instance.
type Resolver interface {
	MakeAtom(text string) (term.Term, error)
	MakePid(node string, id, serial, creation uint32) (term.Term, error)
	MakeRef(node string, creation uint32, id []byte) (term.Term, error)
	MakeFun(fun term.Fun) (term.Term, error)
	MakeImproperList(elements []term.Term, tail term.Term) (term.Term, error)
}

// GenericSerializer is the last-resort encoder collaborator, invoked for
// values no hook and no built-in rule can handle.
type GenericSerializer interface {
	SerializeObject(v term.Term) (term.Term, error)
}

// DefaultMaxHookDepth bounds the encode hook fallback chain. The chain has no
// cycle detection; the budget turns a hook loop into an error instead of
// unbounded recursion.
const DefaultMaxHookDepth = 100

// Options is the read-only configuration supplied when constructing a
// Decoder or Encoder.
type Options struct {
	AtomRepresentation AtomRepresentation
	ByteStrings        ByteStringRepresentation

	// DecodeHooks maps produced-kind names (see KindOf) to transforms applied
	// after a term of that kind is decoded. The hook result replaces the term
	// and is not dispatched through the table again.
	DecodeHooks map[string]Hook

	// EncodeHooks maps source-kind names to transforms applied before
	// built-in encoding. CatchAllHook handles kinds with no specific entry
	// and no built-in rule.
	EncodeHooks  map[string]Hook
	CatchAllHook Hook

	Resolver          Resolver
	GenericSerializer GenericSerializer

	// MaxHookDepth overrides DefaultMaxHookDepth when positive.
	MaxHookDepth int
}

func (o *Options) validate() error {
	if o.AtomRepresentation < AtomTerm || o.AtomRepresentation > AtomBytes {
		return errors.Wrapf(ErrBadOptions, "atom representation %d", o.AtomRepresentation)
	}
	if o.ByteStrings < ByteStringString || o.ByteStrings > ByteStringCodepointList {
		return errors.Wrapf(ErrBadOptions, "byte string representation %d", o.ByteStrings)
	}
	return nil
}

func (o *Options) maxHookDepth() int {
	if o.MaxHookDepth > 0 {
		return o.MaxHookDepth
	}
	return DefaultMaxHookDepth
}

func normalizeOptions(opts *Options) (Options, error) {
	if opts == nil {
		return Options{}, nil
	}
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	return *opts, nil
}

// KindOf names the kind of a term for hook table lookup. ETF-native kinds use
// fixed names; anything else is named by its Go type.
func KindOf(v term.Term) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case *big.Int:
		return "bigint"
	case float32, float64:
		return "float"
	case term.Atom:
		return "atom"
	case string:
		return "string"
	case []byte:
		return "binary"
	case term.BitString:
		return "bitstring"
	case term.List, []term.Term:
		return "list"
	case term.ImproperList:
		return "improper_list"
	case term.Tuple:
		return "tuple"
	case *term.Map, map[string]term.Term:
		return "map"
	case term.Pid:
		return "pid"
	case term.Ref:
		return "ref"
	case term.Fun:
		return "fun"
	default:
		return reflect.TypeOf(v).String()
	}
}
