package codec

import (
	"bytes"
	"io"
	"math/big"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"etf/term"
)

// maxPrealloc caps speculative slice preallocation for length prefixes read
// from untrusted input.
const maxPrealloc = 4096

// Decoder turns External Term Format bytes into Go terms. An instance holds
// lazily-resolved constructor caches and must not be shared across concurrent
// calls; give each goroutine its own Decoder.
type Decoder struct {
	opts     Options
	atomRepr AtomRepresentation

	atomCtor     func(text string) (term.Term, error)
	pidCtor      func(node string, id, serial, creation uint32) (term.Term, error)
	refCtor      func(node string, creation uint32, id []byte) (term.Term, error)
	funCtor      func(fun term.Fun) (term.Term, error)
	improperCtor func(elements []term.Term, tail term.Term) (term.Term, error)
}

func NewDecoder(opts *Options) (*Decoder, error) {
	normalized, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		opts:     normalized,
		atomRepr: normalized.AtomRepresentation,
	}, nil
}

// Unmarshal decodes one message with a fresh Decoder. It returns the decoded
// term and any unconsumed trailing bytes.
func Unmarshal(data []byte, opts *Options) (term.Term, []byte, error) {
	d, err := NewDecoder(opts)
	if err != nil {
		return nil, nil, err
	}
	return d.Decode(data)
}

// Decode reads the version byte, unwraps the compressed envelope if present,
// and decodes one term. It returns the term and the unread remainder. On
// failure there is no partial result; the input buffer is untouched.
func (d *Decoder) Decode(data []byte) (term.Term, []byte, error) {
	r := NewReader(data)
	version, err := r.ReadUint8()
	if err != nil {
		return nil, nil, err
	}
	if version != Version {
		return nil, nil, errors.Wrapf(ErrUnsupportedVersion, "version byte %d", version)
	}

	tag, err := r.Peek()
	if err != nil {
		return nil, nil, err
	}
	if tag != TagCompressed {
		v, err := d.decodeTerm(r)
		if err != nil {
			return nil, nil, err
		}
		return v, r.Rest(), nil
	}

	if _, err := r.Read(1); err != nil {
		return nil, nil, err
	}
	declared, err := r.ReadUint32()
	if err != nil {
		return nil, nil, err
	}
	inflated, err := inflate(r.Rest())
	if err != nil {
		return nil, nil, err
	}
	if len(inflated) != int(declared) {
		return nil, nil, errors.Wrapf(ErrCompressedSizeMismatch,
			"declared %d, inflated %d", declared, len(inflated))
	}

	// The inflated payload is a bare term with no version byte of its own.
	ir := NewReader(inflated)
	v, err := d.decodeTerm(ir)
	if err != nil {
		return nil, nil, err
	}
	return v, ir.Rest(), nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, inflateError(err)
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, inflateError(err)
	}
	return inflated, nil
}

func inflateError(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrap(ErrTruncated, "zlib stream")
	}
	return errors.Wrap(err, "inflating compressed term")
}

// decodeTerm reads one tag byte, dispatches on it, and applies the matching
// decode hook, if any, to the produced value.
func (d *Decoder) decodeTerm(r *Reader) (term.Term, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	var v term.Term
	switch tag {
	case TagSmallIntegerExt:
		n, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		v = int64(n)
	case TagIntegerExt:
		n, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		v = int64(n)
	case TagSmallBigExt:
		size, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		v, err = d.parseBigInt(r, int(size))
		if err != nil {
			return nil, err
		}
	case TagLargeBigExt:
		size, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err = d.parseBigInt(r, int(size))
		if err != nil {
			return nil, err
		}
	case TagNewFloatExt:
		f, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		v = f
	case TagAtomExt:
		v, err = d.parseAtom(r, true, true)
		if err != nil {
			return nil, err
		}
	case TagSmallAtomExt:
		v, err = d.parseAtom(r, false, true)
		if err != nil {
			return nil, err
		}
	case TagAtomUTF8Ext:
		v, err = d.parseAtom(r, true, false)
		if err != nil {
			return nil, err
		}
	case TagSmallAtomUTF8Ext:
		v, err = d.parseAtom(r, false, false)
		if err != nil {
			return nil, err
		}
	case TagNilExt:
		v = term.List{}
	case TagListExt:
		v, err = d.parseList(r)
		if err != nil {
			return nil, err
		}
	case TagStringExt:
		v, err = d.parseByteString(r)
		if err != nil {
			return nil, err
		}
	case TagBinaryExt:
		size, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		data, err := r.Read(int(size))
		if err != nil {
			return nil, err
		}
		v = append([]byte(nil), data...)
	case TagBitBinaryExt:
		v, err = d.parseBitString(r)
		if err != nil {
			return nil, err
		}
	case TagSmallTupleExt:
		arity, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		v, err = d.parseTuple(r, int(arity))
		if err != nil {
			return nil, err
		}
	case TagLargeTupleExt:
		arity, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err = d.parseTuple(r, int(arity))
		if err != nil {
			return nil, err
		}
	case TagMapExt:
		v, err = d.parseMap(r)
		if err != nil {
			return nil, err
		}
	case TagPidExt:
		v, err = d.parsePid(r, false)
		if err != nil {
			return nil, err
		}
	case TagNewPidExt:
		v, err = d.parsePid(r, true)
		if err != nil {
			return nil, err
		}
	case TagNewRefExt:
		v, err = d.parseRef(r, false)
		if err != nil {
			return nil, err
		}
	case TagNewerRefExt:
		v, err = d.parseRef(r, true)
		if err != nil {
			return nil, err
		}
	case TagNewFunExt:
		v, err = d.parseFun(r)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnknownTag, "tag %d", tag)
	}

	if len(d.opts.DecodeHooks) > 0 {
		if hook := d.opts.DecodeHooks[KindOf(v)]; hook != nil {
			hooked, err := hook(v)
			if err != nil {
				return nil, errors.Wrap(err, "decode hook")
			}
			v = hooked
		}
	}
	return v, nil
}

// parseAtom reads an atom payload and applies sentinel folding and the
// configured representation. Latin-1 bytes with the high bit set widen to
// their Unicode code points one-for-one.
func (d *Decoder) parseAtom(r *Reader, wideLen bool, latin1 bool) (term.Term, error) {
	var size int
	if wideLen {
		n, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		size = int(n)
	} else {
		n, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		size = int(n)
	}
	data, err := r.Read(size)
	if err != nil {
		return nil, err
	}

	var text string
	if latin1 && !isASCII(data) {
		buf := make([]byte, 0, len(data)*2)
		for _, b := range data {
			buf = utf8.AppendRune(buf, rune(b))
		}
		text = string(buf)
	} else {
		text = string(data)
	}
	return d.atomValue(text)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// atomValue folds the boolean/null sentinel atoms, then applies the current
// atom representation.
func (d *Decoder) atomValue(text string) (term.Term, error) {
	switch text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "undefined":
		return nil, nil
	}

	switch d.atomRepr {
	case AtomString:
		return text, nil
	case AtomBytes:
		return []byte(text), nil
	default:
		if d.atomCtor == nil {
			if d.opts.Resolver != nil {
				d.atomCtor = d.opts.Resolver.MakeAtom
			} else {
				d.atomCtor = func(text string) (term.Term, error) {
					return term.Atom(text), nil
				}
			}
		}
		v, err := d.atomCtor(text)
		if err != nil {
			return nil, errors.Wrap(err, "resolving atom")
		}
		return v, nil
	}
}

func (d *Decoder) parseBigInt(r *Reader, size int) (term.Term, error) {
	sign, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	magnitude, err := r.Read(size)
	if err != nil {
		return nil, err
	}

	// Magnitude is little-endian on the wire; big.Int wants big-endian.
	be := make([]byte, size)
	for i, b := range magnitude {
		be[size-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if sign != 0 {
		n.Neg(n)
	}
	if n.IsInt64() {
		return n.Int64(), nil
	}
	return n, nil
}

func (d *Decoder) parseByteString(r *Reader) (term.Term, error) {
	size, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	data, err := r.Read(int(size))
	if err != nil {
		return nil, err
	}

	switch d.opts.ByteStrings {
	case ByteStringBytes:
		return append([]byte(nil), data...), nil
	case ByteStringCodepointList:
		lst := make(term.List, len(data))
		for i, b := range data {
			lst[i] = int64(b)
		}
		return lst, nil
	default:
		return string(data), nil
	}
}

func (d *Decoder) parseBitString(r *Reader) (term.Term, error) {
	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	lastByteBits, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	data, err := r.Read(int(size))
	if err != nil {
		return nil, err
	}
	return term.BitString{
		Bytes: append([]byte(nil), data...),
		Bits:  lastByteBits,
	}, nil
}

func (d *Decoder) parseList(r *Reader) (term.Term, error) {
	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	elements := make([]term.Term, 0, prealloc(int(count)))
	for i := 0; i < int(count); i++ {
		el, err := d.decodeTerm(r)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	next, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if next == TagNilExt {
		if _, err := r.Read(1); err != nil {
			return nil, err
		}
		return term.List(elements), nil
	}

	tail, err := d.decodeTerm(r)
	if err != nil {
		return nil, err
	}
	if d.improperCtor == nil {
		if d.opts.Resolver != nil {
			d.improperCtor = d.opts.Resolver.MakeImproperList
		} else {
			d.improperCtor = func(elements []term.Term, tail term.Term) (term.Term, error) {
				return term.ImproperList{Elements: elements, Tail: tail}, nil
			}
		}
	}
	v, err := d.improperCtor(elements, tail)
	if err != nil {
		return nil, errors.Wrap(err, "resolving improper list")
	}
	return v, nil
}

func (d *Decoder) parseTuple(r *Reader, arity int) (term.Term, error) {
	elements := make(term.Tuple, 0, prealloc(arity))
	for i := 0; i < arity; i++ {
		el, err := d.decodeTerm(r)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// parseMap reads key/value pairs two at a time. A duplicate key overwrites
// the earlier entry.
func (d *Decoder) parseMap(r *Reader) (term.Term, error) {
	arity, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	m := term.NewMap()
	for i := 0; i < int(arity); i++ {
		key, err := d.decodeTerm(r)
		if err != nil {
			return nil, err
		}
		value, err := d.decodeTerm(r)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	return m, nil
}

// decodeNodeAtom decodes the node field of a pid or reference. The atom
// representation is forced to plain text for the nested atom and restored
// afterwards; the node name is only ever an opaque label here.
func (d *Decoder) decodeNodeAtom(r *Reader) (string, error) {
	saved := d.atomRepr
	d.atomRepr = AtomString
	v, err := d.decodeTerm(r)
	d.atomRepr = saved
	if err != nil {
		return "", err
	}
	node, ok := v.(string)
	if !ok {
		return "", errors.Errorf("node atom decoded to %T, want string", v)
	}
	return node, nil
}

func (d *Decoder) parsePid(r *Reader, wideCreation bool) (term.Term, error) {
	node, err := d.decodeNodeAtom(r)
	if err != nil {
		return nil, err
	}
	id, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	serial, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	var creation uint32
	if wideCreation {
		creation, err = r.ReadUint32()
	} else {
		var c uint8
		c, err = r.ReadUint8()
		creation = uint32(c)
	}
	if err != nil {
		return nil, err
	}

	if d.pidCtor == nil {
		if d.opts.Resolver != nil {
			d.pidCtor = d.opts.Resolver.MakePid
		} else {
			d.pidCtor = func(node string, id, serial, creation uint32) (term.Term, error) {
				return term.Pid{
					Node:     term.Atom(node),
					ID:       id,
					Serial:   serial,
					Creation: creation,
				}, nil
			}
		}
	}
	v, err := d.pidCtor(node, id, serial, creation)
	if err != nil {
		return nil, errors.Wrap(err, "resolving pid")
	}
	return v, nil
}

func (d *Decoder) parseRef(r *Reader, wideCreation bool) (term.Term, error) {
	wordCount, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	node, err := d.decodeNodeAtom(r)
	if err != nil {
		return nil, err
	}
	var creation uint32
	if wideCreation {
		creation, err = r.ReadUint32()
	} else {
		var c uint8
		c, err = r.ReadUint8()
		creation = uint32(c)
	}
	if err != nil {
		return nil, err
	}
	id, err := r.Read(int(wordCount) * 4)
	if err != nil {
		return nil, err
	}

	if d.refCtor == nil {
		if d.opts.Resolver != nil {
			d.refCtor = d.opts.Resolver.MakeRef
		} else {
			d.refCtor = func(node string, creation uint32, id []byte) (term.Term, error) {
				return term.Ref{
					Node:     term.Atom(node),
					Creation: creation,
					ID:       id,
				}, nil
			}
		}
	}
	v, err := d.refCtor(node, creation, append([]byte(nil), id...))
	if err != nil {
		return nil, errors.Wrap(err, "resolving reference")
	}
	return v, nil
}

func (d *Decoder) parseFun(r *Reader) (term.Term, error) {
	// The leading size field duplicates information recoverable from the
	// payload itself and is not validated.
	if _, err := r.ReadUint32(); err != nil {
		return nil, err
	}
	arity, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	uniq, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	index, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	numFree, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	module, err := d.decodeTerm(r)
	if err != nil {
		return nil, err
	}
	oldIndex, err := d.decodeTerm(r)
	if err != nil {
		return nil, err
	}
	oldUniq, err := d.decodeTerm(r)
	if err != nil {
		return nil, err
	}
	pid, err := d.decodeTerm(r)
	if err != nil {
		return nil, err
	}
	freeVars := make([]term.Term, 0, prealloc(int(numFree)))
	for i := 0; i < int(numFree); i++ {
		fv, err := d.decodeTerm(r)
		if err != nil {
			return nil, err
		}
		freeVars = append(freeVars, fv)
	}

	fun := term.Fun{
		Module:   module,
		Arity:    arity,
		Pid:      pid,
		Index:    index,
		OldIndex: oldIndex,
		OldUniq:  oldUniq,
		FreeVars: freeVars,
	}
	copy(fun.Uniq[:], uniq)

	if d.funCtor == nil {
		if d.opts.Resolver != nil {
			d.funCtor = d.opts.Resolver.MakeFun
		} else {
			d.funCtor = func(fun term.Fun) (term.Term, error) {
				return fun, nil
			}
		}
	}
	v, err := d.funCtor(fun)
	if err != nil {
		return nil, errors.Wrap(err, "resolving fun")
	}
	return v, nil
}

func prealloc(n int) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}
