package codec

import (
	"bytes"
	"math"
	"math/big"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"etf/term"
)

// Encoder serializes Go terms into External Term Format bytes, appending to
// an internal buffer. Like Decoder, an instance is not safe for concurrent
// use.
type Encoder struct {
	opts Options
	buf  []byte
}

func NewEncoder(opts *Options) (*Encoder, error) {
	normalized, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Encoder{opts: normalized}, nil
}

// Encode appends the encoding of one term to the buffer, without a version
// byte. The first failure aborts the call; nothing further is written.
func (e *Encoder) Encode(v term.Term) error {
	return e.encodeValue(v, 0)
}

// Bytes returns the accumulated output. The slice is shared with the encoder
// until Reset is called.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Marshal encodes a term as a complete message: the version byte followed by
// the term's encoding.
func Marshal(v term.Term, opts *Options) ([]byte, error) {
	e, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}
	e.buf = append(e.buf, Version)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalCompressed encodes a term and wraps it in the compressed envelope:
// version byte, compressed tag, declared decompressed length, zlib stream.
func MarshalCompressed(v term.Term, opts *Options) ([]byte, error) {
	e, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	payload := e.Bytes()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return nil, errors.Wrap(err, "deflating term")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "deflating term")
	}

	out := make([]byte, 0, compressed.Len()+6)
	out = append(out, Version, TagCompressed)
	out = appendUint32(out, uint32(len(payload)))
	return append(out, compressed.Bytes()...), nil
}

// encodeValue dispatches on the value's kind. A per-kind encode hook takes
// priority over the built-in rules; unrecognized kinds fall through the
// catch-all hook, the Marshaler capability, and the generic serializer, in
// that order. depth counts hook-chain rewrites of this one value; nested
// terms start back at zero.
func (e *Encoder) encodeValue(v term.Term, depth int) error {
	if depth > e.opts.maxHookDepth() {
		return errors.Wrapf(ErrHookDepthExceeded, "after %d rewrites", depth)
	}

	if len(e.opts.EncodeHooks) > 0 {
		if hook := e.opts.EncodeHooks[KindOf(v)]; hook != nil {
			hooked, err := hook(v)
			if err != nil {
				return errors.Wrap(err, "encode hook")
			}
			return e.encodeValue(hooked, depth+1)
		}
	}

	switch val := v.(type) {
	case nil:
		return e.writeAtomText("undefined")
	case bool:
		if val {
			return e.writeAtomText("true")
		}
		return e.writeAtomText("false")
	case int:
		return e.writeInt64(int64(val))
	case int8:
		return e.writeInt64(int64(val))
	case int16:
		return e.writeInt64(int64(val))
	case int32:
		return e.writeInt64(int64(val))
	case int64:
		return e.writeInt64(val)
	case uint8:
		return e.writeInt64(int64(val))
	case uint16:
		return e.writeInt64(int64(val))
	case uint32:
		return e.writeInt64(int64(val))
	case uint:
		return e.writeUint64(uint64(val))
	case uint64:
		return e.writeUint64(val)
	case *big.Int:
		return e.writeBigInt(val)
	case float32:
		return e.writeFloat(float64(val))
	case float64:
		return e.writeFloat(val)
	case term.Atom:
		return e.writeAtomText(string(val))
	case string:
		return e.writeString(val)
	case []byte:
		e.buf = append(e.buf, TagBinaryExt)
		e.buf = appendUint32(e.buf, uint32(len(val)))
		e.buf = append(e.buf, val...)
		return nil
	case term.BitString:
		return e.writeBitString(val)
	case term.List:
		return e.writeList(val)
	case []term.Term:
		return e.writeList(val)
	case term.ImproperList:
		return e.writeImproperList(val)
	case term.Tuple:
		return e.writeTuple(val)
	case *term.Map:
		return e.writeMap(val)
	case map[string]term.Term:
		return e.writeStringMap(val)
	case term.Pid:
		return e.writePid(val)
	case term.Ref:
		return e.writeRef(val)
	case term.Fun:
		return e.writeFun(val)
	}

	if e.opts.CatchAllHook != nil {
		hooked, err := e.opts.CatchAllHook(v)
		if err != nil {
			return errors.Wrap(err, "catch-all encode hook")
		}
		return e.encodeValue(hooked, depth+1)
	}
	if m, ok := v.(Marshaler); ok {
		converted, err := m.MarshalETF()
		if err != nil {
			return errors.Wrap(err, "MarshalETF")
		}
		return e.encodeValue(converted, depth+1)
	}
	if e.opts.GenericSerializer != nil {
		serialized, err := e.opts.GenericSerializer.SerializeObject(v)
		if err != nil {
			return errors.Wrap(err, "generic serializer")
		}
		return e.encodeValue(serialized, depth+1)
	}
	return errors.Wrapf(ErrUnsupportedType, "%T", v)
}

// writeInt64 picks the minimal integer form: small unsigned byte, 4-byte
// signed, or bignum.
func (e *Encoder) writeInt64(v int64) error {
	if v >= 0 && v <= math.MaxUint8 {
		e.buf = append(e.buf, TagSmallIntegerExt, byte(v))
		return nil
	}
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		e.buf = append(e.buf, TagIntegerExt)
		e.buf = appendUint32(e.buf, uint32(int32(v)))
		return nil
	}

	var sign byte
	var magnitude uint64
	if v < 0 {
		sign = 1
		magnitude = uint64(-(v + 1)) + 1
	} else {
		magnitude = uint64(v)
	}
	e.writeBignum(sign, littleEndianBytes(magnitude))
	return nil
}

func (e *Encoder) writeUint64(v uint64) error {
	if v <= math.MaxInt64 {
		return e.writeInt64(int64(v))
	}
	e.writeBignum(0, littleEndianBytes(v))
	return nil
}

func (e *Encoder) writeBigInt(n *big.Int) error {
	if n.IsInt64() {
		return e.writeInt64(n.Int64())
	}

	var sign byte
	if n.Sign() < 0 {
		sign = 1
	}
	be := n.Bytes() // big-endian magnitude
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	e.writeBignum(sign, le)
	return nil
}

// writeBignum emits a small or large bignum from little-endian magnitude
// bytes, which must already be minimal.
func (e *Encoder) writeBignum(sign byte, magnitude []byte) {
	if len(magnitude) < 256 {
		e.buf = append(e.buf, TagSmallBigExt, byte(len(magnitude)))
	} else {
		e.buf = append(e.buf, TagLargeBigExt)
		e.buf = appendUint32(e.buf, uint32(len(magnitude)))
	}
	e.buf = append(e.buf, sign)
	e.buf = append(e.buf, magnitude...)
}

func littleEndianBytes(v uint64) []byte {
	out := make([]byte, 0, 8)
	for v > 0 {
		out = append(out, byte(v))
		v >>= 8
	}
	return out
}

func (e *Encoder) writeFloat(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Wrapf(ErrNonFiniteFloat, "%v", v)
	}
	e.buf = append(e.buf, TagNewFloatExt)
	bits := math.Float64bits(v)
	e.buf = appendUint32(e.buf, uint32(bits>>32))
	e.buf = appendUint32(e.buf, uint32(bits))
	return nil
}

func (e *Encoder) writeAtomText(text string) error {
	if len(text) <= math.MaxUint8 {
		e.buf = append(e.buf, TagSmallAtomUTF8Ext, byte(len(text)))
	} else if len(text) <= math.MaxUint16 {
		e.buf = append(e.buf, TagAtomUTF8Ext)
		e.buf = appendUint16(e.buf, uint16(len(text)))
	} else {
		return errors.Wrapf(ErrAtomTooLong, "%d bytes", len(text))
	}
	e.buf = append(e.buf, text...)
	return nil
}

// writeString emits the compact byte-string form when every code point fits
// in one byte and the character count fits in 16 bits, and a NIL-terminated
// list of integer code points otherwise.
func (e *Encoder) writeString(s string) error {
	chars := 0
	compact := true
	for _, r := range s {
		chars++
		if r > math.MaxUint8 {
			compact = false
		}
	}

	if compact && chars <= math.MaxUint16 {
		e.buf = append(e.buf, TagStringExt)
		e.buf = appendUint16(e.buf, uint16(chars))
		for _, r := range s {
			e.buf = append(e.buf, byte(r))
		}
		return nil
	}

	e.buf = append(e.buf, TagListExt)
	e.buf = appendUint32(e.buf, uint32(chars))
	for _, r := range s {
		if err := e.writeInt64(int64(r)); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, TagNilExt)
	return nil
}

func (e *Encoder) writeBitString(v term.BitString) error {
	if v.Bits < 1 || v.Bits > 8 {
		return errors.Errorf("bit string last-byte bit count %d out of range 1-8", v.Bits)
	}
	e.buf = append(e.buf, TagBitBinaryExt)
	e.buf = appendUint32(e.buf, uint32(len(v.Bytes)))
	e.buf = append(e.buf, v.Bits)
	e.buf = append(e.buf, v.Bytes...)
	return nil
}

func (e *Encoder) writeList(elements []term.Term) error {
	if len(elements) == 0 {
		e.buf = append(e.buf, TagNilExt)
		return nil
	}
	if err := e.writeListNoTail(elements); err != nil {
		return err
	}
	e.buf = append(e.buf, TagNilExt)
	return nil
}

func (e *Encoder) writeImproperList(v term.ImproperList) error {
	if err := e.writeListNoTail(v.Elements); err != nil {
		return err
	}
	return e.encodeValue(v.Tail, 0)
}

// writeListNoTail writes the list tag and elements but no terminator; the
// caller writes either NIL or a tail term.
func (e *Encoder) writeListNoTail(elements []term.Term) error {
	e.buf = append(e.buf, TagListExt)
	e.buf = appendUint32(e.buf, uint32(len(elements)))
	for _, el := range elements {
		if err := e.encodeValue(el, 0); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeTuple(v term.Tuple) error {
	if len(v) <= math.MaxUint8 {
		e.buf = append(e.buf, TagSmallTupleExt, byte(len(v)))
	} else {
		e.buf = append(e.buf, TagLargeTupleExt)
		e.buf = appendUint32(e.buf, uint32(len(v)))
	}
	for _, el := range v {
		if err := e.encodeValue(el, 0); err != nil {
			return err
		}
	}
	return nil
}

// writeMap emits pairs in iteration order. The encoder performs no key
// deduplication; callers must not pass duplicate keys.
func (e *Encoder) writeMap(m *term.Map) error {
	e.buf = append(e.buf, TagMapExt)
	e.buf = appendUint32(e.buf, uint32(m.Len()))
	for _, p := range m.Pairs() {
		if err := e.encodeValue(p.Key, 0); err != nil {
			return err
		}
		if err := e.encodeValue(p.Value, 0); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeStringMap(m map[string]term.Term) error {
	e.buf = append(e.buf, TagMapExt)
	e.buf = appendUint32(e.buf, uint32(len(m)))
	for k, v := range m {
		if err := e.writeString(k); err != nil {
			return err
		}
		if err := e.encodeValue(v, 0); err != nil {
			return err
		}
	}
	return nil
}

// writePid always emits the current wide form, regardless of the form the
// pid was decoded from.
func (e *Encoder) writePid(v term.Pid) error {
	e.buf = append(e.buf, TagNewPidExt)
	if err := e.writeAtomText(string(v.Node)); err != nil {
		return err
	}
	e.buf = appendUint32(e.buf, v.ID)
	e.buf = appendUint32(e.buf, v.Serial)
	e.buf = appendUint32(e.buf, v.Creation)
	return nil
}

func (e *Encoder) writeRef(v term.Ref) error {
	if len(v.ID)%4 != 0 {
		return errors.Errorf("reference id length %d is not a multiple of 4", len(v.ID))
	}
	words := len(v.ID) / 4
	if words > math.MaxUint16 {
		return errors.Errorf("reference id length %d exceeds wire format", len(v.ID))
	}
	e.buf = append(e.buf, TagNewerRefExt)
	e.buf = appendUint16(e.buf, uint16(words))
	if err := e.writeAtomText(string(v.Node)); err != nil {
		return err
	}
	e.buf = appendUint32(e.buf, v.Creation)
	e.buf = append(e.buf, v.ID...)
	return nil
}

func (e *Encoder) writeFun(v term.Fun) error {
	e.buf = append(e.buf, TagNewFunExt)
	sizeOffset := len(e.buf)
	e.buf = append(e.buf, 0, 0, 0, 0) // patched below
	e.buf = append(e.buf, v.Arity)
	e.buf = append(e.buf, v.Uniq[:]...)
	e.buf = appendUint32(e.buf, v.Index)
	e.buf = appendUint32(e.buf, uint32(len(v.FreeVars)))
	for _, field := range []term.Term{v.Module, v.OldIndex, v.OldUniq, v.Pid} {
		if err := e.encodeValue(field, 0); err != nil {
			return err
		}
	}
	for _, fv := range v.FreeVars {
		if err := e.encodeValue(fv, 0); err != nil {
			return err
		}
	}

	// Size counts everything from the size field to the end of the fun,
	// excluding the tag byte.
	size := uint32(len(e.buf) - sizeOffset)
	e.buf[sizeOffset] = byte(size >> 24)
	e.buf[sizeOffset+1] = byte(size >> 16)
	e.buf[sizeOffset+2] = byte(size >> 8)
	e.buf[sizeOffset+3] = byte(size)
	return nil
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
