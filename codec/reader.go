package codec

import (
	"encoding/binary"
	"math"
)

// Reader is a bounds-checked forward cursor over an immutable byte buffer.
// Every read either advances the cursor by exactly the requested size or
// fails with ErrTruncated, in which case the cursor position is unspecified
// and the caller must abort. Reads never allocate; byte slices returned by
// Read borrow from the underlying buffer.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Read consumes the next n bytes and returns them as a subslice of the
// underlying buffer.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.off {
		return nil, ErrTruncated
	}
	start := r.off
	r.off += n
	return r.data[start:r.off], nil
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() (byte, error) {
	if r.off >= len(r.data) {
		return 0, ErrTruncated
	}
	return r.data[r.off], nil
}

// Rest returns the unread remainder of the buffer.
func (r *Reader) Rest() []byte {
	return r.data[r.off:]
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}
