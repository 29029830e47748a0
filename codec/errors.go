package codec

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedVersion is returned when a message does not start with
	// the version byte 131.
	ErrUnsupportedVersion = errors.New("unsupported external term format version")

	// ErrUnknownTag is returned when a term starts with a byte outside the
	// tag table.
	ErrUnknownTag = errors.New("unknown term tag byte")

	// ErrCompressedSizeMismatch is returned when the declared decompressed
	// length of a compressed term disagrees with the inflated payload.
	ErrCompressedSizeMismatch = errors.New("compressed size does not match decompressed")

	// ErrTruncated is returned when the input buffer is exhausted before a
	// required field or payload.
	ErrTruncated = errors.New("input truncated")

	// ErrAtomTooLong is returned when atom text exceeds 65535 bytes.
	ErrAtomTooLong = errors.New("atom text exceeds 65535 bytes")

	// ErrNonFiniteFloat is returned when encoding NaN or an infinity.
	ErrNonFiniteFloat = errors.New("float value is not finite")

	// ErrUnsupportedType is returned when a value cannot be encoded by the
	// built-in rules, the hook tables, or the generic serializer.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrHookDepthExceeded is returned when the encode hook chain rewrites a
	// value more than MaxHookDepth times without reaching an encodable kind.
	ErrHookDepthExceeded = errors.New("encode hook chain depth exceeded")

	// ErrBadOptions is returned for out-of-range option values.
	ErrBadOptions = errors.New("bad codec options")
)
