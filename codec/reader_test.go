package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReader_Scalars(t *testing.T) {
	r := NewReader([]byte{1, 0, 2, 0, 0, 0, 3, 255, 255, 255, 255})

	b, err := r.ReadUint8()
	require.NoError(t, err)
	require.EqualValues(t, 1, b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.EqualValues(t, 2, u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.EqualValues(t, 3, u32)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.EqualValues(t, -1, i32)

	_, err = r.ReadUint8()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReader_ReadFloat64(t *testing.T) {
	r := NewReader([]byte{64, 12, 0, 0, 0, 0, 0, 0})
	f, err := r.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, 3.5, f)

	_, err = NewReader([]byte{64, 12}).ReadFloat64()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReader_PeekAndRest(t *testing.T) {
	r := NewReader([]byte{10, 20, 30})

	b, err := r.Peek()
	require.NoError(t, err)
	require.EqualValues(t, 10, b)

	// Peek does not advance.
	b, err = r.ReadUint8()
	require.NoError(t, err)
	require.EqualValues(t, 10, b)
	require.EqualValues(t, []byte{20, 30}, r.Rest())

	_, err = r.Read(2)
	require.NoError(t, err)
	require.Empty(t, r.Rest())
	_, err = r.Peek()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReader_Read(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})

	b, err := r.Read(2)
	require.NoError(t, err)
	require.EqualValues(t, []byte{1, 2}, b)

	_, err = r.Read(2)
	require.ErrorIs(t, err, ErrTruncated)

	_, err = r.Read(-1)
	require.ErrorIs(t, err, ErrTruncated)

	b, err = r.Read(0)
	require.NoError(t, err)
	require.Empty(t, b)
}
