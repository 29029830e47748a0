package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixer(t *testing.T) {
	prefix := Prefixer("terms")
	require.EqualValues(t, []byte("terms"), prefix())
	require.EqualValues(t, []byte("terms/foo"), prefix("foo"))
	require.EqualValues(t, []byte("terms/foo/bar"), prefix("foo", "bar"))
}

func TestStore(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer db.Close()

	ping := []byte{131, 119, 4, 'p', 'i', 'n', 'g'}
	require.NoError(t, PutTerm(db, "ping", ping))
	require.NoError(t, PutTerm(db, "count", []byte{131, 97, 42}))

	got, err := GetTerm(db, "ping")
	require.NoError(t, err)
	require.EqualValues(t, ping, got)

	// Put replaces an existing value.
	require.NoError(t, PutTerm(db, "count", []byte{131, 97, 43}))
	got, err = GetTerm(db, "count")
	require.NoError(t, err)
	require.EqualValues(t, []byte{131, 97, 43}, got)

	_, err = GetTerm(db, "missing")
	require.Error(t, err)

	names, sizes, err := ListTerms(db)
	require.NoError(t, err)
	require.Equal(t, []string{"count", "ping"}, names)
	require.Equal(t, []int{3, 7}, sizes)
}
