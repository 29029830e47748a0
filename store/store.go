// Package store persists encoded terms in a local leveldb database, keyed by
// name. Values are complete ETF messages (version byte included) so they can
// be handed back to any decoder as-is.
package store

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var termsPrefix = Prefixer("terms")

func Prefixer(prefix string) func(k ...string) []byte {
	return func(parts ...string) []byte {
		k := strings.Join(append([]string{prefix}, parts...), "/")
		return []byte(k)
	}
}

func Open(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error opening term store")
	}
	return db, nil
}

// PutTerm stores an encoded term under name, replacing any previous value.
func PutTerm(db *leveldb.DB, name string, data []byte) error {
	if err := db.Put(termsPrefix(name), data, nil); err != nil {
		return errors.Wrap(err, "error writing term")
	}
	return nil
}

// GetTerm returns the encoded term stored under name.
func GetTerm(db *leveldb.DB, name string) ([]byte, error) {
	data, err := db.Get(termsPrefix(name), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(err, "no term stored under %q", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading term")
	}
	return data, nil
}

// ListTerms returns the names of all stored terms along with the byte size
// of each encoding, in key order.
func ListTerms(db *leveldb.DB) ([]string, []int, error) {
	iter := db.NewIterator(util.BytesPrefix(termsPrefix()), nil)
	defer iter.Release()

	var names []string
	var sizes []int
	keyPrefixLen := len(termsPrefix()) + 1
	for iter.Next() {
		key := iter.Key()
		if len(key) < keyPrefixLen {
			continue
		}
		names = append(names, string(key[keyPrefixLen:]))
		sizes = append(sizes, len(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, nil, errors.Wrap(err, "error iterating term store")
	}
	return names, sizes, nil
}
