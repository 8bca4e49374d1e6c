// Package storage provides the generic key/value abstraction used to
// back the row stores named in §6 (BookmarksLocal(Structure),
// BookmarksMirror(Structure), BookmarksBuffer(Structure), Favicons).
// The merge core (internal/merge) imports neither this package nor
// internal/itemsource — it works on trees the applier builds from rows
// — but a concrete, runnable implementation needs somewhere to persist
// rows, and this is it.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get for a key with no value.
var ErrNotFound = errors.New("not found")

// Key identifies a stored blob: typically a GUID, or a GUID prefixed
// with a table tag when one physical store backs several tables.
type Key string

// Value is an opaque encoded blob (a serialized record.Record, an
// encoded structure row, or favicon bytes).
type Value []byte

// Store is the minimal contract every backend satisfies.
type Store interface {
	Get(Key) (Value, error)
	Put(Key, Value) error
	Delete(Key) error
}

// Enumerable is satisfied by backends that can also iterate and test
// membership, needed by internal/applier to load and clear row tables
// and by synctree.LoadStructureRows.
type Enumerable interface {
	Store
	Contains(Key) (bool, error)
	ForEach(func(Key) error) error
}

// RandomKey returns a random hex key, useful for generating cache
// scratch filenames; it is not used to name bookmark GUIDs, which come
// from the guid package instead.
func RandomKey(length uint8) (Key, error) {
	if length == 0 {
		return "", nil
	}
	b := make([]byte, length)
	n, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	if n != int(length) {
		return "", fmt.Errorf("key of length %d required, got only %d bytes", length, n)
	}
	return Key(hex.EncodeToString(b)), nil
}
