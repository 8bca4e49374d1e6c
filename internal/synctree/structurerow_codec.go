package synctree

import (
	"encoding/json"
	"strings"

	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// structureKeySeparator joins parent and child GUIDs into one
// storage.Key: BookmarksXStructure's PK is (parent, child) (§6), and
// neither GUID half ever contains a slash (see guid.Normalize).
const structureKeySeparator = "/"

// EncodeStructureRow turns a StructureRow into the storage.Key/Value
// pair a BookmarksXStructure table row persists as. Keying by
// parent+child mirrors the table's own primary key, so ForEach-ing a
// structure table and decoding every entry reconstructs exactly the
// rows Build consumes — there is no separate "list all" contract on
// the row store the way there is on an itemsource.Source (§4.B
// deliberately exposes no enumeration).
func EncodeStructureRow(row StructureRow) (storage.Key, storage.Value, error) {
	key := storage.Key(string(row.Parent) + structureKeySeparator + string(row.Child))
	v, err := json.Marshal(struct {
		Index int `json:"idx"`
	}{Index: row.Index})
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	return key, storage.Value(v), nil
}

// DecodeStructureRow is the inverse of EncodeStructureRow.
func DecodeStructureRow(key storage.Key, value storage.Value) (StructureRow, error) {
	parent, child, ok := strings.Cut(string(key), structureKeySeparator)
	if !ok {
		return StructureRow{}, errors.Errorf("synctree: malformed structure key %q", key)
	}
	var decoded struct {
		Index int `json:"idx"`
	}
	if err := json.Unmarshal(value, &decoded); err != nil {
		return StructureRow{}, errors.WithStack(err)
	}
	return StructureRow{Parent: guid.GUID(parent), Child: guid.GUID(child), Index: decoded.Index}, nil
}

// LoadStructureRows enumerates every row in an Enumerable-backed
// structure table and decodes it back into a StructureRow, the input
// shape Build expects. Malformed entries are skipped with a warning
// rather than aborting the whole load, consistent with §7 treating
// isolated structural oddities as degrade-not-abort.
func LoadStructureRows(store storage.Enumerable) ([]StructureRow, error) {
	var rows []StructureRow
	err := store.ForEach(func(k storage.Key) error {
		v, err := store.Get(k)
		if err != nil {
			return errors.Wrapf(err, "loading structure row %q", k)
		}
		row, err := DecodeStructureRow(k, v)
		if err != nil {
			log.WithFields(log.Fields{"key": string(k), "cause": err.Error()}).Warn("synctree: skipping malformed structure row")
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
