package applier

import (
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/nicolagi/bookmarksync/internal/synctree"
	"github.com/pkg/errors"
)

// rewriteStructureTable replaces the entire contents of a structure
// Enumerable with the rows implied by records' Children (folders
// only). Clearing before writing avoids leaving behind a stale row
// for a child that moved out from under its old parent this pass —
// records carries every surviving node already stamped with its final
// merged Children order (internal/merge), so the table this produces
// is the complete structure, not a delta.
func rewriteStructureTable(structure storage.Enumerable, records []*record.Record) error {
	if err := clearEnumerable(structure); err != nil {
		return errors.Wrap(err, "clearing structure table before rewrite")
	}
	for _, r := range records {
		if !r.Type.IsFolder() {
			continue
		}
		for i, child := range r.Children {
			row := synctree.StructureRow{Parent: r.GUID, Child: child, Index: i}
			k, v, err := synctree.EncodeStructureRow(row)
			if err != nil {
				return errors.Wrapf(err, "encoding structure row %s/%s", r.GUID, child)
			}
			if err := structure.Put(k, v); err != nil {
				return errors.Wrapf(err, "writing structure row %s/%s", r.GUID, child)
			}
		}
	}
	return nil
}
