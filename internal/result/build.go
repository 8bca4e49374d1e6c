package result

import (
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/merge"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/synctree"
)

// Build implements §4.E: flattens merged into the four operation sets.
// remote is the raw BUFFER tree the merge consumed; every GUID it named
// is considered fully reconciled by this pass and so is reported back
// to BufferCompletionOp, regardless of whether that particular GUID
// ended up changing anything (§5: a pass holds exclusive access to the
// whole buffer for its duration, so the whole thing is always
// consumed, not just the rows the merge decision table happened to
// touch).
func Build(merged *merge.MergedTree, remote *synctree.BookmarkTree) *Result {
	r := &Result{
		noOp: merged.IsNoOp(),
		Buffer: BufferCompletionOp{
			ProcessedBufferGUIDs: map[guid.GUID]bool{},
		},
		LocalOverride: LocalOverrideCompletionOp{
			MirrorItemsToDelete: map[guid.GUID]bool{},
		},
	}

	for g := range remote.Lookup {
		r.Buffer.ProcessedBufferGUIDs[g] = true
	}

	for g := range merged.DeleteFromMirror {
		r.LocalOverride.MirrorItemsToDelete[g] = true
	}

	for _, n := range merged.Lookup {
		if n.Value == nil {
			continue
		}
		row := *n.Value
		switch n.ValueState {
		case merge.ValueLocal, merge.ValueNew:
			r.Upstream.Records = append(r.Upstream.Records, &row)
			r.LocalOverride.MirrorValuesToCopyFromLocal = append(r.LocalOverride.MirrorValuesToCopyFromLocal, &row)
		case merge.ValueRemote:
			r.LocalOverride.MirrorValuesToCopyFromBuffer = append(r.LocalOverride.MirrorValuesToCopyFromBuffer, &row)
		default:
			r.LocalOverride.MirrorValuesToCopyFromLocal = append(r.LocalOverride.MirrorValuesToCopyFromLocal, &row)
		}
	}

	for g := range merged.DeleteRemotely {
		dv := merged.DeletedValues[g]
		if dv == nil {
			continue
		}
		r.Upstream.Records = append(r.Upstream.Records, record.New(record.Record{
			GUID:      g,
			Type:      dv.Type,
			IsDeleted: true,
		}))
	}

	return r
}
