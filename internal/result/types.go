package result

import (
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
)

// UpstreamCompletionOp is the outgoing POST payload (§6): every record
// the applier's uploader must ship to the sync server.
type UpstreamCompletionOp struct {
	Records []*record.Record
}

// POSTResult is the uploader's response (§6): modified is the
// server-assigned commit timestamp, stamped onto every successfully
// accepted record; failed carries a per-GUID reason for records the
// server rejected, which the applier leaves in LOCAL for retry next
// pass (§4.F step 4).
type POSTResult struct {
	Modified record.Timestamp
	Success  []guid.GUID
	Failed   map[guid.GUID]string
}

// BufferCompletionOp names every incoming BUFFER record the merge
// fully consumed (§6): the applier drops these rows from
// BookmarksBuffer(Structure) once steps 5 and 6 commit.
type BufferCompletionOp struct {
	ProcessedBufferGUIDs map[guid.GUID]bool
}

// LocalOverrideCompletionOp is the plan for stamping MIRROR (§6,
// §4.E): MirrorValuesToCopyFromLocal are survivors whose authoritative
// value came from LOCAL (uploaded this pass or already synced);
// MirrorValuesToCopyFromBuffer are survivors whose authoritative value
// came from REMOTE. Both already carry their final merged ParentID and
// (for folders) Children order, so writing one into
// BookmarksMirror(Structure) needs no further lookup. MirrorItemsToDelete
// is deleteFromMirror verbatim. ModifiedTimes starts empty; the
// applier fills it in from the uploader's POSTResult before committing
// (§4.F step 5), one timestamp per record actually POSTed and
// accepted.
type LocalOverrideCompletionOp struct {
	MirrorValuesToCopyFromLocal  []*record.Record
	MirrorValuesToCopyFromBuffer []*record.Record
	MirrorItemsToDelete          map[guid.GUID]bool
	ModifiedTimes                map[guid.GUID]record.Timestamp
}

// Result bundles the four operation sets built from a single
// MergedTree, plus the no-op flag (§4.E).
type Result struct {
	Upstream      UpstreamCompletionOp
	Buffer        BufferCompletionOp
	LocalOverride LocalOverrideCompletionOp
	noOp          bool
}

// IsNoOp reports whether applying this result would change no
// persisted state: the MergedTree it was built from was itself a
// no-op (§4.E, §8 P5 idempotence).
func (r *Result) IsNoOp() bool { return r.noOp }

// StampModified fills in ModifiedTimes for every GUID the server
// accepted (§4.F step 5): the single commit timestamp the server
// returns applies to every record in the same POST batch.
func (op *LocalOverrideCompletionOp) StampModified(pr POSTResult) {
	if op.ModifiedTimes == nil {
		op.ModifiedTimes = map[guid.GUID]record.Timestamp{}
	}
	for _, g := range pr.Success {
		op.ModifiedTimes[g] = pr.Modified
	}
}
