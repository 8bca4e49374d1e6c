package applier

import (
	"context"
	"sync"

	"github.com/nicolagi/bookmarksync/internal/config"
	"github.com/nicolagi/bookmarksync/internal/itemsource"
	"github.com/nicolagi/bookmarksync/internal/merge"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/result"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/nicolagi/bookmarksync/internal/synctree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrAborted is returned when the green light predicate reads false
// at any of the three polling points (§5 Cancellation, §7 Aborted).
// It is not wrapped as a failure: the caller is expected to retry the
// whole pass later.
var ErrAborted = errors.New("applier: aborted, green light withdrawn")

// Uploader is the external collaborator that POSTs the upstream
// operation to the sync server (§4.F step 4, §6).
type Uploader interface {
	Post(ctx context.Context, op result.UpstreamCompletionOp) (result.POSTResult, error)
}

// GreenLight is polled before merging, before upload, and before
// commit (§5 Cancellation). A false reading aborts the pass cleanly.
type GreenLight func() bool

// AlwaysGreen is the trivial GreenLight for callers with nothing to
// gate on (tests, or a scheduler with its own outer retry loop).
func AlwaysGreen() bool { return true }

// Applier is component F: it wires together tree loading, merging,
// result building and the upload/commit collaborators for one sync
// pass (§4.F). Callers run one pass at a time; Apply does not
// serialise concurrent calls to itself beyond the commit section's
// mutex, since §5 already assumes the embedding scheduler serialises
// passes.
type Applier struct {
	cfg *config.C

	local, mirror, buffer Sides

	uploader   Uploader
	greenLight GreenLight

	// commitMu guards the step 5+6 critical section (§4.F, §5 Shared
	// resources): internal/storage's Store/Enumerable contract has no
	// multi-key transaction primitive of its own (neither does any
	// backend in the pack — DiskStore, the in-memory store, or the S3
	// store are all single-key Get/Put/Delete), so atomicity here is
	// provided by mutual exclusion plus ordering, not a database
	// transaction. A process crash mid-commit can still leave mirror
	// and buffer inconsistent with each other; the next pass's merge
	// is idempotent (§8 P5) and reconciles it, which is the same
	// recovery story §7 already gives IOFailure.
	commitMu sync.Mutex
}

// New constructs an Applier. greenLight may be nil, in which case
// AlwaysGreen is used.
func New(cfg *config.C, local, mirror, buffer Sides, uploader Uploader, greenLight GreenLight) *Applier {
	if greenLight == nil {
		greenLight = AlwaysGreen
	}
	return &Applier{
		cfg:        cfg,
		local:      local,
		mirror:     mirror,
		buffer:     buffer,
		uploader:   uploader,
		greenLight: greenLight,
	}
}

// Apply runs one full sync pass end to end (§4.F steps 1-6).
func (a *Applier) Apply(ctx context.Context) (*result.Result, error) {
	merged, remoteTree, err := a.mergeOnce()
	if err != nil {
		return nil, err
	}

	res := result.Build(merged, remoteTree)
	if res.IsNoOp() {
		log.Debug("applier: merge is a no-op, nothing to post or commit")
		return res, nil
	}

	if !a.greenLight() {
		return nil, ErrAborted
	}

	pr, err := a.uploader.Post(ctx, res.Upstream)
	if err != nil {
		return nil, errors.Wrap(err, "applier: posting upstream op")
	}
	res.LocalOverride.StampModified(pr)
	if len(pr.Failed) > 0 {
		log.WithFields(log.Fields{"count": len(pr.Failed)}).Warn("applier: some records rejected by server, left in local for retry")
	}

	if !a.greenLight() {
		return nil, ErrAborted
	}

	a.commitMu.Lock()
	defer a.commitMu.Unlock()
	if err := a.commit(res, pr); err != nil {
		return nil, errors.Wrap(err, "applier: committing mirror and buffer")
	}

	return res, nil
}

// DryRun runs only the pure stages (tree build, merge, result build)
// without posting or committing anything, for idempotence checks and
// previewing a pass's effect (§8 P5).
func (a *Applier) DryRun() (*result.Result, error) {
	merged, remoteTree, err := a.mergeOnce()
	if err != nil {
		return nil, err
	}
	return result.Build(merged, remoteTree), nil
}

func (a *Applier) mergeOnce() (*merge.MergedTree, *synctree.BookmarkTree, error) {
	localTree, err := loadTree(a.cfg, a.local)
	if err != nil {
		return nil, nil, errors.Wrap(err, "applier: loading local tree")
	}
	mirrorTree, err := loadTree(a.cfg, a.mirror)
	if err != nil {
		return nil, nil, errors.Wrap(err, "applier: loading mirror tree")
	}
	remoteTree, err := loadTree(a.cfg, a.buffer)
	if err != nil {
		return nil, nil, errors.Wrap(err, "applier: loading buffer tree")
	}

	if !a.greenLight() {
		return nil, nil, ErrAborted
	}

	merged, err := merge.Merge(localTree, mirrorTree, remoteTree)
	if err != nil {
		return nil, nil, errors.Wrap(err, "applier: merging")
	}
	return merged, remoteTree, nil
}

// commit applies LocalOverrideCompletionOp and BufferCompletionOp
// (§4.F steps 5-6). Mirror's value and structure tables are rewritten
// in full from the merged tree's complete surviving-node set (every
// node, in every value state, ends up in one of the two
// MirrorValuesToCopyFrom* lists per internal/result.Build), then
// MirrorItemsToDelete is removed; the whole buffer is then cleared,
// matching §5's "a pass holds exclusive access to the whole buffer".
// LOCAL's value and structure tables are not modified.
func (a *Applier) commit(res *result.Result, pr result.POSTResult) error {
	all := make([]*record.Record, 0, len(res.LocalOverride.MirrorValuesToCopyFromLocal)+len(res.LocalOverride.MirrorValuesToCopyFromBuffer))
	all = append(all, res.LocalOverride.MirrorValuesToCopyFromLocal...)
	all = append(all, res.LocalOverride.MirrorValuesToCopyFromBuffer...)

	if err := rewriteStructureTable(a.mirror.Structure, all); err != nil {
		return errors.Wrap(err, "rewriting mirror structure table")
	}
	for _, r := range all {
		stamped := *r
		stamped.SyncStatus = record.StatusSynced
		if ts, ok := res.LocalOverride.ModifiedTimes[r.GUID]; ok {
			stamped.ServerModified = ts
		}
		v, err := itemsource.Encode(&stamped)
		if err != nil {
			return errors.Wrapf(err, "encoding mirror record %s", r.GUID)
		}
		if err := a.mirror.Values.Put(storage.Key(r.GUID), v); err != nil {
			return errors.Wrapf(err, "writing mirror record %s", r.GUID)
		}
	}
	for g := range res.LocalOverride.MirrorItemsToDelete {
		if err := a.mirror.Values.Delete(storage.Key(g)); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return errors.Wrapf(err, "deleting mirror record %s", g)
		}
	}

	if len(res.Buffer.ProcessedBufferGUIDs) > 0 {
		if err := clearEnumerable(a.buffer.Values); err != nil {
			return errors.Wrap(err, "clearing buffer values")
		}
		if err := clearEnumerable(a.buffer.Structure); err != nil {
			return errors.Wrap(err, "clearing buffer structure")
		}
	}

	return nil
}

func clearEnumerable(e storage.Enumerable) error {
	var keys []storage.Key
	if err := e.ForEach(func(k storage.Key) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.Delete(k); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	return nil
}
