package applier_test

import (
	"context"
	"testing"

	"github.com/nicolagi/bookmarksync/internal/applier"
	"github.com/nicolagi/bookmarksync/internal/config"
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/itemsource"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/result"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/nicolagi/bookmarksync/internal/synctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSides(t *testing.T, name string, rows []synctree.StructureRow, values []*record.Record) applier.Sides {
	t.Helper()
	valueStore := storage.NewInMemory()
	for _, v := range values {
		b, err := itemsource.Encode(v)
		require.Nil(t, err)
		require.Nil(t, valueStore.Put(storage.Key(v.GUID), b))
	}
	structureStore := storage.NewInMemory()
	for _, row := range rows {
		k, v, err := synctree.EncodeStructureRow(row)
		require.Nil(t, err)
		require.Nil(t, structureStore.Put(k, v))
	}
	return applier.Sides{
		Values:    valueStore,
		Structure: structureStore,
		Source:    itemsource.NewStoreSource(name, valueStore),
	}
}

func emptySides(t *testing.T) applier.Sides {
	t.Helper()
	return newSides(t, "empty", nil, nil)
}

// cloneSides copies every key/value pair out of src's Values and
// Structure tables into fresh in-memory stores, byte for byte. Used
// to simulate a side that has caught up with another's exact state,
// without re-deriving records field by field (which would drift on
// internal metadata like ServerModified and silently defeat an
// equality check).
func cloneSides(t *testing.T, name string, src applier.Sides) applier.Sides {
	t.Helper()
	valueStore := storage.NewInMemory()
	require.Nil(t, src.Values.ForEach(func(k storage.Key) error {
		v, err := src.Values.Get(k)
		if err != nil {
			return err
		}
		return valueStore.Put(k, v)
	}))
	structureStore := storage.NewInMemory()
	require.Nil(t, src.Structure.ForEach(func(k storage.Key) error {
		v, err := src.Structure.Get(k)
		if err != nil {
			return err
		}
		return structureStore.Put(k, v)
	}))
	return applier.Sides{
		Values:    valueStore,
		Structure: structureStore,
		Source:    itemsource.NewStoreSource(name, valueStore),
	}
}

func testConfig(t *testing.T) *config.C {
	t.Helper()
	c, err := config.New()
	require.Nil(t, err)
	return c
}

func folder(g, parent guid.GUID) *record.Record {
	if parent == "" {
		return record.New(record.Record{GUID: g, Type: record.TypeFolder})
	}
	return record.New(record.Record{GUID: g, Type: record.TypeFolder, ParentID: record.GUIDPtr(parent)})
}

func bookmark(g, parent guid.GUID, title string) *record.Record {
	return record.New(record.Record{GUID: g, Type: record.TypeBookmark, ParentID: record.GUIDPtr(parent), Title: record.StringPtr(title)})
}

// acceptingUploader accepts every record it is given, stamping a fixed
// modified timestamp.
type acceptingUploader struct {
	calls int
	got   result.UpstreamCompletionOp
}

func (u *acceptingUploader) Post(_ context.Context, op result.UpstreamCompletionOp) (result.POSTResult, error) {
	u.calls++
	u.got = op
	pr := result.POSTResult{Modified: 1234, Success: make([]guid.GUID, 0, len(op.Records))}
	for _, r := range op.Records {
		pr.Success = append(pr.Success, r.GUID)
	}
	return pr, nil
}

func TestApplyNoOpNeverCallsUploader(t *testing.T) {
	local := emptySides(t)
	mirror := emptySides(t)
	buffer := emptySides(t)
	up := &acceptingUploader{}

	a := applier.New(testConfig(t), local, mirror, buffer, up, nil)
	res, err := a.Apply(context.Background())
	require.Nil(t, err)
	assert.True(t, res.IsNoOp())
	assert.Equal(t, 0, up.calls)
}

func TestApplyUploadsAndStampsMirror(t *testing.T) {
	mirror := newSides(t, "mirror", nil, []*record.Record{
		folder(guid.Toolbar, guid.Root),
	})
	local := newSides(t, "local",
		[]synctree.StructureRow{{Parent: guid.Toolbar, Child: "aaaaaaaaaaaa", Index: 0}},
		[]*record.Record{
			folder(guid.Toolbar, guid.Root),
			bookmark("aaaaaaaaaaaa", guid.Toolbar, "New local bookmark"),
		},
	)
	buffer := emptySides(t)
	up := &acceptingUploader{}

	a := applier.New(testConfig(t), local, mirror, buffer, up, nil)
	res, err := a.Apply(context.Background())
	require.Nil(t, err)
	assert.False(t, res.IsNoOp())
	assert.Equal(t, 1, up.calls)

	var sawNewBookmark bool
	for _, r := range up.got.Records {
		if r.GUID == "aaaaaaaaaaaa" {
			sawNewBookmark = true
		}
	}
	assert.True(t, sawNewBookmark, "the local-only insertion must be posted upstream")

	v, err := mirror.Values.Get(storage.Key("aaaaaaaaaaaa"))
	require.Nil(t, err)
	stamped, err := itemsource.Decode(v)
	require.Nil(t, err)
	assert.Equal(t, record.StatusSynced, stamped.SyncStatus)
	assert.Equal(t, record.Timestamp(1234), stamped.ServerModified)

	k, _, err := synctree.EncodeStructureRow(synctree.StructureRow{Parent: guid.Toolbar, Child: "aaaaaaaaaaaa"})
	require.Nil(t, err)
	ok, err := mirror.Structure.Contains(k)
	require.Nil(t, err)
	assert.True(t, ok, "mirror structure table should carry the new child under toolbar")
}

func TestApplyAbortsWithoutPartialWritesWhenGreenLightWithdrawn(t *testing.T) {
	mirror := newSides(t, "mirror", nil, []*record.Record{
		folder(guid.Toolbar, guid.Root),
	})
	local := newSides(t, "local",
		[]synctree.StructureRow{{Parent: guid.Toolbar, Child: "aaaaaaaaaaaa", Index: 0}},
		[]*record.Record{
			folder(guid.Toolbar, guid.Root),
			bookmark("aaaaaaaaaaaa", guid.Toolbar, "New local bookmark"),
		},
	)
	buffer := emptySides(t)
	up := &acceptingUploader{}

	a := applier.New(testConfig(t), local, mirror, buffer, up, func() bool { return false })
	_, err := a.Apply(context.Background())
	assert.ErrorIs(t, err, applier.ErrAborted)
	assert.Equal(t, 0, up.calls)

	_, err = mirror.Values.Get(storage.Key("aaaaaaaaaaaa"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDryRunDoesNotCallUploaderOrMutateMirror(t *testing.T) {
	mirror := newSides(t, "mirror", nil, []*record.Record{
		folder(guid.Toolbar, guid.Root),
	})
	local := newSides(t, "local",
		[]synctree.StructureRow{{Parent: guid.Toolbar, Child: "aaaaaaaaaaaa", Index: 0}},
		[]*record.Record{
			folder(guid.Toolbar, guid.Root),
			bookmark("aaaaaaaaaaaa", guid.Toolbar, "New local bookmark"),
		},
	)
	buffer := emptySides(t)
	up := &acceptingUploader{}

	a := applier.New(testConfig(t), local, mirror, buffer, up, nil)
	res, err := a.DryRun()
	require.Nil(t, err)
	assert.False(t, res.IsNoOp())
	assert.Equal(t, 0, up.calls)

	_, err = mirror.Values.Get(storage.Key("aaaaaaaaaaaa"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestApplyIsIdempotentOnReapply(t *testing.T) {
	mirror := newSides(t, "mirror", nil, []*record.Record{
		folder(guid.Toolbar, guid.Root),
	})
	local := newSides(t, "local",
		[]synctree.StructureRow{{Parent: guid.Toolbar, Child: "aaaaaaaaaaaa", Index: 0}},
		[]*record.Record{
			folder(guid.Toolbar, guid.Root),
			bookmark("aaaaaaaaaaaa", guid.Toolbar, "New local bookmark"),
		},
	)
	buffer := emptySides(t)
	up := &acceptingUploader{}

	a := applier.New(testConfig(t), local, mirror, buffer, up, nil)
	_, err := a.Apply(context.Background())
	require.Nil(t, err)

	// Re-running with LOCAL rebuilt from exactly what MIRROR now holds
	// (as a client would see once it has caught up with the server)
	// should find nothing left to do.
	local2 := cloneSides(t, "local2", mirror)
	a2 := applier.New(testConfig(t), local2, mirror, emptySides(t), up, nil)
	res2, err := a2.DryRun()
	require.Nil(t, err)
	assert.True(t, res2.IsNoOp(), "re-merging against the now-synced mirror should find nothing left to do")
}
