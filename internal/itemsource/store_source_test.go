package itemsource_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/itemsource"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disposablePathName(t *testing.T) (pathname string, cleanup func()) {
	t.Helper()
	f, err := ioutil.TempFile("", "")
	require.Nil(t, err)
	require.Nil(t, f.Close())
	return f.Name(), func() {
		assert.Nil(t, os.Remove(f.Name()))
	}
}

func putRecord(t *testing.T, store storage.Store, r *record.Record) {
	t.Helper()
	v, err := itemsource.Encode(r)
	require.Nil(t, err)
	require.Nil(t, store.Put(storage.Key(r.GUID), v))
}

func TestStoreSourceGet(t *testing.T) {
	defer leaktest.Check(t)()

	store := storage.NewInMemory()
	want := record.New(record.Record{
		GUID:        "aaaaaaaaaaaa",
		Type:        record.TypeBookmark,
		Title:       record.StringPtr("Example"),
		BookmarkURI: record.StringPtr("https://example.com"),
		FaviconID:   record.Int64Ptr(7),
	})
	putRecord(t, store, want)

	src := itemsource.NewStoreSource("local", store)
	got, err := src.Get(want.GUID)
	require.Nil(t, err)
	assert.True(t, got.Equals(want), "round-tripped record should equal original, including internal metadata")

	_, err = src.Get("bbbbbbbbbbbb")
	assert.ErrorIs(t, err, itemsource.ErrNotFound)
}

func TestStoreSourceGetBatchSkipsMisses(t *testing.T) {
	defer leaktest.Check(t)()

	store := storage.NewInMemory()
	present := record.New(record.Record{GUID: "aaaaaaaaaaaa", Type: record.TypeFolder})
	putRecord(t, store, present)

	src := itemsource.NewStoreSource("mirror", store)
	got, err := src.GetBatch([]guid.GUID{"aaaaaaaaaaaa", "cccccccccccc"})
	require.Nil(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, guid.GUID("aaaaaaaaaaaa"))
	assert.NotContains(t, got, guid.GUID("cccccccccccc"))
}

func TestStoreSourcePrefetchIsSideEffectFreeOnMiss(t *testing.T) {
	defer leaktest.Check(t)()

	store := storage.NewInMemory()
	src := itemsource.NewStoreSource("buffer", store)
	err := src.Prefetch([]guid.GUID{"dddddddddddd", "eeeeeeeeeeee"})
	assert.Nil(t, err)
}

func TestStoreSourcePrefetchWarmsFastStoreOfAPaired(t *testing.T) {
	defer leaktest.Check(t)()

	fast := storage.NewInMemory()
	slow := storage.NewInMemory()
	r := record.New(record.Record{GUID: "aaaaaaaaaaaa", Type: record.TypeFolder})
	putRecord(t, slow, r)

	pathname, cleanup := disposablePathName(t)
	defer cleanup()
	paired, err := storage.NewPaired(fast, slow, pathname)
	require.Nil(t, err)

	src := itemsource.NewStoreSource("buffer", paired)
	require.Nil(t, src.Prefetch([]guid.GUID{"aaaaaaaaaaaa"}))

	_, err = fast.Get(storage.Key("aaaaaaaaaaaa"))
	assert.Nil(t, err, "prefetch should have copied the value into the fast store")
}
