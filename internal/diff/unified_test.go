package diff_test

import (
	"math/rand"
	"testing"

	"github.com/nicolagi/bookmarksync/internal/diff"
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedIfNodesSameNoDiff(t *testing.T) {
	a := diff.StringNode("identical")
	b := diff.StringNode("identical")
	out, err := diff.Unified(a, b, rand.Intn(10))
	assert.Empty(t, out)
	assert.Nil(t, err)
}

// From https://www.gnu.org/software/diffutils/manual/html_node/Binary.html:
// diff determines whether a file is text or binary by checking the first few
// bytes in the file; the exact number of bytes is system dependent, but it is
// typically several thousand. If every byte in that part of the file is
// non-null, diff considers the file to be text; otherwise it considers the file
// to be binary.
func TestUnifiedRecognizesBinaryContent(t *testing.T) {
	a := diff.ByteNode{0}
	b := diff.ByteNode{1}
	output, err := diff.Unified(a, b, 3)
	assert.Equal(t, "Binary content differs\n", output)
	assert.Nil(t, err)
	output, err = diff.Unified(a, a, 3)
	assert.Equal(t, "", output)
	assert.Nil(t, err)
}

func TestUnifiedMultilineStrings(t *testing.T) {
	left := diff.StringNode("one\ntwo\nthree\nfour\nfive\n")
	right := diff.StringNode("one\ntwo\nTHREE\nfour\nfive\n")
	got, err := diff.Unified(left, right, 1)
	require.Nil(t, err)
	assert.Contains(t, got, "-three")
	assert.Contains(t, got, "+THREE")
	assert.Contains(t, got, " two")
	assert.Contains(t, got, " four")
}

func TestUnifiedOnConflictingRecords(t *testing.T) {
	local := record.New(record.Record{
		GUID:        "aaaaaaaaaaaa",
		Type:        record.TypeBookmark,
		Title:       record.StringPtr("Local title"),
		BookmarkURI: record.StringPtr("https://example.com/local"),
		ParentID:    record.GUIDPtr(guid.Mobile),
	})
	remote := record.New(record.Record{
		GUID:        "aaaaaaaaaaaa",
		Type:        record.TypeBookmark,
		Title:       record.StringPtr("Remote title"),
		BookmarkURI: record.StringPtr("https://example.com/remote"),
		ParentID:    record.GUIDPtr(guid.Mobile),
	})
	got, err := diff.Unified(diff.RecordNode{Record: local}, diff.RecordNode{Record: remote}, 2)
	require.Nil(t, err)
	assert.Contains(t, got, "-")
	assert.Contains(t, got, "+")
	assert.Contains(t, got, "Local title")
	assert.Contains(t, got, "Remote title")
}
