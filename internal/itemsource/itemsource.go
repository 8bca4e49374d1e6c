// Package itemsource implements the three read contracts from §4.B —
// LocalItemSource, MirrorItemSource, BufferItemSource — through which
// internal/applier reads value rows instead of decoding
// internal/storage blobs itself. internal/merge does not import it.
// A concrete Source batches lookups and prefetches across a backing
// internal/storage.Store, using a bounded-concurrency errgroup the way
// the teacher's tree.Grow fans out child loads.
package itemsource

import (
	"encoding/json"

	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for a GUID the source cannot
// resolve. GetBatch omits such GUIDs from its result instead of
// failing, and synctree.Build turns a structure-row child with no
// value row into an Unknown node, so the pass is not aborted (§7).
var ErrNotFound = storage.ErrNotFound

// Source is the shape common to all three item sources in §4.B.
type Source interface {
	// Get resolves a single GUID to its value record, or ErrNotFound.
	Get(g guid.GUID) (*record.Record, error)

	// GetBatch resolves as many of the given GUIDs as possible.
	// Unresolved GUIDs are simply absent from the result, not an error.
	GetBatch(guids []guid.GUID) (map[guid.GUID]*record.Record, error)

	// Prefetch hints the source to warm its cache for the given GUIDs
	// ahead of the merge walk. It is idempotent and side-effect-free
	// beyond the source's own cache: callers never depend on it having
	// run for correctness, only for latency.
	Prefetch(guids []guid.GUID) error
}

// LocalItemSource reads LOCAL's value rows.
type LocalItemSource interface {
	Source
}

// MirrorItemSource reads MIRROR's value rows.
type MirrorItemSource interface {
	Source
}

// BufferItemSource reads BUFFER's (incoming) value rows.
type BufferItemSource interface {
	Source
}

// storedRecord mirrors record.Record field-for-field but keeps the
// internal metadata (FaviconID, LocalModified, SyncStatus) that
// record.Record's own JSON tags deliberately omit, since those tags
// describe the server wire shape (§6), not local row persistence. Item
// sources need the internal metadata back out of storage, so they
// encode/decode through this shape instead of through Record directly.
type storedRecord struct {
	GUID           guid.GUID   `json:"id"`
	Type           record.Type `json:"type"`
	ServerModified record.Timestamp `json:"serverModified"`
	IsDeleted      bool        `json:"deleted,omitempty"`
	HasDupe        bool        `json:"hasDupe,omitempty"`

	ParentID   *guid.GUID `json:"parentid,omitempty"`
	ParentName *string    `json:"parentName,omitempty"`

	FeedURI     *string  `json:"feedUri,omitempty"`
	SiteURI     *string  `json:"siteUri,omitempty"`
	Pos         *int     `json:"pos,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	BookmarkURI *string  `json:"bmkUri,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Keyword     *string  `json:"keyword,omitempty"`
	FolderName  *string  `json:"folderName,omitempty"`
	QueryID     *string  `json:"queryId,omitempty"`

	Children []guid.GUID `json:"children,omitempty"`

	FaviconID     *int64            `json:"faviconId,omitempty"`
	LocalModified *record.Timestamp `json:"localModified,omitempty"`
	SyncStatus    record.SyncStatus `json:"syncStatus"`
}

func encode(r *record.Record) (storage.Value, error) {
	sr := storedRecord{
		GUID:           r.GUID,
		Type:           r.Type,
		ServerModified: r.ServerModified,
		IsDeleted:      r.IsDeleted,
		HasDupe:        r.HasDupe,
		ParentID:       r.ParentID,
		ParentName:     r.ParentName,
		FeedURI:        r.FeedURI,
		SiteURI:        r.SiteURI,
		Pos:            r.Pos,
		Title:          r.Title,
		Description:    r.Description,
		BookmarkURI:    r.BookmarkURI,
		Tags:           r.Tags,
		Keyword:        r.Keyword,
		FolderName:     r.FolderName,
		QueryID:        r.QueryID,
		Children:       r.Children,
		FaviconID:      r.FaviconID,
		LocalModified:  r.LocalModified,
		SyncStatus:     r.SyncStatus,
	}
	b, err := json.Marshal(sr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return storage.Value(b), nil
}

func decode(v storage.Value) (*record.Record, error) {
	var sr storedRecord
	if err := json.Unmarshal(v, &sr); err != nil {
		return nil, errors.WithStack(err)
	}
	return record.New(record.Record{
		GUID:           sr.GUID,
		Type:           sr.Type,
		ServerModified: sr.ServerModified,
		IsDeleted:      sr.IsDeleted,
		HasDupe:        sr.HasDupe,
		ParentID:       sr.ParentID,
		ParentName:     sr.ParentName,
		FeedURI:        sr.FeedURI,
		SiteURI:        sr.SiteURI,
		Pos:            sr.Pos,
		Title:          sr.Title,
		Description:    sr.Description,
		BookmarkURI:    sr.BookmarkURI,
		Tags:           sr.Tags,
		Keyword:        sr.Keyword,
		FolderName:     sr.FolderName,
		QueryID:        sr.QueryID,
		Children:       sr.Children,
		FaviconID:      sr.FaviconID,
		LocalModified:  sr.LocalModified,
		SyncStatus:     sr.SyncStatus,
	}), nil
}

// Encode serializes a record for storage.Store persistence, preserving
// internal metadata that the server wire format omits. Exported so
// callers that build LOCAL/MIRROR/BUFFER rows directly (outside a
// Source) use the same encoding the sources decode.
func Encode(r *record.Record) (storage.Value, error) { return encode(r) }

// Decode is the inverse of Encode.
func Decode(v storage.Value) (*record.Record, error) { return decode(v) }
