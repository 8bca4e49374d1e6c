// Package record implements the mirror item value record described in
// §3: the invariant per-node payload carried by LOCAL, MIRROR and
// BUFFER rows alike, plus the sameAs content-equality used for
// duplicate-folder detection.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nicolagi/bookmarksync/internal/guid"
)

// Type is the sum of node kinds a record may describe (§3 Node type).
type Type uint8

const (
	TypeBookmark Type = iota
	TypeFolder
	TypeSeparator
	TypeDynamicContainer
	TypeLivemark
	TypeQuery
)

func (t Type) String() string {
	switch t {
	case TypeBookmark:
		return "bookmark"
	case TypeFolder:
		return "folder"
	case TypeSeparator:
		return "separator"
	case TypeDynamicContainer:
		return "dynamic-container"
	case TypeLivemark:
		return "livemark"
	case TypeQuery:
		return "query"
	default:
		return fmt.Sprintf("type(%d)", t)
	}
}

// IsFolder reports whether values of this type may hold children.
func (t Type) IsFolder() bool {
	return t == TypeFolder
}

// MarshalJSON renders the type the way the server wire format does
// (§6): a lowercase/hyphenated name, not the numeric tag.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the server's type name back into the sum type.
func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "bookmark":
		*t = TypeBookmark
	case "folder":
		*t = TypeFolder
	case "separator":
		*t = TypeSeparator
	case "dynamic-container":
		*t = TypeDynamicContainer
	case "livemark":
		*t = TypeLivemark
	case "query":
		*t = TypeQuery
	default:
		return fmt.Errorf("record: unrecognized type %q", s)
	}
	return nil
}

// SyncStatus is the status column of a LOCAL row (§6).
type SyncStatus uint8

const (
	StatusSynced SyncStatus = iota
	StatusNew
	StatusChanged
)

// Timestamp is wall-clock milliseconds, matching the server wire
// format (§6) and BookmarksLocal.local_modified.
type Timestamp int64

// Record is the invariant per-node payload described in §3. Optional
// fields are pointers so a zero value is distinguishable from an
// explicitly-set empty string; Children is only meaningful when Type
// is a folder.
type Record struct {
	GUID           guid.GUID `json:"id"`
	Type           Type      `json:"type"`
	ServerModified Timestamp `json:"-"`
	IsDeleted      bool      `json:"deleted,omitempty"`
	HasDupe        bool      `json:"hasDupe,omitempty"`

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

	// Children is the ordered list of child GUIDs, meaningful only for
	// folder-typed records.
	Children []guid.GUID `json:"children,omitempty"`

	// Internal metadata, excluded from SameAs per §3 and from the wire
	// shape: these never leave the local row store.
	FaviconID     *int64     `json:"-"`
	LocalModified *Timestamp `json:"-"`
	SyncStatus    SyncStatus `json:"-"`
}

// Normalize applies root-GUID normalisation (§4.A) to both GUID and
// ParentID. It must be called at construction time for every incoming
// record, of any kind (folder, livemark, separator, bookmark, query,
// or deleted/tombstone).
func (r *Record) Normalize() {
	r.GUID = guid.Normalize(r.GUID)
	if r.ParentID != nil {
		normalized := guid.Normalize(*r.ParentID)
		r.ParentID = &normalized
	}
}

// New constructs a normalised record. Construction is the only path
// that should be used to build a Record from raw wire/row data so that
// normalisation is never skipped.
func New(r Record) *Record {
	r.Normalize()
	return &r
}

func stringsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func guidsEqual(a, b *guid.GUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64sEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func childrenEqual(a, b []guid.GUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SameAs is the content-equality comparison defined in §3: every field
// enumerated there matches, and child-GUID lists match element-wise,
// but the GUID itself and internal metadata (FaviconID, LocalModified,
// SyncStatus) are ignored. This is what lets two distinct-GUID folders
// be recognised as duplicates of one another.
func (r *Record) SameAs(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Type != other.Type {
		return false
	}
	if r.ServerModified != other.ServerModified {
		return false
	}
	if r.IsDeleted != other.IsDeleted {
		return false
	}
	if r.HasDupe != other.HasDupe {
		return false
	}
	if !guidsEqual(r.ParentID, other.ParentID) {
		return false
	}
	if !stringsEqual(r.ParentName, other.ParentName) {
		return false
	}
	if !stringsEqual(r.FeedURI, other.FeedURI) {
		return false
	}
	if !stringsEqual(r.SiteURI, other.SiteURI) {
		return false
	}
	if !intsEqual(r.Pos, other.Pos) {
		return false
	}
	if !stringsEqual(r.Title, other.Title) {
		return false
	}
	if !stringsEqual(r.Description, other.Description) {
		return false
	}
	if !stringsEqual(r.BookmarkURI, other.BookmarkURI) {
		return false
	}
	if !tagsEqual(r.Tags, other.Tags) {
		return false
	}
	if !stringsEqual(r.Keyword, other.Keyword) {
		return false
	}
	if !stringsEqual(r.FolderName, other.FolderName) {
		return false
	}
	if !stringsEqual(r.QueryID, other.QueryID) {
		return false
	}
	if !childrenEqual(r.Children, other.Children) {
		return false
	}
	return true
}

// Equals is field-wise record equality, including the GUID itself and
// internal metadata — the stronger notion of equality mentioned in
// §4.A, as opposed to the content-only SameAs.
func (r *Record) Equals(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.GUID != other.GUID {
		return false
	}
	if !int64sEqual(r.FaviconID, other.FaviconID) {
		return false
	}
	if r.SyncStatus != other.SyncStatus {
		return false
	}
	if (r.LocalModified == nil) != (other.LocalModified == nil) {
		return false
	}
	if r.LocalModified != nil && *r.LocalModified != *other.LocalModified {
		return false
	}
	return r.SameAs(other)
}

// Dump renders the record's GUID and a subset of its content fields
// (type, serverModified, isDeleted, hasDupe, parentID, title,
// bookmarkURI, description, keyword, tags, children) as text, used by
// internal/diff to build a human-readable unified diff of a value
// conflict (SPEC_FULL.md's conflict-logging supplement).
func (r *Record) Dump() string {
	if r == nil {
		return ""
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "guid %s\n", r.GUID)
	fmt.Fprintf(&buf, "type %s\n", r.Type)
	fmt.Fprintf(&buf, "serverModified %d\n", r.ServerModified)
	fmt.Fprintf(&buf, "isDeleted %t\n", r.IsDeleted)
	fmt.Fprintf(&buf, "hasDupe %t\n", r.HasDupe)
	if r.ParentID != nil {
		fmt.Fprintf(&buf, "parentID %s\n", *r.ParentID)
	}
	if r.Title != nil {
		fmt.Fprintf(&buf, "title %q\n", *r.Title)
	}
	if r.BookmarkURI != nil {
		fmt.Fprintf(&buf, "bookmarkURI %q\n", *r.BookmarkURI)
	}
	if r.Description != nil {
		fmt.Fprintf(&buf, "description %q\n", *r.Description)
	}
	if r.Keyword != nil {
		fmt.Fprintf(&buf, "keyword %q\n", *r.Keyword)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(&buf, "tags %v\n", r.Tags)
	}
	if len(r.Children) > 0 {
		fmt.Fprintf(&buf, "children %v\n", r.Children)
	}
	return buf.String()
}

// StringPtr and IntPtr are small convenience constructors used
// pervasively by callers (and tests) building Record literals, since
// Go has no address-of-literal operator.
func StringPtr(s string) *string { return &s }
func IntPtr(i int) *int          { return &i }
func Int64Ptr(i int64) *int64    { return &i }
func GUIDPtr(g guid.GUID) *guid.GUID { return &g }
