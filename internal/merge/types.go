package merge

import (
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/synctree"
)

// ValueState is the label §3 attaches to a merged node's value record.
type ValueState int

const (
	// ValueUnchanged means no side changed the value relative to mirror.
	ValueUnchanged ValueState = iota
	// ValueLocal means only LOCAL changed an existing mirrored value.
	ValueLocal
	// ValueRemote means REMOTE's value wins, whether because only
	// REMOTE changed (including a REMOTE insertion with no mirror
	// counterpart), both sides agree, or both changed and REMOTE is
	// server-authoritative for the conflicting content.
	ValueRemote
	// ValueNew means a LOCAL-only insertion with no mirror counterpart.
	// A REMOTE-only insertion is ValueRemote, not ValueNew.
	ValueNew
)

func (s ValueState) String() string {
	switch s {
	case ValueLocal:
		return "local"
	case ValueRemote:
		return "remote"
	case ValueNew:
		return "new"
	default:
		return "unchanged"
	}
}

// StructureState is the label §3 attaches to a folder's merged child
// ordering.
type StructureState int

const (
	// StructureUnchanged means neither side reordered this folder's
	// children relative to mirror.
	StructureUnchanged StructureState = iota
	// StructureLocal means only LOCAL reordered the children.
	StructureLocal
	// StructureRemote means only REMOTE reordered the children.
	StructureRemote
	// StructureNew means both sides changed the children (a synthesized
	// topological merge), or children were reparented onto this folder
	// by the move-vs-delete conflict rule (§4.D).
	StructureNew
)

func (s StructureState) String() string {
	switch s {
	case StructureLocal:
		return "local"
	case StructureRemote:
		return "remote"
	case StructureNew:
		return "new"
	default:
		return "unchanged"
	}
}

// MergedTreeNode is one node of the output tree (§3): the up-to-three
// originating side nodes, the two labelled decisions, the resolved
// value record, and the ordered merged children.
type MergedTreeNode struct {
	GUID                         guid.GUID
	Local, Mirror, Remote        *synctree.Node
	ValueState                   ValueState
	StructureState               StructureState
	Value                        *record.Record
	Children                     []*MergedTreeNode
	isFolder, hasDecidedChildren bool
}

// IsFolder reports whether this node is a folder on at least one side.
func (n *MergedTreeNode) IsFolder() bool { return n.isFolder }

// HasDecidedChildren reports whether Children has been populated; false
// for a leaf, or for a folder not yet visited by the merge walk.
func (n *MergedTreeNode) HasDecidedChildren() bool { return n.hasDecidedChildren }

// ChildGUIDs returns the ordered list of merged child GUIDs.
func (n *MergedTreeNode) ChildGUIDs() []guid.GUID {
	out := make([]guid.GUID, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.GUID
	}
	return out
}

// Conflict records a both-sides-changed, content-disagreeing value
// decision, logged for diagnostics (§4.D, §9 OQ1) but never fatal.
type Conflict struct {
	GUID   guid.GUID
	Local  *record.Record
	Remote *record.Record
}

// MergedTree is the output of Merge (§3), plus the deletion and
// conflict-acceptance sets §4.D derives as a side effect of resolving
// move-vs-delete conflicts.
type MergedTree struct {
	Root   *MergedTreeNode
	Lookup map[guid.GUID]*MergedTreeNode

	DeleteLocally        map[guid.GUID]bool
	DeleteRemotely       map[guid.GUID]bool
	DeleteFromMirror     map[guid.GUID]bool
	AcceptLocalDeletion  map[guid.GUID]bool
	AcceptRemoteDeletion map[guid.GUID]bool

	// DeletedValues holds the last known value record for every GUID
	// placed in one of the deletion sets above, preferring LOCAL's view
	// and falling back to MIRROR's then REMOTE's. A deleted GUID never
	// gets a MergedTreeNode (it is not part of the surviving tree), but
	// the result builder still needs its Type to shape a tombstone
	// record for DeleteRemotely (§4.E, §6 "deleted tombstones carry {
	// id, deleted: true, type }").
	DeletedValues map[guid.GUID]*record.Record

	Conflicts []Conflict
}

// AllGUIDs returns the set of GUIDs present in the merged tree.
func (t *MergedTree) AllGUIDs() map[guid.GUID]bool {
	out := make(map[guid.GUID]bool, len(t.Lookup))
	for g := range t.Lookup {
		out[g] = true
	}
	return out
}

// IsNoOp reports whether applying this merge result would change no
// persisted state (§4.E): every node unchanged in both value and
// structure, and every deletion set empty.
func (t *MergedTree) IsNoOp() bool {
	if len(t.DeleteLocally) > 0 || len(t.DeleteRemotely) > 0 || len(t.DeleteFromMirror) > 0 {
		return false
	}
	for _, n := range t.Lookup {
		if n.ValueState != ValueUnchanged || n.StructureState != StructureUnchanged {
			return false
		}
	}
	return true
}

// IsFullyRootedIn reports whether every GUID in the merged tree is
// present in at least one of the given trees (§3 I4, §8 P1).
func IsFullyRootedIn(t *MergedTree, trees ...*synctree.BookmarkTree) bool {
	for g := range t.Lookup {
		found := false
		for _, other := range trees {
			if _, ok := other.Lookup[g]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
