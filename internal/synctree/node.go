// Package synctree implements the tree builder of §4.C: it turns a
// table of (parent, child, index) structure rows plus a table of value
// rows into a BookmarkTree, the shape the three-way merger in
// internal/merge consumes.
package synctree

import "github.com/nicolagi/bookmarksync/internal/guid"

// Kind distinguishes the three cases of the tree-node sum type (§3).
type Kind uint8

const (
	// KindFolder is a node with a materialised, ordered child list.
	KindFolder Kind = iota
	// KindNonFolder is a leaf value node (bookmark, separator, etc).
	KindNonFolder
	// KindUnknown is a node referenced by a parent but not yet
	// materialised — a lazy leaf, resolved later via an item source.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindNonFolder:
		return "non-folder"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Node is the tree-node sum type from §3. Children is meaningful only
// when Kind is KindFolder, and is nil for the other two kinds.
type Node struct {
	GUID     guid.GUID
	Kind     Kind
	Children []*Node
}

// NewFolder constructs a folder node with the given ordered children.
func NewFolder(g guid.GUID, children ...*Node) *Node {
	return &Node{GUID: g, Kind: KindFolder, Children: children}
}

// NewNonFolder constructs a leaf value node.
func NewNonFolder(g guid.GUID) *Node {
	return &Node{GUID: g, Kind: KindNonFolder}
}

// NewUnknown constructs a lazy leaf: referenced, but not materialised.
func NewUnknown(g guid.GUID) *Node {
	return &Node{GUID: g, Kind: KindUnknown}
}

// ChildGUIDs returns the ordered list of child GUIDs, or nil if this
// node is not a folder.
func (n *Node) ChildGUIDs() []guid.GUID {
	if n == nil || n.Kind != KindFolder {
		return nil
	}
	out := make([]guid.GUID, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.GUID
	}
	return out
}
