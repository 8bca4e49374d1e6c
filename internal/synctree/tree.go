package synctree

import (
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrMalformedTree is returned by Build when the structure rows
// describe a cycle, list a child twice under different parents, or
// reference a non-folder node as a parent (§4.C step 5). The caller
// (internal/applier) treats this as a MalformedTree error and aborts
// the pass (§7).
var ErrMalformedTree = errors.New("synctree: malformed structure")

// StructureRow is one row of a BookmarksXStructure table (§6): child
// is at position index among parent's children.
type StructureRow struct {
	Parent guid.GUID
	Child  guid.GUID
	Index  int
}

// BookmarkTree is the tree shape described in §3, built from a table
// of structure rows plus a table of value rows by Build.
type BookmarkTree struct {
	Subtrees []*Node
	Lookup   map[guid.GUID]*Node
	Parents  map[guid.GUID]guid.GUID
	Orphans  map[guid.GUID]bool
	Deleted  map[guid.GUID]bool
	Modified map[guid.GUID]bool

	// Values holds the value record behind each non-tombstone GUID in
	// Lookup, the payload the merger's value-state rules compare.
	Values map[guid.GUID]*record.Record
}

// emptyTree has zero subtrees: used for a client with no LOCAL edits
// and no incoming BUFFER.
func emptyTree() *BookmarkTree {
	return &BookmarkTree{
		Lookup:   map[guid.GUID]*Node{},
		Parents:  map[guid.GUID]guid.GUID{},
		Orphans:  map[guid.GUID]bool{},
		Deleted:  map[guid.GUID]bool{},
		Modified: map[guid.GUID]bool{},
		Values:   map[guid.GUID]*record.Record{},
	}
}

// EmptyTree returns the zero-subtree tree for an empty LOCAL or BUFFER
// side (§4.D: "the merger must tolerate local empty, remote empty").
func EmptyTree() *BookmarkTree { return emptyTree() }

// EmptyMirrorTree returns the synthetic five-node root skeleton MIRROR
// starts with on first sync: the canonical root with its four
// canonical children as empty folder leaves, and nothing else (§4.C).
func EmptyMirrorTree() *BookmarkTree {
	t := emptyTree()
	children := make([]*Node, 0, len(guid.CanonicalChildren()))
	for _, c := range guid.CanonicalChildren() {
		child := NewFolder(c)
		children = append(children, child)
		t.Lookup[c] = child
		t.Parents[c] = guid.Root
		t.Values[c] = record.New(record.Record{GUID: c, Type: record.TypeFolder, ParentID: record.GUIDPtr(guid.Root)})
	}
	root := NewFolder(guid.Root, children...)
	t.Lookup[guid.Root] = root
	t.Subtrees = []*Node{root}
	t.Values[guid.Root] = record.New(record.Record{GUID: guid.Root, Type: record.TypeFolder})
	return t
}

// Build implements §4.C: from structure rows (processed in ascending
// (parent, index) order) and value rows, produce a BookmarkTree.
func Build(structureRows []StructureRow, valueRows []*record.Record) (*BookmarkTree, error) {
	t := emptyTree()

	// Step 1: seed lookup with every value row as a leaf. Folders start
	// with empty children; structure rows fill them in next.
	for _, v := range valueRows {
		if v == nil {
			continue
		}
		var n *Node
		if v.IsDeleted {
			// A tombstone still gets a lookup entry so later structure
			// rows referencing it as a parent are caught as malformed
			// (non-folder parent), but it is immediately recorded as
			// deleted and excluded from Values.
			n = NewNonFolder(v.GUID)
		} else if v.Type.IsFolder() {
			n = NewFolder(v.GUID)
			t.Values[v.GUID] = v
		} else {
			n = NewNonFolder(v.GUID)
			t.Values[v.GUID] = v
		}
		t.Lookup[v.GUID] = n
		if v.IsDeleted {
			t.Deleted[v.GUID] = true
		}
		if v.SyncStatus != record.StatusSynced {
			t.Modified[v.GUID] = true
		}
	}

	sorted := sortedStructureRows(structureRows)

	childParent := make(map[guid.GUID]guid.GUID, len(sorted))
	for _, row := range sorted {
		if existing, ok := childParent[row.Child]; ok && existing != row.Parent {
			return nil, errors.Wrapf(ErrMalformedTree, "child %s listed under both %s and %s", row.Child, existing, row.Parent)
		}
		childParent[row.Child] = row.Parent

		parentNode, ok := t.Lookup[row.Parent]
		if !ok {
			t.Orphans[row.Child] = true
			continue
		}
		if parentNode.Kind != KindFolder {
			return nil, errors.Wrapf(ErrMalformedTree, "%s listed as parent of %s but is not a folder", row.Parent, row.Child)
		}
		childNode, ok := t.Lookup[row.Child]
		if !ok {
			childNode = NewUnknown(row.Child)
			t.Lookup[row.Child] = childNode
		}
		parentNode.Children = append(parentNode.Children, childNode)
		t.Parents[row.Child] = row.Parent
	}

	if err := detectCycles(t); err != nil {
		return nil, err
	}

	// Step 3: subtrees are nodes with no recorded parent that are also
	// not orphans (an orphan has no parent recorded either, but for a
	// different reason: its listed parent does not exist, rather than
	// it never having been listed as anybody's child).
	for g, n := range t.Lookup {
		if _, hasParent := t.Parents[g]; hasParent {
			continue
		}
		if t.Orphans[g] {
			continue
		}
		t.Subtrees = append(t.Subtrees, n)
	}

	if len(t.Orphans) > 0 {
		log.WithFields(log.Fields{"count": len(t.Orphans)}).Debug("synctree: structure rows reference unresolvable parents")
	}

	return t, nil
}

func sortedStructureRows(rows []StructureRow) []StructureRow {
	out := make([]StructureRow, len(rows))
	copy(out, rows)
	// Stable insertion sort on (parent, index): the row counts here are
	// small (a user's bookmark tree, not a filesystem), so O(n^2) worst
	// case is not a concern and this keeps the ordering obviously
	// correct without pulling in sort.Slice's comparator indirection.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func less(a, b StructureRow) bool {
	if a.Parent != b.Parent {
		return a.Parent < b.Parent
	}
	return a.Index < b.Index
}

// detectCycles walks every folder's children looking for a path back
// to itself, the third malformed-structure case from §4.C step 5.
func detectCycles(t *BookmarkTree) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[guid.GUID]int, len(t.Lookup))
	var visit func(g guid.GUID) error
	visit = func(g guid.GUID) error {
		switch state[g] {
		case done:
			return nil
		case visiting:
			return errors.Wrapf(ErrMalformedTree, "cycle detected at %s", g)
		}
		state[g] = visiting
		if n := t.Lookup[g]; n != nil && n.Kind == KindFolder {
			for _, c := range n.Children {
				if err := visit(c.GUID); err != nil {
					return err
				}
			}
		}
		state[g] = done
		return nil
	}
	for g := range t.Lookup {
		if err := visit(g); err != nil {
			return err
		}
	}
	return nil
}

// IsFullyRootedIn reports whether every GUID in t.Lookup is either
// present (as a node of any kind) in other.Lookup, or marked Unknown
// in t itself (§3 invariant I4; §8 P1). It only reports; it neither
// logs nor changes either tree.
func (t *BookmarkTree) IsFullyRootedIn(other *BookmarkTree) bool {
	ok := true
	for g, n := range t.Lookup {
		if n.Kind == KindUnknown {
			continue
		}
		if _, present := other.Lookup[g]; !present {
			ok = false
		}
	}
	return ok
}
