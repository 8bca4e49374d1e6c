package merge

import (
	"github.com/nicolagi/bookmarksync/internal/diff"
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/synctree"
	log "github.com/sirupsen/logrus"
)

func unionGUIDs(trees ...*synctree.BookmarkTree) map[guid.GUID]bool {
	out := map[guid.GUID]bool{}
	for _, t := range trees {
		for g := range t.Lookup {
			out[g] = true
		}
	}
	return out
}

func folderChildrenChanged(side, mirror *synctree.Node) bool {
	if side == nil || side.Kind != synctree.KindFolder {
		return false
	}
	if mirror == nil || mirror.Kind != synctree.KindFolder {
		return len(side.Children) > 0
	}
	return !sameOrder(side.ChildGUIDs(), mirror.ChildGUIDs())
}

func firstNonNil(rs ...*record.Record) *record.Record {
	for _, r := range rs {
		if r != nil {
			return r
		}
	}
	return nil
}

func isFolderAnywhere(nodes ...*synctree.Node) bool {
	for _, n := range nodes {
		if n != nil && n.Kind == synctree.KindFolder {
			return true
		}
	}
	return false
}

func childOrderOf(t *synctree.BookmarkTree, g guid.GUID) []guid.GUID {
	return t.Lookup[g].ChildGUIDs()
}

// resolveDeletionAndValue implements the deletion-vs-modification
// conflict rules and the value-state decision table of §4.D for a
// single GUID. It writes into result's deletion sets directly, and
// into valueStates when g survives (i.e. was not deleted on either
// side).
func resolveDeletionAndValue(g guid.GUID, local, mirror, remote *synctree.BookmarkTree, result *MergedTree, valueStates map[guid.GUID]ValueState) {
	_, lxOK := local.Lookup[g]
	_, mxOK := mirror.Lookup[g]
	_, rxOK := remote.Lookup[g]
	ld, md, rd := local.Deleted[g], mirror.Deleted[g], remote.Deleted[g]
	lv, mv, rv := local.Values[g], mirror.Values[g], remote.Values[g]

	lc := classify(lxOK, ld, lv, mxOK, md, mv)
	rc := classify(rxOK, rd, rv, mxOK, md, mv)

	// "Modified" is broader than the scalar valueState change: it also
	// counts a side reordering g's own children, since that is what
	// triggers the move-vs-delete conflict markers below.
	modifiedLocal := lc.changed || folderChildrenChanged(local.Lookup[g], mirror.Lookup[g])
	modifiedRemote := rc.changed || folderChildrenChanged(remote.Lookup[g], mirror.Lookup[g])

	switch {
	case ld && rd:
		result.DeleteFromMirror[g] = true
		result.DeletedValues[g] = firstNonNil(lv, mv, rv)
		return
	case ld && !rd:
		result.DeleteRemotely[g] = true
		result.DeleteFromMirror[g] = true
		result.DeletedValues[g] = firstNonNil(lv, mv, rv)
		if modifiedRemote {
			result.AcceptLocalDeletion[g] = true
		}
		return
	case rd && !ld:
		result.DeleteLocally[g] = true
		result.DeleteFromMirror[g] = true
		result.DeletedValues[g] = firstNonNil(lv, mv, rv)
		if modifiedLocal {
			result.AcceptRemoteDeletion[g] = true
		}
		return
	}

	switch {
	case !lc.changed && !rc.changed:
		valueStates[g] = ValueUnchanged
	case lc.changed && !rc.changed:
		if !mxOK {
			valueStates[g] = ValueNew
		} else {
			valueStates[g] = ValueLocal
		}
	case !lc.changed && rc.changed:
		valueStates[g] = ValueRemote
	default:
		valueStates[g] = ValueRemote
		if lv != nil && rv != nil && !valueEqual(lv, rv) {
			result.Conflicts = append(result.Conflicts, Conflict{GUID: g, Local: lv, Remote: rv})
			fields := log.Fields{"guid": g}
			if fieldDiff, err := diff.Unified(diff.RecordNode{Record: lv}, diff.RecordNode{Record: rv}, 1); err == nil {
				fields["field-diff"] = fieldDiff
			}
			log.WithFields(fields).Warn("merge: value conflict on both sides changed, remote wins")
		}
	}
}

// assignParent picks g's naive merged parent using the same
// single/both-side-changed pattern as the value-state rules, applied
// to the parent pointer instead of the value record (§4.D structure
// state, applied per-edge before the per-folder order merge runs).
func assignParent(g guid.GUID, local, mirror, remote *synctree.BookmarkTree) (guid.GUID, bool) {
	lp, lpOK := local.Parents[g]
	mp, mpOK := mirror.Parents[g]
	rp, rpOK := remote.Parents[g]

	changedLocal := lpOK && (!mpOK || lp != mp)
	changedRemote := rpOK && (!mpOK || rp != mp)

	switch {
	case changedLocal && changedRemote:
		if lp == rp {
			return lp, true
		}
		return rp, true
	case changedLocal:
		return lp, true
	case changedRemote:
		return rp, true
	case mpOK:
		return mp, true
	case lpOK:
		return lp, true
	case rpOK:
		return rp, true
	default:
		return "", false
	}
}

func decideStructureState(localChanged, remoteChanged bool) StructureState {
	switch {
	case localChanged && remoteChanged:
		return StructureNew
	case localChanged:
		return StructureLocal
	case remoteChanged:
		return StructureRemote
	default:
		return StructureUnchanged
	}
}

// Merge implements §4.D: reconciles local, mirror and remote into a
// single MergedTree rooted at the canonical root. It tolerates local
// or remote being synctree.EmptyTree(), and mirror being no more than
// the synthetic five-node skeleton of synctree.EmptyMirrorTree() on
// first sync.
func Merge(local, mirror, remote *synctree.BookmarkTree) (*MergedTree, error) {
	result := &MergedTree{
		Lookup:               map[guid.GUID]*MergedTreeNode{},
		DeleteLocally:        map[guid.GUID]bool{},
		DeleteRemotely:       map[guid.GUID]bool{},
		DeleteFromMirror:     map[guid.GUID]bool{},
		AcceptLocalDeletion:  map[guid.GUID]bool{},
		AcceptRemoteDeletion: map[guid.GUID]bool{},
		DeletedValues:        map[guid.GUID]*record.Record{},
	}

	deduped := dedupeMatches(local, mirror, remote)
	for lg := range deduped {
		result.DeleteRemotely[lg] = true
		result.DeletedValues[lg] = local.Values[lg]
	}

	universe := unionGUIDs(local, mirror, remote)
	valueStates := map[guid.GUID]ValueState{}

	for g := range universe {
		if guid.IsCanonicalRoot(g) {
			continue
		}
		if _, skip := deduped[g]; skip {
			continue
		}
		resolveDeletionAndValue(g, local, mirror, remote, result, valueStates)
	}

	// naiveParent covers every non-canonical-root, non-dedup-loser GUID,
	// including ones scheduled for deletion from mirror: a deleted
	// folder still needs its own naive parent recorded so
	// lowestSurvivingAncestor can walk past it to find a surviving
	// ancestor, rather than stopping dead at the first deleted node.
	naiveParent := map[guid.GUID]guid.GUID{}
	for g := range universe {
		if guid.IsCanonicalRoot(g) {
			continue
		}
		if _, skip := deduped[g]; skip {
			continue
		}
		if p, ok := assignParent(g, local, mirror, remote); ok {
			naiveParent[g] = p
		}
	}

	finalParent := map[guid.GUID]guid.GUID{}
	reparentedInto := map[guid.GUID]bool{}
	for g := range universe {
		if guid.IsCanonicalRoot(g) || result.DeleteFromMirror[g] {
			continue
		}
		if _, skip := deduped[g]; skip {
			continue
		}
		p, reparented := resolveParent(g, naiveParent, result.DeleteFromMirror)
		finalParent[g] = p
		if reparented {
			reparentedInto[p] = true
		}
	}

	childrenOf := map[guid.GUID][]guid.GUID{}
	for g, p := range finalParent {
		childrenOf[p] = append(childrenOf[p], g)
	}

	nodeOf := func(g guid.GUID) *MergedTreeNode {
		if n, ok := result.Lookup[g]; ok {
			return n
		}
		ln, mn, rn := local.Lookup[g], mirror.Lookup[g], remote.Lookup[g]
		n := &MergedTreeNode{
			GUID:     g,
			Local:    ln,
			Mirror:   mn,
			Remote:   rn,
			isFolder: isFolderAnywhere(ln, mn, rn) || guid.IsCanonicalRoot(g),
		}
		result.Lookup[g] = n
		return n
	}

	for _, c := range guid.CanonicalChildren() {
		nodeOf(c)
	}
	root := nodeOf(guid.Root)

	for g, state := range valueStates {
		n := nodeOf(g)
		n.ValueState = state
		n.Value = resolveValue(state, local.Values[g], mirror.Values[g], remote.Values[g])
		if n.Value != nil {
			if p, ok := finalParent[g]; ok {
				n.Value.ParentID = record.GUIDPtr(p)
			}
		}
	}
	for _, c := range guid.CanonicalChildren() {
		n := nodeOf(c)
		n.ValueState = ValueUnchanged
		n.Value = mirror.Values[c]
		if n.Value == nil {
			n.Value = record.New(record.Record{GUID: c, Type: record.TypeFolder, ParentID: record.GUIDPtr(guid.Root)})
		}
	}
	root.ValueState = ValueUnchanged
	root.Value = mirror.Values[guid.Root]
	if root.Value == nil {
		root.Value = record.New(record.Record{GUID: guid.Root, Type: record.TypeFolder})
	}

	var folderGUIDs []guid.GUID
	folderGUIDs = append(folderGUIDs, guid.CanonicalChildren()...)
	for g := range childrenOf {
		if g == guid.Root {
			continue
		}
		folderGUIDs = append(folderGUIDs, g)
	}

	seen := map[guid.GUID]bool{}
	for _, g := range folderGUIDs {
		if seen[g] {
			continue
		}
		seen[g] = true
		n := nodeOf(g)
		n.isFolder = true

		final := toSet(childrenOf[g])
		localOrder := childOrderOf(local, g)
		mirrorOrder := childOrderOf(mirror, g)
		remoteOrder := childOrderOf(remote, g)

		localChanged := local.Lookup[g] != nil && !sameOrder(localOrder, mirrorOrder)
		remoteChanged := remote.Lookup[g] != nil && !sameOrder(remoteOrder, mirrorOrder)
		n.StructureState = decideStructureState(localChanged, remoteChanged)
		if reparentedInto[g] {
			n.StructureState = StructureNew
		}

		ordered := mergeOrder(final, localOrder, remoteOrder)
		n.Children = make([]*MergedTreeNode, 0, len(ordered))
		for _, c := range ordered {
			n.Children = append(n.Children, nodeOf(c))
		}
		n.hasDecidedChildren = true
		if n.Value != nil {
			n.Value.Children = ordered
		}
	}

	root.Children = nil
	for _, c := range guid.CanonicalChildren() {
		root.Children = append(root.Children, nodeOf(c))
	}
	root.StructureState = StructureUnchanged
	root.hasDecidedChildren = true
	if root.Value != nil {
		root.Value.Children = guid.CanonicalChildren()
	}
	result.Root = root

	return result, nil
}
