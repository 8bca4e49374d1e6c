package merge

import "github.com/nicolagi/bookmarksync/internal/guid"

// lowestSurvivingAncestor walks p's chain of naive parents until it
// finds one that is not itself scheduled for deletion from the mirror
// (§4.D "walk F's chain of parents until a folder is chosen that is
// not itself being deleted"). Canonical roots are never placed in
// deleted, so the walk always terminates — in the worst case at one of
// the four canonical roots, resolving §9 OQ2 (three generations
// deleted on alternating sides still converges).
func lowestSurvivingAncestor(p guid.GUID, naiveParent map[guid.GUID]guid.GUID, deleted map[guid.GUID]bool) guid.GUID {
	seen := map[guid.GUID]bool{}
	cur := p
	for {
		if seen[cur] {
			return guid.Unfiled
		}
		seen[cur] = true
		if !deleted[cur] {
			return cur
		}
		next, ok := naiveParent[cur]
		if !ok {
			return guid.Unfiled
		}
		cur = next
	}
}

// resolveParent returns g's final merged parent: its naive parent, or
// the lowest surviving ancestor of that parent if it is being deleted,
// or guid.Unfiled if g has no parent assignment on any side (an
// orphan, attached under unfiled_____ as a last resort per §4.D).
func resolveParent(g guid.GUID, naiveParent map[guid.GUID]guid.GUID, deleted map[guid.GUID]bool) (parent guid.GUID, reparented bool) {
	p, ok := naiveParent[g]
	if !ok {
		return guid.Unfiled, true
	}
	if !deleted[p] {
		return p, false
	}
	return lowestSurvivingAncestor(p, naiveParent, deleted), true
}
