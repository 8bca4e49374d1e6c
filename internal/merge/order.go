package merge

import (
	"sort"

	"github.com/nicolagi/bookmarksync/internal/guid"
)

// sameOrder reports whether two GUID sequences are identical,
// treating nil and empty as equal.
func sameOrder(a, b []guid.GUID) bool {
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

func toSet(gs []guid.GUID) map[guid.GUID]bool {
	out := make(map[guid.GUID]bool, len(gs))
	for _, g := range gs {
		out[g] = true
	}
	return out
}

func restrict(order []guid.GUID, final map[guid.GUID]bool) []guid.GUID {
	out := make([]guid.GUID, 0, len(order))
	for _, g := range order {
		if final[g] {
			out = append(out, g)
		}
	}
	return out
}

// mergeOrder computes the final child order of a folder whose
// definitive child set is final, given each side's raw (unrestricted)
// child order (either may be nil, if that side never had this folder
// or it wasn't a folder there).
//
// remoteOrder, restricted to final, is the backbone: it is a total
// order over every element remote placed, so for any pair remote
// ordered, the backbone's order wins (§4.D: "remote order wins for the
// conflicting pair"). localOrder contributes only the elements remote
// never mentions, placed after the nearest preceding element the two
// orders have in common and after any remote-only elements that follow
// that element, up to the next common one, preserving local's own
// relative order among its own-only insertions. Local-only elements
// before the first common element go just before that common element
// in the backbone; if the orders share no element, they go after the
// whole backbone. So where remote and local both add elements at the
// same point, remote's come first, then local's (§4.D). Anything in
// neither order (freshly reparented children, or brand-new additions
// neither side listed under this exact folder) is appended last, in
// GUID order for determinism.
func mergeOrder(final map[guid.GUID]bool, localOrder, remoteOrder []guid.GUID) []guid.GUID {
	backbone := restrict(remoteOrder, final)
	backboneSet := toSet(backbone)

	lr := restrict(localOrder, final)
	pendingAfter := map[guid.GUID][]guid.GUID{}
	var prepend []guid.GUID
	var lastAnchor guid.GUID
	haveAnchor := false
	for _, g := range lr {
		if backboneSet[g] {
			lastAnchor = g
			haveAnchor = true
			continue
		}
		if haveAnchor {
			pendingAfter[lastAnchor] = append(pendingAfter[lastAnchor], g)
		} else {
			prepend = append(prepend, g)
		}
	}

	lrSet := toSet(lr)
	out := make([]guid.GUID, 0, len(final))
	pending := prepend
	for _, g := range backbone {
		if lrSet[g] {
			out = append(out, pending...)
			pending = pendingAfter[g]
		}
		out = append(out, g)
	}
	out = append(out, pending...)

	placed := toSet(out)
	var leftover []guid.GUID
	for g := range final {
		if !placed[g] {
			leftover = append(leftover, g)
		}
	}
	sort.Slice(leftover, func(i, j int) bool { return leftover[i] < leftover[j] })
	return append(out, leftover...)
}
