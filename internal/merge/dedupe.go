package merge

import (
	"sort"

	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/synctree"
)

// childIndex returns g's position among its parent's children in t, or
// -1 if unresolvable. Used only to pick a deterministic match among
// several content-identical duplicate candidates.
func childIndex(t *synctree.BookmarkTree, g guid.GUID) int {
	parent, ok := t.Parents[g]
	if !ok {
		return -1
	}
	p := t.Lookup[parent]
	if p == nil {
		return -1
	}
	for i, c := range p.Children {
		if c.GUID == g {
			return i
		}
	}
	return -1
}

// contentMatches is valueEqual, further ignoring HasDupe: the server
// sets that flag once it has detected the duplicate group, so a
// locally-authored candidate legitimately never carries it even when
// its content otherwise matches exactly.
func contentMatches(a, b *record.Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	ac, bc := *a, *b
	ac.HasDupe, bc.HasDupe = false, false
	return valueEqual(&ac, &bc)
}

// dedupeMatches implements the duplicate-folder rules in §4.D: a
// single pairwise new-folder collapse (local and remote both add an
// identical new folder under the same parent) and the explicit
// multi-duplicate matching rule (S5/S6) — several incoming hasDupe
// buffer folders are never collapsed into each other, but a single
// LOCAL New folder that content-matches exactly one of them, under the
// same parent, is matched to that specific remote GUID, deterministic
// by the remote parent's canonical child order.
//
// The returned map is keyed by the local GUID that loses the match; it
// is excluded from the merged tree entirely (the matched remote GUID
// survives in its place) and scheduled for a defensive delete upstream
// in case the client had already started uploading it.
func dedupeMatches(local, mirror, remote *synctree.BookmarkTree) map[guid.GUID]guid.GUID {
	var remoteCandidates []guid.GUID
	for g, n := range remote.Lookup {
		if n.Kind != synctree.KindFolder {
			continue
		}
		if _, inMirror := mirror.Lookup[g]; inMirror {
			continue
		}
		v := remote.Values[g]
		if v == nil || !v.HasDupe {
			continue
		}
		remoteCandidates = append(remoteCandidates, g)
	}
	sort.Slice(remoteCandidates, func(i, j int) bool {
		return childIndex(remote, remoteCandidates[i]) < childIndex(remote, remoteCandidates[j])
	})

	used := map[guid.GUID]bool{}
	matches := map[guid.GUID]guid.GUID{}

	var localCandidates []guid.GUID
	for g, n := range local.Lookup {
		if n.Kind != synctree.KindFolder {
			continue
		}
		if _, inMirror := mirror.Lookup[g]; inMirror {
			continue
		}
		if local.Values[g] == nil {
			continue
		}
		localCandidates = append(localCandidates, g)
	}
	sort.Slice(localCandidates, func(i, j int) bool { return localCandidates[i] < localCandidates[j] })

	for _, lg := range localCandidates {
		lv := local.Values[lg]
		lp, lpOK := local.Parents[lg]
		for _, rg := range remoteCandidates {
			if used[rg] {
				continue
			}
			rp, rpOK := remote.Parents[rg]
			if lpOK != rpOK || lp != rp {
				continue
			}
			if !contentMatches(lv, remote.Values[rg]) {
				continue
			}
			matches[lg] = rg
			used[rg] = true
			break
		}
	}
	return matches
}
