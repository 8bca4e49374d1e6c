// Package guid implements the stable identifiers that name bookmark
// tree nodes, including the normalisation of historical short root
// names into their canonical extended form (§3 of the merge spec).
package guid

import "errors"

// GUID is an opaque 12-character identifier naming a bookmark node.
// GUIDs are immutable once assigned: the dedup rules in the merger may
// decide that a record survives under a different GUID than the one it
// was created with, but the GUID itself never mutates in place.
type GUID string

// Canonical roots. Every well-formed BookmarkTree has exactly one
// subtree, rooted at Root, whose immediate children are Menu, Toolbar,
// Unfiled and Mobile, in that order (canonicalChildren below).
const (
	Root    GUID = "root________"
	Menu    GUID = "menu________"
	Toolbar GUID = "toolbar_____"
	Unfiled GUID = "unfiled_____"
	Mobile  GUID = "mobile______"

	// Desktop is a pseudo-GUID for a synthetic grouping node that is
	// never persisted or transmitted over the wire, but may appear in
	// internal tree views (e.g. a debug Dump that wants to show all
	// four canonical roots under one synthetic parent).
	Desktop GUID = "desktop_____"
)

// Length is the fixed length of a well-formed GUID.
const Length = 12

// ErrInvalid is returned by Validate for a GUID that is not exactly
// Length characters, once any historical-name normalisation has been
// applied.
var ErrInvalid = errors.New("guid: invalid length")

// canonicalChildren lists the root's four canonical children in
// canonical order. The merger and result builder must always place
// them in this order under Root, regardless of input order.
var canonicalChildren = []GUID{Menu, Toolbar, Unfiled, Mobile}

// CanonicalChildren returns a fresh copy of the root's canonical
// children in canonical order.
func CanonicalChildren() []GUID {
	out := make([]GUID, len(canonicalChildren))
	copy(out, canonicalChildren)
	return out
}

// IsCanonicalRoot reports whether g is one of the five well-known root
// GUIDs (Root itself, or one of its four canonical children).
func IsCanonicalRoot(g GUID) bool {
	if g == Root {
		return true
	}
	for _, c := range canonicalChildren {
		if g == c {
			return true
		}
	}
	return false
}

// historicalNames maps short historical root names, as they may appear
// in incoming records (local legacy rows, or buffer rows from an older
// server), to their canonical extended GUID form.
var historicalNames = map[string]GUID{
	"places":  Root,
	"root":    Root,
	"mobile":  Mobile,
	"menu":    Menu,
	"toolbar": Toolbar,
	"unfiled": Unfiled,
}

// Normalize converts a historical short root name to its canonical
// extended form. Any other GUID, including one that is already
// canonical, is returned unchanged. This must be applied to every
// incoming guid and parentID field at record-construction time (§4.A).
func Normalize(g GUID) GUID {
	if canonical, ok := historicalNames[string(g)]; ok {
		return canonical
	}
	return g
}

// Validate reports whether g has the expected fixed length. It does
// not normalise first; callers should Normalize before Validate if the
// value may be a historical short name.
func Validate(g GUID) error {
	if len(g) != Length {
		return ErrInvalid
	}
	return nil
}

// String implements fmt.Stringer.
func (g GUID) String() string {
	return string(g)
}
