package merge

import "github.com/nicolagi/bookmarksync/internal/record"

// valueEqual compares two records the way the value-state rules need:
// record.Record.SameAs minus the Children field, since child ordering
// is this package's own structureState concern, not a value-state one.
func valueEqual(a, b *record.Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	ac, bc := *a, *b
	ac.Children, bc.Children = nil, nil
	return ac.SameAs(&bc)
}

// sideChange describes one side's value-record presence relative to
// mirror, the raw material for the valueState decision table in §4.D.
type sideChange struct {
	present bool
	deleted bool
	changed bool
}

// classify reports whether side (value sv, tombstone sd, presence sx)
// changed relative to mirror (value mv, tombstone md, presence mx).
func classify(sx bool, sd bool, sv *record.Record, mx bool, md bool, mv *record.Record) sideChange {
	c := sideChange{present: sx}
	if !sx {
		return c
	}
	c.deleted = sd
	switch {
	case sd != md:
		c.changed = true
	case sd && md:
		c.changed = false
	case !mx:
		c.changed = true
	default:
		c.changed = !valueEqual(sv, mv)
	}
	return c
}
