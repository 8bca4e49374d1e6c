package merge

import "github.com/nicolagi/bookmarksync/internal/record"

// resolveValue picks the record a merged node carries forward, then
// applies favicon preservation (§4.D): a local faviconID survives even
// when the server-authoritative value otherwise wins, since the
// server-side record never carries that field at all.
func resolveValue(state ValueState, lv, mv, rv *record.Record) *record.Record {
	var base *record.Record
	switch state {
	case ValueLocal:
		base = lv
	case ValueRemote, ValueNew:
		base = rv
		if base == nil {
			base = lv
		}
	default:
		base = mv
		if base == nil {
			base = lv
		}
		if base == nil {
			base = rv
		}
	}
	if base == nil {
		return nil
	}
	out := *base
	if out.FaviconID == nil && lv != nil && lv.FaviconID != nil {
		out.FaviconID = lv.FaviconID
	}
	return &out
}
