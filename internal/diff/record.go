package diff

import "github.com/nicolagi/bookmarksync/internal/record"

// RecordNode adapts a record.Record to Node, so internal/merge can
// render a unified diff of a value conflict's two sides without the
// diff package importing anything about bookmark semantics beyond
// Record.Dump and Record.SameAs.
type RecordNode struct {
	*record.Record
}

func (n RecordNode) SameAs(other Node) bool {
	o, ok := other.(RecordNode)
	if !ok {
		return false
	}
	return n.Record.SameAs(o.Record)
}

func (n RecordNode) Content() (string, error) {
	return n.Record.Dump(), nil
}
