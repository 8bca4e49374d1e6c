package diff

import "bytes"

// Node is anything that can be diffed: a left and a right side of a
// potential conflict. Content must be stable and newline-separated for
// the unified output to make sense.
type Node interface {
	// SameAs is an optional shortcut to comparing nodes, avoiding a
	// full content diff when a cheaper comparison (e.g. a content hash
	// or record.SameAs) already answers the question.
	SameAs(Node) bool

	// Content returns the text representation of the node.
	Content() (string, error)
}

// ByteNode diffs raw bytes.
type ByteNode []byte

func (b ByteNode) SameAs(node Node) bool {
	other, ok := node.(ByteNode)
	if !ok {
		return false
	}
	return bytes.Equal(b, other)
}

func (b ByteNode) Content() (string, error) {
	return string(b), nil
}

// StringNode diffs a string directly.
type StringNode string

func (s StringNode) SameAs(node Node) bool {
	other, ok := node.(StringNode)
	if !ok {
		return false
	}
	return string(s) == string(other)
}

func (s StringNode) Content() (string, error) {
	return string(s), nil
}
