package diff_test

import (
	"testing"

	"github.com/nicolagi/bookmarksync/internal/diff"
)

func TestByteNodeSameAs(t *testing.T) {
	a := diff.ByteNode("some text")
	b := diff.ByteNode("other text")
	assertNotSame(t, a, b)
	assertSame(t, a, a)
	assertSame(t, b, b)
	assertSame(t, a, diff.ByteNode("some text"))
	assertNotSame(t, a, (diff.ByteNode)(nil))
	assertNotSame(t, a, diff.StringNode("some text"))
}

func TestByteNodeContent(t *testing.T) {
	node := diff.ByteNode("some text")
	content, err := node.Content()
	if err != nil {
		t.Error(err)
	}
	if got, want := content, "some text"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestStringNodeSameAs(t *testing.T) {
	a := diff.StringNode("some text")
	b := diff.StringNode("other text")
	assertNotSame(t, a, b)
	assertSame(t, a, a)
	assertSame(t, b, b)
	assertSame(t, a, diff.StringNode("some text"))
	assertNotSame(t, a, (diff.ByteNode)(nil))
	assertNotSame(t, a, diff.ByteNode{})
}

func TestStringNodeContent(t *testing.T) {
	node := diff.StringNode("some text")
	content, err := node.Content()
	if err != nil {
		t.Error(err)
	}
	if got, want := content, "some text"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func assertSame(t *testing.T, a, b diff.Node) {
	t.Helper()
	if got := a.SameAs(b); got != true {
		t.Errorf("a.SameAs(b): got %t, want true", got)
	}
	if got := b.SameAs(a); got != true {
		t.Errorf("b.SameAs(a): got %t, want true", got)
	}
}

func assertNotSame(t *testing.T, a, b diff.Node) {
	t.Helper()
	if got := a.SameAs(b); got != false {
		t.Errorf("a.SameAs(b): got %t, want false", got)
	}
	if got := b.SameAs(a); got != false {
		t.Errorf("b.SameAs(a): got %t, want false", got)
	}
}
