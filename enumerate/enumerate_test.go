package enumerate

import (
	"testing"

	"github.com/benedoc-inc/pdftree/object"
	"github.com/stretchr/testify/require"
)

func TestEnumerateSeedsRootAndSharedChildPromotedOnce(t *testing.T) {
	a := object.NewArena()

	leaf := a.NewDict(nil)
	a.Get(leaf).DictSet("Type", a.NewName([]byte("Page")))

	kidRef := a.NewRef(object.RefID{ID: 1})
	a.Get(kidRef).Resolved = leaf

	pages := a.NewDict(nil)
	a.Get(pages).DictSet("Kids", a.NewArray([]object.Handle{kidRef, kidRef}))

	pagesRef := a.NewRef(object.RefID{ID: 2})
	a.Get(pagesRef).Resolved = pages

	root := a.NewDict(nil)
	a.Get(root).DictSet("Type", a.NewName([]byte("Catalog")))
	a.Get(root).DictSet("Pages", pagesRef)

	rootRef := a.NewRef(object.RefID{ID: 3})
	a.Get(rootRef).Resolved = root

	trailer := a.NewDict(nil)
	a.Get(trailer).DictSet("Root", rootRef)

	result := Enumerate(a, trailer)

	require.Contains(t, result.Order, root)
	require.Contains(t, result.Order, pages)
	require.Contains(t, result.Order, leaf, "a node reachable twice (shared Kids entry) must be promoted indirect")

	count := 0
	for _, h := range result.Order {
		if h == leaf {
			count++
		}
	}
	require.Equal(t, 1, count, "leaf must appear exactly once in the indirect list despite being referenced twice")
}

func TestEnumerateStreamsAreAlwaysIndirect(t *testing.T) {
	a := object.NewArena()
	stream := a.NewStream(nil, []byte("payload"), object.StreamFlags{})

	root := a.NewDict(nil)
	a.Get(root).DictSet("Metadata", stream)

	trailer := a.NewDict(nil)
	a.Get(trailer).DictSet("Root", root)

	result := Enumerate(a, trailer)
	require.Contains(t, result.Order, stream)
	require.Greater(t, result.ID(stream), 0)
}

func TestEnumerateHandlesCycles(t *testing.T) {
	a := object.NewArena()
	a1 := a.NewDict(nil)
	a2 := a.NewDict(nil)
	ref1 := a.NewRef(object.RefID{ID: 1})
	a.Get(ref1).Resolved = a1
	ref2 := a.NewRef(object.RefID{ID: 2})
	a.Get(ref2).Resolved = a2

	a.Get(a1).DictSet("Next", ref2)
	a.Get(a2).DictSet("Prev", ref1) // cycle back to a1

	root := a.NewDict(nil)
	a.Get(root).DictSet("Outlines", ref1)

	trailer := a.NewDict(nil)
	a.Get(trailer).DictSet("Root", root)

	result := Enumerate(a, trailer)

	require.Contains(t, result.Order, a1)
	require.Contains(t, result.Order, a2)
}

func TestResultIDUnknownHandleReturnsZero(t *testing.T) {
	var r Result
	r.Index = map[object.Handle]int{}
	require.Equal(t, 0, r.ID(object.Handle(42)))
}
