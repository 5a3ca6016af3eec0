// Package enumerate implements the indirect-object enumerator
// (spec.md section 4.F): it walks the value graph from the trailer's
// fixed-role seed nodes, promotes any node visited a second time
// (shared subgraphs and cycles) plus every stream, then iterates a
// rule table over the growing list to promote nodes PDF convention
// requires to be indirect even when referenced exactly once. Grounded
// on the teacher's writer package, which assigns object numbers by a
// single top-down walk (writer/writer.go's object-numbering pass) —
// generalized here into the two-phase sharing-then-rules procedure
// spec.md calls for, since the teacher's walk never needs to detect
// structural sharing (its source documents are always freshly built,
// never round-tripped from a parsed graph with repeated identity).
package enumerate

import "github.com/benedoc-inc/pdftree/object"

// Result is the ordered indirect-object list plus its ID assignment.
// ID 0 is reserved (the free-list head); object i in Order gets ID
// i+1.
type Result struct {
	Order []object.Handle
	Index map[object.Handle]int
}

// ID returns the assigned object number for h, or 0 if h is not in
// the indirect-object list.
func (r Result) ID(h object.Handle) int {
	return r.Index[h]
}

type builder struct {
	arena   *object.Arena
	order   []object.Handle
	inList  map[object.Handle]bool
	visited map[object.Handle]bool
}

// Enumerate runs the full procedure over arena, starting from
// trailer's seed keys (spec.md section 4.F step 1).
func Enumerate(arena *object.Arena, trailer object.Handle) Result {
	b := &builder{
		arena:   arena,
		inList:  make(map[object.Handle]bool),
		visited: make(map[object.Handle]bool),
	}

	seeds := collectSeeds(arena, trailer)
	for _, s := range seeds {
		b.promote(s)
	}
	for _, s := range seeds {
		b.visit(s)
	}
	b.applyRules()

	idx := make(map[object.Handle]int, len(b.order))
	for i, h := range b.order {
		idx[h] = i + 1
	}
	return Result{Order: b.order, Index: idx}
}

// promote appends h to the indirect-object list if it isn't already
// present. Returns whether it was newly added.
func (b *builder) promote(h object.Handle) bool {
	if h == object.Invalid || !b.arena.Valid(h) {
		return false
	}
	if b.inList[h] {
		return false
	}
	b.inList[h] = true
	b.order = append(b.order, h)
	return true
}

// visit is the shared/cycle-detecting graph walk (spec.md section 4.F
// step 2): a node seen for the second time is promoted and not
// descended into again (the first visit already walked its
// children), which doubles as cycle termination.
func (b *builder) visit(h object.Handle) {
	h = resolve(b.arena, h)
	if h == object.Invalid || !b.arena.Valid(h) {
		return
	}
	if b.visited[h] {
		b.promote(h)
		return
	}
	b.visited[h] = true

	n := b.arena.Get(h)
	switch n.Kind {
	case object.KindStream:
		b.promote(h) // invariant 2: every Stream is indirect, always
		dictNode := b.arena.Get(n.Stream.Dict)
		for _, e := range dictNode.Dict {
			b.visit(e.Value)
		}
	case object.KindDict:
		for _, e := range n.Dict {
			b.visit(e.Value)
		}
	case object.KindArray:
		for _, c := range n.Array {
			b.visit(c)
		}
	}
}

// resolve follows a Ref node to its resolved target, if any; a value
// that is not a Ref (or an unresolved one) is returned unchanged.
func resolve(arena *object.Arena, h object.Handle) object.Handle {
	for i := 0; i < 64 && arena.Valid(h); i++ {
		n := arena.Get(h)
		if n.Kind != object.KindRef {
			return h
		}
		if n.Resolved == object.Invalid {
			return h
		}
		h = n.Resolved
	}
	return h
}

func dictGetName(arena *object.Arena, n *object.Node, key string) (string, bool) {
	h, ok := n.DictGet(key)
	if !ok {
		return "", false
	}
	v := arena.Get(resolve(arena, h))
	if v.Kind != object.KindName {
		return "", false
	}
	return string(v.Bytes), true
}

func dictHasKey(n *object.Node, key string) bool {
	_, ok := n.DictGet(key)
	return ok
}
