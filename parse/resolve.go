package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/object"
)

// resolveReferences implements spec.md section 4.D: every Ref node
// already carries its (id, gen) pair, so resolution is a single pass
// over the arena patching each Ref's Resolved handle from the
// indirect-object table. It is memoized for free — each Ref node is
// visited once and patched once, and all Refs sharing a target share
// the same resolved handle by construction (the table itself). A
// missing target is a non-fatal warning; the Ref is left unpatched so
// the writer falls back to emitting "(id gen R)" as a literal.
func resolveReferences(arena *object.Arena, objects map[object.RefID]object.Handle, sink diag.Sink) {
	for i := 1; i <= arena.Len(); i++ {
		h := object.Handle(i)
		n := arena.Get(h)
		if n.Kind != object.KindRef {
			continue
		}
		target, ok := objects[n.Ref]
		if !ok {
			sink.Warn(diag.Diagnostic{Kind: diag.KindUnresolvedReference, Offset: -1,
				Message: "unresolved reference to object"})
			continue
		}
		n.Resolved = target
	}
}
