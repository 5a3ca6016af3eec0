package write

import (
	"bytes"
	"fmt"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/enumerate"
	"github.com/benedoc-inc/pdftree/object"
)

// Writer holds per-serialization-pass state: the arena being
// serialized, the enumerator's ID assignment, and the no-double-emit
// guard (spec.md section 4.G).
type Writer struct {
	arena *object.Arena
	ids   enumerate.Result
	seen  map[object.Handle]bool
	sink  diag.Sink
}

func newWriter(arena *object.Arena, ids enumerate.Result, sink diag.Sink) *Writer {
	return &Writer{arena: arena, ids: ids, seen: make(map[object.Handle]bool), sink: sink}
}

// emptyResult is the enumerator result used by helper writers (the
// minifier, object-stream packing) that render a single value in
// isolation and never need ID lookups of their own.
func emptyResult() enumerate.Result {
	return enumerate.Result{Index: map[object.Handle]int{}}
}

// emitChild writes a value found as a dict value or array element: a
// value in the indirect-object list (reached directly or through a
// resolved Ref) becomes "ID 0 R"; an unresolved Ref becomes "(ID GEN
// R)"; anything else, including a resolved Ref whose target is not in
// the list, recurses into emitValue.
func (w *Writer) emitChild(buf *bytes.Buffer, h object.Handle, indent int, minified bool) error {
	n := w.arena.Get(h)
	if n.Kind == object.KindRef {
		if n.Resolved == object.Invalid {
			// Invariant 1: unresolved Ref escapes to a literal string.
			fmt.Fprintf(buf, "(%d %d R)", n.Ref.ID, n.Ref.Gen)
			return nil
		}
		h = n.Resolved
	}
	if id, ok := w.ids.Index[h]; ok {
		fmt.Fprintf(buf, "%d 0 R", id)
		return nil
	}
	return w.emitValue(buf, h, indent, minified)
}

// emitValue writes the node at h in place (never as "ID 0 R" — the
// caller, emitChild, already made that decision).
func (w *Writer) emitValue(buf *bytes.Buffer, h object.Handle, indent int, minified bool) error {
	n := w.arena.Get(h)

	switch n.Kind {
	case object.KindNull:
		buf.WriteString("null")
	case object.KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case object.KindInt:
		if n.Literal != "" {
			buf.WriteString(n.Literal)
		} else {
			fmt.Fprintf(buf, "%d", n.Int)
		}
	case object.KindReal:
		if n.Literal != "" {
			buf.WriteString(n.Literal)
		} else {
			fmt.Fprintf(buf, "%g", n.Real)
		}
	case object.KindName:
		writeEscapedName(buf, n.Bytes)
	case object.KindStringLiteral:
		writeStringLiteral(buf, n.Bytes)
	case object.KindHexString:
		writeHexString(buf, n.Bytes)
	case object.KindArray:
		return w.emitArray(buf, h, n, indent, minified)
	case object.KindDict:
		return w.emitDict(buf, h, n, indent, minified)
	case object.KindStream:
		return diag.New(diag.KindDoubleEmit, -1, "stream value emitted as a direct child; streams must be indirect")
	default:
		return diag.New(diag.KindParseError, -1, "unknown value kind in writer")
	}
	return nil
}

// markSeen enforces the no-double-emit rule (spec.md section 4.G) for
// composite (Dict/Array) nodes, the only kind that could legitimately
// alias if the enumerator failed to promote a shared subgraph.
func (w *Writer) markSeen(h object.Handle) error {
	if w.seen[h] {
		return diag.New(diag.KindDoubleEmit, -1, "same direct value emitted twice in one serialization pass")
	}
	w.seen[h] = true
	return nil
}

func (w *Writer) emitArray(buf *bytes.Buffer, h object.Handle, n *object.Node, indent int, minified bool) error {
	if err := w.markSeen(h); err != nil {
		return err
	}
	if len(n.Array) == 0 {
		buf.WriteString("[ ]")
		return nil
	}
	if minified {
		buf.WriteByte('[')
		for i, c := range n.Array {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if err := w.emitChild(buf, c, indent, true); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	if !hasCompositeElement(w.arena, n.Array) {
		buf.WriteByte('[')
		for i, c := range n.Array {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if err := w.emitChild(buf, c, indent, false); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	buf.WriteString("[\n")
	for _, c := range n.Array {
		writeIndent(buf, indent+1)
		if err := w.emitChild(buf, c, indent+1, false); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent)
	buf.WriteByte(']')
	return nil
}

func hasCompositeElement(arena *object.Arena, items []object.Handle) bool {
	for _, h := range items {
		n := arena.Get(h)
		if n.Kind == object.KindRef {
			continue // refs print as a short "ID 0 R"/literal, never multi-line
		}
		if n.Kind == object.KindArray || n.Kind == object.KindDict || n.Kind == object.KindStream {
			return true
		}
	}
	return false
}

func (w *Writer) emitDict(buf *bytes.Buffer, h object.Handle, n *object.Node, indent int, minified bool) error {
	if err := w.markSeen(h); err != nil {
		return err
	}
	entries := sortedKeys(n.Dict)
	if minified {
		buf.WriteString("<<")
		for _, e := range entries {
			if len(e.Key) > 0 && e.Key[0] == '-' {
				continue
			}
			writeEscapedName(buf, e.Key)
			buf.WriteByte(' ')
			if err := w.emitChild(buf, e.Value, indent, true); err != nil {
				return err
			}
		}
		buf.WriteString(">>")
		return nil
	}

	buf.WriteString("<<\n")
	for _, e := range entries {
		if len(e.Key) > 0 && e.Key[0] == '-' {
			continue
		}
		writeIndent(buf, indent+1)
		writeEscapedName(buf, e.Key)
		buf.WriteByte(' ')
		if err := w.emitChild(buf, e.Value, indent+1, false); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent)
	buf.WriteString(">>")
	return nil
}

func writeIndent(buf *bytes.Buffer, level int) {
	for i := 0; i < level; i++ {
		buf.WriteByte(' ')
		buf.WriteByte(' ')
	}
}

// writeStringLiteral re-escapes decoded string bytes into a balanced
// "(...)" literal: backslash and both parens must always be escaped
// since the stored bytes no longer carry the source's own escaping.
func writeStringLiteral(buf *bytes.Buffer, b []byte) {
	buf.WriteByte('(')
	for _, c := range b {
		switch c {
		case '\\', '(', ')':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}
