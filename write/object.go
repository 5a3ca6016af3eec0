package write

import (
	"bytes"
	"fmt"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/filter"
	"github.com/benedoc-inc/pdftree/object"
)

// Policy is the writer's effective, conflict-free document policy —
// the write-package mirror of the root package's resolved Flags
// (spec.md section 6).
type Policy struct {
	Compress         bool
	Decompress       bool
	UseObjectStreams bool
	Version          int
	PreserveBinary   bool
}

// emitIndirectObject writes one complete "id 0 obj ... endobj" block.
func (w *Writer) emitIndirectObject(buf *bytes.Buffer, id int, h object.Handle, policy Policy) error {
	fmt.Fprintf(buf, "%d 0 obj\n", id)
	n := w.arena.Get(h)
	if n.Kind == object.KindStream {
		if err := w.emitStreamBody(buf, n, policy); err != nil {
			return err
		}
	} else {
		if err := w.emitValue(buf, h, 0, false); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("endobj\n")
	return nil
}

// emitStreamBody applies the write-side half of the filter layer
// (spec.md section 4.E) and the minifier (4.I) before emitting a
// stream's dict and raw bytes (4.G): "recompute Length ... optionally
// compress ... Dict is emitted first, then the byte payload."
func (w *Writer) emitStreamBody(buf *bytes.Buffer, n *object.Node, policy Policy) error {
	dictHandle := n.Stream.Dict
	dictNode := w.arena.Get(dictHandle)
	data := n.Stream.Data
	flags := n.Stream.Flags

	if flags.UserWantsMinify {
		minified, err := Minify(data)
		if err != nil {
			return err
		}
		data = minified
	}

	if w.decideCompress(dictNode, flags, policy) {
		out, err := filter.FlateEncode(data)
		if err != nil {
			return diag.Wrap(diag.KindDeflateFailure, -1, err, "FlateDecode deflate failed")
		}
		data = out
		w.prependFlateDecode(dictNode)
	}

	dictNode.DictSet("Length", w.arena.NewInt(int64(len(data)), ""))

	if err := w.emitValue(buf, dictHandle, 0, false); err != nil {
		return err
	}
	buf.WriteString("\nstream\n")
	buf.Write(data)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("endstream\n")
	return nil
}

// decideCompress implements the reversible-round-trip contract from
// spec.md's Stream flags note: an explicit per-stream override always
// wins; a stream still carrying a filter this core never decoded is
// left untouched regardless of document policy (recompressing it
// would double-encode and corrupt it); otherwise the document's
// compress/decompress policy applies, falling back to reproducing
// whatever the stream arrived as.
func (w *Writer) decideCompress(dictNode *object.Node, flags object.StreamFlags, policy Policy) bool {
	if flags.UserWantsCompress {
		return true
	}
	if flags.UserWantsDecompress {
		return false
	}
	if _, hasFilter := dictNode.DictGet("Filter"); hasFilter && !flags.WasCompressed {
		return false
	}
	if policy.Decompress {
		return false
	}
	if policy.Compress {
		return true
	}
	return flags.WasCompressed
}

// prependFlateDecode adds /FlateDecode to the front of a stream
// dict's filter chain, leaving any already-present FlateDecode (or
// other filters following it) alone.
func (w *Writer) prependFlateDecode(dictNode *object.Node) {
	flateName := w.arena.NewName([]byte("FlateDecode"))
	existing, ok := dictNode.DictGet("Filter")
	if !ok {
		dictNode.DictSet("Filter", flateName)
		return
	}
	existingNode := w.arena.Get(existing)
	switch existingNode.Kind {
	case object.KindName:
		if string(existingNode.Bytes) == "FlateDecode" {
			return
		}
		dictNode.DictSet("Filter", w.arena.NewArray([]object.Handle{flateName, existing}))
	case object.KindArray:
		if len(existingNode.Array) > 0 {
			first := w.arena.Get(existingNode.Array[0])
			if first.Kind == object.KindName && string(first.Bytes) == "FlateDecode" {
				return
			}
		}
		items := append([]object.Handle{flateName}, existingNode.Array...)
		dictNode.DictSet("Filter", w.arena.NewArray(items))
	default:
		dictNode.DictSet("Filter", flateName)
	}
}
