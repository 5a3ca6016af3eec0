package write

import (
	"bytes"
	"fmt"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/enumerate"
	"github.com/benedoc-inc/pdftree/object"
)

// xrefStreamSkipKeys are trailer-only keys that don't belong copied
// onto the synthesized cross-reference stream's own dict (spec.md
// section 4.H: the stream supplies Size/Index/W/Type itself; Length
// and Filter are recomputed like any other stream).
var xrefStreamSkipKeys = map[string]bool{
	"Length": true, "Filter": true, "DecodeParms": true,
	"Index": true, "Prev": true, "W": true, "Type": true, "Size": true,
}

const (
	objStmObjectCap  = 65535
	objStmBodyCapMiB = 1 << 20
)

// WriteClassic assembles the H1 output: header, each indirect object
// in enumerator order, a classic xref table, and a trailer dict
// (spec.md section 4.H "Classic xref table").
func WriteClassic(w *Writer, header []byte, policy Policy, trailerDict object.Handle) ([]byte, error) {
	order := w.ids.Order
	buf := bytes.NewBuffer(nil)
	buf.Write(header)

	offsets := make([]int, len(order)+1)
	for i, h := range order {
		offsets[i+1] = buf.Len()
		if err := w.emitIndirectObject(buf, i+1, h, policy); err != nil {
			return nil, err
		}
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(order)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(order); i++ {
		fmt.Fprintf(buf, "%010d 00000 n \n", offsets[i])
	}

	trailerNode := w.arena.Get(trailerDict)
	trailerNode.DictSet("Size", w.arena.NewInt(int64(len(order)+1), ""))

	buf.WriteString("trailer\n")
	if err := w.emitValue(buf, trailerDict, 0, false); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes(), nil
}

// objStmGroup is one in-progress (then finalized) object-stream body
// being packed, per spec.md section 4.H "H2" packing rule.
type objStmGroup struct {
	members []object.Handle
	ids     []int
	offsets []int // byte offset of each member within body
	header  bytes.Buffer
	body    bytes.Buffer
}

// WriteXRefStream assembles the H2 output: packs eligible non-stream
// objects into object streams, emits the remaining objects directly,
// then emits a cross-reference stream whose dict carries the former
// trailer's keys (spec.md section 4.H "Cross-reference stream with
// object streams").
func WriteXRefStream(w *Writer, header []byte, policy Policy, trailerDict object.Handle) ([]byte, error) {
	order := w.ids.Order
	encryptHandle := resolveTrailerKey(w.arena, trailerDict, "Encrypt")

	packed := make(map[object.Handle]bool, len(order))
	var groups []*objStmGroup
	cur := &objStmGroup{}

	flushGroup := func() {
		if len(cur.members) > 0 {
			groups = append(groups, cur)
		}
		cur = &objStmGroup{}
	}

	for i, h := range order {
		n := w.arena.Get(h)
		if n.Kind == object.KindStream || (encryptHandle != object.Invalid && h == encryptHandle) {
			continue
		}
		rendered, err := renderMinifiedValue(w.arena, w.ids, h)
		if err != nil {
			return nil, err
		}
		id := i + 1
		pairText := fmt.Sprintf("%d %d ", id, cur.body.Len())
		projected := cur.header.Len() + len(pairText) + cur.body.Len() + len(rendered) + 2
		if len(cur.members) > 0 && (len(cur.members) >= objStmObjectCap || projected > objStmBodyCapMiB) {
			flushGroup()
			pairText = fmt.Sprintf("%d %d ", id, cur.body.Len())
		}
		cur.header.WriteString(pairText)
		cur.offsets = append(cur.offsets, cur.body.Len())
		cur.body.Write(rendered)
		cur.ids = append(cur.ids, id)
		cur.members = append(cur.members, h)
		packed[h] = true
	}
	flushGroup()

	buf := bytes.NewBuffer(nil)
	buf.Write(header)

	nextID := len(order) + 1
	entryOffset := make(map[int]int) // object id -> byte offset, for type-1 entries
	objstmIDOf := make(map[object.Handle]int)
	indexInObjstm := make(map[object.Handle]int)

	for _, g := range groups {
		gid := nextID
		nextID++
		for i, m := range g.members {
			objstmIDOf[m] = gid
			indexInObjstm[m] = i
		}
	}

	for i, h := range order {
		id := i + 1
		if packed[h] {
			continue
		}
		entryOffset[id] = buf.Len()
		if err := w.emitIndirectObject(buf, id, h, policy); err != nil {
			return nil, err
		}
	}

	objstmID := len(order) + 1
	for _, g := range groups {
		data := append(append([]byte(nil), g.header.Bytes()...), g.body.Bytes()...)
		dictEntries := []object.DictEntry{
			{Key: []byte("Type"), Value: w.arena.NewName([]byte("ObjStm"))},
			{Key: []byte("N"), Value: w.arena.NewInt(int64(len(g.members)), "")},
			{Key: []byte("First"), Value: w.arena.NewInt(int64(g.header.Len()), "")},
		}
		sh := w.arena.NewStream(dictEntries, data, object.StreamFlags{})
		entryOffset[objstmID] = buf.Len()
		if err := w.emitIndirectObject(buf, objstmID, sh, policy); err != nil {
			return nil, err
		}
		objstmID++
	}

	finalN := nextID // id of the cross-reference stream itself
	entries := make([]xrefEntry, finalN+1)
	entries[0] = xrefEntry{kind: 0, b: 65535}
	for i, h := range order {
		id := i + 1
		if packed[h] {
			entries[id] = xrefEntry{kind: 2, a: uint64(objstmIDOf[h]), b: uint64(indexInObjstm[h])}
		} else {
			entries[id] = xrefEntry{kind: 1, a: uint64(entryOffset[id])}
		}
	}
	for id := len(order) + 1; id < finalN; id++ {
		entries[id] = xrefEntry{kind: 1, a: uint64(entryOffset[id])}
	}

	xrefOffset := buf.Len()
	entries[finalN] = xrefEntry{kind: 1, a: uint64(xrefOffset)}

	var entryData bytes.Buffer
	for _, e := range entries {
		entryData.WriteByte(e.kind)
		writeBE(&entryData, e.a, 4)
		writeBE(&entryData, e.b, 2)
	}

	trailerNode := w.arena.Get(trailerDict)
	var xrefDictEntries []object.DictEntry
	for _, e := range trailerNode.Dict {
		if xrefStreamSkipKeys[string(e.Key)] {
			continue
		}
		xrefDictEntries = append(xrefDictEntries, e)
	}
	xrefDictEntries = append(xrefDictEntries,
		object.DictEntry{Key: []byte("Type"), Value: w.arena.NewName([]byte("XRef"))},
		object.DictEntry{Key: []byte("Size"), Value: w.arena.NewInt(int64(finalN+1), "")},
		object.DictEntry{Key: []byte("W"), Value: w.arena.NewArray([]object.Handle{
			w.arena.NewInt(1, ""), w.arena.NewInt(4, ""), w.arena.NewInt(2, ""),
		})},
		object.DictEntry{Key: []byte("Index"), Value: w.arena.NewArray([]object.Handle{
			w.arena.NewInt(0, ""), w.arena.NewInt(int64(finalN+1), ""),
		})},
	)
	xrefStream := w.arena.NewStream(xrefDictEntries, entryData.Bytes(), object.StreamFlags{UserWantsCompress: true})
	if err := w.emitIndirectObject(buf, finalN, xrefStream, policy); err != nil {
		return nil, err
	}

	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes(), nil
}

type xrefEntry struct {
	kind byte
	a, b uint64
}

func writeBE(buf *bytes.Buffer, v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		buf.WriteByte(byte(v >> (8 * uint(i))))
	}
}

func resolveTrailerKey(arena *object.Arena, dictHandle object.Handle, key string) object.Handle {
	n := arena.Get(dictHandle)
	h, ok := n.DictGet(key)
	if !ok {
		return object.Invalid
	}
	for i := 0; i < 64 && arena.Valid(h); i++ {
		v := arena.Get(h)
		if v.Kind != object.KindRef {
			return h
		}
		if v.Resolved == object.Invalid {
			return object.Invalid
		}
		h = v.Resolved
	}
	return h
}

// renderMinifiedValue renders h's direct minified form for packing
// into an object-stream body — the same representation emitDict/
// emitArray/emitValue use for ordinary direct children, without the
// no-double-emit tracking a full Writer pass would apply (each packed
// object is rendered exactly once, by construction).
func renderMinifiedValue(arena *object.Arena, ids enumerate.Result, h object.Handle) ([]byte, error) {
	w := &Writer{arena: arena, ids: ids, seen: make(map[object.Handle]bool), sink: diag.Discard{}}
	var buf bytes.Buffer
	if err := w.emitValue(&buf, h, 0, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
