// Package object implements the tagged-variant value model that the
// parser builds and the writer serializes (see design note in
// DESIGN.md: "Indirect references with cycles").
//
// Values live in an Arena and are addressed by Handle (an arena
// index), not by Go pointer. This mirrors the teacher's preference for
// flat, explicitly-owned structures (core/parse.PDFDocument,
// core/write.PDFWriter) over deep pointer graphs, and sidesteps
// reference-counted cycle leaks: a page's /Parent back-pointer to its
// page-tree node is just two Handles pointing at each other.
package object

import "fmt"

// Kind tags the variant a Node holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindName
	KindStringLiteral
	KindHexString
	KindArray
	KindDict
	KindStream
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindReal:
		return "Real"
	case KindName:
		return "Name"
	case KindStringLiteral:
		return "StringLiteral"
	case KindHexString:
		return "HexString"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	case KindStream:
		return "Stream"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Handle addresses a Node inside an Arena. The zero Handle (0) is
// never issued by NewX constructors (the arena reserves index 0 as
// Invalid) so a zero-valued Handle field reliably means "unset".
type Handle int

// Invalid is the handle value that no real node ever receives.
const Invalid Handle = 0

// RefID is the lexical form of an indirect reference, "id gen R".
type RefID struct {
	ID  uint32
	Gen uint16
}

// StreamFlags are per-stream hints that control recompression and
// minification on write. They are never serialized into the PDF
// itself (see spec's "-data"/"-compress" side-channel note in
// DESIGN.md: those become fields here instead of dict keys).
type StreamFlags struct {
	WasCompressed       bool
	UserWantsCompress   bool
	UserWantsDecompress bool
	UserWantsMinify     bool
}

// DictEntry is one key/value pair of a Dict node. Dict preserves
// insertion order internally (useful for debugging) even though
// spec.md's Dict says output order is not significant — the writer
// re-sorts at emission time (case-folded lexicographic, see
// sortedKeys in package write).
type DictEntry struct {
	Key   []byte
	Value Handle
}

// Node is one arena slot. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Node struct {
	Kind Kind

	Bool bool

	// Int/Real hold the numeric value; Literal preserves the exact
	// source text so content-stream round-trips stay bit-exact (see
	// spec.md 4.A "Equality ... NOT equal" for why "1.0" and "1" must
	// not collapse into the same literal on write).
	Int     int64
	Real    float64
	Literal string

	// Name, StringLiteral, HexString bytes.
	Bytes []byte

	Array []Handle
	Dict  []DictEntry

	Stream *Stream

	Ref      RefID
	Resolved Handle // KindRef only: patched target, Invalid until resolved
}

// Stream is the payload of a KindStream node. A stream is always an
// indirect object (spec.md invariant 2); Dict is this stream's
// dictionary, stored as its own arena node so dict traversal code
// doesn't need a stream-specific case.
type Stream struct {
	Dict  Handle
	Data  []byte
	Flags StreamFlags
}

// Arena owns every Node reachable from a Document. Index 0 is
// reserved (Invalid); real nodes start at index 1, matching PDF's own
// convention that object number 0 is the free-list head.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena with slot 0 reserved.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)}
}

func (a *Arena) alloc(n Node) Handle {
	a.nodes = append(a.nodes, n)
	return Handle(len(a.nodes) - 1)
}

// Get returns the node at h. Panics on an out-of-range handle; callers
// that accept untrusted handles should check Valid first.
func (a *Arena) Get(h Handle) *Node {
	return &a.nodes[h]
}

// Valid reports whether h addresses a real node in this arena.
func (a *Arena) Valid(h Handle) bool {
	return h > Invalid && int(h) < len(a.nodes)
}

// Len returns the number of live nodes (excluding the reserved slot).
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

func (a *Arena) NewNull() Handle {
	return a.alloc(Node{Kind: KindNull})
}

func (a *Arena) NewBool(v bool) Handle {
	return a.alloc(Node{Kind: KindBool, Bool: v})
}

// NewInt creates an integer node. literal, if non-empty, is the exact
// source text (preserved for round-trip); callers constructing values
// programmatically may pass "" and let the writer format it.
func (a *Arena) NewInt(v int64, literal string) Handle {
	return a.alloc(Node{Kind: KindInt, Int: v, Literal: literal})
}

func (a *Arena) NewReal(v float64, literal string) Handle {
	return a.alloc(Node{Kind: KindReal, Real: v, Literal: literal})
}

// NewName creates a Name node. b is the decoded bytes after the
// leading '/' (hex-escapes already resolved by the caller if the
// document declares PDF >= 1.2; see spec.md 4.C).
func (a *Arena) NewName(b []byte) Handle {
	return a.alloc(Node{Kind: KindName, Bytes: append([]byte(nil), b...)})
}

func (a *Arena) NewStringLiteral(b []byte) Handle {
	return a.alloc(Node{Kind: KindStringLiteral, Bytes: append([]byte(nil), b...)})
}

func (a *Arena) NewHexString(b []byte) Handle {
	return a.alloc(Node{Kind: KindHexString, Bytes: append([]byte(nil), b...)})
}

func (a *Arena) NewArray(items []Handle) Handle {
	return a.alloc(Node{Kind: KindArray, Array: items})
}

func (a *Arena) NewDict(entries []DictEntry) Handle {
	return a.alloc(Node{Kind: KindDict, Dict: entries})
}

// NewStream allocates the stream's dictionary node and the stream
// node together; dictEntries become the stream dict, data is the
// already-decoded payload (post FlateDecode inflate, if applicable).
func (a *Arena) NewStream(dictEntries []DictEntry, data []byte, flags StreamFlags) Handle {
	dh := a.NewDict(dictEntries)
	return a.alloc(Node{Kind: KindStream, Stream: &Stream{Dict: dh, Data: data, Flags: flags}})
}

func (a *Arena) NewRef(id RefID) Handle {
	return a.alloc(Node{Kind: KindRef, Ref: id})
}

// DictGet looks up key in a Dict or Stream-dict node, case-sensitively
// (PDF names are case-sensitive; only the writer's key *ordering* is
// case-folded). Returns Invalid, false if absent or n is not a dict.
func (n *Node) DictGet(key string) (Handle, bool) {
	entries := n.dictEntries()
	for _, e := range entries {
		if string(e.Key) == key {
			return e.Value, true
		}
	}
	return Invalid, false
}

func (n *Node) dictEntries() []DictEntry {
	if n.Kind == KindDict {
		return n.Dict
	}
	return nil
}

// DictSet inserts or replaces key's value. Only valid on KindDict.
func (n *Node) DictSet(key string, v Handle) {
	if n.Kind != KindDict {
		panic(fmt.Sprintf("DictSet on non-dict node (kind %s)", n.Kind))
	}
	for i := range n.Dict {
		if string(n.Dict[i].Key) == key {
			n.Dict[i].Value = v
			return
		}
	}
	n.Dict = append(n.Dict, DictEntry{Key: []byte(key), Value: v})
}

// DictDelete removes key if present.
func (n *Node) DictDelete(key string) {
	for i := range n.Dict {
		if string(n.Dict[i].Key) == key {
			n.Dict = append(n.Dict[:i], n.Dict[i+1:]...)
			return
		}
	}
}

// StreamDict returns the dict node for a KindStream node via the
// owning arena (streams store their dict by handle, not inline).
func (a *Arena) StreamDict(streamHandle Handle) *Node {
	n := a.Get(streamHandle)
	return a.Get(n.Stream.Dict)
}
