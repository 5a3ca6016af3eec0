package pdftree

import (
	"fmt"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/object"
	"github.com/benedoc-inc/pdftree/parse"
	"github.com/benedoc-inc/pdftree/write"
)

// Document is the parsed value tree plus the document-level facts
// needed to round-trip it (spec.md section 3: "a typed Document
// record that owns the trailer dict and the arena").
type Document struct {
	Arena           *object.Arena
	Trailer         object.Handle
	Version         int
	BinarySignature []byte
}

// Parse implements spec.md section 6's `parse(bytes, flags) → Document
// | Error`.
func Parse(buf []byte, flags Flags) (*Document, error) {
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	r := flags.resolve()
	doc, err := parse.Parse(buf, parse.Options{Sink: flags.sink()})
	if err != nil {
		return nil, err
	}
	out := &Document{Arena: doc.Arena, Trailer: doc.Trailer, Version: doc.Version, BinarySignature: doc.BinarySignature}
	if !r.noValidate {
		if err := validateDocument(out, r.validateStrict, flags.sink()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Serialize implements spec.md section 6's `serialize(document, flags,
// optional-timestamp) → bytes | Error`. epochSeconds is the caller's
// current time (the core never samples the clock itself, per spec.md
// section 9); zero suppresses any Info/CreationDate or ModDate update.
func Serialize(doc *Document, flags Flags, epochSeconds int64) ([]byte, error) {
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	r := flags.resolve()

	if r.minify {
		markMinifiableStreams(doc.Arena, doc.Trailer)
	}
	applyTimestamps(doc.Arena, doc.Trailer, epochSeconds)

	sig := doc.BinarySignature
	if !r.preserveBinary {
		sig = nil
	}

	policy := write.Policy{
		Compress:         r.compress,
		Decompress:       r.decompress,
		UseObjectStreams: r.useObjectStreams,
		Version:          r.version,
		PreserveBinary:   r.preserveBinary,
	}
	return write.Serialize(doc.Arena, doc.Trailer, policy, sig, flags.sink())
}

// validateDocument checks the page-tree/catalog invariants spec.md
// section 7 names ("ValidationError ... warn by default; fatal if
// `validate` flag set; some invariants (wrong Count) are auto-repaired
// with warning"). A wrong /Count is always repaired in place; with
// strict set, any violation is additionally returned as a fatal error.
func validateDocument(doc *Document, strict bool, sink diag.Sink) error {
	var firstViolation string
	report := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		if firstViolation == "" {
			firstViolation = msg
		}
		sink.Warn(diag.Diagnostic{Kind: diag.KindValidationError, Message: msg, Offset: -1})
	}

	arena := doc.Arena
	trailerNode := arena.Get(doc.Trailer)
	rootHandle, hasRoot := trailerNode.DictGet("Root")
	switch {
	case !hasRoot:
		report("trailer has no /Root")
	default:
		root := arena.Get(resolveHandle(arena, rootHandle))
		pagesHandle, hasPages := root.DictGet("Pages")
		if !hasPages {
			report("catalog has no /Pages")
			break
		}
		pages := arena.Get(resolveHandle(arena, pagesHandle))
		declared, _ := dictInt(arena, pages, "Count")
		actual := countLeafPages(arena, pagesHandle, make(map[object.Handle]bool))
		if declared != int64(actual) {
			report("page tree /Count is %d, actual leaf count is %d; repairing", declared, actual)
			pages.DictSet("Count", arena.NewInt(int64(actual), ""))
		}
	}

	if strict && firstViolation != "" {
		return newError(KindValidationError, -1, "%s", firstViolation)
	}
	return nil
}

func countLeafPages(arena *object.Arena, h object.Handle, seen map[object.Handle]bool) int {
	h = resolveHandle(arena, h)
	if !arena.Valid(h) || seen[h] {
		return 0
	}
	seen[h] = true
	n := arena.Get(h)
	typeName, _ := dictGetName(arena, n, "Type")
	if typeName == "Page" {
		return 1
	}
	kidsHandle, ok := n.DictGet("Kids")
	if !ok {
		return 0
	}
	kids := arena.Get(resolveHandle(arena, kidsHandle))
	total := 0
	for _, c := range kids.Array {
		total += countLeafPages(arena, c, seen)
	}
	return total
}

// markMinifiableStreams flags every page's /Contents stream and every
// Form XObject stream reachable from the page tree as minify-eligible
// (spec.md section 4.I applies per "content stream"; the document's
// page tree is the only place those live).
func markMinifiableStreams(arena *object.Arena, trailer object.Handle) {
	trailerNode := arena.Get(trailer)
	rootHandle, ok := trailerNode.DictGet("Root")
	if !ok {
		return
	}
	root := arena.Get(resolveHandle(arena, rootHandle))
	pagesHandle, ok := root.DictGet("Pages")
	if !ok {
		return
	}
	walkPages(arena, pagesHandle, make(map[object.Handle]bool))
}

func walkPages(arena *object.Arena, h object.Handle, seen map[object.Handle]bool) {
	h = resolveHandle(arena, h)
	if !arena.Valid(h) || seen[h] {
		return
	}
	seen[h] = true
	n := arena.Get(h)
	typeName, _ := dictGetName(arena, n, "Type")
	if typeName == "Page" {
		if ch, ok := n.DictGet("Contents"); ok {
			markContentsMinify(arena, ch)
		}
		if rh, ok := n.DictGet("Resources"); ok {
			markXObjectForms(arena, rh, make(map[object.Handle]bool))
		}
		return
	}
	kidsHandle, ok := n.DictGet("Kids")
	if !ok {
		return
	}
	kids := arena.Get(resolveHandle(arena, kidsHandle))
	for _, c := range kids.Array {
		walkPages(arena, c, seen)
	}
}

func markContentsMinify(arena *object.Arena, h object.Handle) {
	resolved := resolveHandle(arena, h)
	if !arena.Valid(resolved) {
		return
	}
	n := arena.Get(resolved)
	switch n.Kind {
	case object.KindStream:
		n.Stream.Flags.UserWantsMinify = true
	case object.KindArray:
		for _, c := range n.Array {
			markContentsMinify(arena, c)
		}
	}
}

func markXObjectForms(arena *object.Arena, resourcesHandle object.Handle, seen map[object.Handle]bool) {
	resolved := resolveHandle(arena, resourcesHandle)
	if !arena.Valid(resolved) || seen[resolved] {
		return
	}
	seen[resolved] = true
	resources := arena.Get(resolved)
	xobjHandle, ok := resources.DictGet("XObject")
	if !ok {
		return
	}
	xobj := arena.Get(resolveHandle(arena, xobjHandle))
	for _, e := range xobj.Dict {
		formHandle := resolveHandle(arena, e.Value)
		if !arena.Valid(formHandle) {
			continue
		}
		form := arena.Get(formHandle)
		if form.Kind != object.KindStream {
			continue
		}
		subtype, _ := dictGetName(arena, arena.Get(form.Stream.Dict), "Subtype")
		if subtype != "Form" {
			continue
		}
		form.Stream.Flags.UserWantsMinify = true
		if rh, ok := arena.Get(form.Stream.Dict).DictGet("Resources"); ok {
			markXObjectForms(arena, rh, seen)
		}
	}
}

// applyTimestamps sets Info/CreationDate (if absent) and Info/ModDate
// from epochSeconds (spec.md section 6, "Timestamps"); zero suppresses
// the update entirely.
func applyTimestamps(arena *object.Arena, trailer object.Handle, epochSeconds int64) {
	ts, ok := FormatTimestamp(epochSeconds)
	if !ok {
		return
	}
	trailerNode := arena.Get(trailer)
	infoHandle, hasInfo := trailerNode.DictGet("Info")
	var info *object.Node
	if hasInfo {
		resolved := resolveHandle(arena, infoHandle)
		if arena.Valid(resolved) {
			info = arena.Get(resolved)
		}
	}
	if info == nil {
		newInfo := arena.NewDict(nil)
		trailerNode.DictSet("Info", newInfo)
		info = arena.Get(newInfo)
	}
	if _, has := info.DictGet("CreationDate"); !has {
		info.DictSet("CreationDate", arena.NewStringLiteral([]byte(ts)))
	}
	info.DictSet("ModDate", arena.NewStringLiteral([]byte(ts)))
}

func resolveHandle(arena *object.Arena, h object.Handle) object.Handle {
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
	v := arena.Get(resolveHandle(arena, h))
	if v.Kind != object.KindName {
		return "", false
	}
	return string(v.Bytes), true
}

func dictInt(arena *object.Arena, n *object.Node, key string) (int64, bool) {
	h, ok := n.DictGet(key)
	if !ok {
		return 0, false
	}
	v := arena.Get(resolveHandle(arena, h))
	if v.Kind != object.KindInt {
		return 0, false
	}
	return v.Int, true
}
