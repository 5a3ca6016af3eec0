package enumerate

import "github.com/benedoc-inc/pdftree/object"

// Rule-table key sets from spec.md section 4.F step 3. The spec notes
// this table "reflects accumulated experience with real PDFs ...
// expect edge cases" — it is applied as a best-effort heuristic, not
// treated as exhaustive.
var alwaysIndirectWhenDict = keySet("AN", "Annotation", "B", "C", "CI", "DocMDP", "F",
	"FontDescriptor", "I", "IX", "K", "Lock", "N", "P", "Pg", "RI", "SE", "SV", "V")

var alwaysIndirect = keySet("Data", "First", "ID", "Last", "Next", "Obj", "Parent",
	"ParentTree", "Popup", "Prev", "Root", "StmOwn", "Threads", "Widths")

var arrayElementsIndirect = keySet("Annots", "B", "C", "CO", "Fields", "K", "Kids", "O",
	"Pages", "TrapRegions")

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// applyRules re-scans the evolving indirect-object list to a fixed
// point, promoting whatever each rule names (spec.md section 4.F step
// 3). Re-scanning a snapshot each round and looping while the list
// keeps growing implements "iteratively... until no new promotion".
func (b *builder) applyRules() {
	for {
		grew := false
		snapshot := append([]object.Handle(nil), b.order...)
		for _, h := range snapshot {
			if b.applyRulesTo(h) {
				grew = true
			}
		}
		if !grew {
			return
		}
	}
}

// applyRulesTo inspects one already-listed node (a Dict, or a Stream
// via its backing dict) and promotes whatever its keys name.
func (b *builder) applyRulesTo(h object.Handle) bool {
	n := b.arena.Get(h)
	var dictNode *object.Node
	switch n.Kind {
	case object.KindDict:
		dictNode = n
	case object.KindStream:
		dictNode = b.arena.Get(n.Stream.Dict)
	default:
		return false
	}

	grew := false
	typeName, _ := dictGetName(b.arena, dictNode, "Type")
	sName, _ := dictGetName(b.arena, dictNode, "S")

	for _, e := range dictNode.Dict {
		key := string(e.Key)
		target := resolve(b.arena, e.Value)
		if !b.arena.Valid(target) {
			continue
		}
		val := b.arena.Get(target)

		switch {
		case alwaysIndirectWhenDict[key] && val.Kind == object.KindDict:
			if b.promote(target) {
				grew = true
			}
		case alwaysIndirect[key]:
			if b.promote(target) {
				grew = true
			}
		case arrayElementsIndirect[key] && val.Kind == object.KindArray:
			for _, c := range val.Array {
				ct := resolve(b.arena, c)
				if b.arena.Valid(ct) && b.arena.Get(ct).Kind == object.KindDict {
					if b.promote(ct) {
						grew = true
					}
				}
			}
		}

		// Rule (d): a Stream, or a Dict that looks like a page-tree
		// node (/Kids) or is a /Filespec or /Font, is indirect no
		// matter which key pointed to it.
		if qualifiesRuleD(b.arena, val) {
			if b.promote(target) {
				grew = true
			}
		}
		if val.Kind == object.KindArray {
			for _, c := range val.Array {
				ct := resolve(b.arena, c)
				if b.arena.Valid(ct) && qualifiesRuleD(b.arena, b.arena.Get(ct)) {
					if b.promote(ct) {
						grew = true
					}
				}
			}
		}
	}

	// Rule (e): {Type: /ExtGState, Font: [dict, ...]} -> first element
	// indirect.
	if typeName == "ExtGState" {
		if fontHandle, ok := dictNode.DictGet("Font"); ok {
			fontArr := b.arena.Get(resolve(b.arena, fontHandle))
			if fontArr.Kind == object.KindArray && len(fontArr.Array) > 0 {
				first := resolve(b.arena, fontArr.Array[0])
				if b.arena.Valid(first) {
					if b.promote(first) {
						grew = true
					}
				}
			}
		}
	}

	// Rule (f): {S: /Thread} -> key D indirect; {S: /Hide} -> key T
	// indirect.
	switch sName {
	case "Thread":
		if dh, ok := dictNode.DictGet("D"); ok {
			if t := resolve(b.arena, dh); b.arena.Valid(t) {
				if b.promote(t) {
					grew = true
				}
			}
		}
	case "Hide":
		if th, ok := dictNode.DictGet("T"); ok {
			if t := resolve(b.arena, th); b.arena.Valid(t) {
				if b.promote(t) {
					grew = true
				}
			}
		}
	}

	return grew
}

func qualifiesRuleD(arena *object.Arena, n *object.Node) bool {
	switch n.Kind {
	case object.KindStream:
		return true
	case object.KindDict:
		if dictHasKey(n, "Kids") {
			return true
		}
		if t, ok := dictGetName(arena, n, "Type"); ok && (t == "Filespec" || t == "Font") {
			return true
		}
	}
	return false
}
