package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/lexer"
	"github.com/benedoc-inc/pdftree/object"
)

// expandObjectStream unpacks a /ObjStm stream's N packed objects into
// the indirect-object table (spec.md section 4.C "Object streams").
// The first First bytes of the (already-inflated) stream data hold N
// whitespace-separated (ID OFF) integer pairs; each OFF locates an
// object body relative to First. Object-stream members always carry
// generation 0.
//
// /Extends chains to a stream this one builds on, per spec, for
// "prioritized object lookup" — since both streams are expanded in
// file order as the top-level scan reaches them, and expansion simply
// assigns into the flat p.objects map, a later (extending) stream's
// entries naturally take priority over an earlier extended one
// without extra bookkeeping. seenObjStm only guards against expanding
// the same stream id twice (a malformed/cyclic Extends chain).
func (p *parser) expandObjectStream(id object.RefID, streamHandle object.Handle) error {
	if p.seenObjStm[id] {
		p.sink.Warn(diag.Diagnostic{Kind: diag.KindParseError, Offset: -1,
			Message: "object stream revisited; possible /Extends cycle, skipping"})
		return nil
	}
	p.seenObjStm[id] = true

	streamNode := p.arena.Get(streamHandle)
	dictNode := p.arena.Get(streamNode.Stream.Dict)

	n, ok := p.dictInt(dictNode, "N")
	if !ok {
		return diag.New(diag.KindParseError, -1, "/ObjStm missing /N")
	}
	first, ok := p.dictInt(dictNode, "First")
	if !ok {
		return diag.New(diag.KindParseError, -1, "/ObjStm missing /First")
	}

	data := streamNode.Stream.Data
	if first < 0 || int(first) > len(data) {
		return diag.New(diag.KindParseError, -1, "/ObjStm /First out of range")
	}

	headerLex := lexer.New(data[:first])
	type pair struct{ id, off int64 }
	pairs := make([]pair, 0, n)
	for i := int64(0); i < n; i++ {
		idTok, err := headerLex.Next()
		if err != nil || idTok.Kind != lexer.Int {
			return diag.New(diag.KindParseError, -1, "malformed object-stream header")
		}
		offTok, err := headerLex.Next()
		if err != nil || offTok.Kind != lexer.Int {
			return diag.New(diag.KindParseError, -1, "malformed object-stream header")
		}
		pairs = append(pairs, pair{idTok.IntVal, offTok.IntVal})
	}

	savedLex := p.lex
	bodyLex := lexer.New(data)
	bodyLex.HexEscapeNames = savedLex.HexEscapeNames
	p.lex = bodyLex
	for _, pr := range pairs {
		pos := int(first + pr.off)
		if pos < 0 || pos > len(data) {
			p.sink.Warn(diag.Diagnostic{Kind: diag.KindParseError, Offset: -1,
				Message: "object-stream member offset out of range"})
			continue
		}
		p.lex.SeekTo(pos)
		val, err := p.parseValue()
		if err != nil {
			p.lex = savedLex
			return err
		}
		p.objects[object.RefID{ID: uint32(pr.id), Gen: 0}] = val
	}
	p.lex = savedLex

	return nil
}

func (p *parser) dictInt(n *object.Node, key string) (int64, bool) {
	h, ok := n.DictGet(key)
	if !ok {
		return 0, false
	}
	v := p.arena.Get(h)
	if v.Kind != object.KindInt {
		return 0, false
	}
	return v.Int, true
}
