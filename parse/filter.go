package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/filter"
	"github.com/benedoc-inc/pdftree/object"
)

// applyFilter runs the read-side half of the filter layer (spec.md
// section 4.E) on a freshly-extracted stream body: if the stream's
// Filter names FlateDecode (alone, or as the first element of a
// Filter array), inflate immediately, drop FlateDecode from the
// chain, and mark was-compressed so the writer can choose to
// recompress on output. Any other filter name is left untouched and
// the raw bytes are passed through exactly as the caller extracted
// them.
func (p *parser) applyFilter(dictNode *object.Node, data []byte) ([]byte, object.StreamFlags, error) {
	filterHandle, ok := dictNode.DictGet("Filter")
	if !ok {
		return data, object.StreamFlags{}, nil
	}
	filterNode := p.arena.Get(filterHandle)

	switch filterNode.Kind {
	case object.KindName:
		if !filter.IsFlateDecode(string(filterNode.Bytes)) {
			p.warnPassthrough(string(filterNode.Bytes))
			return data, object.StreamFlags{}, nil
		}
		out, err := filter.FlateDecode(data)
		if err != nil {
			return data, object.StreamFlags{}, diag.Wrap(diag.KindInflateFailure, 0, err, "FlateDecode inflate failed")
		}
		dictNode.DictDelete("Filter")
		return out, object.StreamFlags{WasCompressed: true}, nil

	case object.KindArray:
		if len(filterNode.Array) == 0 {
			return data, object.StreamFlags{}, nil
		}
		first := p.arena.Get(filterNode.Array[0])
		if first.Kind != object.KindName || !filter.IsFlateDecode(string(first.Bytes)) {
			if first.Kind == object.KindName {
				p.warnPassthrough(string(first.Bytes))
			}
			return data, object.StreamFlags{}, nil
		}
		out, err := filter.FlateDecode(data)
		if err != nil {
			return data, object.StreamFlags{}, diag.Wrap(diag.KindInflateFailure, 0, err, "FlateDecode inflate failed")
		}
		rest := filterNode.Array[1:]
		if len(rest) == 0 {
			dictNode.DictDelete("Filter")
		} else {
			dictNode.DictSet("Filter", p.arena.NewArray(rest))
		}
		return out, object.StreamFlags{WasCompressed: true}, nil

	default:
		return data, object.StreamFlags{}, nil
	}
}

func (p *parser) warnPassthrough(name string) {
	if p.passthroughWarned == nil {
		p.passthroughWarned = make(map[string]bool)
	}
	if p.passthroughWarned[name] {
		return
	}
	p.passthroughWarned[name] = true
	p.sink.Warn(diag.Diagnostic{Kind: diag.KindInflateFailure, Offset: -1,
		Message: "filter /" + name + " is not FlateDecode; stream passed through undecoded"})
}
