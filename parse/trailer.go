package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/object"
)

// stream-specific keys never copied across the /Prev chain when
// merging trailers (spec.md section 4.C).
var trailerSkipKeys = map[string]bool{
	"Length":      true,
	"Filter":      true,
	"DecodeParms": true,
	"Index":       true,
	"Prev":        true,
	"W":           true,
}

// assembleTrailer picks the active trailer (the one structurally
// nearest the last startxref hint), walks its /Prev chain through the
// other trailers collected during the forward scan, and merges them
// into one dictionary — earlier (more active) wins per key (spec.md
// section 4.C, "Multiple trailers ... merged ... earlier wins").
func (p *parser) assembleTrailer() (object.Handle, error) {
	if len(p.trailers) == 0 {
		return object.Invalid, diag.New(diag.KindTrailerMissing, -1, "no trailer reachable")
	}

	chosen := p.chooseActiveTrailer()
	chain := p.walkPrevChain(chosen)

	var merged []object.DictEntry
	seen := map[string]bool{}
	for _, rec := range chain {
		dictNode := p.arena.Get(rec.dict)
		for _, e := range dictNode.Dict {
			key := string(e.Key)
			if trailerSkipKeys[key] || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, e)
		}
	}

	if !seen["Root"] {
		p.sink.Warn(diag.Diagnostic{Kind: diag.KindTrailerMissing, Offset: -1,
			Message: "merged trailer has no /Root"})
	}

	return p.arena.NewDict(merged), nil
}

// chooseActiveTrailer picks the trailerRecord whose structural offset
// is nearest the last startxref hint seen (conventional readers start
// from the final startxref closest to EOF); with no hints at all, the
// trailer discovered last in the forward scan is used, since in an
// incremental-update file that is the one closest to EOF.
func (p *parser) chooseActiveTrailer() trailerRecord {
	if len(p.startxrefHints) == 0 {
		return p.trailers[len(p.trailers)-1]
	}
	hint := p.startxrefHints[len(p.startxrefHints)-1]
	best := p.trailers[0]
	bestDist := abs(best.offset - hint)
	for _, rec := range p.trailers[1:] {
		d := abs(rec.offset - hint)
		if d < bestDist {
			best, bestDist = rec, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// walkPrevChain follows /Prev from start through the other collected
// trailer records, stopping at a missing link, a /Prev that doesn't
// match any known record, or a repeated offset (cycle guard).
func (p *parser) walkPrevChain(start trailerRecord) []trailerRecord {
	var chain []trailerRecord
	visited := map[int]bool{}
	cur := start
	for {
		if visited[cur.offset] {
			break
		}
		visited[cur.offset] = true
		chain = append(chain, cur)

		dictNode := p.arena.Get(cur.dict)
		prevHandle, ok := dictNode.DictGet("Prev")
		if !ok {
			break
		}
		prevNode := p.arena.Get(prevHandle)
		if prevNode.Kind != object.KindInt {
			break
		}
		next, found := p.findTrailerByOffset(int(prevNode.Int))
		if !found {
			break
		}
		cur = next
	}
	return chain
}

func (p *parser) findTrailerByOffset(offset int) (trailerRecord, bool) {
	for _, rec := range p.trailers {
		if rec.offset == offset {
			return rec, true
		}
	}
	return trailerRecord{}, false
}
