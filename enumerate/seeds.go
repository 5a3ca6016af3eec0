package enumerate

import "github.com/benedoc-inc/pdftree/object"

// rootChildSeedKeys are the Root-relative seeds of spec.md section
// 4.F step 1, in order, excluding OCProperties/OCGs which is handled
// separately (it fans out to an array of seeds, not a single one).
var rootChildSeedKeys = []string{
	"Dests", "Metadata", "Outlines", "Pages", "Threads", "StructTreeRoot",
}

// collectSeeds gathers the fixed-role nodes spec.md section 4.F seeds
// the indirect-object list with, in its stated order, skipping any
// that don't exist.
func collectSeeds(arena *object.Arena, trailer object.Handle) []object.Handle {
	var seeds []object.Handle
	if !arena.Valid(trailer) {
		return seeds
	}
	trailerDict := arena.Get(trailer)

	rootHandle, hasRoot := trailerDict.DictGet("Root")
	root := resolve(arena, rootHandle)
	if hasRoot && arena.Valid(root) {
		seeds = append(seeds, root)
	}

	if infoHandle, ok := trailerDict.DictGet("Info"); ok {
		if info := resolve(arena, infoHandle); arena.Valid(info) {
			seeds = append(seeds, info)
		}
	}

	if !hasRoot || !arena.Valid(root) {
		return seeds
	}
	rootNode := arena.Get(root)
	if rootNode.Kind != object.KindDict {
		return seeds
	}

	for _, key := range rootChildSeedKeys {
		h, ok := rootNode.DictGet(key)
		if !ok {
			continue
		}
		if r := resolve(arena, h); arena.Valid(r) {
			seeds = append(seeds, r)
		}
	}

	if ocpHandle, ok := rootNode.DictGet("OCProperties"); ok {
		ocp := arena.Get(resolve(arena, ocpHandle))
		if ocp.Kind == object.KindDict {
			if ocgsHandle, ok := ocp.DictGet("OCGs"); ok {
				ocgs := arena.Get(resolve(arena, ocgsHandle))
				if ocgs.Kind == object.KindArray {
					for _, c := range ocgs.Array {
						if r := resolve(arena, c); arena.Valid(r) {
							seeds = append(seeds, r)
						}
					}
				}
			}
		}
	}

	return seeds
}
