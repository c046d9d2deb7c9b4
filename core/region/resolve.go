package region

import (
	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/parse"
	"github.com/insignlang/insign/core/unit"
)

// Options controls feature gating for the resolver's parse phase.
// BooleanOps enables the Phase 1 expression operators (-, &, ^); it is a
// runtime field rather than a Go build tag so a single compiled binary
// can be tested both ways (see DESIGN.md's Open Question resolution).
type Options struct {
	BooleanOps bool
}

// Resolve runs the splitter, parser, and resolver stages (spec §4.2–4.4)
// over every unit and assembles the final Document. It is the single
// entry point core/region exposes; core/scan and core/parse are
// implementation details from the caller's perspective.
func Resolve(units []unit.SourceUnit, opts Options) (*Document, error) {
	var allGeoms []*ast.GeomStmt
	var allMetas []*ast.MetaStmt

	for _, u := range units {
		geoms, metas, err := parse.Unit(int(u.Index), u.Text, opts.BooleanOps)
		if err != nil {
			return nil, err
		}
		allGeoms = append(allGeoms, geoms...)
		allMetas = append(allMetas, metas...)
	}

	t, err := buildTable(allGeoms, units)
	if err != nil {
		return nil, err
	}
	if err := evaluate(t); err != nil {
		return nil, err
	}

	global, wildcards, regionMeta, err := assignMetadata(allMetas)
	if err != nil {
		return nil, err
	}

	return assemble(t, global, wildcards, regionMeta), nil
}
