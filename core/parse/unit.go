package parse

import (
	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/scan"
)

// Unit parses one source unit's full statement stream, implementing
// spec §4.3.1's current-region tracking: within a unit, a `#key=value`
// statement with no explicit target attaches to the region most recently
// introduced by a geometry statement in that same unit. The tracked
// state resets at unit boundaries (it is local to this call).
//
// Every returned MetaStmt has a non-nil Target: implicit current-region
// metadata is resolved here into an explicit TargetExact, so core/region
// never needs to re-derive it.
func Unit(unitIdx int, text string, allowPhase1 bool) ([]*ast.GeomStmt, []*ast.MetaStmt, error) {
	stmts, err := scan.Split(unitIdx, text)
	if err != nil {
		return nil, nil, err
	}

	var geoms []*ast.GeomStmt
	var metas []*ast.MetaStmt
	currentRegion := ""
	haveCurrent := false

	for _, stmt := range stmts {
		switch stmt.Text[0] {
		case '@':
			g, err := Geometry(unitIdx, stmt, allowPhase1)
			if err != nil {
				return nil, nil, err
			}
			geoms = append(geoms, g)
			currentRegion = g.TargetID()
			haveCurrent = true
		case '#':
			m, err := Metadata(unitIdx, stmt)
			if err != nil {
				return nil, nil, err
			}
			if m.Target == nil {
				if !haveCurrent {
					return nil, nil, ierr.New(ierr.NoCurrentRegion, unitIdx, stmt.Index,
						"metadata key %q has no explicit target and no geometry statement precedes it in this unit", m.Key)
				}
				m.Target = &ast.MetadataTarget{Kind: ast.TargetExact, Region: currentRegion}
			}
			metas = append(metas, m)
		default:
			return nil, nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "statement must start with '@' or '#'")
		}
	}

	return geoms, metas, nil
}
