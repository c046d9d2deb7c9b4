package region

import (
	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/geom"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/unit"
)

// buildTable walks geometry statements in (unit_index, statement_index)
// order, per spec §4.4's "Region build" algorithm, translating relative
// corners against their unit's anchor position and rejecting any id that
// mixes accumulator and defined modes.
func buildTable(geoms []*ast.GeomStmt, units []unit.SourceUnit) (*table, error) {
	anchors := make(map[uint32]geom.Position, len(units))
	for _, u := range units {
		anchors[u.Index] = geom.Position(u.Pos)
	}

	t := newTable()
	for _, g := range geoms {
		id := g.TargetID()
		loc := ierr.Location{UnitIndex: g.Origin.UnitIndex, StatementIndex: g.Origin.StatementIndex}

		switch g.Kind {
		case ast.GeomAccumulatorNamed, ast.GeomAccumulatorAnonymous:
			e := t.getOrCreate(id, g.Kind == ast.GeomAccumulatorAnonymous)
			switch e.mode {
			case modeUnset:
				e.mode = modeAccumulator
				e.definedAt = loc
			case modeDefined:
				return nil, ierr.New(ierr.RegionModeConflict, g.Origin.UnitIndex, g.Origin.StatementIndex,
					"region %q is already a defined region (first defined at unit %d, statement %d); cannot append a box to it",
					id, e.definedAt.UnitIndex, e.definedAt.StatementIndex)
			}

			corner0, corner1 := g.Corners[0], g.Corners[1]
			if g.Mode == ast.Relative {
				anchor := anchors[uint32(g.Origin.UnitIndex)]
				corner0 = anchor.Add(corner0)
				corner1 = anchor.Add(corner1)
			}
			e.boxes = append(e.boxes, geom.Normalize(corner0, corner1))

		case ast.GeomDefinedNamed, ast.GeomDefinedAnonymous:
			e := t.getOrCreate(id, g.Kind == ast.GeomDefinedAnonymous)
			if e.mode != modeUnset {
				return nil, ierr.New(ierr.RegionModeConflict, g.Origin.UnitIndex, g.Origin.StatementIndex,
					"region %q already has a definition (first defined at unit %d, statement %d)",
					id, e.definedAt.UnitIndex, e.definedAt.StatementIndex)
			}
			e.mode = modeDefined
			e.expr = g.Expr
			e.definedAt = loc
		}
	}
	return t, nil
}
