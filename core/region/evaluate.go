package region

import (
	"fmt"
	"strings"

	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/geom"
	"github.com/insignlang/insign/core/ierr"
)

// evaluate resolves every region's final box set: accumulator regions are
// canonicalized as-is; defined regions are evaluated in topological order
// over their dependency graph, with a three-color DFS cycle check per
// spec §4.4's recommended algorithm.
func evaluate(t *table) error {
	for _, id := range t.order {
		e := t.entries[id]
		switch e.mode {
		case modeAccumulator:
			if e.resolved == nil {
				e.resolved = geom.Canonicalize(append([]geom.Box(nil), e.boxes...))
			}
		case modeDefined:
			if e.evalState == unvisited {
				if err := evalDefined(t, e, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func evalDefined(t *table, e *entry, stack []string) error {
	e.evalState = visiting
	stack = append(stack, e.id)

	boxes, err := evalExpr(t, e.expr, e.definedAt, stack)
	if err != nil {
		return err
	}
	e.resolved = geom.Canonicalize(boxes)
	e.evalState = done
	return nil
}

func evalExpr(t *table, expr *ast.BooleanExpr, origin ierr.Location, stack []string) ([]geom.Box, error) {
	if expr.IsLeaf() {
		return evalLeaf(t, expr.RegionRef, origin, stack)
	}

	left, err := evalExpr(t, expr.Left, origin, stack)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(t, expr.Right, origin, stack)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case ast.OpUnion:
		return geom.Union(left, right), nil
	case ast.OpDifference:
		return geom.Difference(left, right), nil
	case ast.OpIntersection:
		return geom.Intersection(left, right), nil
	case ast.OpXOR:
		return geom.XOR(left, right), nil
	default:
		return nil, fmt.Errorf("unreachable: unknown boolean op %d", expr.Op)
	}
}

func evalLeaf(t *table, ref string, origin ierr.Location, stack []string) ([]geom.Box, error) {
	re, ok := t.lookup(ref)
	if !ok {
		return nil, ierr.New(ierr.UnknownRegion, origin.UnitIndex, origin.StatementIndex,
			"expression references unknown region %q", ref)
	}

	switch re.mode {
	case modeAccumulator:
		if re.resolved == nil {
			re.resolved = geom.Canonicalize(append([]geom.Box(nil), re.boxes...))
		}
		return re.resolved, nil
	case modeDefined:
		switch re.evalState {
		case visiting:
			return nil, cycleError(t, stack, ref, origin)
		case done:
			return re.resolved, nil
		default:
			if err := evalDefined(t, re, stack); err != nil {
				return nil, err
			}
			return re.resolved, nil
		}
	default:
		return nil, ierr.New(ierr.UnknownRegion, origin.UnitIndex, origin.StatementIndex,
			"expression references unknown region %q", ref)
	}
}

// cycleError reports CyclicDefinition with every region's definition
// location on the cycle, per spec §4.4/§7's multi-origin error policy.
func cycleError(t *table, stack []string, closingRef string, origin ierr.Location) error {
	start := 0
	for i, id := range stack {
		if id == closingRef {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, stack[start:]...), closingRef)

	locs := make([]ierr.Location, 0, len(cycle))
	for _, id := range stack[start:] {
		if e, ok := t.lookup(id); ok {
			locs = append(locs, e.definedAt)
		}
	}
	locs = append(locs, origin)

	return ierr.NewMulti(ierr.CyclicDefinition, locs, "cyclic region definition: %s", strings.Join(cycle, " -> "))
}
