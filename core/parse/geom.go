package parse

import (
	"errors"
	"fmt"

	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/geom"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/scan"
)

// Geometry parses a single `@...` statement into an ast.GeomStmt, per
// spec §4.3. allowPhase1 gates the boolean-expression operators.
//
// Grounded on original_source/crates/insign-core/src/parser/geom.rs's
// GeometryParser: try an optional "<id> =" prefix, then rc(/ac(, else
// fall back to an expression (named) or def(...) (anonymous).
func Geometry(unitIdx int, stmt scan.Statement, allowPhase1 bool) (*ast.GeomStmt, error) {
	c := &cursor{s: stmt.Text}
	if !c.consumeByte('@') {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "geometry statement must start with '@'")
	}

	origin := ast.Origin{UnitIndex: unitIdx, StatementIndex: stmt.Index}

	save := c.pos
	id, hasID := c.parseToken("")
	named := false
	if hasID {
		if c.consumeByte('=') {
			named = true
		} else {
			c.pos = save
		}
	}

	if c.consumeStr("rc(") {
		return finishAccumulator(c, origin, id, named, ast.Relative, unitIdx, stmt.Index)
	}
	if c.consumeStr("ac(") {
		return finishAccumulator(c, origin, id, named, ast.Absolute, unitIdx, stmt.Index)
	}

	if named {
		exprText := c.rest()
		expr, err := ParseExpr(exprText, allowPhase1)
		if err != nil {
			return nil, wrapExprErr(err, unitIdx, stmt.Index)
		}
		return &ast.GeomStmt{Origin: origin, Kind: ast.GeomDefinedNamed, RegionID: id, Expr: expr}, nil
	}

	if c.consumeStr("def(") {
		inner, rest, err := splitParenGroup(c.rest())
		if err != nil {
			return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "%s", err.Error())
		}
		if len(stringsTrimSpace(rest)) != 0 {
			return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "unexpected trailing content after def(...): %q", rest)
		}
		expr, err := ParseExpr(inner, allowPhase1)
		if err != nil {
			return nil, wrapExprErr(err, unitIdx, stmt.Index)
		}
		return &ast.GeomStmt{Origin: origin, Kind: ast.GeomDefinedAnonymous, Expr: expr}, nil
	}

	return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index,
		"expected 'rc(...)', 'ac(...)', 'def(...)', or an expression after '@'")
}

func finishAccumulator(c *cursor, origin ast.Origin, id string, named bool, mode ast.CoordMode, unitIdx, stmtIdx int) (*ast.GeomStmt, error) {
	corner1, corner2, err := parseBox(c)
	if err != nil {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "%s", err.Error())
	}
	if !c.consumeByte(')') {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "expected ')' to close rc(...)/ac(...)")
	}
	if rest := stringsTrimSpace(c.rest()); rest != "" {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "unexpected trailing content: %q", rest)
	}
	kind := ast.GeomAccumulatorNamed
	if !named {
		kind = ast.GeomAccumulatorAnonymous
		id = ""
	}
	return &ast.GeomStmt{
		Origin:   origin,
		Kind:     kind,
		RegionID: id,
		Corners:  [2]geom.Position{corner1, corner2},
		Mode:     mode,
	}, nil
}

// parseBox parses `[ int, int, int ] , [ int, int, int ]`.
func parseBox(c *cursor) (geom.Position, geom.Position, error) {
	a, err := parseTriple(c)
	if err != nil {
		return geom.Position{}, geom.Position{}, err
	}
	if !c.consumeByte(',') {
		return geom.Position{}, geom.Position{}, errors.New("expected ',' between box corners")
	}
	b, err := parseTriple(c)
	if err != nil {
		return geom.Position{}, geom.Position{}, err
	}
	return a, b, nil
}

func parseTriple(c *cursor) (geom.Position, error) {
	if !c.consumeByte('[') {
		return geom.Position{}, errors.New("expected '[' to start a coordinate triple")
	}
	var p geom.Position
	for i := 0; i < 3; i++ {
		v, ok := c.parseInt32()
		if !ok {
			return geom.Position{}, fmt.Errorf("expected an integer coordinate component")
		}
		p[i] = v
		if i < 2 && !c.consumeByte(',') {
			return geom.Position{}, errors.New("expected ',' between coordinate components")
		}
	}
	if !c.consumeByte(']') {
		return geom.Position{}, errors.New("expected ']' to close a coordinate triple")
	}
	return p, nil
}

// splitParenGroup consumes s up to (and including) the ')' that matches
// the '(' already consumed by the caller, returning the inner text and
// whatever follows the closing paren.
func splitParenGroup(s string) (inner, rest string, err error) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], nil
			}
		}
	}
	return "", "", errors.New("unterminated '(' group")
}

func wrapExprErr(err error, unitIdx, stmtIdx int) error {
	var uoe *UnknownOperatorError
	if errors.As(err, &uoe) {
		return ierr.New(ierr.UnknownOperator, unitIdx, stmtIdx, "%s", err.Error())
	}
	return ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "invalid expression: %s", err.Error())
}

func stringsTrimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}
