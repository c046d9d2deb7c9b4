// This file implements the defined-region boolean expression grammar
// (spec §4.3 "Expression grammar") with github.com/alecthomas/participle/v2,
// the same library and lexer.SimpleRule pattern the teacher uses in
// core/ir/ref.go for its OSIS reference grammar.
//
// Phase 0 (always available): expr := term ("+" term)*, term := region-id
// | "(" expr ")". Phase 1 (gated behind Options.BooleanOps, see
// SPEC_FULL.md §4 and DESIGN.md's Open Question resolution) adds "-",
// "&", "^" with precedence & > + > - > ^, all left-associative.
package parse

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/insignlang/insign/core/ast"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z0-9_.]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type phase0Term struct {
	Region *string     `@Ident`
	Sub    *phase0Expr `| "(" @@ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type phase0Expr struct {
	Left *phase0Term   `@@`
	Rest []*phase0Term `("+" @@)*`
}

var phase0Parser = participle.MustBuild[phase0Expr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

var exprLexerPhase1 = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z0-9_.]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},
	{Name: "Amp", Pattern: `&`},
	{Name: "Caret", Pattern: `\^`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type phase1Term struct {
	Region *string     `@Ident`
	Sub    *phase1XOR  `| "(" @@ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type phase1Intersect struct {
	Left *phase1Term   `@@`
	Rest []*phase1Term `("&" @@)*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type phase1Union struct {
	Left *phase1Intersect   `@@`
	Rest []*phase1Intersect `("+" @@)*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type phase1Diff struct {
	Left *phase1Union   `@@`
	Rest []*phase1Union `("-" @@)*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type phase1XOR struct {
	Left *phase1Diff   `@@`
	Rest []*phase1Diff `("^" @@)*`
}

var phase1Parser = participle.MustBuild[phase1XOR](
	participle.Lexer(exprLexerPhase1),
	participle.Elide("Whitespace"),
)

// UnknownOperatorError reports a Phase-1 operator used with Phase 1
// disabled.
type UnknownOperatorError struct {
	Op byte
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("operator %q requires boolean-ops support, which is disabled", string(e.Op))
}

// ParseExpr parses a defined-region boolean expression. allowPhase1
// selects the grammar; when false, any occurrence of -, &, or ^ in text
// is reported as *UnknownOperatorError before the Phase 0 grammar even
// runs, per spec §8's Phase-0-closure property.
func ParseExpr(text string, allowPhase1 bool) (*ast.BooleanExpr, error) {
	if !allowPhase1 {
		if i := strings.IndexAny(text, "-&^"); i >= 0 {
			return nil, &UnknownOperatorError{Op: text[i]}
		}
		parsed, err := phase0Parser.ParseString("", text)
		if err != nil {
			return nil, err
		}
		return foldPhase0(parsed), nil
	}
	parsed, err := phase1Parser.ParseString("", text)
	if err != nil {
		return nil, err
	}
	return foldPhase1XOR(parsed), nil
}

func foldPhase0(e *phase0Expr) *ast.BooleanExpr {
	left := foldPhase0Term(e.Left)
	for _, r := range e.Rest {
		left = &ast.BooleanExpr{Op: ast.OpUnion, Left: left, Right: foldPhase0Term(r)}
	}
	return left
}

func foldPhase0Term(t *phase0Term) *ast.BooleanExpr {
	if t.Region != nil {
		return &ast.BooleanExpr{RegionRef: *t.Region}
	}
	return foldPhase0(t.Sub)
}

func foldPhase1XOR(e *phase1XOR) *ast.BooleanExpr {
	left := foldPhase1Diff(e.Left)
	for _, r := range e.Rest {
		left = &ast.BooleanExpr{Op: ast.OpXOR, Left: left, Right: foldPhase1Diff(r)}
	}
	return left
}

func foldPhase1Diff(e *phase1Diff) *ast.BooleanExpr {
	left := foldPhase1Union(e.Left)
	for _, r := range e.Rest {
		left = &ast.BooleanExpr{Op: ast.OpDifference, Left: left, Right: foldPhase1Union(r)}
	}
	return left
}

func foldPhase1Union(e *phase1Union) *ast.BooleanExpr {
	left := foldPhase1Intersect(e.Left)
	for _, r := range e.Rest {
		left = &ast.BooleanExpr{Op: ast.OpUnion, Left: left, Right: foldPhase1Intersect(r)}
	}
	return left
}

func foldPhase1Intersect(e *phase1Intersect) *ast.BooleanExpr {
	left := foldPhase1Term(e.Left)
	for _, r := range e.Rest {
		left = &ast.BooleanExpr{Op: ast.OpIntersection, Left: left, Right: foldPhase1Term(r)}
	}
	return left
}

func foldPhase1Term(t *phase1Term) *ast.BooleanExpr {
	if t.Region != nil {
		return &ast.BooleanExpr{RegionRef: *t.Region}
	}
	return foldPhase1XOR(t.Sub)
}
