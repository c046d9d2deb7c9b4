package parse

import (
	"errors"
	"testing"

	"github.com/insignlang/insign/core/ast"
)

func TestParseExprPhase0SingleRegion(t *testing.T) {
	expr, err := ParseExpr("roof", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsLeaf() || expr.RegionRef != "roof" {
		t.Fatalf("got %+v", expr)
	}
}

func TestParseExprPhase0Union(t *testing.T) {
	expr, err := ParseExpr("a + b + c", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpUnion {
		t.Fatalf("expected union at root, got %+v", expr)
	}
	refs := expr.RegionRefs()
	want := []string{"a", "b", "c"}
	if len(refs) != len(want) {
		t.Fatalf("got %v want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("got %v want %v", refs, want)
		}
	}
}

func TestParseExprPhase0Parens(t *testing.T) {
	expr, err := ParseExpr("(a + b)", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpUnion {
		t.Fatalf("got %+v", expr)
	}
}

func TestParseExprPhase0RejectsPhase1Operators(t *testing.T) {
	for _, text := range []string{"a - b", "a & b", "a ^ b"} {
		_, err := ParseExpr(text, false)
		if err == nil {
			t.Fatalf("expected UnknownOperatorError for %q", text)
		}
		var uoe *UnknownOperatorError
		if !errors.As(err, &uoe) {
			t.Fatalf("expected UnknownOperatorError for %q, got %v", text, err)
		}
	}
}

func TestParseExprPhase1Precedence(t *testing.T) {
	// & binds tighter than +, which binds tighter than -, which binds
	// tighter than ^: "a + b & c - d ^ e" parses as
	// ((a + (b & c)) - d) ^ e.
	expr, err := ParseExpr("a + b & c - d ^ e", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpXOR {
		t.Fatalf("expected root XOR, got %+v", expr)
	}
	diff := expr.Left
	if diff.Op != ast.OpDifference {
		t.Fatalf("expected difference under XOR, got %+v", diff)
	}
	union := diff.Left
	if union.Op != ast.OpUnion {
		t.Fatalf("expected union under difference, got %+v", union)
	}
	intersect := union.Right
	if intersect.Op != ast.OpIntersection {
		t.Fatalf("expected intersection on RHS of union, got %+v", intersect)
	}
}

func TestParseExprPhase1LeftAssociative(t *testing.T) {
	expr, err := ParseExpr("a - b - c", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpDifference || expr.Right.RegionRef != "c" {
		t.Fatalf("expected ((a - b) - c), got %+v", expr)
	}
	if expr.Left.Op != ast.OpDifference || expr.Left.Right.RegionRef != "b" {
		t.Fatalf("expected ((a - b) - c), got %+v", expr.Left)
	}
}
