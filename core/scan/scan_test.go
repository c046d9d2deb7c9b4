package scan

import (
	"testing"

	"github.com/insignlang/insign/core/ierr"
)

func texts(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}

func TestSingleStatement(t *testing.T) {
	in := "@rc([0,1,2],[3,4,5])"
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Text != in {
		t.Fatalf("got %+v", got)
	}
}

func TestNewlineIsNotADelimiter(t *testing.T) {
	in := "@dataloop=rc([2,64,2],\n  [12,69,6])\n  + rc([14,64,2],\n  [24,69,6])"
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 statement spanning newlines, got %d: %+v", len(got), got)
	}
}

func TestMultipleStatements(t *testing.T) {
	in := "@rc([0,1,2],[3,4,5])\n#key=\"value\""
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"@rc([0,1,2],[3,4,5])", "#key=\"value\""}
	gotTexts := texts(got)
	for i := range want {
		if gotTexts[i] != want[i] {
			t.Fatalf("got %v want %v", gotTexts, want)
		}
	}
}

func TestAtSignInsideStringIsNotABoundary(t *testing.T) {
	in := `#label="user@host"` + "\n" + `#other=1`
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(got), got)
	}
}

func TestHashInsideBracketsIsNotABoundary(t *testing.T) {
	in := `@x=rc([0,0,0],[1,#1,1])` + "#y=1"
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %+v", got)
	}
}

func TestEscapedQuoteDoesNotEndString(t *testing.T) {
	in := `#label="a\"b"`
	got, err := Split(0, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Text != in {
		t.Fatalf("got %+v", got)
	}
}

func TestUnterminatedStringError(t *testing.T) {
	_, err := Split(0, `#label="unterminated`)
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.UnterminatedString {
		t.Fatalf("expected UnterminatedString, got %v", err)
	}
}

func TestUnterminatedGroupError(t *testing.T) {
	_, err := Split(0, `@x=rc([0,0,0],[1,1,1)`)
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.UnterminatedGroup {
		t.Fatalf("expected UnterminatedGroup, got %v", err)
	}
}

func TestUnexpectedCharacterBeforeFirstStatement(t *testing.T) {
	_, err := Split(0, "garbage @x=rc([0,0,0],[1,1,1])")
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.UnexpectedCharacter {
		t.Fatalf("expected UnexpectedCharacter, got %v", err)
	}
}

func TestBlankUnitProducesNoStatements(t *testing.T) {
	got, err := Split(0, "   \n\t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no statements, got %+v", got)
	}
}

func TestTrailingWhitespaceTrimmed(t *testing.T) {
	got, err := Split(0, "@x=rc([0,0,0],[1,1,1])   \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "@x=rc([0,0,0],[1,1,1])" {
		t.Fatalf("got %+v", got)
	}
}
