package rpn

import (
	"testing"

	"github.com/basic-1/b1core/internal/lexer"
)

func lit(text string) lexer.Token {
	return lexer.Token{Kind: lexer.Number, Text: text}
}

// TestPrecedence models "2 + 3 * 4" and expects RPN "2 3 4 * +".
func TestPrecedence(t *testing.T) {
	b := NewBuilder(7)
	b.PushLiteral(lit("2"))
	if err := b.PushBinary("+"); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("3"))
	if err := b.PushBinary("*"); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("4"))
	expr, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2", "3", "4", "*", "+"}
	if len(expr.Records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(expr.Records), len(want), expr.Records)
	}
	for i, r := range expr.Records {
		got := r.NumText
		if got == "" {
			got = r.Op
		}
		if got != want[i] {
			t.Errorf("record %d = %q, want %q", i, got, want[i])
		}
	}
}

// "2 ^ 3 ^ 2" is right-associative: RPN "2 3 2 ^ ^".
func TestRightAssociativePower(t *testing.T) {
	b := NewBuilder(7)
	b.PushLiteral(lit("2"))
	if err := b.PushBinary("^"); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("3"))
	if err := b.PushBinary("^"); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("2"))
	expr, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2", "3", "2", "^", "^"}
	for i, r := range expr.Records {
		got := r.NumText
		if got == "" {
			got = r.Op
		}
		if got != want[i] {
			t.Errorf("record %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestFunctionCallArgCount(t *testing.T) {
	b := NewBuilder(7)
	if err := b.OpenCall("MID$"); err != nil {
		t.Fatal(err)
	}
	b.PushVariable("A$")
	if err := b.Comma(); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("1"))
	if err := b.Comma(); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("3"))
	if err := b.CloseParen(); err != nil {
		t.Fatal(err)
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	last := expr.Records[len(expr.Records)-1]
	if last.Kind != OpCall || last.Name != "MID$" || last.ArgC != 3 {
		t.Errorf("got %+v", last)
	}
}

func TestUnclosedBracket(t *testing.T) {
	b := NewBuilder(7)
	if err := b.OpenParen(); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("1"))
	if _, err := b.Finish(); err == nil {
		t.Fatal("expected EMissBrack for unclosed paren")
	}
}

func TestUnmatchedCloseParen(t *testing.T) {
	b := NewBuilder(7)
	b.PushLiteral(lit("1"))
	if err := b.CloseParen(); err == nil {
		t.Fatal("expected EUnbrack for unmatched close paren")
	}
}

func TestTooManyArgs(t *testing.T) {
	b := NewBuilder(2)
	if err := b.OpenCall("F"); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("1"))
	if err := b.Comma(); err != nil {
		t.Fatal(err)
	}
	b.PushLiteral(lit("2"))
	if err := b.Comma(); err == nil {
		t.Fatal("expected EWrArgCnt exceeding max argument count")
	}
}
