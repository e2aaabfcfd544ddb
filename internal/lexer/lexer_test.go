package lexer

import (
	"testing"

	"github.com/basic-1/b1core/internal/features"
)

func scanAll(t *testing.T, line string) []Token {
	t.Helper()
	s := New(line, features.Default())
	var toks []Token
	for {
		tok, err := s.Next(len(toks) == 0 || toks[len(toks)-1].Kind == Operation)
		if err != nil {
			t.Fatalf("scanning %q: %v", line, err)
		}
		if tok.Kind == EOL {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestScanIdentifiers(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedText  string
		expectedKind  Kind
		expectedSpec  TypeSpec
	}{
		{"plain", "X", "X", Identifier, SpecNone},
		{"string suffix", "NAME$", "NAME$", Identifier, SpecString},
		{"integer suffix", "COUNT%", "COUNT%", Identifier, SpecInteger},
		{"mixed case digits", "Ab12", "Ab12", Identifier, SpecNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := scanAll(t, tt.input)
			if len(toks) != 1 {
				t.Fatalf("got %d tokens, want 1", len(toks))
			}
			tok := toks[0]
			if tok.Kind != tt.expectedKind || tok.Text != tt.expectedText || tok.Spec != tt.expectedSpec {
				t.Errorf("got %+v, want kind=%v text=%q spec=%v", tok, tt.expectedKind, tt.expectedText, tt.expectedSpec)
			}
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		flags NumFlags
	}{
		{"123", NumDigits},
		{"3.14", NumDigits | NumFloat},
		{"1E10", NumDigits | NumFloat},
		{"1.5E-3", NumDigits | NumFloat},
		{"0x1F", NumHex},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.input)
		if len(toks) != 1 || toks[0].Kind != Number {
			t.Fatalf("%q: got %+v", tt.input, toks)
		}
		if toks[0].Num != tt.flags {
			t.Errorf("%q: flags = %v, want %v", tt.input, toks[0].Num, tt.flags)
		}
	}
}

func TestScanOperators(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"<=", []string{"<="}},
		{">=", []string{">="}},
		{"<>", []string{"<>"}},
		{"<<", []string{"<<"}},
		{"+-*/", []string{"+", "-", "*", "/"}},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.input)
		if len(toks) != len(tt.want) {
			t.Fatalf("%q: got %d tokens, want %d", tt.input, len(toks), len(tt.want))
		}
		for i, w := range tt.want {
			if toks[i].Text != w {
				t.Errorf("%q: token %d = %q, want %q", tt.input, i, toks[i].Text, w)
			}
		}
	}
}

func TestScanQuotedString(t *testing.T) {
	toks := scanAll(t, `"hello ""world"""`)
	if len(toks) != 1 || toks[0].Kind != QuotedString {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Text != `hello "world"` {
		t.Errorf("got %q", toks[0].Text)
	}
}

func TestUnterminatedString(t *testing.T) {
	s := New(`"abc`, features.Default())
	if _, err := s.Next(false); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestCommentSkipped(t *testing.T) {
	toks := scanAll(t, `X = 1 ' a trailing comment`)
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %+v", len(toks), toks)
	}
}
