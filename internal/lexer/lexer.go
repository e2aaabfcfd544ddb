package lexer

import (
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/features"
)

// twoCharOps lists the operator digraphs the scanner recognizes,
// grounded on b1tok.c's operation-token continuation test (a second
// character continues the token only for <=, >=, <>, <<, >>).
var twoCharOps = map[string]bool{
	"<=": true,
	">=": true,
	"<>": true,
	"<<": true,
	">>": true,
}

func isAlpha(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}
func isSpace(c byte) bool { return c == ' ' || c == '\t' }
func isOperChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '\\', '^', '=', '<', '>', '(', ')', ',', ';', ':':
		return true
	default:
		return false
	}
}
func isTypeSpec(c byte) bool {
	switch c {
	case '%', '!', '#', '$':
		return true
	default:
		return false
	}
}

// Scanner tokenizes a single source line, one call to Next per token,
// the way b1_tok_get scans forward from a caller-supplied offset.
type Scanner struct {
	line string
	pos  int
	cfg  *features.Config
}

// New returns a Scanner positioned at the start of line.
func New(line string, cfg *features.Config) *Scanner {
	return &Scanner{line: line, cfg: cfg}
}

// Pos returns the scanner's current byte offset into the line.
func (s *Scanner) Pos() int { return s.pos }

// SeekTo repositions the scanner, used by the RPN builder and prepass
// to re-tokenize from a remembered offset.
func (s *Scanner) SeekTo(offset int) { s.pos = offset }

func (s *Scanner) skipSpacesAndComment() {
	for s.pos < len(s.line) {
		c := s.line[s.pos]
		if isSpace(c) {
			s.pos++
			continue
		}
		if c == '\'' {
			s.pos = len(s.line)
			return
		}
		break
	}
}

// Next scans and returns the token starting at the scanner's current
// position, advancing past it. At end of line it returns an EOL token
// without error.
func (s *Scanner) Next(allowUnary bool) (Token, error) {
	if s.cfg != nil && s.cfg.MaxProgLine > 0 && len(s.line) > s.cfg.MaxProgLine {
		return Token{}, berr.New(berr.ELinLong, 0, 0, "")
	}

	s.skipSpacesAndComment()
	if s.pos >= len(s.line) {
		return Token{Kind: EOL, Offset: s.pos}, nil
	}

	start := s.pos
	c := s.line[s.pos]

	switch {
	case isAlpha(c):
		return s.scanIdentifier(start)
	case isDigit(c):
		return s.scanNumber(start, false)
	case c == '.' && isFractionalEnabled(s.cfg) && s.pos+1 < len(s.line) && isDigit(s.line[s.pos+1]):
		return s.scanNumber(start, false)
	case c == '"':
		return s.scanString(start)
	case allowUnary && (c == '-' || c == '+') && s.pos+1 < len(s.line) && (isDigit(s.line[s.pos+1]) || (s.line[s.pos+1] == '.' && isFractionalEnabled(s.cfg))):
		s.pos++
		return s.scanNumber(start, true)
	case isOperChar(c):
		return s.scanOperator(start)
	default:
		s.pos++
		return Token{}, berr.New(berr.EInvTok, 0, 0, string(c))
	}
}

func isFractionalEnabled(cfg *features.Config) bool {
	return cfg == nil || cfg.FractionalTypeExists()
}

func (s *Scanner) scanIdentifier(start int) (Token, error) {
	for s.pos < len(s.line) && (isAlpha(s.line[s.pos]) || isDigit(s.line[s.pos])) {
		s.pos++
	}
	var spec TypeSpec
	if s.pos < len(s.line) && isTypeSpec(s.line[s.pos]) {
		spec = TypeSpec(s.line[s.pos])
		s.pos++
	}
	text := s.line[start:s.pos]
	return Token{Kind: Identifier, Offset: start, Length: s.pos - start, Spec: spec, Text: text}, nil
}

func (s *Scanner) scanNumber(start int, signed bool) (Token, error) {
	var flags NumFlags

	if s.cfg == nil || s.cfg.HasHex {
		if s.pos+1 < len(s.line) && s.line[s.pos] == '0' && (s.line[s.pos+1] == 'x' || s.line[s.pos+1] == 'X') {
			if signed {
				// a sign before a hex literal is returned as its own
				// operator token, so it applies as a unary operator.
				s.pos = start + 1
				return Token{Kind: Operation, Offset: start, Length: 1, Text: s.line[start:s.pos]}, nil
			}
			s.pos += 2
			hexStart := s.pos
			for s.pos < len(s.line) && isHexDigit(s.line[s.pos]) {
				s.pos++
			}
			if s.pos == hexStart {
				return Token{}, berr.New(berr.EInvNum, 0, 0, s.line[start:s.pos])
			}
			flags = NumHex
			if s.pos < len(s.line) && s.line[s.pos] == '%' {
				s.pos++
			}
			return Token{Kind: Number, Offset: start, Length: s.pos - start, Num: flags, Text: s.line[start:s.pos]}, nil
		}
	}

	for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
		s.pos++
	}
	flags |= NumDigits

	if isFractionalEnabled(s.cfg) && s.pos < len(s.line) && s.line[s.pos] == '.' {
		flags |= NumFloat
		s.pos++
		for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
			s.pos++
		}
	}

	if isFractionalEnabled(s.cfg) && s.pos < len(s.line) && (s.line[s.pos] == 'E' || s.line[s.pos] == 'e') {
		save := s.pos
		p := s.pos + 1
		if p < len(s.line) && (s.line[p] == '+' || s.line[p] == '-') {
			p++
		}
		if p < len(s.line) && isDigit(s.line[p]) {
			flags |= NumFloat
			s.pos = p
			for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
				s.pos++
			}
		} else {
			s.pos = save
		}
	}

	var spec TypeSpec
	if s.pos < len(s.line) && isTypeSpec(s.line[s.pos]) {
		spec = TypeSpec(s.line[s.pos])
		s.pos++
	}

	_ = signed
	return Token{Kind: Number, Offset: start, Length: s.pos - start, Num: flags, Spec: spec, Text: s.line[start:s.pos]}, nil
}

func (s *Scanner) scanString(start int) (Token, error) {
	s.pos++ // opening quote
	var b strings.Builder
	for {
		if s.pos >= len(s.line) {
			return Token{}, berr.New(berr.EInvTok, 0, 0, "unterminated string")
		}
		c := s.line[s.pos]
		if c == '"' {
			if s.pos+1 < len(s.line) && s.line[s.pos+1] == '"' {
				b.WriteByte('"')
				s.pos += 2
				continue
			}
			s.pos++
			break
		}
		if s.cfg != nil && s.cfg.MaxStringLen > 0 && b.Len() >= s.cfg.MaxStringLen {
			return Token{}, berr.New(berr.EStrLong, 0, 0, "")
		}
		b.WriteByte(c)
		s.pos++
	}
	return Token{Kind: QuotedString, Offset: start, Length: s.pos - start, Text: b.String()}, nil
}

func (s *Scanner) scanOperator(start int) (Token, error) {
	s.pos++
	if s.pos < len(s.line) {
		two := s.line[start:s.pos+1]
		if twoCharOps[two] {
			s.pos++
		}
	}
	return Token{Kind: Operation, Offset: start, Length: s.pos - start, Text: s.line[start:s.pos]}, nil
}
