package interp

import (
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/lexer"
	"github.com/basic-1/b1core/internal/rpn"
)

// parseExpr reads tokens from s via the shunting-yard builder until it
// hits EOL, a statement separator (':'), a comma, or an identifier
// naming one of stopWords (case-insensitive), leaving the scanner
// positioned at the stopping token. It implements the subset of
// b1rpn.c's b1_rpn_build driving loop this interpreter needs: operand
// expected / operator expected state alternation, open-paren vs.
// function-call-paren disambiguation by what precedes "(".
func parseExpr(s *lexer.Scanner, cfg *features.Config, stopWords map[string]bool) (*rpn.Expr, int, error) {
	b := rpn.NewBuilder(cfg.MaxFnArgs)
	expectOperand := true
	depth := 0
	lastWasIdent := false

	for {
		savedPos := s.Pos()
		tok, err := s.Next(expectOperand)
		if err != nil {
			return nil, s.Pos(), err
		}
		switch tok.Kind {
		case lexer.EOL:
			expr, err := b.Finish()
			return expr, s.Pos(), err

		case lexer.Identifier:
			upper := strings.ToUpper(tok.Text)
			if !expectOperand && isBinaryKeyword(upper) {
				if err := b.PushBinary(upper); err != nil {
					return nil, s.Pos(), err
				}
				expectOperand = true
				continue
			}
			if expectOperand && depth == 0 && stopWords[upper] {
				s.SeekTo(savedPos)
				expr, err := b.Finish()
				return expr, s.Pos(), err
			}
			if isUnaryKeyword(upper) && expectOperand {
				b.PushUnary("NOT")
				continue
			}
			// peek ahead: identifier followed immediately by '(' is a
			// call or subscript.
			if peekIsOpenParen(s) {
				s.Next(false) // consume '('
				if err := b.OpenCall(tok.Text); err != nil {
					return nil, s.Pos(), err
				}
				depth++
				expectOperand = true
				lastWasIdent = false
				continue
			}
			b.PushVariable(tok.Text)
			expectOperand = false
			lastWasIdent = true
			continue

		case lexer.Number, lexer.QuotedString:
			b.PushLiteral(tok)
			expectOperand = false
			lastWasIdent = false
			continue

		case lexer.Operation:
			switch tok.Text {
			case "(":
				if err := b.OpenParen(); err != nil {
					return nil, s.Pos(), err
				}
				depth++
				expectOperand = true
				continue
			case ")":
				if depth == 0 {
					s.SeekTo(savedPos)
					expr, err := b.Finish()
					return expr, s.Pos(), err
				}
				if err := b.CloseParen(); err != nil {
					return nil, s.Pos(), err
				}
				depth--
				expectOperand = false
				continue
			case ",":
				if depth == 0 {
					s.SeekTo(savedPos)
					expr, err := b.Finish()
					return expr, s.Pos(), err
				}
				if err := b.Comma(); err != nil {
					return nil, s.Pos(), err
				}
				expectOperand = true
				continue
			case ":", ";":
				s.SeekTo(savedPos)
				expr, err := b.Finish()
				return expr, s.Pos(), err
			case "-", "+":
				if expectOperand {
					b.PushUnary(tok.Text)
				} else {
					if err := b.PushBinary(tok.Text); err != nil {
						return nil, s.Pos(), err
					}
				}
				expectOperand = true
				lastWasIdent = false
				continue
			default:
				if err := b.PushBinary(tok.Text); err != nil {
					return nil, s.Pos(), err
				}
				expectOperand = true
				lastWasIdent = false
				continue
			}

		default:
			return nil, s.Pos(), berr.New(berr.ESyntax, 0, 0, tok.Text)
		}
	}
	_ = lastWasIdent
}

// BuildExpr parses a standalone expression occupying the whole of text
// and returns its compiled RPN form, exposed for the `rpn` debugging
// CLI subcommand to print a line's expression without running it.
func BuildExpr(text string, cfg *features.Config) (*rpn.Expr, error) {
	if cfg == nil {
		cfg = features.Default()
	}
	s := lexer.New(text, cfg)
	expr, _, err := parseExpr(s, cfg, nil)
	return expr, err
}

func isUnaryKeyword(upper string) bool { return upper == "NOT" }

func isBinaryKeyword(upper string) bool {
	switch upper {
	case "AND", "OR", "XOR", "MOD":
		return true
	default:
		return false
	}
}

func peekIsOpenParen(s *lexer.Scanner) bool {
	save := s.Pos()
	defer s.SeekTo(save)
	tok, err := s.Next(false)
	if err != nil {
		return false
	}
	return tok.Kind == lexer.Operation && tok.Text == "("
}
