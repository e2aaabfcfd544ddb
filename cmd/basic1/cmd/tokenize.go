package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/lexer"
	"github.com/spf13/cobra"
)

var tokenizeExpr string

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Tokenize BASIC source and print the resulting tokens",
	Long: `Scan a BASIC program or a single inline line and print every token
the lexer produces, one line of source at a time.

Examples:
  basic1 tokenize program.bas
  basic1 tokenize -e "10 PRINT A+B*2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: tokenizeSource,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	tokenizeCmd.Flags().StringVarP(&tokenizeExpr, "eval", "e", "", "tokenize a single inline line instead of reading from a file")
}

func tokenizeSource(_ *cobra.Command, args []string) error {
	var input string
	if tokenizeExpr != "" {
		input = tokenizeExpr
	} else if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input = string(content)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for an inline line")
	}

	cfg := features.Default()
	for lineNo, line := range strings.Split(input, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Printf("line %d: %s\n", lineNo+1, line)
		s := lexer.New(line, cfg)
		for {
			tok, err := s.Next(true)
			if err != nil {
				fmt.Printf("  error: %v\n", err)
				break
			}
			if tok.Kind == lexer.EOL {
				break
			}
			printTok(tok)
		}
	}
	return nil
}

func printTok(tok lexer.Token) {
	switch tok.Kind {
	case lexer.Identifier:
		fmt.Printf("  IDENTIFIER %q\n", tok.Text)
	case lexer.Number:
		fmt.Printf("  NUMBER %q\n", tok.Text)
	case lexer.QuotedString:
		fmt.Printf("  STRING %q\n", tok.Text)
	case lexer.Operation:
		fmt.Printf("  OP %q\n", tok.Text)
	default:
		fmt.Printf("  %s\n", tok.Kind)
	}
}
