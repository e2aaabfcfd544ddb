package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/interp"
	"github.com/basic-1/b1core/internal/program"
	"github.com/spf13/cobra"
)

var rpnCmd = &cobra.Command{
	Use:   "rpn <file> <line>",
	Short: "Print the RPN for one program line's expression",
	Long: `Load a line-numbered BASIC source file, find the given line number,
and print the reverse-Polish form the RPN builder produces for its
expression (the part after the statement keyword and any assignment
target), one record per line.

Examples:
  basic1 rpn program.bas 20`,
	Args: cobra.ExactArgs(2),
	RunE: rpnForLine,
}

func init() {
	rootCmd.AddCommand(rpnCmd)
}

func rpnForLine(_ *cobra.Command, args []string) error {
	path := args[0]
	lineNum, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid line number %q: %w", args[1], err)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	prog := program.New()
	if err := prog.LoadSource(string(src)); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	text, ok := prog.LineText(int32(lineNum))
	if !ok {
		return fmt.Errorf("line %d not found in %s", lineNum, path)
	}

	exprText := expressionPortion(text)
	expr, err := interp.BuildExpr(exprText, features.Default())
	if err != nil {
		return fmt.Errorf("building RPN for line %d: %w", lineNum, err)
	}

	for _, rec := range expr.Records {
		fmt.Println(rec.String())
	}
	return nil
}

// expressionPortion strips a leading statement keyword and, if present,
// an assignment target, leaving the bare expression text a debug RPN
// dump should build from. Good enough for a debugging aid: it does not
// need to handle every statement shape, only take the text after the
// first "=" for an assignment-shaped statement, or fall
// back to the text after the first keyword word otherwise.
func expressionPortion(line string) string {
	first := strings.SplitN(line, ":", 2)[0]
	i := 0
	for i < len(first) && (isLetterOrDigit(first[i])) {
		i++
	}
	rest := strings.TrimSpace(first[i:])
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		return rest[eq+1:]
	}
	return rest
}

func isLetterOrDigit(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
