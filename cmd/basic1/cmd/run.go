package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/interp"
	"github.com/basic-1/b1core/internal/lexer"
	"github.com/basic-1/b1core/internal/locale"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/program"
	"github.com/basic-1/b1core/internal/randsrc"
	"github.com/spf13/cobra"
)

var (
	optionExplicit bool
	localeTag      string
	rndSeed        int64
	traceRun       bool
	dumpTokens     bool
	baseN          int
	breakLines     []int
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a BASIC program file",
	Long: `Load a line-numbered BASIC source file and execute it to completion.

Examples:
  basic1 run program.bas
  basic1 run --locale de-DE program.bas`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&optionExplicit, "explicit", false, "require OPTION EXPLICIT style variable declaration from the start")
	runCmd.Flags().StringVar(&localeTag, "locale", "en-US", "BCP 47 locale tag used for STRCMP$")
	runCmd.Flags().Int64Var(&rndSeed, "seed", 1, "initial RND seed")
	runCmd.Flags().BoolVar(&traceRun, "trace", false, "print each executed line number to stderr")
	runCmd.Flags().BoolVar(&dumpTokens, "dump-tokens", false, "print the token stream for every line before running")
	runCmd.Flags().IntVar(&baseN, "base-n", 0, "informational positional DATA/array base; OPTION BASE in source still governs")
	runCmd.Flags().IntSliceVar(&breakLines, "break", nil, "print a note to stderr when execution reaches this line, without pausing (repeatable)")
}

// stdioChannel is the console contracts.IO backing for a CLI run:
// stdout for PRINT, buffered stdin for INPUT.
type stdioChannel struct {
	out *bufio.Writer
	in  *bufio.Reader
}

func newStdioChannel() *stdioChannel {
	return &stdioChannel{out: bufio.NewWriter(os.Stdout), in: bufio.NewReader(os.Stdin)}
}

func (c *stdioChannel) Write(s string) error {
	_, err := c.out.WriteString(s)
	c.out.Flush()
	return err
}

func (c *stdioChannel) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, err
}

func runFile(_ *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	prog := program.New()
	if err := prog.LoadSource(string(src)); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	cfg := features.Default()
	mgr := mem.NewNativeManager()
	loc := locale.New(localeTag)
	rnd := randsrc.New(rndSeed)
	io := newStdioChannel()

	in := interp.New(prog, io, mgr, cfg, loc, rnd)
	if optionExplicit {
		in.EnableExplicit()
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "running %s (%d lines)\n", path, len(prog.Lines()))
	}
	if baseN != 0 {
		fmt.Fprintf(os.Stderr, "note: --base-n %d is informational only; OPTION BASE in source still governs array lower bounds\n", baseN)
	}
	if dumpTokens {
		dumpProgramTokens(prog, cfg)
	}
	if traceRun {
		in.OnTrace = func(line int32) {
			fmt.Fprintf(os.Stderr, "trace: line %d\n", line)
		}
	}
	if len(breakLines) > 0 {
		for _, l := range breakLines {
			if err := in.SetBreakpoint(int32(l)); err != nil {
				return err
			}
		}
		in.OnBreak = func(line int32) {
			fmt.Fprintf(os.Stderr, "break: reached line %d\n", line)
		}
	}

	return in.Run()
}

// dumpProgramTokens prints every stored line's token stream to stdout,
// the same rendering tokenizeSource uses, before the program runs.
func dumpProgramTokens(prog *program.Memory, cfg *features.Config) {
	for _, ln := range prog.Lines() {
		fmt.Printf("line %d: %s\n", ln.Number, ln.Text)
		s := lexer.New(ln.Text, cfg)
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
}
