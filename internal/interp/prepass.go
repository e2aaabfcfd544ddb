package interp

import (
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/ident"
)

// dataItem is one literal value scanned out of a DATA statement during
// the prepass, in program order, matching the reference
// implementation's single flattened DATA list (b1.h's DATA cursor
// fields walk this same kind of sequence).
type dataItem struct {
	text     string
	isString bool
	line     int32
}

// prepass walks the stored program once before RUN: it validates line
// numbers are strictly ascending (EInvLineN otherwise, since GOTO/GOSUB
// target resolution and sequential fall-through both depend on it),
// flattens every DATA statement's literals into Interpreter.data for
// READ/RESTORE, verifies every FOR has a matching NEXT and every WHILE
// a matching WEND, and compiles every DEF FN body ahead of time so a
// function guarded by an always-false branch or called before its
// defining line still resolves, the way the reference implementation's
// single-pass prepare step does (spec.md §4.7).
func (in *Interpreter) prepass() error {
	lines := in.Program.Lines()
	in.lines = lines

	var forStack []string
	whileDepth := 0

	prevNum := int32(-1)
	for _, ln := range lines {
		if ln.Number <= prevNum {
			return berr.New(berr.EInvLineN, ln.Number, 0, "")
		}
		prevNum = ln.Number

		for _, stmt := range splitStatements(ln.Text) {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			word, rest := firstWord(stmt)
			kind := in.stmtTable.Lookup(ident.Hash(word, in.Cfg.IdentHash32))
			switch kind {
			case ident.StmtData:
				items := scanDataLiterals(rest)
				for i := range items {
					items[i].line = ln.Number
				}
				in.data = append(in.data, items...)
			case ident.StmtFor:
				name := rest
				if eq := strings.IndexByte(rest, '='); eq >= 0 {
					name = rest[:eq]
				}
				forStack = append(forStack, strings.TrimSpace(name))
			case ident.StmtNext:
				if len(forStack) == 0 {
					return berr.New(berr.ENxtWoFor, ln.Number, 0, rest)
				}
				forStack = forStack[:len(forStack)-1]
			case ident.StmtWhile:
				whileDepth++
			case ident.StmtWend:
				if whileDepth == 0 {
					return berr.New(berr.EWndWoWhile, ln.Number, 0, "")
				}
				whileDepth--
			case ident.StmtDef:
				if err := in.compileDefFn(rest); err != nil {
					return err
				}
			}
		}
	}
	if len(forStack) != 0 {
		return berr.New(berr.EForWoNxt, 0, 0, forStack[len(forStack)-1])
	}
	if whileDepth != 0 {
		return berr.New(berr.EWhileWoWnd, 0, 0, "")
	}
	return nil
}

// scanDataLiterals splits a DATA statement's comma-separated literal
// list, a simpler pass than the RPN builder since DATA items are bare
// literals, never expressions (matching BASIC's usual DATA grammar).
func scanDataLiterals(rest string) []dataItem {
	var items []dataItem
	for _, part := range splitTopLevelCommas(rest) {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			items = append(items, dataItem{text: part[1 : len(part)-1], isString: true})
		} else {
			items = append(items, dataItem{text: part})
		}
	}
	return items
}

// splitTopLevelCommas splits on commas outside double-quoted spans.
func splitTopLevelCommas(s string) []string {
	var out []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// splitStatements splits a source line into ':'-separated statements,
// respecting double-quoted string spans so a colon inside a literal
// never ends a statement early.
func splitStatements(line string) []string {
	var out []string
	inQuote := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ':':
			if !inQuote {
				out = append(out, line[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, line[start:])
	return out
}
