package interp

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/contracts"
	"github.com/basic-1/b1core/internal/ident"
	"github.com/basic-1/b1core/internal/lexer"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
	"github.com/basic-1/b1core/internal/vars"
)

// execStatement dispatches one ':'-separated statement by its leading
// keyword, falling back to implicit LET for a bare assignment, the
// same resolution order the reference implementation's
// b1_id_get_stmt_by_hash lookup followed by a LET fallback uses.
func (in *Interpreter) execStatement(text string, next pc) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		in.cur = next
		return nil
	}

	word, rest := firstWord(trimmed)
	hash := ident.Hash(word, in.Cfg.IdentHash32)
	kind := in.stmtTable.Lookup(hash)

	in.cur = next
	switch kind {
	case ident.StmtRem, ident.StmtOption, ident.StmtDim, ident.StmtData:
		// these may still appear before the program's first real
		// statement; anything else closes the OPTION window.
	default:
		in.optionsClosed = true
	}
	switch kind {
	case ident.StmtRem:
		return nil
	case ident.StmtEnd:
		return berr.New(berr.END, 0, 0, "")
	case ident.StmtStop:
		return berr.New(berr.STOP, 0, 0, "")
	case ident.StmtLet:
		return in.stmtLet(rest)
	case ident.StmtPrint:
		return in.stmtPrint(rest)
	case ident.StmtInput:
		return in.stmtInput(rest)
	case ident.StmtIf:
		return in.stmtIf(rest)
	case ident.StmtGoto:
		return in.stmtGoto(rest)
	case ident.StmtGosub:
		return in.stmtGosub(rest)
	case ident.StmtReturn:
		return in.stmtReturn()
	case ident.StmtFor:
		return in.stmtFor(rest)
	case ident.StmtNext:
		return in.stmtNext(rest)
	case ident.StmtWhile:
		return in.stmtWhile(rest)
	case ident.StmtWend:
		return in.stmtWend()
	case ident.StmtDim:
		return in.stmtDim(rest)
	case ident.StmtErase:
		return in.stmtErase(rest)
	case ident.StmtData:
		return nil // flattened into in.data during the prepass
	case ident.StmtRead:
		return in.stmtRead(rest)
	case ident.StmtRestore:
		return in.stmtRestore(rest)
	case ident.StmtOption:
		return in.stmtOption(rest)
	case ident.StmtDef:
		return in.stmtDef(rest)
	case ident.StmtOn:
		return in.stmtOn(rest)
	case ident.StmtBreak:
		return in.stmtBreak()
	case ident.StmtContinue:
		return in.stmtContinue()
	case ident.StmtRandomize:
		return in.stmtRandomize(rest)
	case ident.StmtPut:
		return in.stmtPut(rest)
	case ident.StmtGet:
		return in.stmtGet(rest)
	case ident.StmtTransfer:
		return in.stmtTransfer(rest)
	case ident.StmtIoctl:
		return in.stmtIoctl(rest)
	default:
		// no recognized keyword: treat as an implicit LET assignment,
		// matching the reference implementation's fallback when a
		// statement-keyword lookup misses.
		return in.stmtLet(trimmed)
	}
}

func firstWord(s string) (word, rest string) {
	i := 0
	for i < len(s) && (isIdentChar(s[i])) {
		i++
	}
	return strings.ToUpper(s[:i]), strings.TrimSpace(s[i:])
}

func isIdentChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func (in *Interpreter) newScanner(text string) *lexer.Scanner {
	return lexer.New(text, in.Cfg)
}

// evalExprText parses and evaluates a full expression occupying the
// whole of text (no trailing stop words expected).
func (in *Interpreter) evalExprText(text string) (types.Value, error) {
	s := in.newScanner(text)
	expr, _, err := parseExpr(s, in.Cfg, nil)
	if err != nil {
		return types.Value{}, err
	}
	return in.evaluator.Eval(expr)
}

func (in *Interpreter) stmtLet(rest string) error {
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	lhs := strings.TrimSpace(rest[:eq])
	rhsText := rest[eq+1:]

	v, err := in.evalExprText(rhsText)
	if err != nil {
		return err
	}

	name, subs, hasSubs, err := in.parseLValue(lhs)
	if err != nil {
		return err
	}
	if hasSubs {
		arr, err := in.Vars.Array(name, in.Cfg.IdentHash32)
		if err != nil {
			return err
		}
		return arr.Set(subs, v)
	}
	return in.Vars.SetScalar(name, kindOfIdent(name), v)
}

// parseLValue splits an assignment target into its bare name and, if
// present, its subscript list (for array-element assignment).
func (in *Interpreter) parseLValue(lhs string) (name string, subs []int32, hasSubs bool, err error) {
	p := strings.IndexByte(lhs, '(')
	if p < 0 {
		return strings.TrimSpace(lhs), nil, false, nil
	}
	name = strings.TrimSpace(lhs[:p])
	inner := lhs[p+1 : strings.LastIndexByte(lhs, ')')]
	for _, part := range strings.Split(inner, ",") {
		v, err := in.evalExprText(part)
		if err != nil {
			return "", nil, false, err
		}
		i, err := v.ToInt32()
		if err != nil {
			return "", nil, false, err
		}
		subs = append(subs, i)
	}
	return name, subs, true, nil
}

func kindOfIdent(name string) types.Kind {
	if name == "" {
		return types.Int32
	}
	switch name[len(name)-1] {
	case '$':
		return types.String
	case '!':
		return types.Single
	case '#':
		return types.Double
	default:
		return types.Int32
	}
}

func (in *Interpreter) stmtPrint(rest string) error {
	if rest == "" {
		in.writeOut("\n")
		return nil
	}
	parts := splitTopLevelCommasOrSemis(rest)
	for i, part := range parts.items {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := in.evalExprText(part)
		if err != nil {
			return err
		}
		sv, err := types.ToStringValue(in.Mem, v)
		if err != nil {
			return err
		}
		text, err := sv.Text()
		if err != nil {
			return err
		}
		in.writeOut(text)
		if i < len(parts.seps) {
			if parts.seps[i] == ',' {
				in.padToZone()
			}
		}
	}
	if len(parts.seps) == 0 || parts.seps[len(parts.seps)-1] != ';' {
		in.writeOut("\n")
	}
	return nil
}

type printParts struct {
	items []string
	seps  []byte
}

func splitTopLevelCommasOrSemis(s string) printParts {
	var out printParts
	inQuote := false
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote && depth > 0 {
				depth--
			}
		case ',', ';':
			if !inQuote && depth == 0 {
				out.items = append(out.items, s[start:i])
				out.seps = append(out.seps, s[i])
				start = i + 1
			}
		}
	}
	out.items = append(out.items, s[start:])
	return out
}

const printZoneWidth = 10
const printMargin = 80

func (in *Interpreter) writeOut(s string) {
	if in.IO != nil {
		in.IO.Write(s)
	}
	if nl := strings.LastIndexByte(s, '\n'); nl >= 0 {
		in.printColumn = len(s) - nl - 1
	} else {
		in.printColumn += len(s)
	}
}

func (in *Interpreter) padToZone() {
	next := ((in.printColumn / printZoneWidth) + 1) * printZoneWidth
	if next >= printMargin {
		in.writeOut("\n")
		return
	}
	in.writeOut(strings.Repeat(" ", next-in.printColumn))
}

func (in *Interpreter) stmtInput(rest string) error {
	prompt := "? "
	if strings.HasPrefix(rest, "\"") {
		end := strings.IndexByte(rest[1:], '"')
		if end >= 0 {
			prompt = rest[1 : end+1]
			rest = strings.TrimPrefix(rest[end+2:], ";")
			rest = strings.TrimPrefix(rest, ",")
			rest = strings.TrimSpace(rest)
		}
	}
	names := strings.Split(rest, ",")
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		for {
			in.writeOut(prompt)
			line, err := in.IO.ReadLine()
			if err != nil {
				return err
			}
			kind := kindOfIdent(name)
			var v types.Value
			var convErr error
			if kind == types.String {
				v, convErr = types.NewOwnedString(in.Mem, line)
			} else {
				raw, strErr := types.NewOwnedString(in.Mem, line)
				if strErr != nil {
					return strErr
				}
				v, convErr = types.FromStringValue(raw, kind)
			}
			if convErr != nil {
				in.writeOut("?Redo from start\n")
				continue
			}
			if err := in.Vars.SetScalar(name, kind, v); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (in *Interpreter) stmtGoto(rest string) error {
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	return in.gotoLine(int32(n))
}

func (in *Interpreter) stmtGosub(rest string) error {
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	if !in.stack.push(frame{state: stateGosub, returnPC: in.cur}) {
		return berr.New(berr.EStStkOvf, 0, 0, "")
	}
	return in.gotoLine(int32(n))
}

func (in *Interpreter) stmtReturn() error {
	f, ok := in.stack.topGosub()
	if !ok {
		return berr.New(berr.ENoGosub, 0, 0, "")
	}
	in.cur = f.returnPC
	return nil
}

func (in *Interpreter) stmtIf(rest string) error {
	thenIdx := indexKeyword(rest, "THEN")
	if thenIdx < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	condText := rest[:thenIdx]
	after := strings.TrimSpace(rest[thenIdx+4:])

	cond, err := in.evalExprText(condText)
	if err != nil {
		return err
	}
	b, err := cond.ToInt32()
	if err != nil {
		return err
	}

	thenBranch, elseBranch := splitElse(after)
	if b != 0 {
		return in.execInline(thenBranch)
	}
	if elseBranch != "" {
		return in.execInline(elseBranch)
	}
	return nil
}

// execInline runs a THEN/ELSE branch that is either a bare line number
// (implicit GOTO) or one or more ':'-separated statements to run
// immediately.
func (in *Interpreter) execInline(branch string) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil
	}
	if n, err := strconv.Atoi(branch); err == nil {
		return in.gotoLine(int32(n))
	}
	for _, stmt := range splitStatements(branch) {
		if err := in.execStatement(stmt, in.cur); err != nil {
			return err
		}
	}
	return nil
}

func indexKeyword(s, kw string) int {
	upper := strings.ToUpper(s)
	i := 0
	for {
		idx := strings.Index(upper[i:], kw)
		if idx < 0 {
			return -1
		}
		pos := i + idx
		before := pos == 0 || !isIdentChar(s[pos-1])
		afterPos := pos + len(kw)
		after := afterPos >= len(s) || !isIdentChar(s[afterPos])
		if before && after {
			return pos
		}
		i = pos + 1
	}
}

func splitElse(s string) (thenBranch, elseBranch string) {
	idx := indexKeyword(s, "ELSE")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+4:]
}

func (in *Interpreter) stmtFor(rest string) error {
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	varName := strings.TrimSpace(rest[:eq])
	afterEq := rest[eq+1:]

	toIdx := indexKeyword(afterEq, "TO")
	if toIdx < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	startText := afterEq[:toIdx]
	tail := afterEq[toIdx+2:]

	stepText := ""
	limitText := tail
	if stepIdx := indexKeyword(tail, "STEP"); stepIdx >= 0 {
		limitText = tail[:stepIdx]
		stepText = tail[stepIdx+4:]
	}

	start, err := in.evalExprText(startText)
	if err != nil {
		return err
	}
	limit, err := in.evalExprText(limitText)
	if err != nil {
		return err
	}
	step := types.NewInt32(1)
	if strings.TrimSpace(stepText) != "" {
		step, err = in.evalExprText(stepText)
		if err != nil {
			return err
		}
	}
	if err := in.Vars.SetScalar(varName, kindOfIdent(varName), start); err != nil {
		return err
	}

	stepF, _ := step.ToFloat64()
	var sub frameState
	if stepF < 0 {
		sub = forNegStep
	}
	if !in.stack.push(frame{state: stateFor, sub: sub, returnPC: in.cur, varName: varName, limit: limit, step: step}) {
		return berr.New(berr.EStStkOvf, 0, 0, "")
	}

	return in.checkForCondition(varName, true)
}

// checkForCondition tests the loop variable against its FOR frame's
// limit; if the loop should end, it pops the frame. On the initial
// check (fromFor) it then skips the loop body by jumping past the
// matching NEXT; when called from NEXT, execution simply falls through
// to the statement after that NEXT.
func (in *Interpreter) checkForCondition(varName string, fromFor bool) error {
	f, ok := in.stack.topFor(varName)
	if !ok {
		return berr.New(berr.ENxtWoFor, 0, 0, varName)
	}
	v, err := in.Vars.GetScalar(f.varName, kindOfIdent(f.varName))
	if err != nil {
		return err
	}
	cur, _ := v.ToFloat64()
	limit, _ := f.limit.ToFloat64()
	done := false
	if f.sub&forNegStep != 0 {
		done = cur < limit
	} else {
		done = cur > limit
	}
	if done {
		in.stack.pop()
		if fromFor {
			return in.skipToMatchingNext(varName)
		}
	}
	return nil
}

// skipToMatchingNext advances execution past the NEXT statement that
// closes this FOR loop, used when the loop's very first condition
// check already fails (zero-iteration loop).
func (in *Interpreter) skipToMatchingNext(varName string) error {
	depth := 0
	li, si := in.cur.lineIdx, in.cur.stmtIdx
	for li < len(in.lines) {
		stmts := splitStatements(in.lines[li].Text)
		for si < len(stmts) {
			word, rest := firstWord(strings.TrimSpace(stmts[si]))
			if ident.StmtKind(in.stmtTable.Lookup(ident.Hash(word, in.Cfg.IdentHash32))) == ident.StmtFor {
				depth++
			} else if ident.StmtKind(in.stmtTable.Lookup(ident.Hash(word, in.Cfg.IdentHash32))) == ident.StmtNext {
				if depth == 0 {
					nextVar := strings.TrimSpace(rest)
					if nextVar == "" || nextVar == varName {
						in.cur = pc{lineIdx: li, stmtIdx: si + 1}
						return nil
					}
				} else {
					depth--
				}
			}
			si++
		}
		li++
		si = 0
	}
	return berr.New(berr.EForWoNxt, 0, 0, varName)
}

func (in *Interpreter) stmtNext(rest string) error {
	varName := strings.TrimSpace(rest)
	f, ok := in.stack.topFor(varName)
	if !ok {
		return berr.New(berr.ENxtWoFor, 0, 0, varName)
	}
	v, err := in.Vars.GetScalar(f.varName, kindOfIdent(f.varName))
	if err != nil {
		return err
	}
	r, err := addStep(v, f.step)
	if err != nil {
		return err
	}
	if err := in.Vars.SetScalar(f.varName, kindOfIdent(f.varName), r); err != nil {
		return err
	}
	returnTo := f.returnPC
	if err := in.checkForCondition(f.varName, false); err != nil {
		return err
	}
	if _, stillThere := in.stack.topFor(f.varName); stillThere {
		in.cur = returnTo
	}
	return nil
}

func addStep(v, step types.Value) (types.Value, error) {
	a, err := v.ToFloat64()
	if err != nil {
		return types.Value{}, err
	}
	b, err := step.ToFloat64()
	if err != nil {
		return types.Value{}, err
	}
	if v.Kind.IsFloat() {
		return mkFloatVal(v.Kind, a+b), nil
	}
	return types.NewInt32(int32(a + b)), nil
}

func mkFloatVal(kind types.Kind, f float64) types.Value {
	if kind == types.Single {
		return types.NewSingle(float32(f))
	}
	return types.NewDouble(f)
}

func (in *Interpreter) stmtWhile(rest string) error {
	cond, err := in.evalExprText(rest)
	if err != nil {
		return err
	}
	b, err := cond.ToInt32()
	if err != nil {
		return err
	}
	loopStart := pc{lineIdx: in.cur.lineIdx, stmtIdx: in.cur.stmtIdx - 1}
	if b == 0 {
		return in.skipToMatchingWend()
	}
	if !in.stack.push(frame{state: stateWhile, returnPC: loopStart}) {
		return berr.New(berr.EStStkOvf, 0, 0, "")
	}
	return nil
}

func (in *Interpreter) skipToMatchingWend() error {
	depth := 0
	li, si := in.cur.lineIdx, in.cur.stmtIdx
	for li < len(in.lines) {
		stmts := splitStatements(in.lines[li].Text)
		for si < len(stmts) {
			word, _ := firstWord(strings.TrimSpace(stmts[si]))
			k := in.stmtTable.Lookup(ident.Hash(word, in.Cfg.IdentHash32))
			if k == ident.StmtWhile {
				depth++
			} else if k == ident.StmtWend {
				if depth == 0 {
					in.cur = pc{lineIdx: li, stmtIdx: si + 1}
					return nil
				}
				depth--
			}
			si++
		}
		li++
		si = 0
	}
	return berr.New(berr.EWhileWoWnd, 0, 0, "")
}

func (in *Interpreter) stmtWend() error {
	f, ok := in.stack.topWhile()
	if !ok {
		return berr.New(berr.EWndWoWhile, 0, 0, "")
	}
	in.stack.pop()
	in.cur = f.returnPC
	return nil
}

// splitDeclList splits a DIM statement's comma-separated array
// declaration list, tracking paren depth so a dimension list's own
// commas (inside "NAME(d1,d2)") never end a declaration early.
func splitDeclList(s string) []string {
	var out []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote && depth > 0 {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func (in *Interpreter) stmtDim(rest string) error {
	for _, decl := range splitDeclList(rest) {
		decl = strings.TrimSpace(decl)
		p := strings.IndexByte(decl, '(')
		if p < 0 {
			return berr.New(berr.ESyntax, 0, 0, decl)
		}
		name := strings.TrimSpace(decl[:p])
		inner := decl[p+1 : strings.LastIndexByte(decl, ')')]
		var bounds []vars.Bound
		for _, dim := range strings.Split(inner, ",") {
			lower := in.Vars.DefaultBase()
			upperText := dim
			if toIdx := indexKeyword(dim, "TO"); toIdx >= 0 {
				lv, err := in.evalExprText(dim[:toIdx])
				if err != nil {
					return err
				}
				lower, err = lv.ToInt32()
				if err != nil {
					return err
				}
				upperText = dim[toIdx+2:]
			}
			v, err := in.evalExprText(upperText)
			if err != nil {
				return err
			}
			upper, err := v.ToInt32()
			if err != nil {
				return err
			}
			if len(bounds) >= in.Cfg.MaxArrayDims {
				return berr.New(berr.EInvArg, 0, 0, name)
			}
			bounds = append(bounds, vars.Bound{Lower: lower, Upper: upper})
		}
		if err := in.Vars.DimArray(name, kindOfIdent(name), bounds); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) stmtErase(rest string) error {
	for _, name := range strings.Split(rest, ",") {
		if err := in.Vars.EraseArray(strings.TrimSpace(name)); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) stmtRead(rest string) error {
	for _, raw := range strings.Split(rest, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if in.dataPos >= len(in.data) {
			return berr.New(berr.EDataEnd, 0, 0, name)
		}
		item := in.data[in.dataPos]
		in.dataPos++
		var v types.Value
		var err error
		if kindOfIdent(name) == types.String {
			v, err = types.NewOwnedString(in.Mem, item.text)
		} else if item.isString {
			v, err = types.NewOwnedString(in.Mem, item.text)
			if err == nil {
				v, err = types.FromStringValue(v, kindOfIdent(name))
			}
		} else {
			v, err = parseDataNumeric(item.text, kindOfIdent(name))
		}
		if err != nil {
			return err
		}
		if err := in.Vars.SetScalar(name, kindOfIdent(name), v); err != nil {
			return err
		}
	}
	return nil
}

// stmtRestore rewinds the READ cursor. With no argument it rewinds to
// the first DATA item, as before; given a line number it seeks to the
// first DATA item belonging to that line or later, reporting ESyntax
// for a non-numeric argument.
func (in *Interpreter) stmtRestore(rest string) error {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		in.dataPos = 0
		return nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	target := int32(n)
	for i, item := range in.data {
		if item.line >= target {
			in.dataPos = i
			return nil
		}
	}
	in.dataPos = len(in.data)
	return nil
}

func parseDataNumeric(text string, kind types.Kind) (types.Value, error) {
	if kind == types.Single || kind == types.Double {
		f, err := types.StrToDouble(text)
		if err != nil {
			return types.Value{}, err
		}
		return mkFloatVal(kind, f), nil
	}
	i, err := types.StrToI32(text)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewInt32(i), nil
}

// stmtOption handles OPTION EXPLICIT and OPTION BASE n, both of which
// may only appear before the program's first executable statement
// (spec.md §3 Invariant 6); a later occurrence is fatal.
func (in *Interpreter) stmtOption(rest string) error {
	if in.optionsClosed {
		return berr.New(berr.EInvStat, 0, 0, rest)
	}
	upper := strings.ToUpper(strings.TrimSpace(rest))
	switch {
	case strings.HasPrefix(upper, "EXPLICIT"):
		in.explicit = true
		in.Vars = vars.NewStore(in.Mem, in.Cfg.IdentHash32, true)
		in.evaluator.Vars = in.Vars
	case strings.HasPrefix(upper, "BASE"):
		arg := strings.TrimSpace(strings.TrimPrefix(upper, "BASE"))
		n, err := strconv.Atoi(arg)
		if err != nil {
			return berr.New(berr.ESyntax, 0, 0, rest)
		}
		in.Vars.SetDefaultBase(int32(n))
	}
	return nil
}

// compileDefFn parses a DEF FN declaration's name, parameter list and
// body and registers it in the function cache. The prepass calls this
// for every DEF FN line before RUN starts, so a function guarded by an
// unreached branch still resolves; stmtDef calls the same routine at
// its own line so a DEF reached a second time (e.g. inside a loop)
// simply re-registers the identical body.
func (in *Interpreter) compileDefFn(rest string) error {
	p := strings.IndexByte(rest, '(')
	if p < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	name := strings.TrimSpace(rest[:p])
	close := strings.IndexByte(rest[p:], ')')
	if close < 0 {
		return berr.New(berr.EMissBrack, 0, 0, rest)
	}
	close += p
	paramsText := rest[p+1 : close]
	var params []string
	if strings.TrimSpace(paramsText) != "" {
		for _, pn := range strings.Split(paramsText, ",") {
			params = append(params, strings.TrimSpace(pn))
		}
	}
	eq := strings.IndexByte(rest[close:], '=')
	if eq < 0 {
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	bodyText := rest[close+eq+1:]

	idx := in.funcs.register(name, params)
	s := in.newScanner(bodyText)
	expr, _, err := parseExpr(s, in.Cfg, nil)
	if err != nil {
		return err
	}
	in.funcs.setBody(idx, expr)
	return nil
}

// stmtDef is the runtime dispatch for DEF FN; the body was already
// compiled during the prepass, so this just re-confirms it.
func (in *Interpreter) stmtDef(rest string) error {
	return in.compileDefFn(rest)
}

func (in *Interpreter) stmtOn(rest string) error {
	gotoIdx := indexKeyword(rest, "GOTO")
	gosubIdx := indexKeyword(rest, "GOSUB")
	var kwIdx int
	var isGosub bool
	switch {
	case gotoIdx >= 0:
		kwIdx = gotoIdx
	case gosubIdx >= 0:
		kwIdx = gosubIdx
		isGosub = true
	default:
		return berr.New(berr.ESyntax, 0, 0, rest)
	}
	selText := rest[:kwIdx]
	targetsText := rest[kwIdx+4:]
	if isGosub {
		targetsText = rest[kwIdx+5:]
	}
	sel, err := in.evalExprText(selText)
	if err != nil {
		return err
	}
	n, err := sel.ToInt32()
	if err != nil {
		return err
	}
	targets := strings.Split(targetsText, ",")
	if n < 1 || int(n) > len(targets) {
		return nil // out-of-range selector falls through, matching ON..GOTO's usual no-op behavior
	}
	lineNum, err := strconv.Atoi(strings.TrimSpace(targets[n-1]))
	if err != nil {
		return berr.New(berr.ESyntax, 0, 0, targets[n-1])
	}
	if isGosub {
		if !in.stack.push(frame{state: stateGosub, returnPC: in.cur}) {
			return berr.New(berr.EStStkOvf, 0, 0, "")
		}
	}
	return in.gotoLine(int32(lineNum))
}

func (in *Interpreter) stmtBreak() error {
	top, ok := in.stack.top()
	if !ok {
		return berr.New(berr.ENotInLoop, 0, 0, "")
	}
	switch {
	case top.is(stateFor):
		varName := top.varName
		in.stack.pop()
		return in.skipToMatchingNext(varName)
	case top.is(stateWhile):
		in.stack.pop()
		return in.skipToMatchingWend()
	default:
		return berr.New(berr.ENotInLoop, 0, 0, "")
	}
}

func (in *Interpreter) stmtContinue() error {
	if f, ok := in.stack.top(); ok {
		if f.is(stateFor) {
			return in.stmtNext(f.varName)
		}
		if f.is(stateWhile) {
			in.cur = f.returnPC
			return nil
		}
	}
	return berr.New(berr.ENotInLoop, 0, 0, "")
}

// workspaceSize bounds the single lazily-allocated block PUT/GET/
// TRANSFER address by byte offset, grounded on b1int.c's fixed-size
// data segment these statements operate against.
const workspaceSize = 65536

func (in *Interpreter) ensureWorkspace() (mem.Descriptor, error) {
	if in.workspace == mem.Invalid {
		d, err := in.Mem.Alloc(workspaceSize)
		if err != nil {
			return nil, err
		}
		in.workspace = d
	}
	return in.workspace, nil
}

// stmtPut writes the int32 value of expr into the workspace block at
// byte offset addr ("PUT <addr>, <expr>"), relying on Access's own
// bounds checking to report EBufSmall for an out-of-range address.
func (in *Interpreter) stmtPut(rest string) error {
	parts := splitTopLevelCommas(rest)
	if len(parts) != 2 {
		return berr.New(berr.EWrArgCnt, 0, 0, rest)
	}
	addrV, err := in.evalExprText(parts[0])
	if err != nil {
		return err
	}
	addr, err := addrV.ToInt32()
	if err != nil {
		return err
	}
	v, err := in.evalExprText(parts[1])
	if err != nil {
		return err
	}
	i, err := v.ToInt32()
	if err != nil {
		return err
	}
	desc, err := in.ensureWorkspace()
	if err != nil {
		return err
	}
	buf, err := in.Mem.Access(desc, int(addr), 4, mem.Write)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, uint32(i))
	in.Mem.Release(desc)
	return nil
}

// stmtGet reads an int32 from the workspace block at byte offset addr
// into var ("GET <addr>, <var>").
func (in *Interpreter) stmtGet(rest string) error {
	parts := splitTopLevelCommas(rest)
	if len(parts) != 2 {
		return berr.New(berr.EWrArgCnt, 0, 0, rest)
	}
	addrV, err := in.evalExprText(parts[0])
	if err != nil {
		return err
	}
	addr, err := addrV.ToInt32()
	if err != nil {
		return err
	}
	name := strings.TrimSpace(parts[1])
	desc, err := in.ensureWorkspace()
	if err != nil {
		return err
	}
	buf, err := in.Mem.Access(desc, int(addr), 4, mem.Read)
	if err != nil {
		return err
	}
	i := int32(binary.LittleEndian.Uint32(buf))
	in.Mem.Release(desc)
	return in.Vars.SetScalar(name, kindOfIdent(name), types.NewInt32(i))
}

// stmtTransfer copies count bytes from src to dst within the workspace
// block ("TRANSFER <src>, <dst>, <count>").
func (in *Interpreter) stmtTransfer(rest string) error {
	parts := splitTopLevelCommas(rest)
	if len(parts) != 3 {
		return berr.New(berr.EWrArgCnt, 0, 0, rest)
	}
	srcV, err := in.evalExprText(parts[0])
	if err != nil {
		return err
	}
	src, err := srcV.ToInt32()
	if err != nil {
		return err
	}
	dstV, err := in.evalExprText(parts[1])
	if err != nil {
		return err
	}
	dst, err := dstV.ToInt32()
	if err != nil {
		return err
	}
	cntV, err := in.evalExprText(parts[2])
	if err != nil {
		return err
	}
	count, err := cntV.ToInt32()
	if err != nil {
		return err
	}
	desc, err := in.ensureWorkspace()
	if err != nil {
		return err
	}
	srcBuf, err := in.Mem.Access(desc, int(src), int(count), mem.Read)
	if err != nil {
		return err
	}
	tmp := make([]byte, count)
	copy(tmp, srcBuf)
	in.Mem.Release(desc)
	dstBuf, err := in.Mem.Access(desc, int(dst), int(count), mem.Write)
	if err != nil {
		return err
	}
	copy(dstBuf, tmp)
	in.Mem.Release(desc)
	return nil
}

// stmtIoctl issues a host device-control command ("IOCTL <channel>,
// <command>$"). An IO implementation that does not also implement
// contracts.IOCtl treats every channel as a no-op success.
func (in *Interpreter) stmtIoctl(rest string) error {
	parts := splitTopLevelCommas(rest)
	if len(parts) != 2 {
		return berr.New(berr.EWrArgCnt, 0, 0, rest)
	}
	chV, err := in.evalExprText(parts[0])
	if err != nil {
		return err
	}
	ch, err := chV.ToInt32()
	if err != nil {
		return err
	}
	cmdV, err := in.evalExprText(parts[1])
	if err != nil {
		return err
	}
	cmdS, err := types.ToStringValue(in.Mem, cmdV)
	if err != nil {
		return err
	}
	cmd, err := cmdS.Text()
	if err != nil {
		return err
	}
	if dev, ok := in.IO.(contracts.IOCtl); ok {
		return dev.IOCtl(ch, cmd)
	}
	return nil
}

func (in *Interpreter) stmtRandomize(rest string) error {
	if in.Rnd == nil {
		return nil
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		in.Rnd.Seed(1)
		return nil
	}
	v, err := in.evalExprText(rest)
	if err != nil {
		return err
	}
	i, err := v.ToInt32()
	if err != nil {
		return err
	}
	in.Rnd.Seed(int64(i))
	return nil
}
