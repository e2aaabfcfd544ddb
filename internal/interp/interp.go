// Package interp implements the statement interpreter: the prepass,
// the main fetch-execute loop over stored program lines, the
// control-flow call stack, and every statement handler (spec.md
// §4.5, §4.7).
package interp

import (
	"fmt"
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/builtins"
	"github.com/basic-1/b1core/internal/contracts"
	"github.com/basic-1/b1core/internal/eval"
	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/ident"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/rpn"
	"github.com/basic-1/b1core/internal/vars"
)

// userFunc is one DEF FN registration: its parameter list and RPN
// body, stored in an append-only arena the way the reference
// implementation's DEF FN table never releases a slot once filled.
type userFunc struct {
	name   string
	params []string
}

// funcCache is the default contracts.UserFunctionCache implementation:
// a name-keyed map over an append-only arena.
type funcCache struct {
	byName map[string]int
	arena  []userFunc
	bodies []*rpn.Expr
}

func newFuncCache() *funcCache {
	return &funcCache{byName: make(map[string]int)}
}

func (c *funcCache) Define(fn contracts.UserFunction) error {
	name := strings.ToUpper(fn.Name)
	if _, exists := c.byName[name]; exists {
		return berr.New(berr.EIdInUse, 0, 0, fn.Name)
	}
	if len(c.arena) >= 64 {
		return berr.New(berr.EManyDef, 0, 0, fn.Name)
	}
	idx := len(c.arena)
	c.arena = append(c.arena, userFunc{name: name, params: fn.Params})
	c.bodies = append(c.bodies, c.body(fn.BodyExpr))
	c.byName[name] = idx
	return nil
}

func (c *funcCache) Lookup(name string) (contracts.UserFunction, bool) {
	idx, ok := c.byName[strings.ToUpper(name)]
	if !ok {
		return contracts.UserFunction{}, false
	}
	uf := c.arena[idx]
	return contracts.UserFunction{Name: uf.name, Params: uf.params, BodyExpr: idx}, true
}

func (c *funcCache) register(name string, params []string) int {
	name = strings.ToUpper(name)
	if idx, exists := c.byName[name]; exists {
		c.arena[idx] = userFunc{name: name, params: params}
		return idx
	}
	idx := len(c.arena)
	c.arena = append(c.arena, userFunc{name: name, params: params})
	c.bodies = append(c.bodies, nil)
	c.byName[name] = idx
	return idx
}

func (c *funcCache) setBody(idx int, body *rpn.Expr) { c.bodies[idx] = body }

func (c *funcCache) body(idx int) *rpn.Expr {
	if idx < 0 || idx >= len(c.bodies) {
		return nil
	}
	return c.bodies[idx]
}

// Interpreter runs a stored program against the external capabilities
// named in spec.md §6: a program provider, console I/O, a memory
// manager, and the variable/function/locale/randomness caches the
// evaluator and statement handlers depend on.
type Interpreter struct {
	Program contracts.ProgramProvider
	IO      contracts.IO
	Mem     mem.Manager
	Vars    *vars.Store
	Cfg     *features.Config
	Loc     contracts.Locale
	Rnd     contracts.Randomness

	stmtTable *ident.StmtTable
	builtins  *builtins.Table
	funcs     *funcCache
	evaluator *eval.Evaluator

	lines []contracts.Line
	data  []dataItem
	dataPos int

	stack       stack
	explicit    bool
	printColumn int

	// optionsClosed is set the first time a statement other than
	// OPTION/DIM/REM/DATA executes; OPTION EXPLICIT/BASE after that point is
	// a fatal error (spec.md §3 Invariant 6).
	optionsClosed bool

	bp        breakpoints
	OnBreak   func(line int32)
	OnTrace   func(line int32)
	workspace mem.Descriptor

	cur      pc
	running  bool
	endedErr error
}

// New constructs an Interpreter wired to the given capabilities, the
// way the teacher's internal/interp/runner.New wires an Environment,
// TypeSystem, and Evaluator together before returning a ready
// interpreter (here: Vars, Funcs, Builtins, and Evaluator, instead of
// DWScript's OOP type system).
func New(prog contracts.ProgramProvider, io contracts.IO, mgr mem.Manager, cfg *features.Config, loc contracts.Locale, rnd contracts.Randomness) *Interpreter {
	if cfg == nil {
		cfg = features.Default()
	}
	vs := vars.NewStore(mgr, cfg.IdentHash32, false)
	fc := newFuncCache()
	bt := builtins.Standard()
	ev := eval.New(vs, fc, bt, mgr, cfg)

	in := &Interpreter{
		Program:   prog,
		IO:        io,
		Mem:       mgr,
		Vars:      vs,
		Cfg:       cfg,
		Loc:       loc,
		Rnd:       rnd,
		stmtTable: ident.NewStmtTable(cfg.IdentHash32),
		builtins:  bt,
		funcs:     fc,
		evaluator: ev,
	}
	ev.SetUserFunctionBodyResolver(fc.body)
	return in
}

// EnableExplicit turns on OPTION EXPLICIT before RUN, the same
// variable-declaration discipline a program can also switch on midway
// through itself with an OPTION EXPLICIT statement.
func (in *Interpreter) EnableExplicit() {
	in.explicit = true
	in.Vars = vars.NewStore(in.Mem, in.Cfg.IdentHash32, true)
	in.evaluator.Vars = in.Vars
}

// Run executes the stored program from its first line, returning on
// END/STOP or after falling off the end of the program (EProgUnEnd is
// reserved for a future "unterminated subprogram" check this
// implementation does not yet need).
func (in *Interpreter) Run() error {
	in.data = nil
	in.dataPos = 0
	if err := in.prepass(); err != nil {
		return err
	}
	in.Vars.Reset()
	in.stack = stack{}
	in.optionsClosed = false
	if len(in.lines) == 0 {
		return nil
	}
	in.cur = pc{lineIdx: 0, stmtIdx: 0}
	in.running = true

	for in.running {
		if in.cur.lineIdx >= len(in.lines) {
			break
		}
		stmts := splitStatements(in.lines[in.cur.lineIdx].Text)
		if in.cur.stmtIdx >= len(stmts) {
			in.cur = pc{lineIdx: in.cur.lineIdx + 1, stmtIdx: 0}
			continue
		}
		lineNum := in.lines[in.cur.lineIdx].Number
		if in.cur.stmtIdx == 0 {
			if in.OnTrace != nil {
				in.OnTrace(lineNum)
			}
			if in.OnBreak != nil && in.bp.has(lineNum) {
				in.OnBreak(lineNum)
			}
		}
		stmtText := stmts[in.cur.stmtIdx]
		next := pc{lineIdx: in.cur.lineIdx, stmtIdx: in.cur.stmtIdx + 1}
		if err := in.execStatement(stmtText, next); err != nil {
			if berr.Is(err, berr.END) || berr.Is(err, berr.STOP) {
				return nil
			}
			return in.annotate(err)
		}
	}
	return nil
}

// annotate attaches the currently executing line's number to an error
// that does not already carry position info, matching the reference
// implementation's "error reported against the line being executed"
// behavior.
func (in *Interpreter) annotate(err error) error {
	be, ok := err.(*berr.Error)
	if !ok || be.Line != 0 {
		return err
	}
	if in.cur.lineIdx < len(in.lines) {
		be.Line = in.lines[in.cur.lineIdx].Number
	}
	return be
}

// gotoLine repositions execution at the first statement of lineNum,
// reporting ELineNNotFnd if no such line exists.
func (in *Interpreter) gotoLine(lineNum int32) error {
	for i, ln := range in.lines {
		if ln.Number == lineNum {
			in.cur = pc{lineIdx: i, stmtIdx: 0}
			return nil
		}
	}
	return berr.New(berr.ELineNNotFnd, 0, 0, fmt.Sprintf("%d", lineNum))
}

func upperFields(s string) []string {
	return strings.Fields(strings.ToUpper(s))
}
