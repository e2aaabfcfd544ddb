// Package eval walks a built RPN expression against a bounded
// evaluation stack, promoting operand types through the type lattice
// and dispatching operators, built-in functions, user functions, and
// array subscripts (spec.md §4.4).
package eval

import (
	"math"
	"strings"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/builtins"
	"github.com/basic-1/b1core/internal/contracts"
	"github.com/basic-1/b1core/internal/features"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/rpn"
	"github.com/basic-1/b1core/internal/types"
	"github.com/basic-1/b1core/internal/vars"
)

// maxStack bounds the evaluation stack depth, reported as ETmpStkOvf
// when exceeded, the same way the reference implementation bounds its
// fixed-size temporary value stack.
const maxStack = 256

// Evaluator walks RPN expressions against the interpreter's variable
// store, built-in and user-function tables, memory manager, and
// locale/randomness capabilities.
type Evaluator struct {
	Vars     *vars.Store
	Funcs    contracts.UserFunctionCache
	Builtins *builtins.Table
	Mem      mem.Manager
	Cfg      *features.Config
	Loc      contracts.Locale
	Rnd      contracts.Randomness

	// bodyResolver resolves a DEF FN's BodyExpr index into its compiled
	// RPN expression. It lives on the Evaluator (not a package global)
	// so two concurrently-constructed Interpreters never clobber each
	// other's DEF FN bodies.
	bodyResolver func(idx int) *rpn.Expr

	callDepth int
}

// New returns an Evaluator wired to the given capabilities.
func New(vs *vars.Store, funcs contracts.UserFunctionCache, bt *builtins.Table, mgr mem.Manager, cfg *features.Config) *Evaluator {
	return &Evaluator{Vars: vs, Funcs: funcs, Builtins: bt, Mem: mgr, Cfg: cfg}
}

const maxUserCallDepth = 32

// Eval walks expr's RPN records and returns the resulting Value.
func (e *Evaluator) Eval(expr *rpn.Expr) (types.Value, error) {
	var stack []types.Value
	push := func(v types.Value) error {
		if len(stack) >= maxStack {
			return berr.New(berr.ETmpStkOvf, 0, 0, "")
		}
		stack = append(stack, v)
		return nil
	}
	pop := func() (types.Value, error) {
		if len(stack) == 0 {
			return types.Value{}, berr.New(berr.ESyntax, 0, 0, "")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, rec := range expr.Records {
		switch rec.Kind {
		case rpn.OpLiteral:
			v, err := literalValue(e.Mem, rec)
			if err != nil {
				return types.Value{}, err
			}
			if err := push(v); err != nil {
				return types.Value{}, err
			}

		case rpn.OpArgSep:
			if err := push(types.NewNull()); err != nil {
				return types.Value{}, err
			}

		case rpn.OpVariable:
			v, err := e.Vars.GetScalar(rec.Name, kindOfName(rec.Name))
			if err != nil {
				return types.Value{}, err
			}
			if err := push(v); err != nil {
				return types.Value{}, err
			}

		case rpn.OpUnary:
			v, err := pop()
			if err != nil {
				return types.Value{}, err
			}
			r, err := e.applyUnary(rec.Op, v)
			if err != nil {
				return types.Value{}, err
			}
			if err := push(r); err != nil {
				return types.Value{}, err
			}

		case rpn.OpBinary:
			rhs, err := pop()
			if err != nil {
				return types.Value{}, err
			}
			lhs, err := pop()
			if err != nil {
				return types.Value{}, err
			}
			r, err := e.applyBinary(rec.Op, lhs, rhs)
			if err != nil {
				return types.Value{}, err
			}
			if err := push(r); err != nil {
				return types.Value{}, err
			}

		case rpn.OpCall:
			args := make([]types.Value, rec.ArgC)
			for i := rec.ArgC - 1; i >= 0; i-- {
				v, err := pop()
				if err != nil {
					return types.Value{}, err
				}
				args[i] = v
			}
			r, err := e.call(rec.Name, args)
			if err != nil {
				return types.Value{}, err
			}
			if err := push(r); err != nil {
				return types.Value{}, err
			}
		}
	}

	if len(stack) != 1 {
		return types.Value{}, berr.New(berr.ESyntax, 0, 0, "")
	}
	return stack[0], nil
}

// call resolves name to an array subscript access, a built-in
// function, or a user-defined function, in that priority order, the
// same resolution order the reference implementation's identifier
// lookup uses (variables shadow built-ins, built-ins shadow DEF FN).
func (e *Evaluator) call(name string, args []types.Value) (types.Value, error) {
	if arr, err := e.Vars.Array(name, e.Cfg == nil || e.Cfg.IdentHash32); err == nil {
		subs := make([]int32, len(args))
		for i, a := range args {
			s, err := a.ToInt32()
			if err != nil {
				return types.Value{}, err
			}
			subs[i] = s
		}
		return arr.Get(subs)
	}

	if e.Builtins != nil {
		if fn, ok := e.Builtins.Lookup(strings.ToUpper(name)); ok {
			return fn.Call(e.Mem, e.Loc, e.Rnd, args)
		}
	}

	if e.Funcs != nil {
		if fn, ok := e.Funcs.Lookup(strings.ToUpper(name)); ok {
			return e.callUserFunction(fn, args)
		}
	}

	return types.Value{}, berr.New(berr.EUnkIdent, 0, 0, name)
}

func (e *Evaluator) callUserFunction(fn contracts.UserFunction, args []types.Value) (types.Value, error) {
	if len(args) != len(fn.Params) {
		return types.Value{}, berr.New(berr.EWrArgCnt, 0, 0, fn.Name)
	}
	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > maxUserCallDepth {
		return types.Value{}, berr.New(berr.EUDefOvf, 0, 0, fn.Name)
	}

	saved := make([]types.Value, len(fn.Params))
	for i, p := range fn.Params {
		v, err := e.Vars.GetScalar(p, kindOfName(p))
		if err != nil {
			return types.Value{}, err
		}
		saved[i] = v
		if err := e.Vars.SetScalar(p, kindOfName(p), args[i]); err != nil {
			return types.Value{}, err
		}
	}
	defer func() {
		for i, p := range fn.Params {
			e.Vars.SetScalar(p, kindOfName(p), saved[i])
		}
	}()

	expr := e.userFunctionBody(fn)
	if expr == nil {
		return types.Value{}, berr.New(berr.ENoGosub, 0, 0, fn.Name)
	}
	return e.Eval(expr)
}

// SetUserFunctionBodyResolver wires the DEF FN arena lookup, called
// once during interpreter construction. The resolver is a function
// value rather than an interface method because the arena belongs to
// internal/interp, which already depends on this package.
func (e *Evaluator) SetUserFunctionBodyResolver(f func(idx int) *rpn.Expr) {
	e.bodyResolver = f
}

func (e *Evaluator) userFunctionBody(fn contracts.UserFunction) *rpn.Expr {
	if e.bodyResolver == nil {
		return nil
	}
	return e.bodyResolver(fn.BodyExpr)
}

// kindOfName derives the declared kind implied by a variable's
// trailing type-specifier character, defaulting to INT32 (the
// reference implementation's default numeric type) for unsuffixed
// names.
func kindOfName(name string) types.Kind {
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
	case '%':
		return types.Int32
	default:
		return types.Int32
	}
}

func literalValue(mgr mem.Manager, rec rpn.Record) (types.Value, error) {
	if rec.NumKind.String() == "STRING" {
		return types.NewOwnedString(mgr, rec.NumText)
	}
	// numeric literal: parse as double if it looks fractional, else
	// as an INT32, matching the type the tokenizer's NUMERIC flags
	// already determined.
	if containsAny(rec.NumText, ".eExX") {
		f, err := types.StrToDouble(stripHexPrefix(rec.NumText))
		if err == nil {
			return types.NewDouble(f), nil
		}
	}
	if hasHexPrefix(rec.NumText) {
		i, err := parseHex(rec.NumText)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewInt32(i), nil
	}
	i, err := types.StrToI32(rec.NumText)
	if err != nil {
		f, ferr := types.StrToDouble(rec.NumText)
		if ferr != nil {
			return types.Value{}, err
		}
		return types.NewDouble(f), nil
	}
	return types.NewInt32(i), nil
}

func containsAny(s, chars string) bool {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(chars); j++ {
			if s[i] == chars[j] {
				return true
			}
		}
	}
	return false
}

func hasHexPrefix(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func stripHexPrefix(s string) string { return s }

func parseHex(s string) (int32, error) {
	var v int64
	for i := 2; i < len(s); i++ {
		c := s[i]
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			continue
		}
		v = v*16 + d
		if v > math.MaxUint32 {
			return 0, berr.New(berr.ENumOvf, 0, 0, s)
		}
	}
	return int32(uint32(v)), nil
}
