// Package rpn implements the shunting-yard translation of a tokenized
// BASIC expression into reverse-Polish form, and the record types the
// evaluator walks (spec.md §4.3).
package rpn

import (
	"strconv"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/lexer"
)

// OpKind names an RPN record's role.
type OpKind uint8

const (
	OpLiteral OpKind = iota
	OpVariable
	OpCall      // built-in or user function call, or subscripted variable access
	OpUnary
	OpBinary
	OpArgSep // marks an omitted argument slot in a call's argument list
	OpIIFMarker
)

// Record is one node of the RPN stream: a literal, a variable
// reference, an operator, or a call with its fixed argument count.
type Record struct {
	Kind    OpKind
	Name    string // identifier spelling for OpVariable/OpCall
	Op      string // operator spelling for OpUnary/OpBinary
	NumText string // literal token text for OpLiteral (numeric or string)
	NumKind lexer.Kind
	ArgC    int // argument count for OpCall
}

// Expr is a built RPN expression: its records in evaluation order.
type Expr struct {
	Records []Record
}

func (k OpKind) String() string {
	switch k {
	case OpLiteral:
		return "LITERAL"
	case OpVariable:
		return "VARIABLE"
	case OpCall:
		return "CALL"
	case OpUnary:
		return "UNARY"
	case OpBinary:
		return "BINARY"
	case OpArgSep:
		return "ARGSEP"
	case OpIIFMarker:
		return "IIFMARKER"
	default:
		return "UNKNOWN"
	}
}

// String renders a Record for debugging output (the `rpn` CLI
// subcommand), one line per record in evaluation order.
func (r Record) String() string {
	switch r.Kind {
	case OpLiteral:
		return "LITERAL " + r.NumText
	case OpVariable:
		return "VARIABLE " + r.Name
	case OpCall:
		return "CALL " + r.Name + "/" + strconv.Itoa(r.ArgC)
	case OpUnary:
		return "UNARY " + r.Op
	case OpBinary:
		return "BINARY " + r.Op
	default:
		return r.Kind.String()
	}
}

// precedence gives binary operator priority, lower binds tighter,
// matching spec.md §4.3's table: ^ before */÷MOD before binary +-
// before shift before AND before OR/XOR before comparisons. Unary
// -,+,NOT bind tighter than everything and associate right.
var precedence = map[string]int{
	"^":   1,
	"*":   2,
	"/":   2,
	"\\":  2,
	"MOD": 2,
	"+":   3,
	"-":   3,
	"<<":  4,
	">>":  4,
	"AND": 5,
	"OR":  6,
	"XOR": 6,
	"=":   7,
	"<>":  7,
	"<":   7,
	">":   7,
	"<=":  7,
	">=":  7,
}

var rightAssoc = map[string]bool{"^": true}

func isBinaryOp(s string) bool {
	_, ok := precedence[s]
	return ok
}

// stackOp is an operator or a marker awaiting its place in the output,
// held on the shunting-yard operator stack.
type stackOp struct {
	text     string
	isFunc   bool // a pending function/subscript call
	isParen  bool
	argCount int
}

// Builder runs the shunting-yard algorithm over a token stream to
// produce an Expr, tracking per-call argument counts and open
// bracket nesting the way b1rpn.c's b1_rpn_build does.
type Builder struct {
	maxFnArgs int
	out       []Record
	ops       []stackOp
	argCounts []int
	prevKind  lexer.Kind
	prevWasOperand bool
}

// NewBuilder returns an RPN builder bounded to maxFnArgs arguments per
// call, per the active feature profile.
func NewBuilder(maxFnArgs int) *Builder {
	return &Builder{maxFnArgs: maxFnArgs}
}

// PushLiteral appends a numeric or string literal token to the output.
func (b *Builder) PushLiteral(tok lexer.Token) {
	b.out = append(b.out, Record{Kind: OpLiteral, NumText: tok.Text, NumKind: tok.Kind})
	b.prevWasOperand = true
}

// PushVariable appends a bare variable reference (no following open
// paren) to the output.
func (b *Builder) PushVariable(name string) {
	b.out = append(b.out, Record{Kind: OpVariable, Name: name})
	b.prevWasOperand = true
}

// OpenCall begins a function call or subscripted-variable access:
// name followed by "(". Argument count tracking starts at 1 and
// increments on each comma seen at this nesting depth, matching the
// reference's running argument counter.
func (b *Builder) OpenCall(name string) error {
	if len(b.ops) >= 64 {
		return berr.New(berr.EManyBrack, 0, 0, "")
	}
	b.ops = append(b.ops, stackOp{text: name, isFunc: true})
	b.argCounts = append(b.argCounts, 1)
	b.prevWasOperand = false
	return nil
}

// OpenParen begins a plain parenthesized sub-expression.
func (b *Builder) OpenParen() error {
	if len(b.ops) >= 64 {
		return berr.New(berr.EManyBrack, 0, 0, "")
	}
	b.ops = append(b.ops, stackOp{isParen: true})
	b.prevWasOperand = false
	return nil
}

// Comma closes the current operand and starts the next call argument.
func (b *Builder) Comma() error {
	if err := b.drainUntilBracket(); err != nil {
		return err
	}
	if len(b.ops) == 0 || !b.ops[len(b.ops)-1].isFunc {
		return berr.New(berr.ESyntax, 0, 0, ",")
	}
	if !b.prevWasOperand {
		// an omitted argument: IIF/TAB-style calls allow empty slots.
		b.out = append(b.out, Record{Kind: OpArgSep})
	}
	b.argCounts[len(b.argCounts)-1]++
	if b.argCounts[len(b.argCounts)-1] > b.maxFnArgs {
		return berr.New(berr.EWrArgCnt, 0, 0, "")
	}
	b.prevWasOperand = false
	return nil
}

// CloseParen closes the innermost open call or grouping paren,
// emitting an OpCall record with its final argument count when closing
// a call.
func (b *Builder) CloseParen() error {
	if err := b.drainUntilBracket(); err != nil {
		return err
	}
	if len(b.ops) == 0 {
		return berr.New(berr.EUnbrack, 0, 0, ")")
	}
	top := b.ops[len(b.ops)-1]
	b.ops = b.ops[:len(b.ops)-1]
	if top.isFunc {
		argc := b.argCounts[len(b.argCounts)-1]
		b.argCounts = b.argCounts[:len(b.argCounts)-1]
		if !b.prevWasOperand {
			b.out = append(b.out, Record{Kind: OpArgSep})
		}
		b.out = append(b.out, Record{Kind: OpCall, Name: top.text, ArgC: argc})
	}
	b.prevWasOperand = true
	return nil
}

func (b *Builder) drainUntilBracket() error {
	for len(b.ops) > 0 {
		top := b.ops[len(b.ops)-1]
		if top.isParen || top.isFunc {
			return nil
		}
		b.out = append(b.out, Record{Kind: opKindFor(top.text), Op: top.text})
		b.ops = b.ops[:len(b.ops)-1]
	}
	return nil
}

func opKindFor(op string) OpKind {
	switch op {
	case "u-", "u+", "NOT":
		return OpUnary
	default:
		return OpBinary
	}
}

// PushUnary pushes a unary operator (-, +, NOT), which always binds
// tighter than any binary operator and associates right.
func (b *Builder) PushUnary(op string) {
	b.ops = append(b.ops, stackOp{text: "u" + op})
	if op == "NOT" {
		b.ops[len(b.ops)-1].text = "NOT"
	}
	b.prevWasOperand = false
}

// PushBinary pushes a binary operator, popping and emitting
// higher-or-equal-precedence operators first per shunting-yard's usual
// rule (strictly-higher for a right-associative operator like ^).
func (b *Builder) PushBinary(op string) error {
	if !isBinaryOp(op) {
		return berr.New(berr.ESyntax, 0, 0, op)
	}
	prec := precedence[op]
	for len(b.ops) > 0 {
		top := b.ops[len(b.ops)-1]
		if top.isParen || top.isFunc {
			break
		}
		topPrec := precOf(top.text)
		if topPrec < prec || (topPrec == prec && !rightAssoc[op]) {
			b.out = append(b.out, Record{Kind: opKindFor(top.text), Op: top.text})
			b.ops = b.ops[:len(b.ops)-1]
			continue
		}
		break
	}
	b.ops = append(b.ops, stackOp{text: op})
	b.prevWasOperand = false
	return nil
}

func precOf(op string) int {
	switch op {
	case "u-", "u+", "NOT":
		return 0
	default:
		return precedence[op]
	}
}

// Finish drains any remaining operators and returns the built
// expression. An unclosed bracket at this point is EMissBrack.
func (b *Builder) Finish() (*Expr, error) {
	for len(b.ops) > 0 {
		top := b.ops[len(b.ops)-1]
		if top.isParen || top.isFunc {
			return nil, berr.New(berr.EMissBrack, 0, 0, "")
		}
		b.out = append(b.out, Record{Kind: opKindFor(top.text), Op: top.text})
		b.ops = b.ops[:len(b.ops)-1]
	}
	return &Expr{Records: b.out}, nil
}
