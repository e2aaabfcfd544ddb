// Package contracts names the external-interfaces boundary spec.md §6
// describes: capability interfaces the interpreter depends on instead
// of reaching into global state, grounded on the teacher's
// internal/interp/contracts package.
package contracts

import (
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

// Line is one stored program line: its number and source text.
type Line struct {
	Number int32
	Text   string
}

// ProgramProvider supplies the source program the interpreter runs,
// replacing the reference implementation's single global source
// buffer with an interface a host can back with a file, an editor
// buffer, or an in-memory slice.
type ProgramProvider interface {
	// Lines returns every stored line in ascending line-number order.
	Lines() []Line
	// LineText returns the source text of a specific line number.
	LineText(num int32) (string, bool)
	// NextLineNumber returns the smallest stored line number strictly
	// greater than after, and false if none exists (end of program).
	NextLineNumber(after int32) (int32, bool)
}

// IO is the interpreter's console boundary: PRINT writes through Write,
// INPUT reads a line through ReadLine.
type IO interface {
	Write(s string) error
	ReadLine() (string, error)
}

// IOCtl is an optional capability an IO implementation may also
// satisfy, giving IOCTL <channel>, <command>$ a host device to address.
// An IO value that does not implement this interface makes IOCTL a
// no-op success, so existing programs without IOCTL devices are
// unaffected.
type IOCtl interface {
	IOCtl(channel int32, command string) error
}

// Memory re-exports the memory-manager capability so callers that only
// need storage need not import internal/mem directly.
type Memory = mem.Manager

// VariableCache is the subset of internal/vars.Store the evaluator and
// statement interpreter depend on, kept narrow so test doubles are
// cheap to write.
type VariableCache interface {
	GetScalar(name string, kind types.Kind) (types.Value, error)
	SetScalar(name string, kind types.Kind, v types.Value) error
}

// UserFunction is one DEF FN-registered function: its parameter names
// and its body expression, identified by RPN arena index.
type UserFunction struct {
	Name     string
	Params   []string
	BodyExpr int
}

// UserFunctionCache resolves DEF FN declarations by name for the
// evaluator's function-call path.
type UserFunctionCache interface {
	Lookup(name string) (UserFunction, bool)
	Define(fn UserFunction) error
}

// Locale provides locale-aware string comparison for STRCMP$ and
// locale-sensitive sorting, backed by golang.org/x/text/collate.
type Locale interface {
	Compare(a, b string) int
}

// Randomness is the source RND and RANDOMIZE consult, kept as an
// interface so tests can supply a deterministic sequence.
type Randomness interface {
	Float64() float64
	Seed(seed int64)
}
