// Package builtins implements the interpreter's built-in function
// table: a name-keyed registry in the teacher's discoverability style
// (internal/interp/builtins/registry.go), which the evaluator calls
// through by name via Table.Lookup (a map, not a hash-sorted table).
package builtins

import (
	"github.com/basic-1/b1core/internal/contracts"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

// Category groups related built-ins for discovery, mirroring the
// teacher's Category string enum.
type Category string

const (
	CategoryMath    Category = "math"
	CategoryString  Category = "string"
	CategoryConvert Category = "convert"
	CategoryControl Category = "control"
)

// Func is a built-in function's implementation: given the interpreter's
// memory manager, locale, and randomness capabilities and its already
// type-checked arguments, it returns a Value or an error (EWArgType,
// ETypMism, EWrArgCnt, ...).
type Func func(mgr mem.Manager, loc contracts.Locale, rnd contracts.Randomness, args []types.Value) (types.Value, error)

// Entry is one registered built-in: its name, category, arity bounds,
// and implementation.
type Entry struct {
	Name     string
	Category Category
	MinArgs  int
	MaxArgs  int
	Fn       Func
}

// Call invokes e's implementation after checking args against its
// arity bounds.
func (e Entry) Call(mgr mem.Manager, loc contracts.Locale, rnd contracts.Randomness, args []types.Value) (types.Value, error) {
	if len(args) < e.MinArgs || (e.MaxArgs >= 0 && len(args) > e.MaxArgs) {
		return types.Value{}, argCountError(e.Name)
	}
	return e.Fn(mgr, loc, rnd, args)
}

// Table is the name-keyed built-in function registry. A real
// small-target build would additionally sort entries by
// internal/ident hash for bsearch dispatch the way StmtTable does for
// statement keywords; a desktop-class build's map lookup already runs
// in expected O(1), so Table keeps the simpler representation and
// leaves the hash-sorted variant to the memory-constrained build this
// one does not target.
type Table struct {
	entries map[string]Entry
}

// NewTable returns an empty built-in function table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Register adds or replaces a built-in.
func (t *Table) Register(e Entry) {
	t.entries[e.Name] = e
}

// Lookup resolves a function name to its Entry. Keys are upper-case and
// the lookup is case-sensitive; the evaluator upper-cases the name
// before calling.
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Names returns every registered built-in name, for tokenizer/help use.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	return names
}
