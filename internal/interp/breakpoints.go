package interp

import (
	"sort"

	"github.com/basic-1/b1core/internal/berr"
)

// maxBreakpoints bounds the breakpoint set, matching b1dbg.c's
// fixed-capacity sorted array; a Go slice and copy replace its
// memmove-based insert/remove, which the design's Open Question #1
// flags as buggy in the original (the byte/element-count mixup b1dbg
// had when removing from the middle of the array has no analogue here
// since Go's copy works in slice elements, not raw bytes).
const maxBreakpoints = 32

// breakpoints is a small sorted set of program line numbers where Run
// pauses to call the interpreter's break hook before executing that
// line's first statement.
type breakpoints struct {
	lines []int32
}

// Set inserts line into the breakpoint set, keeping it sorted and
// de-duplicated, reporting EManyBrkPnt once the set is full.
func (b *breakpoints) Set(line int32) error {
	i := sort.Search(len(b.lines), func(i int) bool { return b.lines[i] >= line })
	if i < len(b.lines) && b.lines[i] == line {
		return nil
	}
	if len(b.lines) >= maxBreakpoints {
		return berr.New(berr.EManyBrkPnt, 0, 0, "")
	}
	b.lines = append(b.lines, 0)
	copy(b.lines[i+1:], b.lines[i:])
	b.lines[i] = line
	return nil
}

// Clear removes line from the breakpoint set, a no-op if it was not
// set.
func (b *breakpoints) Clear(line int32) {
	i := sort.Search(len(b.lines), func(i int) bool { return b.lines[i] >= line })
	if i < len(b.lines) && b.lines[i] == line {
		b.lines = append(b.lines[:i], b.lines[i+1:]...)
	}
}

// List returns the breakpointed line numbers in ascending order.
func (b *breakpoints) List() []int32 {
	out := make([]int32, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *breakpoints) has(line int32) bool {
	i := sort.Search(len(b.lines), func(i int) bool { return b.lines[i] >= line })
	return i < len(b.lines) && b.lines[i] == line
}

// SetBreakpoint registers line as a breakpoint the run loop pauses at.
func (in *Interpreter) SetBreakpoint(line int32) error {
	return in.bp.Set(line)
}

// ClearBreakpoint removes a previously set breakpoint.
func (in *Interpreter) ClearBreakpoint(line int32) {
	in.bp.Clear(line)
}

// Breakpoints lists the currently set breakpoint lines.
func (in *Interpreter) Breakpoints() []int32 {
	return in.bp.List()
}
