// Package program implements the default in-memory Program-line
// provider backing the CLI: a sorted slice of source lines, grounded
// on the reference implementation's single in-memory program buffer
// (b1.h's b1_progline) but exposed through contracts.ProgramProvider
// instead of a package-level global.
package program

import (
	"sort"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/contracts"
)

// Memory is an in-memory, line-number-ordered program store.
type Memory struct {
	lines map[int32]string
	order []int32
}

// New returns an empty program.
func New() *Memory {
	return &Memory{lines: make(map[int32]string)}
}

// SetLine stores or replaces the text of line number num. Storing an
// empty string deletes the line, matching direct-mode BASIC's "type a
// line number alone to delete it" convention.
func (m *Memory) SetLine(num int32, text string) {
	if text == "" {
		if _, ok := m.lines[num]; ok {
			delete(m.lines, num)
			m.reindex()
		}
		return
	}
	if _, ok := m.lines[num]; !ok {
		m.order = append(m.order, num)
		sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })
	}
	m.lines[num] = text
}

func (m *Memory) reindex() {
	order := make([]int32, 0, len(m.lines))
	for n := range m.lines {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	m.order = order
}

// Lines returns every stored line in ascending order.
func (m *Memory) Lines() []contracts.Line {
	out := make([]contracts.Line, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, contracts.Line{Number: n, Text: m.lines[n]})
	}
	return out
}

// LineText returns a specific line's source text.
func (m *Memory) LineText(num int32) (string, bool) {
	s, ok := m.lines[num]
	return s, ok
}

// NextLineNumber returns the smallest stored line number greater than
// after.
func (m *Memory) NextLineNumber(after int32) (int32, bool) {
	lo, hi := 0, len(m.order)
	for lo < hi {
		mid := (lo + hi) / 2
		if m.order[mid] <= after {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(m.order) {
		return m.order[lo], true
	}
	return 0, false
}

// LoadSource splits a multi-line program text into "<num> <rest>"
// lines and stores each one, reporting EInvLineN for a line that does
// not start with a line number.
func (m *Memory) LoadSource(src string) error {
	start := 0
	for start <= len(src) {
		end := start
		for end < len(src) && src[end] != '\n' {
			end++
		}
		line := src[start:end]
		if end-1 >= start && len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if err := m.loadLine(line); err != nil {
			return err
		}
		start = end + 1
	}
	return nil
}

func (m *Memory) loadLine(line string) error {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	if i >= len(line) {
		return nil
	}
	j := i
	for j < len(line) && line[j] >= '0' && line[j] <= '9' {
		j++
	}
	if j == i {
		return berr.New(berr.EInvLineN, 0, 0, line)
	}
	var num int32
	for k := i; k < j; k++ {
		num = num*10 + int32(line[k]-'0')
	}
	for j < len(line) && line[j] == ' ' {
		j++
	}
	m.SetLine(num, line[j:])
	return nil
}
