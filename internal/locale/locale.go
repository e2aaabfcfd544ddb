// Package locale implements the interpreter's locale-aware string
// comparison capability, backed by golang.org/x/text/collate, the
// transitive dependency the teacher's go.mod already carries via
// golang.org/x/text.
package locale

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator implements contracts.Locale using a language tag's
// collation rules, used by the STRCMP$ builtin and any locale-aware
// sort the interpreter offers.
type Collator struct {
	col *collate.Collator
}

// New returns a Collator for the given BCP 47 language tag (e.g. "en",
// "de", "sv"); an unparseable tag falls back to the root collation.
func New(tag string) *Collator {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.Und
	}
	return &Collator{col: collate.New(t)}
}

// Compare returns -1, 0, or 1 ordering a before, equal to, or after b
// under the collator's locale rules.
func (c *Collator) Compare(a, b string) int {
	return c.col.CompareString(a, b)
}
