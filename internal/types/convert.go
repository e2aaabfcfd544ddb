package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/basic-1/b1core/internal/berr"
)

// StrToI32 parses a signed 32-bit integer the way the reference
// implementation's b1_t_strtoi32 does: optional leading +/-, one or
// more decimal digits, overflow detected one digit at a time rather
// than after the fact, and EInvNum on an empty or non-numeric string
// (there is no separate "trailing garbage" case since callers only
// ever pass an already-scanned numeric token).
func StrToI32(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, berr.New(berr.EInvNum, 0, 0, s)
	}
	i := 0
	neg := false
	switch s[0] {
	case '-':
		neg = true
		i++
	case '+':
		i++
	}
	if i == len(s) {
		return 0, berr.New(berr.EInvNum, 0, 0, s)
	}
	var val int64
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, berr.New(berr.EInvNum, 0, 0, s)
		}
		d := int64(c - '0')
		if neg {
			d = -d
		}
		val = val*10 + d
		if val > math.MaxInt32 || val < math.MinInt32 {
			return 0, berr.New(berr.ENumOvf, 0, 0, s)
		}
	}
	return int32(val), nil
}

// I32ToStr formats a signed 32-bit integer in decimal with PRINT's
// leading sign-space and trailing space (spec.md §4.5: "numerics print
// with a leading sign-space and a trailing space"), the Go equivalent
// of b1_t_i32tostr's sprintf("%ld", ...) call plus the padding PRINT
// applies around it.
func I32ToStr(v int32) string {
	n := int64(v)
	sign := " "
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + strconv.FormatInt(n, 10) + " "
}

// StrToSingle parses a 32-bit float the way b1_t_strtosingle wraps
// atof: permissive, no explicit error path beyond what strconv itself
// rejects.
func StrToSingle(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, berr.New(berr.EInvNum, 0, 0, s)
	}
	return float32(f), nil
}

// SingleToStr formats a 32-bit float using Go's shortest round-tripping
// representation, the idiomatic analogue of b1_t_singletostr's
// significand-digit-by-digit formatter, padded with PRINT's leading
// sign-space and trailing space.
func SingleToStr(v float32) string {
	f := float64(v)
	sign := " "
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + strconv.FormatFloat(f, 'g', -1, 32) + " "
}

// StrToDouble parses a 64-bit float the way b1_t_strtodouble wraps
// atof.
func StrToDouble(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, berr.New(berr.EInvNum, 0, 0, s)
	}
	return f, nil
}

// DoubleToStr formats a 64-bit float using Go's shortest round-tripping
// representation, padded with PRINT's leading sign-space and trailing
// space.
func DoubleToStr(v float64) string {
	sign := " "
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconv.FormatFloat(v, 'g', -1, 64) + " "
}

// StrCmpI compares two strings the way b1_t_strcmpi does: byte-wise,
// English letters folded to a common case, returning -1/0/1. Unlike the
// reference implementation this never special-cases a length-prefixed
// second operand; Go strings already carry their own length.
func StrCmpI(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := foldByte(a[i]), foldByte(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// typeSpecs maps a BASIC type-specifier suffix character to its kind,
// grounding b1_t_get_type_by_type_spec's switch (% ! # $ for
// INT32/SINGLE/DOUBLE/STRING).
var typeSpecs = map[byte]Kind{
	'%': Int32,
	'!': Single,
	'#': Double,
	'$': String,
}

// KindByTypeSpec resolves a trailing type-specifier character (as in
// A%, B$) to its Kind. ok is false for any character that is not a
// recognized specifier.
func KindByTypeSpec(c byte) (Kind, bool) {
	k, ok := typeSpecs[c]
	return k, ok
}

// typeNames lists the keyword spelling for each explicit-type DIM/DEF
// clause, mirroring b1_t_get_type_by_name's linear scan over
// b1_t_type_names.
var typeNames = []struct {
	name string
	kind Kind
}{
	{"INTEGER", Int32},
	{"SINGLE", Single},
	{"DOUBLE", Double},
	{"STRING", String},
	{"INT16", Int16},
	{"WORD", UInt16},
	{"BYTE", UInt8},
}

// KindByName resolves an explicit-type keyword (INTEGER, STRING, ...)
// to its Kind using the same case-insensitive comparison as
// b1_t_get_type_by_name.
func KindByName(name string) (Kind, bool) {
	for _, e := range typeNames {
		if StrCmpI(e.name, name) == 0 {
			return e.kind, true
		}
	}
	return 0, false
}
