// Package types implements the interpreter's tagged Value variant, its
// type lattice, and numeric<->string conversions (spec.md §3).
//
// Value is expressed as a tagged struct rather than one concrete type
// per kind (contrast the teacher's internal/interp/runtime Value
// interface): the evaluator promotes and dispatches on Kind far more
// often than it needs polymorphic dispatch, and a closed numeric
// lattice with eight kinds is exactly the shape a plain tag-plus-union
// models best (Design Notes §9, "Value = Null | Bool | I32 | ... ").
package types

import (
	"fmt"

	"github.com/basic-1/b1core/internal/mem"
)

// Kind tags the active representation of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int32
	Int16
	UInt16
	UInt8
	Single
	Double
	String

	// Evaluator-only tags: never stored in a variable.
	TabFn
	SpcFn
	RPNLiteral
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "NULL"
	case Bool:
		return "BOOL"
	case Int32:
		return "INT32"
	case Int16:
		return "INT16"
	case UInt16:
		return "UINT16"
	case UInt8:
		return "UINT8"
	case Single:
		return "SINGLE"
	case Double:
		return "DOUBLE"
	case String:
		return "STRING"
	case TabFn:
		return "TAB_FN"
	case SpcFn:
		return "SPC_FN"
	case RPNLiteral:
		return "RPNREC_PTR"
	default:
		return "?"
	}
}

// IsInteger reports whether k is one of the four integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case Int32, Int16, UInt16, UInt8:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is one of the two floating-point kinds.
func (k Kind) IsFloat() bool {
	return k == Single || k == Double
}

// IsNumeric reports whether k is integer or floating-point.
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat()
}

// Rank orders kinds for promotion: STRING > DOUBLE > SINGLE > INT32 >
// INT16 > UINT16 > UINT8, per spec.md §3's type lattice. Higher ranks
// first.
func (k Kind) Rank() int {
	switch k {
	case String:
		return 7
	case Double:
		return 6
	case Single:
		return 5
	case Int32:
		return 4
	case Int16:
		return 3
	case UInt16:
		return 2
	case UInt8:
		return 1
	default:
		return 0
	}
}

// stringRef is the STRING payload: either an inline short string (no
// allocation) or a memory-manager block descriptor, matching spec.md
// §3's "inline short-string payload... or a block descriptor" note.
// Owned strings must be freed exactly once; Ref strings must never be
// freed by the consumer holding them.
type stringRef struct {
	inline   string // used when isInline
	desc     mem.Descriptor
	mgr      mem.Manager
	length   int // byte length of the block named by desc
	owned    bool
	isInline bool
}

// InlineMaxLen bounds the inline short-string payload before a value
// must go through the memory manager (mirrors
// B1_TYPE_STRING_IMM_MAX_LEN, scaled up for Go's larger Value struct).
const InlineMaxLen = 15

// Value is the tagged variant every expression, variable slot, and
// array element holds.
type Value struct {
	Kind Kind
	I    int64     // Bool(0/1), Int32/Int16/UInt16/UInt8, TabFn/SpcFn argument
	F    float64   // Single/Double
	Str  stringRef // String
	RPN  int       // RPNLiteral: index into the owning RPN record slice
}

// NewNull returns the NULL value.
func NewNull() Value { return Value{Kind: Null} }

// NewBool returns a BOOL value.
func NewBool(b bool) Value {
	v := Value{Kind: Bool}
	if b {
		v.I = 1
	}
	return v
}

// NewInt32 returns an INT32 value.
func NewInt32(i int32) Value { return Value{Kind: Int32, I: int64(i)} }

// NewInt16 returns an INT16 value.
func NewInt16(i int16) Value { return Value{Kind: Int16, I: int64(i)} }

// NewUInt16 returns a UINT16 value.
func NewUInt16(i uint16) Value { return Value{Kind: UInt16, I: int64(i)} }

// NewUInt8 returns a UINT8 value.
func NewUInt8(i uint8) Value { return Value{Kind: UInt8, I: int64(i)} }

// NewSingle returns a SINGLE value.
func NewSingle(f float32) Value { return Value{Kind: Single, F: float64(f)} }

// NewDouble returns a DOUBLE value.
func NewDouble(f float64) Value { return Value{Kind: Double, F: f} }

// NewTabFn returns the evaluator-only TAB() marker carrying its column
// argument.
func NewTabFn(col int32) Value { return Value{Kind: TabFn, I: int64(col)} }

// NewSpcFn returns the evaluator-only SPC() marker carrying its count
// argument.
func NewSpcFn(n int32) Value { return Value{Kind: SpcFn, I: int64(n)} }

// NewOwnedString builds a STRING value that owns its storage: inline if
// short enough, otherwise allocated through mgr. The caller's s is
// copied; Free must be called exactly once when the value's lifetime
// ends (moving it into a variable transfers that obligation).
func NewOwnedString(mgr mem.Manager, s string) (Value, error) {
	if len(s) <= InlineMaxLen {
		return Value{Kind: String, Str: stringRef{inline: s, isInline: true, owned: true}}, nil
	}
	desc, err := mgr.Alloc(len(s))
	if err != nil {
		return Value{}, err
	}
	buf, err := mgr.Access(desc, 0, len(s), mem.Write)
	if err != nil {
		return Value{}, err
	}
	copy(buf, s)
	mgr.Release(desc)
	return Value{Kind: String, Str: stringRef{desc: desc, mgr: mgr, length: len(s), owned: true}}, nil
}

// NewRefString builds a STRING value that borrows another value's
// storage; the consumer must never call Free on it.
func NewRefString(v Value) Value {
	r := v.Str
	r.owned = false
	return Value{Kind: String, Str: r}
}

// Text returns the string's bytes as a Go string, regardless of
// inline-vs-block storage.
func (v Value) Text() (string, error) {
	if v.Kind != String {
		return "", fmt.Errorf("Text() called on %s value", v.Kind)
	}
	if v.Str.isInline || v.Str.desc == nil {
		return v.Str.inline, nil
	}
	buf, err := v.Str.mgr.Access(v.Str.desc, 0, v.Str.length, mem.Read)
	if err != nil {
		return "", err
	}
	defer v.Str.mgr.Release(v.Str.desc)
	return string(buf), nil
}

// Free releases owned string storage. It is a no-op for NULL/ref
// values and for inline strings (which need no allocator).
func (v Value) Free() {
	if v.Kind != String || !v.Str.owned || v.Str.isInline || v.Str.desc == nil {
		return
	}
	v.Str.mgr.Free(v.Str.desc)
}

// IsOwnedString reports whether v is a STRING value holding storage
// this consumer is responsible for freeing.
func (v Value) IsOwnedString() bool {
	return v.Kind == String && v.Str.owned
}
