package types

import (
	"math"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/mem"
)

// CommonKind returns the kind two operands promote to before a binary
// operator applies, per spec.md §3's lattice: the higher-ranked kind
// wins, and BOOL promotes as if it were UINT8.
func CommonKind(a, b Kind) Kind {
	if a == Bool {
		a = UInt8
	}
	if b == Bool {
		b = UInt8
	}
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// ToFloat64 widens any numeric or bool Value to float64 for arithmetic
// that needs a common floating representation.
func (v Value) ToFloat64() (float64, error) {
	switch v.Kind {
	case Bool, Int32, Int16, UInt16, UInt8:
		return float64(v.I), nil
	case Single, Double:
		return v.F, nil
	default:
		return 0, berr.New(berr.ETypMism, 0, 0, v.Kind.String())
	}
}

// ToInt32 narrows any numeric Value to int32, rounding floats to the
// nearest integer (half away from zero, matching the reference
// implementation's CINT behavior) and reporting ENumOvf when the
// result does not fit.
func (v Value) ToInt32() (int32, error) {
	switch v.Kind {
	case Bool, Int32, Int16, UInt16, UInt8:
		return int32(v.I), nil
	case Single, Double:
		r := RoundHalfAwayFromZero(v.F)
		if r > math.MaxInt32 || r < math.MinInt32 {
			return 0, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return int32(r), nil
	default:
		return 0, berr.New(berr.ETypMism, 0, 0, v.Kind.String())
	}
}

// RoundHalfAwayFromZero rounds f to the nearest integer, rounding a
// tie away from zero (CINT/integer-^ narrowing behavior).
func RoundHalfAwayFromZero(f float64) float64 {
	if f >= 0 {
		return math.Floor(f + 0.5)
	}
	return math.Ceil(f - 0.5)
}

// Narrow converts v (already numeric) down to the requested integer
// kind, reporting ENumOvf if the value's magnitude does not fit the
// target width. Used when assigning an INT32 RPN result into an
// INT16/UINT16/UINT8/BOOL variable slot.
func Narrow(v Value, target Kind) (Value, error) {
	i, err := v.ToInt32()
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int32:
		return NewInt32(i), nil
	case Int16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return NewInt16(int16(i)), nil
	case UInt16:
		if i < 0 || i > math.MaxUint16 {
			return Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return NewUInt16(uint16(i)), nil
	case UInt8:
		if i < 0 || i > math.MaxUint8 {
			return Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return NewUInt8(uint8(i)), nil
	case Bool:
		return NewBool(i != 0), nil
	default:
		return Value{}, berr.New(berr.ETypMism, 0, 0, target.String())
	}
}

// Promote converts v to kind target, following the lattice's widening
// rules (spec.md §3: STRING > DOUBLE > SINGLE > INT32 > INT16 > UINT16
// > UINT8). Widening never overflows; narrowing goes through Narrow and
// can report ENumOvf.
func Promote(mgr mem.Manager, v Value, target Kind) (Value, error) {
	if v.Kind == target {
		return v, nil
	}
	if target == String {
		return ToStringValue(mgr, v)
	}
	if v.Kind == String {
		return FromStringValue(v, target)
	}
	if target.Rank() < v.Kind.Rank() {
		return Narrow(v, target)
	}
	switch target {
	case Single:
		f, err := v.ToFloat64()
		if err != nil {
			return Value{}, err
		}
		return NewSingle(float32(f)), nil
	case Double:
		f, err := v.ToFloat64()
		if err != nil {
			return Value{}, err
		}
		return NewDouble(f), nil
	case Int32, Int16, UInt16, UInt8, Bool:
		return Narrow(v, target)
	default:
		return Value{}, berr.New(berr.ETypMism, 0, 0, target.String())
	}
}

// ToStringValue renders any scalar Value as its BASIC textual form
// (STR$ semantics), allocating the result through mgr.
func ToStringValue(mgr mem.Manager, v Value) (Value, error) {
	var s string
	switch v.Kind {
	case String:
		return v, nil
	case Bool:
		if v.I != 0 {
			s = "-1"
		} else {
			s = "0"
		}
	case Int32:
		s = I32ToStr(int32(v.I))
	case Int16:
		s = I32ToStr(int32(int16(v.I)))
	case UInt16:
		s = I32ToStr(int32(uint16(v.I)))
	case UInt8:
		s = I32ToStr(int32(uint8(v.I)))
	case Single:
		s = SingleToStr(float32(v.F))
	case Double:
		s = DoubleToStr(v.F)
	default:
		return Value{}, berr.New(berr.ETypMism, 0, 0, v.Kind.String())
	}
	return NewOwnedString(mgr, s)
}

// FromStringValue parses a STRING value's text as the requested
// numeric kind (VAL semantics targeted at a specific type).
func FromStringValue(v Value, target Kind) (Value, error) {
	s, err := v.Text()
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Bool:
		i, err := StrToI32(s)
		if err != nil {
			return Value{}, err
		}
		return NewBool(i != 0), nil
	case Int32, Int16, UInt16, UInt8:
		i, err := StrToI32(s)
		if err != nil {
			return Value{}, err
		}
		return Narrow(NewInt32(i), target)
	case Single:
		f, err := StrToSingle(s)
		if err != nil {
			return Value{}, err
		}
		return NewSingle(f), nil
	case Double:
		f, err := StrToDouble(s)
		if err != nil {
			return Value{}, err
		}
		return NewDouble(f), nil
	default:
		return Value{}, berr.New(berr.ETypMism, 0, 0, target.String())
	}
}
