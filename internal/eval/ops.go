package eval

import (
	"math"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/types"
)

func (e *Evaluator) applyUnary(op string, v types.Value) (types.Value, error) {
	switch op {
	case "NOT":
		b, err := truthy(v)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewBool(!b), nil
	case "u-":
		if v.Kind.IsFloat() {
			return mkFloat(v.Kind, -v.F), nil
		}
		i, err := v.ToInt32()
		if err != nil {
			return types.Value{}, err
		}
		if i == math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(-i), nil
	case "u+":
		return v, nil
	default:
		return types.Value{}, berr.New(berr.ESyntax, 0, 0, op)
	}
}

func mkFloat(kind types.Kind, f float64) types.Value {
	if kind == types.Single {
		return types.NewSingle(float32(f))
	}
	return types.NewDouble(f)
}

func truthy(v types.Value) (bool, error) {
	switch v.Kind {
	case types.Bool, types.Int32, types.Int16, types.UInt16, types.UInt8:
		return v.I != 0, nil
	case types.Single, types.Double:
		return v.F != 0, nil
	default:
		return false, berr.New(berr.ETypMism, 0, 0, v.Kind.String())
	}
}

func (e *Evaluator) applyBinary(op string, lhs, rhs types.Value) (types.Value, error) {
	switch op {
	case "+":
		if lhs.Kind == types.String || rhs.Kind == types.String {
			return e.concat(lhs, rhs)
		}
		return e.arith(op, lhs, rhs)
	case "-", "*", "/", "\\", "MOD", "^":
		return e.arith(op, lhs, rhs)
	case "=", "<>", "<", ">", "<=", ">=":
		return e.compare(op, lhs, rhs)
	case "AND", "OR", "XOR":
		return e.logical(op, lhs, rhs)
	case "<<", ">>":
		return e.shift(op, lhs, rhs)
	default:
		return types.Value{}, berr.New(berr.ESyntax, 0, 0, op)
	}
}

func (e *Evaluator) concat(lhs, rhs types.Value) (types.Value, error) {
	ls, err := types.ToStringValue(e.Mem, lhs)
	if err != nil {
		return types.Value{}, err
	}
	rs, err := types.ToStringValue(e.Mem, rhs)
	if err != nil {
		return types.Value{}, err
	}
	a, err := ls.Text()
	if err != nil {
		return types.Value{}, err
	}
	b, err := rs.Text()
	if err != nil {
		return types.Value{}, err
	}
	if e.Cfg != nil && e.Cfg.MaxStringLen > 0 && len(a)+len(b) > e.Cfg.MaxStringLen {
		return types.Value{}, berr.New(berr.EStrLong, 0, 0, "")
	}
	return types.NewOwnedString(e.Mem, a+b)
}

func (e *Evaluator) arith(op string, lhs, rhs types.Value) (types.Value, error) {
	common := types.CommonKind(lhs.Kind, rhs.Kind)
	if common.IsFloat() || (op == "^" && needsFloatPow(lhs, rhs)) {
		a, err := lhs.ToFloat64()
		if err != nil {
			return types.Value{}, err
		}
		b, err := rhs.ToFloat64()
		if err != nil {
			return types.Value{}, err
		}
		switch op {
		case "+":
			return mkFloat(common, a+b), nil
		case "-":
			return mkFloat(common, a-b), nil
		case "*":
			return mkFloat(common, a*b), nil
		case "/":
			if b == 0 {
				return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
			}
			return mkFloat(common, a/b), nil
		case "^":
			return mkFloat(common, math.Pow(a, b)), nil
		case "\\":
			if b == 0 {
				return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
			}
			ia, ib := int64(a), int64(b)
			return types.NewInt32(int32(ia / ib)), nil
		case "MOD":
			if b == 0 {
				return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
			}
			if common == types.Single {
				return mkFloat(common, float64(math.Mod(float64(float32(a)), float64(float32(b))))), nil
			}
			return mkFloat(common, math.Mod(a, b)), nil
		}
	}

	a, err := lhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	b, err := rhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	switch op {
	case "+":
		r := int64(a) + int64(b)
		if r > math.MaxInt32 || r < math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(int32(r)), nil
	case "-":
		r := int64(a) - int64(b)
		if r > math.MaxInt32 || r < math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(int32(r)), nil
	case "*":
		r := int64(a) * int64(b)
		if r > math.MaxInt32 || r < math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(int32(r)), nil
	case "/":
		if b == 0 {
			return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
		}
		if a == math.MinInt32 && b == -1 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(a / b), nil
	case "\\":
		if b == 0 {
			return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
		}
		if a == math.MinInt32 && b == -1 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
		}
		return types.NewInt32(a / b), nil
	case "MOD":
		if b == 0 {
			return types.Value{}, berr.New(berr.EIDivZero, 0, 0, "")
		}
		if a == math.MinInt32 && b == -1 {
			return types.NewInt32(0), nil
		}
		return types.NewInt32(a % b), nil
	case "^":
		r, err := integerPow(a, b)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewInt32(r), nil
	}
	return types.Value{}, berr.New(berr.ESyntax, 0, 0, op)
}

// needsFloatPow reports whether ^ must be computed in floating point:
// a negative exponent always does, since an integer result cannot
// represent it.
func needsFloatPow(lhs, rhs types.Value) bool {
	if lhs.Kind.IsFloat() || rhs.Kind.IsFloat() {
		return true
	}
	i, err := rhs.ToInt32()
	return err == nil && i < 0
}

// integerPow raises base to a non-negative integer exponent, rounding
// the floating intermediate half away from zero and reporting ENumOvf
// on overflow rather than silently truncating or wrapping, per the
// design's Open Question #3 resolution.
func integerPow(base, exp int32) (int32, error) {
	r := types.RoundHalfAwayFromZero(math.Pow(float64(base), float64(exp)))
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, berr.New(berr.ENumOvf, 0, 0, "")
	}
	return int32(r), nil
}

func (e *Evaluator) compare(op string, lhs, rhs types.Value) (types.Value, error) {
	if lhs.Kind == types.String || rhs.Kind == types.String {
		a, err := lhs.Text()
		if err != nil {
			return types.Value{}, err
		}
		b, err := rhs.Text()
		if err != nil {
			return types.Value{}, err
		}
		c := types.StrCmpI(a, b)
		return types.NewBool(cmpResult(op, c)), nil
	}
	a, err := lhs.ToFloat64()
	if err != nil {
		return types.Value{}, err
	}
	b, err := rhs.ToFloat64()
	if err != nil {
		return types.Value{}, err
	}
	c := 0
	if a < b {
		c = -1
	} else if a > b {
		c = 1
	}
	return types.NewBool(cmpResult(op, c)), nil
}

func cmpResult(op string, c int) bool {
	switch op {
	case "=":
		return c == 0
	case "<>":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

func (e *Evaluator) logical(op string, lhs, rhs types.Value) (types.Value, error) {
	a, err := lhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	b, err := rhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	switch op {
	case "AND":
		return types.NewInt32(a & b), nil
	case "OR":
		return types.NewInt32(a | b), nil
	case "XOR":
		return types.NewInt32(a ^ b), nil
	default:
		return types.Value{}, berr.New(berr.ESyntax, 0, 0, op)
	}
}

func (e *Evaluator) shift(op string, lhs, rhs types.Value) (types.Value, error) {
	a, err := lhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	b, err := rhs.ToInt32()
	if err != nil {
		return types.Value{}, err
	}
	if b < 0 || b > 31 {
		return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "")
	}
	if op == "<<" {
		return types.NewInt32(a << uint(b)), nil
	}
	return types.NewInt32(a >> uint(b)), nil
}
