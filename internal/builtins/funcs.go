package builtins

import (
	"math"

	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/contracts"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

func argCountError(name string) error {
	return berr.New(berr.EWrArgCnt, 0, 0, name)
}

func wantFloat(v types.Value) (float64, error) { return v.ToFloat64() }

func wantString(v types.Value) (string, error) { return v.Text() }

func wantInt(v types.Value) (int32, error) { return v.ToInt32() }

// Standard registers the reference implementation's core built-in
// function set (math, string, conversion, and the IIF control helpers;
// TAB and SPC are not registered), plus the RND/RANDOMIZE and STRCMP$ supplements SPEC_FULL.md
// adds beyond the distilled spec.
func Standard() *Table {
	t := NewTable()

	mathFn := func(name string, f func(float64) float64) {
		t.Register(Entry{Name: name, Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
			x, err := wantFloat(args[0])
			if err != nil {
				return types.Value{}, err
			}
			return types.NewDouble(f(x)), nil
		}})
	}
	mathFn("SIN", math.Sin)
	mathFn("COS", math.Cos)
	mathFn("TAN", math.Tan)
	mathFn("ATN", math.Atan)
	mathFn("EXP", math.Exp)

	t.Register(Entry{Name: "LOG", Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		x, err := wantFloat(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if x <= 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "LOG")
		}
		return types.NewDouble(math.Log(x)), nil
	}})

	t.Register(Entry{Name: "SQR", Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		x, err := wantFloat(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if x < 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "SQR")
		}
		return types.NewDouble(math.Sqrt(x)), nil
	}})

	t.Register(Entry{Name: "ABS", Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		v := args[0]
		if v.Kind.IsFloat() {
			return types.NewDouble(math.Abs(v.F)), nil
		}
		i, err := wantInt(v)
		if err != nil {
			return types.Value{}, err
		}
		if i == math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "ABS")
		}
		if i < 0 {
			i = -i
		}
		return types.NewInt32(i), nil
	}})

	t.Register(Entry{Name: "SGN", Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		x, err := wantFloat(args[0])
		if err != nil {
			return types.Value{}, err
		}
		switch {
		case x > 0:
			return types.NewInt32(1), nil
		case x < 0:
			return types.NewInt32(-1), nil
		default:
			return types.NewInt32(0), nil
		}
	}})

	t.Register(Entry{Name: "INT", Category: CategoryMath, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		x, err := wantFloat(args[0])
		if err != nil {
			return types.Value{}, err
		}
		f := math.Floor(x)
		if f > math.MaxInt32 || f < math.MinInt32 {
			return types.Value{}, berr.New(berr.ENumOvf, 0, 0, "INT")
		}
		return types.NewInt32(int32(f)), nil
	}})

	t.Register(Entry{Name: "RND", Category: CategoryMath, MinArgs: 0, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, rnd contracts.Randomness, args []types.Value) (types.Value, error) {
		if rnd == nil {
			return types.Value{}, berr.New(berr.EEnvFat, 0, 0, "RND")
		}
		return types.NewDouble(rnd.Float64()), nil
	}})

	t.Register(Entry{Name: "LEN", Category: CategoryString, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		return types.NewInt32(int32(len(s))), nil
	}})

	t.Register(Entry{Name: "LEFT$", Category: CategoryString, MinArgs: 2, MaxArgs: 2, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		n, err := wantInt(args[1])
		if err != nil {
			return types.Value{}, err
		}
		if n < 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "LEFT$")
		}
		if int(n) > len(s) {
			n = int32(len(s))
		}
		return types.NewOwnedString(mgr, s[:n])
	}})

	t.Register(Entry{Name: "RIGHT$", Category: CategoryString, MinArgs: 2, MaxArgs: 2, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		n, err := wantInt(args[1])
		if err != nil {
			return types.Value{}, err
		}
		if n < 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "RIGHT$")
		}
		if int(n) > len(s) {
			n = int32(len(s))
		}
		return types.NewOwnedString(mgr, s[len(s)-int(n):])
	}})

	t.Register(Entry{Name: "MID$", Category: CategoryString, MinArgs: 2, MaxArgs: 3, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		start, err := wantInt(args[1])
		if err != nil {
			return types.Value{}, err
		}
		if start < 1 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "MID$")
		}
		if int(start) > len(s) {
			return types.NewOwnedString(mgr, "")
		}
		length := len(s) - int(start-1)
		if len(args) == 3 {
			n, err := wantInt(args[2])
			if err != nil {
				return types.Value{}, err
			}
			if n < 0 {
				return types.Value{}, berr.New(berr.EInvArg, 0, 0, "MID$")
			}
			if int(n) < length {
				length = int(n)
			}
		}
		return types.NewOwnedString(mgr, s[start-1:int(start-1)+length])
	}})

	t.Register(Entry{Name: "INSTR", Category: CategoryString, MinArgs: 2, MaxArgs: 3, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		start := 1
		hayIdx, needleIdx := 0, 1
		if len(args) == 3 {
			s, err := wantInt(args[0])
			if err != nil {
				return types.Value{}, err
			}
			start = int(s)
			hayIdx, needleIdx = 1, 2
		}
		hay, err := wantString(args[hayIdx])
		if err != nil {
			return types.Value{}, err
		}
		needle, err := wantString(args[needleIdx])
		if err != nil {
			return types.Value{}, err
		}
		if start < 1 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "INSTR")
		}
		// empty needle matches at the search start position, clamped to
		// len(hay)+1 (Open Question resolution, spec.md §9).
		if needle == "" {
			if start > len(hay)+1 {
				start = len(hay) + 1
			}
			return types.NewInt32(int32(start)), nil
		}
		if start > len(hay) {
			return types.NewInt32(0), nil
		}
		idx := indexFrom(hay, needle, start-1)
		return types.NewInt32(int32(idx)), nil
	}})

	t.Register(Entry{Name: "STR$", Category: CategoryConvert, MinArgs: 1, MaxArgs: 1, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		return types.ToStringValue(mgr, args[0])
	}})

	t.Register(Entry{Name: "VAL", Category: CategoryConvert, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if f, ferr := types.StrToDouble(s); ferr == nil {
			return types.NewDouble(f), nil
		}
		return types.NewDouble(0), nil
	}})

	t.Register(Entry{Name: "CHR$", Category: CategoryConvert, MinArgs: 1, MaxArgs: 1, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		i, err := wantInt(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if i < 0 || i > 255 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "CHR$")
		}
		return types.NewOwnedString(mgr, string([]byte{byte(i)}))
	}})

	t.Register(Entry{Name: "ASC", Category: CategoryConvert, MinArgs: 1, MaxArgs: 1, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		s, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if s == "" {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "ASC")
		}
		return types.NewInt32(int32(s[0])), nil
	}})

	t.Register(Entry{Name: "STRING$", Category: CategoryString, MinArgs: 2, MaxArgs: 2, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		n, err := wantInt(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if n < 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "STRING$")
		}
		var c byte
		if args[1].Kind == types.String {
			s, err := wantString(args[1])
			if err != nil {
				return types.Value{}, err
			}
			if s == "" {
				return types.Value{}, berr.New(berr.EInvArg, 0, 0, "STRING$")
			}
			c = s[0]
		} else {
			code, err := wantInt(args[1])
			if err != nil {
				return types.Value{}, err
			}
			c = byte(code)
		}
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = c
		}
		return types.NewOwnedString(mgr, string(buf))
	}})

	t.Register(Entry{Name: "SPACE$", Category: CategoryString, MinArgs: 1, MaxArgs: 1, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		n, err := wantInt(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if n < 0 {
			return types.Value{}, berr.New(berr.EInvArg, 0, 0, "SPACE$")
		}
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = ' '
		}
		return types.NewOwnedString(mgr, string(buf))
	}})

	caseFn := func(name string, upper bool) {
		t.Register(Entry{Name: name, Category: CategoryString, MinArgs: 1, MaxArgs: 1, Fn: func(mgr mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
			s, err := wantString(args[0])
			if err != nil {
				return types.Value{}, err
			}
			buf := []byte(s)
			for i, c := range buf {
				if upper && c >= 'a' && c <= 'z' {
					buf[i] = c - 'a' + 'A'
				} else if !upper && c >= 'A' && c <= 'Z' {
					buf[i] = c - 'A' + 'a'
				}
			}
			return types.NewOwnedString(mgr, string(buf))
		}})
	}
	caseFn("UCASE$", true)
	caseFn("LCASE$", false)

	t.Register(Entry{Name: "STRCMP$", Category: CategoryString, MinArgs: 2, MaxArgs: 2, Fn: func(_ mem.Manager, loc contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		a, err := wantString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		b, err := wantString(args[1])
		if err != nil {
			return types.Value{}, err
		}
		if loc != nil {
			return types.NewInt32(int32(loc.Compare(a, b))), nil
		}
		return types.NewInt32(int32(types.StrCmpI(a, b))), nil
	}})

	t.Register(Entry{Name: "IIF", Category: CategoryControl, MinArgs: 3, MaxArgs: 3, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		b, err := truthyArg(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if b {
			return args[1], nil
		}
		return args[2], nil
	}})

	t.Register(Entry{Name: "IIF$", Category: CategoryControl, MinArgs: 3, MaxArgs: 3, Fn: func(_ mem.Manager, _ contracts.Locale, _ contracts.Randomness, args []types.Value) (types.Value, error) {
		b, err := truthyArg(args[0])
		if err != nil {
			return types.Value{}, err
		}
		if b {
			return args[1], nil
		}
		return args[2], nil
	}})

	return t
}

func truthyArg(v types.Value) (bool, error) {
	i, err := v.ToInt32()
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

// indexFrom returns the 1-based position of needle in hay starting the
// search at the 0-based offset from, or 0 if not found.
func indexFrom(hay, needle string, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(hay) {
		return 0
	}
	for i := from; i+len(needle) <= len(hay); i++ {
		if hay[i:i+len(needle)] == needle {
			return i + 1
		}
	}
	return 0
}
