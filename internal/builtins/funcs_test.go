package builtins

import (
	"testing"

	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

func call(t *testing.T, tbl *Table, name string, args ...types.Value) types.Value {
	t.Helper()
	e, ok := tbl.Lookup(name)
	if !ok {
		t.Fatalf("%s not registered", name)
	}
	v, err := e.Call(mem.NewNativeManager(), nil, nil, args)
	if err != nil {
		t.Fatalf("%s(%v): %v", name, args, err)
	}
	return v
}

func TestStringFuncs(t *testing.T) {
	tbl := Standard()
	mgr := mem.NewNativeManager()
	s, _ := types.NewOwnedString(mgr, "HELLO")

	if v := call(t, tbl, "LEN", s); v.I != 5 {
		t.Errorf("LEN = %d, want 5", v.I)
	}
	left := call(t, tbl, "LEFT$", s, types.NewInt32(3))
	if txt, _ := left.Text(); txt != "HEL" {
		t.Errorf("LEFT$ = %q, want HEL", txt)
	}
	right := call(t, tbl, "RIGHT$", s, types.NewInt32(2))
	if txt, _ := right.Text(); txt != "LO" {
		t.Errorf("RIGHT$ = %q, want LO", txt)
	}
	mid := call(t, tbl, "MID$", s, types.NewInt32(2), types.NewInt32(3))
	if txt, _ := mid.Text(); txt != "ELL" {
		t.Errorf("MID$ = %q, want ELL", txt)
	}
}

func TestInstrEmptyNeedle(t *testing.T) {
	tbl := Standard()
	mgr := mem.NewNativeManager()
	hay, _ := types.NewOwnedString(mgr, "ABCDE")
	needle, _ := types.NewOwnedString(mgr, "")
	v := call(t, tbl, "INSTR", hay, needle)
	if v.I != 1 {
		t.Errorf("INSTR with empty needle = %d, want 1", v.I)
	}
}

func TestInstrFound(t *testing.T) {
	tbl := Standard()
	mgr := mem.NewNativeManager()
	hay, _ := types.NewOwnedString(mgr, "ABCDEABC")
	needle, _ := types.NewOwnedString(mgr, "ABC")
	v := call(t, tbl, "INSTR", types.NewInt32(2), hay, needle)
	if v.I != 6 {
		t.Errorf("INSTR from 2 = %d, want 6", v.I)
	}
}

func TestMathFuncs(t *testing.T) {
	tbl := Standard()
	if v := call(t, tbl, "ABS", types.NewInt32(-7)); v.I != 7 {
		t.Errorf("ABS(-7) = %d", v.I)
	}
	if v := call(t, tbl, "SGN", types.NewDouble(-3.5)); v.I != -1 {
		t.Errorf("SGN(-3.5) = %d", v.I)
	}
	if v := call(t, tbl, "INT", types.NewDouble(3.9)); v.I != 3 {
		t.Errorf("INT(3.9) = %d", v.I)
	}
}

func TestArityChecked(t *testing.T) {
	tbl := Standard()
	e, _ := tbl.Lookup("LEN")
	if _, err := e.Call(mem.NewNativeManager(), nil, nil, nil); err == nil {
		t.Fatal("expected EWrArgCnt calling LEN with no arguments")
	}
}
