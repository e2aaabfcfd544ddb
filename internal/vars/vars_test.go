package vars

import (
	"testing"

	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

func TestScalarImplicitCreation(t *testing.T) {
	s := NewStore(mem.NewNativeManager(), true, false)
	v, err := s.GetScalar("X", types.Int32)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != types.Int32 || v.I != 0 {
		t.Errorf("got %+v", v)
	}
}

func TestScalarExplicitRequiresDeclaration(t *testing.T) {
	s := NewStore(mem.NewNativeManager(), true, true)
	if _, err := s.GetScalar("X", types.Int32); err == nil {
		t.Fatal("expected EUnkIdent under OPTION EXPLICIT")
	}
}

func TestArrayBoundsAndSubscript(t *testing.T) {
	s := NewStore(mem.NewNativeManager(), true, false)
	if err := s.DimArray("A", types.Int32, []Bound{{Lower: 0, Upper: 9}}); err != nil {
		t.Fatal(err)
	}
	arr, err := s.Array("A", true)
	if err != nil {
		t.Fatal(err)
	}
	if err := arr.Set([]int32{5}, types.NewInt32(42)); err != nil {
		t.Fatal(err)
	}
	v, err := arr.Get([]int32{5})
	if err != nil {
		t.Fatal(err)
	}
	if v.I != 42 {
		t.Errorf("got %d, want 42", v.I)
	}
	if _, err := arr.Get([]int32{10}); err == nil {
		t.Fatal("expected ESubsRange for out-of-bounds subscript")
	}
}

func TestDimTwiceIsError(t *testing.T) {
	s := NewStore(mem.NewNativeManager(), true, false)
	if err := s.DimArray("A", types.Int32, []Bound{{Lower: 0, Upper: 9}}); err != nil {
		t.Fatal(err)
	}
	if err := s.DimArray("A", types.Int32, []Bound{{Lower: 0, Upper: 9}}); err == nil {
		t.Fatal("expected EIdInUse redeclaring an array")
	}
}

func TestEraseAllowsRedim(t *testing.T) {
	s := NewStore(mem.NewNativeManager(), true, false)
	if err := s.DimArray("A", types.Int32, []Bound{{Lower: 0, Upper: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := s.EraseArray("A"); err != nil {
		t.Fatal(err)
	}
	if err := s.DimArray("A", types.Int32, []Bound{{Lower: 0, Upper: 5}}); err != nil {
		t.Fatal(err)
	}
}
