package types

import (
	"testing"

	"github.com/basic-1/b1core/internal/mem"
)

func TestOwnedStringRoundTrip(t *testing.T) {
	mgr := mem.NewNativeManager()
	tests := []string{"", "short", "this string is long enough to exceed the inline threshold"}
	for _, s := range tests {
		v, err := NewOwnedString(mgr, s)
		if err != nil {
			t.Fatalf("NewOwnedString(%q): %v", s, err)
		}
		got, err := v.Text()
		if err != nil {
			t.Fatalf("Text(): %v", err)
		}
		if got != s {
			t.Errorf("got %q, want %q", got, s)
		}
		v.Free()
	}
}

func TestRefStringDoesNotOwn(t *testing.T) {
	mgr := mem.NewNativeManager()
	v, err := NewOwnedString(mgr, "owner of this storage exceeds the inline cutoff")
	if err != nil {
		t.Fatal(err)
	}
	ref := NewRefString(v)
	if ref.IsOwnedString() {
		t.Error("NewRefString value should not report as owned")
	}
	ref.Free() // must be a no-op; only v.Free() may release the block
	got, err := v.Text()
	if err != nil || got == "" {
		t.Errorf("original value unusable after ref.Free(): %v, %q", err, got)
	}
	v.Free()
}

func TestRankOrdering(t *testing.T) {
	kinds := []Kind{UInt8, UInt16, Int16, Int32, Single, Double, String}
	for i := 1; i < len(kinds); i++ {
		if kinds[i].Rank() <= kinds[i-1].Rank() {
			t.Errorf("%s should outrank %s", kinds[i], kinds[i-1])
		}
	}
}
