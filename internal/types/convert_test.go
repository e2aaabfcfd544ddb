package types

import "testing"

func TestStrToI32(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int32
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"positive", "12345", 12345, false},
		{"leading plus", "+42", 42, false},
		{"negative", "-42", -42, false},
		{"max", "2147483647", 2147483647, false},
		{"min", "-2147483648", -2147483648, false},
		{"overflow positive", "2147483648", 0, true},
		{"overflow negative", "-2147483649", 0, true},
		{"empty", "", 0, true},
		{"sign only", "-", 0, true},
		{"non numeric", "12a", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StrToI32(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StrToI32(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("StrToI32(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestI32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2147483647, -2147483648, 100, -100} {
		s := I32ToStr(v)
		got, err := StrToI32(s)
		if err != nil {
			t.Fatalf("StrToI32(I32ToStr(%d)) error = %v", v, err)
		}
		if got != v {
			t.Errorf("round trip: got %d, want %d", got, v)
		}
	}
}

func TestStrCmpI(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"ABC", "abc", 0},
		{"abc", "abd", -1},
		{"abd", "abc", 1},
		{"ab", "abc", -1},
		{"abc", "ab", 1},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := StrCmpI(tt.a, tt.b); got != tt.want {
			t.Errorf("StrCmpI(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCommonKind(t *testing.T) {
	tests := []struct {
		a, b Kind
		want Kind
	}{
		{Int32, Int16, Int32},
		{UInt8, Bool, UInt8},
		{Double, Int32, Double},
		{String, Double, String},
		{Single, Double, Double},
	}
	for _, tt := range tests {
		if got := CommonKind(tt.a, tt.b); got != tt.want {
			t.Errorf("CommonKind(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNarrowOverflow(t *testing.T) {
	_, err := Narrow(NewInt32(300), UInt8)
	if err == nil {
		t.Fatal("expected overflow error narrowing 300 to UINT8")
	}
	v, err := Narrow(NewInt32(200), UInt8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.I != 200 {
		t.Errorf("got %d, want 200", v.I)
	}
}

func TestKindByTypeSpec(t *testing.T) {
	if k, ok := KindByTypeSpec('$'); !ok || k != String {
		t.Errorf("KindByTypeSpec('$') = %v, %v", k, ok)
	}
	if _, ok := KindByTypeSpec('?'); ok {
		t.Error("KindByTypeSpec('?') should not resolve")
	}
}
