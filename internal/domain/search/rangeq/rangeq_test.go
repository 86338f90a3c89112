package rangeq

import "testing"

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestNewLong_RequiresField(t *testing.T) {
	if _, err := NewLong("", nil, nil, true, true); err == nil {
		t.Fatal("expected error for empty field")
	}
}

func TestNewLong_Defaults(t *testing.T) {
	c, err := NewLong("ts", int64Ptr(1), nil, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind != KindLong {
		t.Errorf("Kind = %v", c.Kind)
	}
	if c.Boost != 1 {
		t.Errorf("Boost = %v, want 1", c.Boost)
	}
	if c.Unbounded() {
		t.Error("Unbounded() = true with a lower bound")
	}
}

func TestConstruct_Unbounded(t *testing.T) {
	tests := []struct {
		name string
		c    Construct
		want bool
	}{
		{"long open", Construct{Kind: KindLong}, true},
		{"long lower", Construct{Kind: KindLong, Lower: int64Ptr(0)}, false},
		{"fielddata upper", Construct{Kind: KindLongFieldData, Upper: int64Ptr(9)}, false},
		{"term open", Construct{Kind: KindTerm}, true},
		{"term lower", Construct{Kind: KindTerm, LowerText: strPtr("a")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Unbounded(); got != tt.want {
				t.Errorf("Unbounded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_IsInteger(t *testing.T) {
	if !KindLong.IsInteger() || !KindLongFieldData.IsInteger() {
		t.Error("integer kinds not reported as integer")
	}
	if KindDouble.IsInteger() || KindTerm.IsInteger() {
		t.Error("non-integer kinds reported as integer")
	}
}

func TestConstruct_String(t *testing.T) {
	c := Construct{Kind: KindLong, Field: "age", Lower: int64Ptr(10), IncludeLower: true}
	if got := c.String(); got != "age:[10 TO *}" {
		t.Errorf("String() = %q", got)
	}
	c = Construct{Kind: KindTerm, Field: "host", UpperText: strPtr("m"), IncludeUpper: true}
	if got := c.String(); got != "host:{* TO m]" {
		t.Errorf("String() = %q", got)
	}
}
