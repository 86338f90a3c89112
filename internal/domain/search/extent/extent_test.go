package extent

import (
	"math"
	"testing"
)

func TestExtent_EmptyByDefault(t *testing.T) {
	var e Extent
	if !e.Empty() {
		t.Fatal("zero Extent should be empty")
	}
	if e.String() != "min=null max=null" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestExtent_Fold(t *testing.T) {
	var e Extent
	e = e.Fold(10, 20)
	e = e.Fold(5, 15)
	e = e.Fold(12, 100)

	if e.Empty() {
		t.Fatal("folded extent should not be empty")
	}
	if *e.Min != 5 {
		t.Errorf("Min = %d, want 5", *e.Min)
	}
	if *e.Max != 100 {
		t.Errorf("Max = %d, want 100", *e.Max)
	}
	if e.String() != "min=5 max=100" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestExtent_FoldDoesNotAlias(t *testing.T) {
	a := Extent{}.Fold(1, 2)
	b := a.Fold(0, 3)
	if *a.Min != 1 || *a.Max != 2 {
		t.Errorf("fold mutated receiver: %s", a)
	}
	if *b.Min != 0 || *b.Max != 3 {
		t.Errorf("b = %s", b)
	}
}

func TestExtent_FoldExtremes(t *testing.T) {
	e := Extent{}.Fold(math.MinInt64, math.MaxInt64)
	if *e.Min != math.MinInt64 || *e.Max != math.MaxInt64 {
		t.Errorf("extremes lost: %s", e)
	}
}
