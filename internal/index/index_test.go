package index

import (
	"context"
	"math"
	"sort"
	"testing"
)

func TestTermEncodingPreservesOrder(t *testing.T) {
	values := []int64{math.MinInt64, -1 << 40, -100, -1, 0, 1, 42, 1 << 40, math.MaxInt64}

	var encoded []uint64
	var formatted []string
	for _, v := range values {
		encoded = append(encoded, EncodeTerm(v))
		formatted = append(formatted, FormatTerm(v))
	}

	if !sort.SliceIsSorted(encoded, func(i, j int) bool { return encoded[i] < encoded[j] }) {
		t.Errorf("encoded terms out of order: %v", encoded)
	}
	if !sort.StringsAreSorted(formatted) {
		t.Errorf("formatted terms out of order: %v", formatted)
	}

	for i, v := range values {
		if got := DecodeTerm(encoded[i]); got != v {
			t.Errorf("DecodeTerm(EncodeTerm(%d)) = %d", v, got)
		}
		got, err := ParseTerm(formatted[i])
		if err != nil {
			t.Fatalf("ParseTerm(%q): %v", formatted[i], err)
		}
		if got != v {
			t.Errorf("ParseTerm(FormatTerm(%d)) = %d", v, got)
		}
	}
}

func TestFormatTerm(t *testing.T) {
	if got := FormatTerm(0); got != "8000000000000000" {
		t.Errorf("FormatTerm(0) = %s", got)
	}
	if got := FormatTerm(-1); got != "7fffffffffffffff" {
		t.Errorf("FormatTerm(-1) = %s", got)
	}
}

func TestParseTermRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "80", "zzzzzzzzzzzzzzzz", "80000000000000000"} {
		if _, err := ParseTerm(s); err == nil {
			t.Errorf("ParseTerm(%q): expected error", s)
		}
	}
}

type fixedSegment string

func (s fixedSegment) ID() string { return string(s) }
func (fixedSegment) NumericRange(context.Context, string) (int64, int64, bool, error) {
	return 0, 0, false, nil
}

func TestNewSnapshotCopiesSegments(t *testing.T) {
	segs := []Segment{fixedSegment("a"), fixedSegment("b")}
	snap := NewSnapshot(segs...)
	segs[0] = fixedSegment("z")

	got := snap.Segments()
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "b" {
		t.Errorf("unexpected segments: %v", got)
	}
}
