package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/rangedex/internal/domain/search/extent"
	"github.com/kailas-cloud/rangedex/internal/domain/search/rangeq"
	"github.com/kailas-cloud/rangedex/internal/index"
)

func i64(v int64) *int64 { return &v }

func TestCovers(t *testing.T) {
	full := extent.Extent{}.Fold(10, 100)

	tests := []struct {
		name         string
		ext          extent.Extent
		lower, upper *int64
		want         bool
	}{
		{"below min, open upper", full, i64(0), nil, true},
		{"inside", full, i64(50), nil, false},
		{"equal min is not strictly below", full, i64(10), nil, false},
		{"equal max is not strictly above", full, nil, i64(100), false},
		{"outside both", full, i64(9), i64(101), true},
		{"upper inside", full, i64(0), i64(99), false},
		{"absent extent", extent.Extent{}, i64(5), i64(6), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := rangeq.NewLong("age", tt.lower, tt.upper, true, true)
			if err != nil {
				t.Fatal(err)
			}
			if got := Covers(tt.ext, c); got != tt.want {
				t.Errorf("Covers(%s, %s) = %v, want %v", tt.ext, c, got, tt.want)
			}
		})
	}
}

func TestFieldExtent(t *testing.T) {
	ext, err := FieldExtent(context.Background(), testSnapshot(t), "age")
	if err != nil {
		t.Fatal(err)
	}
	if ext.String() != "min=10 max=100" {
		t.Errorf("got %s", ext)
	}

	ext, err = FieldExtent(context.Background(), testSnapshot(t), "score")
	if err != nil {
		t.Fatal(err)
	}
	if !ext.Empty() {
		t.Errorf("expected empty extent, got %s", ext)
	}

	ext, err = FieldExtent(context.Background(), index.NewSnapshot(), "age")
	if err != nil || !ext.Empty() {
		t.Errorf("empty snapshot: %s, %v", ext, err)
	}
}

func TestFieldExtentIsNotCached(t *testing.T) {
	calls := 0
	snap := index.NewSnapshot(segmentFunc{id: "s", fn: func(context.Context, string) (int64, int64, bool, error) {
		calls++
		return int64(calls), int64(calls), true, nil
	}})

	first, _ := FieldExtent(context.Background(), snap, "age")
	second, _ := FieldExtent(context.Background(), snap, "age")
	if calls != 2 || *first.Min != 1 || *second.Min != 2 {
		t.Errorf("calls=%d first=%s second=%s", calls, first, second)
	}
}

func TestFieldExtentError(t *testing.T) {
	boom := errors.New("boom")
	snap := index.NewSnapshot(segmentFunc{id: "s", fn: func(context.Context, string) (int64, int64, bool, error) {
		return 0, 0, false, boom
	}})
	if _, err := FieldExtent(context.Background(), snap, "age"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
