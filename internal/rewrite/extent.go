package rewrite

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rangedex/internal/domain/search/extent"
	"github.com/kailas-cloud/rangedex/internal/index"
)

// FieldExtent folds the per-segment value range of field across every
// segment of snap. Segments without postings for the field are skipped.
// The result is computed fresh on every call. ctx is handed to each segment
// lookup unchanged; cancellation surfaces only through those lookups.
func FieldExtent(ctx context.Context, snap index.Snapshot, field string) (extent.Extent, error) {
	ext, _, err := fieldExtent(ctx, snap, field)
	return ext, err
}

func fieldExtent(ctx context.Context, snap index.Snapshot, field string) (extent.Extent, int, error) {
	var ext extent.Extent
	scanned := 0
	for _, seg := range snap.Segments() {
		lo, hi, ok, err := seg.NumericRange(ctx, field)
		scanned++
		if err != nil {
			return extent.Extent{}, scanned, fmt.Errorf("segment %s field %s: %w", seg.ID(), field, err)
		}
		if ok {
			ext = ext.Fold(lo, hi)
		}
	}
	return ext, scanned, nil
}
