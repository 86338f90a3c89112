package segment

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rangedex/internal/index"
)

// remoteSegment answers extent lookups from the segment's term sorted sets.
type remoteSegment struct {
	repo  *Repo
	index string
	id    string
}

func (s *remoteSegment) ID() string { return s.id }

// NumericRange reads the first and last encoded term of field.
func (s *remoteSegment) NumericRange(ctx context.Context, field string) (lo, hi int64, ok bool, err error) {
	first, last, ok, err := s.repo.store.ZEdges(ctx, s.repo.termsKey(s.index, s.id, field))
	if err != nil || !ok {
		return 0, 0, false, err
	}
	if lo, err = index.ParseTerm(first); err != nil {
		return 0, 0, false, fmt.Errorf("segment %s: %w", s.id, err)
	}
	if hi, err = index.ParseTerm(last); err != nil {
		return 0, 0, false, fmt.Errorf("segment %s: %w", s.id, err)
	}
	return lo, hi, true, nil
}
