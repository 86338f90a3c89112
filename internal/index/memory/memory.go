// Package memory keeps segments in process memory. Each segment holds one
// roaring64 bitmap per integer field over the order-preserving term encoding,
// so a field's extent is the bitmap's minimum and maximum.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
)

// Segment is a sealed in-memory segment.
type Segment struct {
	info  segment.Info
	terms map[string]*roaring64.Bitmap
}

// NewSegment seals terms into a segment.
func NewSegment(info segment.Info, terms segment.Terms) *Segment {
	s := &Segment{info: info, terms: make(map[string]*roaring64.Bitmap, len(terms))}
	for field, vals := range terms {
		if len(vals) == 0 {
			continue
		}
		bm := roaring64.New()
		for _, v := range vals {
			bm.Add(index.EncodeTerm(v))
		}
		s.terms[field] = bm
	}
	return s
}

// ID returns the segment id.
func (s *Segment) ID() string { return s.info.ID() }

// Info returns the segment metadata.
func (s *Segment) Info() segment.Info { return s.info }

// NumericRange implements index.Segment.
func (s *Segment) NumericRange(_ context.Context, field string) (lo, hi int64, ok bool, err error) {
	bm, found := s.terms[field]
	if !found || bm.IsEmpty() {
		return 0, 0, false, nil
	}
	return index.DecodeTerm(bm.Minimum()), index.DecodeTerm(bm.Maximum()), true, nil
}

// Store holds the segments of every index. Snapshots taken from it are
// unaffected by later Create or Delete calls.
type Store struct {
	mu      sync.RWMutex
	indexes map[string][]*Segment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{indexes: make(map[string][]*Segment)}
}

// Create seals a new segment into idx.
func (s *Store) Create(_ context.Context, idx string, info segment.Info, terms segment.Terms) error {
	seg := NewSegment(info, terms)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.indexes[idx] {
		if existing.ID() == info.ID() {
			return fmt.Errorf("segment %s/%s already exists", idx, info.ID())
		}
	}
	// Copy-on-write keeps previously returned snapshots stable.
	segs := make([]*Segment, 0, len(s.indexes[idx])+1)
	segs = append(segs, s.indexes[idx]...)
	s.indexes[idx] = append(segs, seg)
	return nil
}

// List returns segment metadata ordered by creation time.
func (s *Store) List(_ context.Context, idx string) ([]segment.Info, error) {
	s.mu.RLock()
	segs := s.indexes[idx]
	s.mu.RUnlock()

	out := make([]segment.Info, len(segs))
	for i, seg := range segs {
		out[i] = seg.info
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt() < out[j].CreatedAt() })
	return out, nil
}

// Delete removes a segment from future snapshots.
func (s *Store) Delete(_ context.Context, idx, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	segs := s.indexes[idx]
	for i, seg := range segs {
		if seg.ID() != id {
			continue
		}
		kept := make([]*Segment, 0, len(segs)-1)
		kept = append(kept, segs[:i]...)
		s.indexes[idx] = append(kept, segs[i+1:]...)
		return nil
	}
	return fmt.Errorf("segment %s/%s: %w", idx, id, domain.ErrSegmentNotFound)
}

// Snapshot freezes the current segment list of idx.
func (s *Store) Snapshot(_ context.Context, idx string) (index.Snapshot, error) {
	s.mu.RLock()
	segs := s.indexes[idx]
	s.mu.RUnlock()

	out := make([]index.Segment, len(segs))
	for i, seg := range segs {
		out[i] = seg
	}
	return index.NewSnapshot(out...), nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops every segment.
func (s *Store) Close() {
	s.mu.Lock()
	s.indexes = make(map[string][]*Segment)
	s.mu.Unlock()
}
