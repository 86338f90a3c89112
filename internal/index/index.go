// Package index defines the read-only view of an index the rewriter consults:
// a fixed list of segments, each able to report the value range of a field.
package index

import (
	"context"
	"fmt"
	"strconv"
)

// Segment is one immutable unit of indexed documents.
type Segment interface {
	ID() string
	// NumericRange returns the smallest and largest indexed value of field.
	// ok is false when the segment holds no postings for field.
	NumericRange(ctx context.Context, field string) (lo, hi int64, ok bool, err error)
}

// Snapshot is a point-in-time, immutable set of segments.
type Snapshot interface {
	Segments() []Segment
}

type staticSnapshot []Segment

func (s staticSnapshot) Segments() []Segment { return s }

// NewSnapshot freezes segs into a Snapshot.
func NewSnapshot(segs ...Segment) Snapshot {
	return staticSnapshot(append([]Segment(nil), segs...))
}

const signBit = uint64(1) << 63

// EncodeTerm maps v onto an unsigned key whose natural order matches the
// signed order of v.
func EncodeTerm(v int64) uint64 { return uint64(v) ^ signBit }

// DecodeTerm reverses EncodeTerm.
func DecodeTerm(u uint64) int64 { return int64(u ^ signBit) }

// FormatTerm renders v as 16 lowercase hex digits that sort lexically in
// numeric order.
func FormatTerm(v int64) string {
	return fmt.Sprintf("%016x", EncodeTerm(v))
}

// ParseTerm reverses FormatTerm.
func ParseTerm(s string) (int64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("term %q: want 16 hex digits", s)
	}
	u, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("term %q: %w", s, err)
	}
	return DecodeTerm(u), nil
}
