// Package extent holds the global value range of one field in an index snapshot.
package extent

import "strconv"

// Extent is the minimum and maximum indexed value of a field.
// Both are nil when no segment holds postings for the field.
type Extent struct {
	Min *int64
	Max *int64
}

// Empty reports whether no value was observed.
func (e Extent) Empty() bool { return e.Min == nil && e.Max == nil }

// Fold widens the extent to include a segment's local [lo, hi].
func (e Extent) Fold(lo, hi int64) Extent {
	if e.Min == nil || lo < *e.Min {
		v := lo
		e.Min = &v
	}
	if e.Max == nil || hi > *e.Max {
		v := hi
		e.Max = &v
	}
	return e
}

func (e Extent) String() string {
	format := func(p *int64) string {
		if p == nil {
			return "null"
		}
		return strconv.FormatInt(*p, 10)
	}
	return "min=" + format(e.Min) + " max=" + format(e.Max)
}
