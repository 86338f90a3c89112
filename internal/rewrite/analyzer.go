package rewrite

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/search/extent"
	"github.com/kailas-cloud/rangedex/internal/domain/search/rangeq"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// Outcome is the decision taken for one range construct.
type Outcome int

const (
	// KeepOriginal re-emits the construct unchanged.
	KeepOriginal Outcome = iota
	// ReplaceWithMatchAll substitutes {"match_all":{}}.
	ReplaceWithMatchAll
)

func (o Outcome) String() string {
	if o == ReplaceWithMatchAll {
		return "match_all"
	}
	return "kept"
}

// clause is the context a range construct was found in.
type clause string

const (
	clauseQuery  clause = "query"
	clauseFilter clause = "filter"
)

// Covers applies the decision rule to a parsed integer construct and the
// field's extent. Bounds compare strictly and the inclusive flags are not
// consulted, so a bound equal to the extent edge keeps the construct. An
// extent with no observed values satisfies either bound.
func Covers(ext extent.Extent, c rangeq.Construct) bool {
	lowerOK := ext.Min == nil || c.Lower == nil || *c.Lower < *ext.Min
	upperOK := ext.Max == nil || c.Upper == nil || *c.Upper > *ext.Max
	return lowerOK && upperOK
}

// analysis is what the analyzer learned about one construct.
type analysis struct {
	construct rangeq.Construct
	extent    extent.Extent
	scanned   int
	outcome   Outcome
}

// analyze parses the captured construct through the parsing service and
// decides whether it can be replaced.
func (w *walker) analyze(ctx context.Context, kind clause, c *captured) (analysis, error) {
	p, err := c.open()
	if err != nil {
		return analysis{}, err
	}
	if p.Current() != xcontent.StartObject {
		return analysis{}, fmt.Errorf("%w: [range] %s malformed, missing start_object", domain.ErrMalformedStructure, kind)
	}

	pc := w.parsers.ParseContext()
	pc.Reset(p)

	var a analysis
	if kind == clauseFilter {
		a.construct, err = w.parsers.ParseRangeFilter(pc)
	} else {
		a.construct, err = w.parsers.ParseRangeQuery(pc)
	}
	if err != nil {
		return analysis{}, err
	}

	switch {
	case !a.construct.Kind.IsInteger():
		a.outcome = KeepOriginal
	case a.construct.Lower == nil && a.construct.Upper == nil:
		a.outcome = ReplaceWithMatchAll
	default:
		a.extent, a.scanned, err = fieldExtent(ctx, w.snap, a.construct.Field)
		if err != nil {
			return a, fmt.Errorf("extent of %s: %w", a.construct.Field, err)
		}
		if Covers(a.extent, a.construct) {
			a.outcome = ReplaceWithMatchAll
		}
	}
	return a, nil
}
