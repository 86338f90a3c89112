package rewrite

import (
	"github.com/kailas-cloud/rangedex/internal/domain/search/rangeq"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
)

// QueryParsingService parses range constructs for the index being rewritten.
type QueryParsingService interface {
	ParseContext() *queryparser.ParseContext
	ParseRangeQuery(pc *queryparser.ParseContext) (rangeq.Construct, error)
	ParseRangeFilter(pc *queryparser.ParseContext) (rangeq.Construct, error)
}
