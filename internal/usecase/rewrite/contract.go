package rewrite

import (
	"context"

	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
	corerw "github.com/kailas-cloud/rangedex/internal/rewrite"
)

// Engine rewrites a request body against a snapshot.
type Engine interface {
	Rewrite(ctx context.Context, source []byte, snap index.Snapshot, parsers corerw.QueryParsingService) ([]byte, error)
}

// ParserLookup resolves the query parsing service of an index.
type ParserLookup interface {
	Lookup(idx string) (*queryparser.Service, bool)
}

// Snapshotter freezes the current segments of an index.
type Snapshotter interface {
	Snapshot(ctx context.Context, idx string) (index.Snapshot, error)
}
