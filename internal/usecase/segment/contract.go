package segment

import (
	"context"

	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
)

// Repository defines the storage contract for segments.
type Repository interface {
	Create(ctx context.Context, idx string, info domseg.Info, terms domseg.Terms) error
	List(ctx context.Context, idx string) ([]domseg.Info, error)
	Delete(ctx context.Context, idx, id string) error
	Snapshot(ctx context.Context, idx string) (index.Snapshot, error)
}

// MappingLookup resolves the field mappings of a configured index.
type MappingLookup interface {
	Mappings(idx string) (mapping.Mappings, bool)
}
