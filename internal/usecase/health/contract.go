package health

import "context"

// DBPinger checks segment store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexLister lists the indexes with configured mappings.
type IndexLister interface {
	Indexes() []string
}
