package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade, consumers depend on narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	SetStore
	SortedSetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
}

// SetStore provides unordered set operations.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// SortedSetItem holds members to add to one sorted set.
type SortedSetItem struct {
	Key     string
	Members []string
}

// SortedSetStore keeps lexically ordered members. Every member is stored with
// score 0, so rank order equals byte order of the members.
type SortedSetStore interface {
	ZAddMulti(ctx context.Context, items []SortedSetItem) error
	// ZEdges returns the first and last member of key; ok is false when the
	// key does not exist.
	ZEdges(ctx context.Context, key string) (first, last string, ok bool, err error)
}
