package segment

import (
	"context"
	"sort"
	"testing"

	"github.com/kailas-cloud/rangedex/internal/db"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, keys ...string) error
	saddFn         func(ctx context.Context, key string, members ...string) error
	sremFn         func(ctx context.Context, key string, members ...string) (int64, error)
	smembersFn     func(ctx context.Context, key string) ([]string, error)
	zaddMultiFn    func(ctx context.Context, items []db.SortedSetItem) error
	zedgesFn       func(ctx context.Context, key string) (string, string, bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.saddFn != nil {
		return m.saddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	if m.sremFn != nil {
		return m.sremFn(ctx, key, members...)
	}
	return 0, nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) ZAddMulti(ctx context.Context, items []db.SortedSetItem) error {
	if m.zaddMultiFn != nil {
		return m.zaddMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) ZEdges(ctx context.Context, key string) (string, string, bool, error) {
	if m.zedgesFn != nil {
		return m.zedgesFn(ctx, key)
	}
	return "", "", false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "test:"), ms
}

func testInfo(t *testing.T, id string, createdAt int64) domseg.Info {
	t.Helper()
	info, err := domseg.New(id, 2, createdAt)
	if err != nil {
		t.Fatal(err)
	}
	return info
}

// keyspace wires a mockStore to plain maps so writes are visible to reads.
type keyspace struct {
	hashes map[string]map[string]string
	sets   map[string]map[string]bool
	zsets  map[string][]string
}

func newKeyspace(ms *mockStore) *keyspace {
	ks := &keyspace{
		hashes: map[string]map[string]string{},
		sets:   map[string]map[string]bool{},
		zsets:  map[string][]string{},
	}
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		ks.hashes[key] = fields
		return nil
	}
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if h, ok := ks.hashes[key]; ok {
			return h, nil
		}
		return map[string]string{}, nil
	}
	ms.hgetAllMultiFn = func(ctx context.Context, keys []string) ([]map[string]string, error) {
		out := make([]map[string]string, len(keys))
		for i, k := range keys {
			out[i], _ = ms.hgetAllFn(ctx, k)
		}
		return out, nil
	}
	ms.delFn = func(_ context.Context, keys ...string) error {
		for _, k := range keys {
			delete(ks.hashes, k)
			delete(ks.sets, k)
			delete(ks.zsets, k)
		}
		return nil
	}
	ms.saddFn = func(_ context.Context, key string, members ...string) error {
		if ks.sets[key] == nil {
			ks.sets[key] = map[string]bool{}
		}
		for _, m := range members {
			ks.sets[key][m] = true
		}
		return nil
	}
	ms.sremFn = func(_ context.Context, key string, members ...string) (int64, error) {
		var n int64
		for _, m := range members {
			if ks.sets[key][m] {
				delete(ks.sets[key], m)
				n++
			}
		}
		return n, nil
	}
	ms.smembersFn = func(_ context.Context, key string) ([]string, error) {
		out := make([]string, 0, len(ks.sets[key]))
		for m := range ks.sets[key] {
			out = append(out, m)
		}
		return out, nil
	}
	ms.zaddMultiFn = func(_ context.Context, items []db.SortedSetItem) error {
		for _, it := range items {
			ks.zsets[it.Key] = append(ks.zsets[it.Key], it.Members...)
			sort.Strings(ks.zsets[it.Key])
		}
		return nil
	}
	ms.zedgesFn = func(_ context.Context, key string) (string, string, bool, error) {
		z := ks.zsets[key]
		if len(z) == 0 {
			return "", "", false, nil
		}
		return z[0], z[len(z)-1], true, nil
	}
	return ks
}
