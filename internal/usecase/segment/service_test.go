package segment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/index/memory"
)

// --- Mocks ---

type mockIndexes map[string]mapping.Mappings

func (m mockIndexes) Mappings(idx string) (mapping.Mappings, bool) {
	mm, ok := m[idx]
	return mm, ok
}

type mockRepo struct {
	createFn   func(ctx context.Context, idx string, info domseg.Info, terms domseg.Terms) error
	listFn     func(ctx context.Context, idx string) ([]domseg.Info, error)
	deleteFn   func(ctx context.Context, idx, id string) error
	snapshotFn func(ctx context.Context, idx string) (index.Snapshot, error)
}

func (m *mockRepo) Create(ctx context.Context, idx string, info domseg.Info, terms domseg.Terms) error {
	if m.createFn != nil {
		return m.createFn(ctx, idx, info, terms)
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, idx string) ([]domseg.Info, error) {
	if m.listFn != nil {
		return m.listFn(ctx, idx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, idx, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, idx, id)
	}
	return nil
}

func (m *mockRepo) Snapshot(ctx context.Context, idx string) (index.Snapshot, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx, idx)
	}
	return index.NewSnapshot(), nil
}

func testIndexes(t *testing.T) mockIndexes {
	t.Helper()
	m, err := mapping.New(map[string]string{"age": "long", "level": "byte", "name": "keyword"})
	if err != nil {
		t.Fatal(err)
	}
	return mockIndexes{"people": m}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc := New(repo, testIndexes(t))
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	svc.newID = func() string { return "seg-1" }
	return svc
}

// --- Add ---

func TestAdd_IntegralDecimal(t *testing.T) {
	var gotTerms domseg.Terms
	svc := newTestService(t, &mockRepo{createFn: func(_ context.Context, _ string, _ domseg.Info, terms domseg.Terms) error {
		gotTerms = terms
		return nil
	}})

	// Same rule as range bounds in queries: 5.0 is the integer 5.
	if _, err := svc.Add(context.Background(), "people", []map[string]any{{"age": json.Number("5.0")}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if age := gotTerms["age"]; len(age) != 1 || age[0] != 5 {
		t.Errorf("age terms = %v", age)
	}
}

func TestAdd_ExtractsIntegerFields(t *testing.T) {
	var gotTerms domseg.Terms
	var gotInfo domseg.Info
	repo := &mockRepo{createFn: func(_ context.Context, idx string, info domseg.Info, terms domseg.Terms) error {
		if idx != "people" {
			t.Errorf("unexpected index %s", idx)
		}
		gotInfo, gotTerms = info, terms
		return nil
	}}
	svc := newTestService(t, repo)

	docs := []map[string]any{
		{"age": json.Number("30"), "name": "ann", "level": 3},
		{"age": float64(12), "level": "7"},
		{"age": int64(30), "other": 1},
		{"name": "no integers"},
	}
	info, err := svc.Add(context.Background(), "people", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID() != "seg-1" || info.Docs() != 4 || info.CreatedAt() != 1700000000000 {
		t.Errorf("unexpected info: %+v", info)
	}
	if gotInfo.ID() != info.ID() {
		t.Errorf("repo got %+v", gotInfo)
	}
	if age := gotTerms["age"]; len(age) != 2 || age[0] != 12 || age[1] != 30 {
		t.Errorf("age terms = %v", age)
	}
	if level := gotTerms["level"]; len(level) != 2 || level[0] != 3 || level[1] != 7 {
		t.Errorf("level terms = %v", level)
	}
	if _, ok := gotTerms["name"]; ok {
		t.Error("keyword field must not be indexed")
	}
}

func TestAdd_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		docs []map[string]any
	}{
		{"no documents", nil},
		{"fractional", []map[string]any{{"age": 1.5}}},
		{"fractional literal", []map[string]any{{"age": json.Number("5.5")}}},
		{"decimal string", []map[string]any{{"age": "5.0"}}},
		{"multi-valued", []map[string]any{{"age": []any{1, 2}}}},
		{"not a number", []map[string]any{{"age": "old"}}},
		{"byte overflow", []map[string]any{{"level": 1000}}},
		{"bool", []map[string]any{{"age": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockRepo{createFn: func(context.Context, string, domseg.Info, domseg.Terms) error {
				t.Error("repository must not be called")
				return nil
			}})
			_, err := svc.Add(context.Background(), "people", tt.docs)
			if !errors.Is(err, domain.ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestAdd_UnknownIndex(t *testing.T) {
	svc := newTestService(t, &mockRepo{})
	_, err := svc.Add(context.Background(), "ghosts", []map[string]any{{"age": 1}})
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestAdd_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(t, &mockRepo{createFn: func(context.Context, string, domseg.Info, domseg.Terms) error {
		return boom
	}})
	if _, err := svc.Add(context.Background(), "people", []map[string]any{{"age": 1}}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

// --- List / Drop ---

func TestList(t *testing.T) {
	want := []domseg.Info{domseg.Reconstruct("a", 1, 1)}
	svc := newTestService(t, &mockRepo{listFn: func(context.Context, string) ([]domseg.Info, error) {
		return want, nil
	}})
	got, err := svc.List(context.Background(), "people")
	if err != nil || len(got) != 1 || got[0].ID() != "a" {
		t.Errorf("got %v, %v", got, err)
	}
	if _, err := svc.List(context.Background(), "ghosts"); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestDrop(t *testing.T) {
	svc := newTestService(t, &mockRepo{deleteFn: func(_ context.Context, _, id string) error {
		if id == "missing" {
			return domain.ErrSegmentNotFound
		}
		return nil
	}})
	if err := svc.Drop(context.Background(), "people", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Drop(context.Background(), "people", "missing"); !errors.Is(err, domain.ErrSegmentNotFound) {
		t.Errorf("expected ErrSegmentNotFound, got %v", err)
	}
}

// --- Extent ---

func TestExtent_AcrossSegments(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), testIndexes(t))

	if _, err := svc.Add(ctx, "people", []map[string]any{{"age": 40}, {"age": 18}}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, "people", []map[string]any{{"age": 90}, {"name": "x"}}); err != nil {
		t.Fatal(err)
	}

	ext, err := svc.Extent(ctx, "people", "age")
	if err != nil {
		t.Fatal(err)
	}
	if ext.String() != "min=18 max=90" {
		t.Errorf("got %s", ext)
	}

	ext, err = svc.Extent(ctx, "people", "level")
	if err != nil || !ext.Empty() {
		t.Errorf("level extent = %s, %v", ext, err)
	}

	if _, err := svc.Extent(ctx, "ghosts", "age"); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}
