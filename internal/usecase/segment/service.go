package segment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/domain/search/extent"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/rewrite"
)

// maxDocsPerSegment bounds a single Add call.
const maxDocsPerSegment = 100_000

// Service seals documents into segments and answers extent questions.
type Service struct {
	repo    Repository
	indexes MappingLookup
	now     func() time.Time
	newID   func() string
}

// New creates a segment service.
func New(repo Repository, indexes MappingLookup) *Service {
	return &Service{repo: repo, indexes: indexes, now: time.Now, newID: uuid.NewString}
}

// Add extracts every integer-mapped field of docs and seals them into a new
// segment. Fields that are not integer-mapped are not indexed.
func (s *Service) Add(ctx context.Context, idx string, docs []map[string]any) (domseg.Info, error) {
	m, err := s.mappings(idx)
	if err != nil {
		return domseg.Info{}, err
	}
	if len(docs) == 0 {
		return domseg.Info{}, fmt.Errorf("%w: no documents", domain.ErrInvalidDocument)
	}
	if len(docs) > maxDocsPerSegment {
		return domseg.Info{}, fmt.Errorf("%w: too many documents (max %d)", domain.ErrInvalidDocument, maxDocsPerSegment)
	}

	terms := domseg.Terms{}
	fields := m.IntegerFields()
	for i, doc := range docs {
		for _, name := range fields {
			raw, ok := doc[name]
			if !ok || raw == nil {
				continue
			}
			f, _ := m.Lookup(name)
			v, err := integerValue(f.FieldType(), raw)
			if err != nil {
				return domseg.Info{}, fmt.Errorf("%w: document %d field %s: %w", domain.ErrInvalidDocument, i, name, err)
			}
			terms.Add(name, v)
		}
	}
	terms.Compact()

	info, err := domseg.New(s.newID(), len(docs), s.now().UnixMilli())
	if err != nil {
		return domseg.Info{}, fmt.Errorf("seal segment: %w", err)
	}
	if err := s.repo.Create(ctx, idx, info, terms); err != nil {
		return domseg.Info{}, fmt.Errorf("create segment: %w", err)
	}
	return info, nil
}

// List returns the segments of idx.
func (s *Service) List(ctx context.Context, idx string) ([]domseg.Info, error) {
	if _, err := s.mappings(idx); err != nil {
		return nil, err
	}
	infos, err := s.repo.List(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return infos, nil
}

// Drop removes a segment from future snapshots.
func (s *Service) Drop(ctx context.Context, idx, id string) error {
	if _, err := s.mappings(idx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, idx, id); err != nil {
		return fmt.Errorf("drop segment: %w", err)
	}
	return nil
}

// Snapshot freezes the current segments of idx.
func (s *Service) Snapshot(ctx context.Context, idx string) (index.Snapshot, error) {
	if _, err := s.mappings(idx); err != nil {
		return nil, err
	}
	snap, err := s.repo.Snapshot(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// Extent returns the current global value range of field in idx.
func (s *Service) Extent(ctx context.Context, idx, field string) (extent.Extent, error) {
	snap, err := s.Snapshot(ctx, idx)
	if err != nil {
		return extent.Extent{}, err
	}
	ext, err := rewrite.FieldExtent(ctx, snap, field)
	if err != nil {
		return extent.Extent{}, fmt.Errorf("extent: %w", err)
	}
	return ext, nil
}

func (s *Service) mappings(idx string) (mapping.Mappings, error) {
	m, ok := s.indexes.Mappings(idx)
	if !ok {
		return mapping.Mappings{}, fmt.Errorf("index %q: %w", idx, domain.ErrIndexNotFound)
	}
	return m, nil
}

// integerValue accepts a single integral number or integer string that fits t.
func integerValue(t mapping.Type, raw any) (int64, error) {
	if _, multi := raw.([]any); multi {
		return 0, fmt.Errorf("multi-valued fields are not supported")
	}
	v, ok := mapping.IntegerOf(raw)
	if !ok {
		return 0, fmt.Errorf("%v (%T) is not an integer", raw, raw)
	}

	lo, hi := t.Bounds()
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d is out of range for %s", v, t)
	}
	return v, nil
}
