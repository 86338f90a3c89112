// Package segment stores sealed segments in Redis or Valkey.
//
// Key layout under the configured prefix p:
//
//	{p}idx:{index}:segments                 SET of segment ids
//	{p}idx:{index}:seg:{id}:meta            HASH docs, created_at, fields_json
//	{p}idx:{index}:seg:{id}:terms:{field}   ZSET of encoded terms, all score 0
//
// A segment's data is written before its id joins the segment set, so a
// snapshot never lists a half-written segment.
package segment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/rangedex/internal/db"
	"github.com/kailas-cloud/rangedex/internal/domain"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
)

// DefaultKeyPrefix namespaces every key written by the repository.
const DefaultKeyPrefix = "rangedex:"

// store is the consumer interface for segments (ISP).
//
//nolint:interfacebloat // segment repo needs hash + set + sorted set operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	ZAddMulti(ctx context.Context, items []db.SortedSetItem) error
	ZEdges(ctx context.Context, key string) (first, last string, ok bool, err error)
}

// Repo implements usecase/segment.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a segment repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Create writes the segment's terms and metadata, then publishes its id.
// On failure the keys written so far are removed.
func (r *Repo) Create(ctx context.Context, idx string, info domseg.Info, terms domseg.Terms) error {
	id := info.ID()
	fields := terms.Fields()

	items := make([]db.SortedSetItem, 0, len(fields))
	written := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		members := make([]string, len(terms[f]))
		for i, v := range terms[f] {
			members[i] = index.FormatTerm(v)
		}
		key := r.termsKey(idx, id, f)
		items = append(items, db.SortedSetItem{Key: key, Members: members})
		written = append(written, key)
	}

	hashData, err := infoToHash(info, fields)
	if err != nil {
		return err
	}

	if err := r.store.ZAddMulti(ctx, items); err != nil {
		return errors.Join(fmt.Errorf("zadd terms of segment %s: %w", id, err), r.store.Del(ctx, written...))
	}
	metaKey := r.metaKey(idx, id)
	written = append(written, metaKey)
	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return errors.Join(fmt.Errorf("hset segment %s: %w", id, err), r.store.Del(ctx, written...))
	}
	if err := r.store.SAdd(ctx, r.segmentsKey(idx), id); err != nil {
		return errors.Join(fmt.Errorf("sadd segment %s: %w", id, err), r.store.Del(ctx, written...))
	}
	return nil
}

// List returns the segments of idx sorted by creation time.
func (r *Repo) List(ctx context.Context, idx string) ([]domseg.Info, error) {
	ids, err := r.ids(ctx, idx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domseg.Info{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.metaKey(idx, id)
	}
	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi segments: %w", err)
	}

	infos := make([]domseg.Info, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue // dropped between SMEMBERS and HGETALL
		}
		info, _, err := infoFromHash(ids[i], m)
		if err != nil {
			return nil, fmt.Errorf("parse segment %s: %w", ids[i], err)
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CreatedAt() < infos[j].CreatedAt()
	})
	return infos, nil
}

// Delete unpublishes a segment and removes its keys.
func (r *Repo) Delete(ctx context.Context, idx, id string) error {
	metaKey := r.metaKey(idx, id)
	m, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall segment %s: %w", id, err)
	}

	n, err := r.store.SRem(ctx, r.segmentsKey(idx), id)
	if err != nil {
		return fmt.Errorf("srem segment %s: %w", id, err)
	}
	if n == 0 && len(m) == 0 {
		return fmt.Errorf("segment %s/%s: %w", idx, id, domain.ErrSegmentNotFound)
	}

	keys := []string{metaKey}
	if len(m) > 0 {
		_, fields, err := infoFromHash(id, m)
		if err != nil {
			return fmt.Errorf("parse segment %s: %w", id, err)
		}
		for _, f := range fields {
			keys = append(keys, r.termsKey(idx, id, f))
		}
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("del segment %s: %w", id, err)
	}
	return nil
}

// Snapshot freezes the segment membership of idx. Segment contents are
// immutable once published, so lookups through the snapshot see the data
// that existed when the snapshot was taken, or nothing if the segment was
// dropped since.
func (r *Repo) Snapshot(ctx context.Context, idx string) (index.Snapshot, error) {
	ids, err := r.ids(ctx, idx)
	if err != nil {
		return nil, err
	}
	segs := make([]index.Segment, len(ids))
	for i, id := range ids {
		segs[i] = &remoteSegment{repo: r, index: idx, id: id}
	}
	return index.NewSnapshot(segs...), nil
}

func (r *Repo) ids(ctx context.Context, idx string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, r.segmentsKey(idx))
	if err != nil {
		return nil, fmt.Errorf("smembers segments of %s: %w", idx, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Repo) segmentsKey(idx string) string {
	return fmt.Sprintf("%sidx:%s:segments", r.prefix, idx)
}

func (r *Repo) metaKey(idx, id string) string {
	return fmt.Sprintf("%sidx:%s:seg:%s:meta", r.prefix, idx, id)
}

func (r *Repo) termsKey(idx, id, field string) string {
	return fmt.Sprintf("%sidx:%s:seg:%s:terms:%s", r.prefix, idx, id, field)
}
