package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/rangedex/internal/db"
)

// ZAddMulti adds members with score 0 to several sorted sets in a single
// DoMulti round-trip.
func (s *Store) ZAddMulti(ctx context.Context, items []db.SortedSetItem) error {
	cmds := make([]rueidis.Completed, 0, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if len(item.Members) == 0 {
			continue
		}
		cmd := s.b().Zadd().Key(item.Key).ScoreMember()
		for _, m := range item.Members {
			cmd = cmd.ScoreMember(0, m)
		}
		cmds = append(cmds, cmd.Build())
		keys = append(keys, item.Key)
	}
	if len(cmds) == 0 {
		return nil
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpZAdd, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
	}
	return nil
}

// ZEdges returns the lowest and highest ranked members of key.
func (s *Store) ZEdges(ctx context.Context, key string) (first, last string, ok bool, err error) {
	results := s.client.DoMulti(ctx,
		s.b().Zrange().Key(key).Min("0").Max("0").Build(),
		s.b().Zrange().Key(key).Min("-1").Max("-1").Build(),
	)

	edges := make([]string, 0, 2)
	for _, res := range results {
		members, err := res.AsStrSlice()
		if err != nil {
			return "", "", false, &db.Error{Op: db.OpZRange, Err: fmt.Errorf("key %s: %w", key, err)}
		}
		if len(members) == 0 {
			return "", "", false, nil
		}
		edges = append(edges, members[0])
	}
	return edges[0], edges[1], true, nil
}
