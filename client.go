package rangedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/rangedex/internal/app"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the rangedex entry point. It is safe for concurrent use.
type Client struct {
	app *app.App
}

// New creates a Client and, for Valkey or Redis, waits for the store to answer.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: app.DriverMemory}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.indexes) == 0 {
		return nil, errors.New("rangedex: at least one index required (use WithIndex)")
	}
	if cfg.driver != app.DriverMemory && len(cfg.addrs) == 0 {
		return nil, errors.New("rangedex: database address required (use WithValkey or WithRedis)")
	}

	indexes := make(map[string]mapping.Mappings, len(cfg.indexes))
	for name, types := range cfg.indexes {
		m, err := mapping.New(types)
		if err != nil {
			return nil, fmt.Errorf("rangedex: index %q: %w", name, err)
		}
		indexes[name] = m
	}

	a, err := app.New(ctx, app.Options{
		Driver:           cfg.driver,
		Addrs:            cfg.addrs,
		Password:         cfg.password,
		KeyPrefix:        cfg.keyPrefix,
		ReadinessTimeout: defaultReadinessTimeout,
		Indexes:          indexes,
		Logger:           cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("rangedex: %w", err)
	}
	return &Client{app: a}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Ping checks segment store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.app.Ping(ctx) //nolint:wrapcheck // already wrapped
}

// Indexes returns the configured index names, sorted.
func (c *Client) Indexes() []string {
	return c.app.Registry.Indexes()
}

// Rewrite replaces the covering range constructs of body with match_all.
// The result uses the encoding body arrived in (JSON, YAML or MessagePack).
func (c *Client) Rewrite(ctx context.Context, index string, body []byte) ([]byte, error) {
	res, err := c.app.Rewrite.Rewrite(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return res.Body, nil
}

// AddSegment seals docs into a new segment of index.
func (c *Client) AddSegment(ctx context.Context, index string, docs []map[string]any) (Segment, error) {
	info, err := c.app.Segments.Add(ctx, index, docs)
	if err != nil {
		return Segment{}, fmt.Errorf("add segment: %w", err)
	}
	return segmentFromInfo(info), nil
}

// Segments lists the segments of index, oldest first.
func (c *Client) Segments(ctx context.Context, index string) ([]Segment, error) {
	infos, err := c.app.Segments.List(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	out := make([]Segment, len(infos))
	for i, info := range infos {
		out[i] = segmentFromInfo(info)
	}
	return out, nil
}

// DropSegment removes a segment from future rewrites.
func (c *Client) DropSegment(ctx context.Context, index, id string) error {
	if err := c.app.Segments.Drop(ctx, index, id); err != nil {
		return fmt.Errorf("drop segment: %w", err)
	}
	return nil
}

// Extent returns the current global value range of field in index.
func (c *Client) Extent(ctx context.Context, index, field string) (Extent, error) {
	ext, err := c.app.Segments.Extent(ctx, index, field)
	if err != nil {
		return Extent{}, fmt.Errorf("extent: %w", err)
	}
	return Extent{Field: field, Min: ext.Min, Max: ext.Max}, nil
}

func segmentFromInfo(info domseg.Info) Segment {
	return Segment{
		ID:        info.ID(),
		Docs:      info.Docs(),
		CreatedAt: time.UnixMilli(info.CreatedAt()).UTC(),
	}
}
