package rewrite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// Result is a rewritten body and the encoding family it is written in.
type Result struct {
	Body     []byte
	Encoding xcontent.Type
}

// Service rewrites search requests of configured indexes.
type Service struct {
	engine   Engine
	parsers  ParserLookup
	segments Snapshotter
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Option configures a Service.
type Option func(*Service)

// WithRequestCounter counts rewrites by index and result.
func WithRequestCounter(cv *prometheus.CounterVec) Option {
	return func(s *Service) { s.requests = cv }
}

// WithDurationHistogram observes rewrite latency by index.
func WithDurationHistogram(hv *prometheus.HistogramVec) Option {
	return func(s *Service) { s.duration = hv }
}

// New creates a rewrite service.
func New(engine Engine, parsers ParserLookup, segments Snapshotter, opts ...Option) *Service {
	s := &Service{engine: engine, parsers: parsers, segments: segments}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rewrite rewrites body against the current segments of idx.
func (s *Service) Rewrite(ctx context.Context, idx string, body []byte) (Result, error) {
	start := time.Now()
	res, err := s.rewrite(ctx, idx, body)
	s.observe(idx, start, err)
	return res, err
}

func (s *Service) rewrite(ctx context.Context, idx string, body []byte) (Result, error) {
	parsers, ok := s.parsers.Lookup(idx)
	if !ok {
		return Result{}, fmt.Errorf("index %q: %w", idx, domain.ErrIndexNotFound)
	}
	if len(body) == 0 {
		return Result{Body: body, Encoding: xcontent.JSON}, nil
	}

	snap, err := s.segments.Snapshot(ctx, idx)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: %w", err)
	}
	out, err := s.engine.Rewrite(ctx, body, snap, parsers)
	if err != nil {
		return Result{}, err //nolint:wrapcheck // already wraps ErrRewriteFailed
	}

	typ, err := Detect(out)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrRewriteFailed, err)
	}
	return Result{Body: out, Encoding: typ}, nil
}

// Detect reports the encoding family of body.
func Detect(body []byte) (xcontent.Type, error) {
	typ, err := xcontent.Detect(body)
	if err != nil {
		return 0, fmt.Errorf("detect encoding: %w", err)
	}
	return typ, nil
}

func (s *Service) observe(idx string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		idx, result = "_unknown", "index_not_found"
	case err != nil:
		result = "error"
	}
	if s.requests != nil {
		s.requests.WithLabelValues(idx, result).Inc()
	}
	if s.duration != nil {
		s.duration.WithLabelValues(idx).Observe(time.Since(start).Seconds())
	}
}
