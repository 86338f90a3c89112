// Package rewrite replaces range queries and range filters that cover every
// value of their field in an index snapshot with match_all, leaving the rest
// of a search request untouched.
package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// Rewriter rewrites search requests. It holds no per-request state and is
// safe for concurrent use.
type Rewriter struct {
	logger     *zap.Logger
	constructs *prometheus.CounterVec
	scanned    *prometheus.CounterVec
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithConstructCounter counts analyzed constructs by index, context and outcome.
func WithConstructCounter(cv *prometheus.CounterVec) Option {
	return func(r *Rewriter) { r.constructs = cv }
}

// WithSegmentsScannedCounter counts segments consulted for extents, by index.
func WithSegmentsScannedCounter(cv *prometheus.CounterVec) Option {
	return func(r *Rewriter) { r.scanned = cv }
}

// New creates a Rewriter. A nil logger disables logging.
func New(logger *zap.Logger, opts ...Option) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Rewriter{logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Rewrite returns source with every fully covering range construct replaced
// by match_all. Output uses the encoding family detected from source. Empty
// source is returned as is. On any failure no bytes are returned and the
// error wraps domain.ErrRewriteFailed together with the cause.
func (r *Rewriter) Rewrite(
	ctx context.Context, source []byte, snap index.Snapshot, parsers QueryParsingService,
) (out []byte, err error) {
	if len(source) == 0 {
		return source, nil
	}

	idx := parsers.ParseContext().Index()
	encoding := "unknown"
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, r.fail(idx, encoding, len(source), fmt.Errorf("panic: %v", rec))
		}
	}()

	typ, err := xcontent.Detect(source)
	if err != nil {
		return nil, r.fail(idx, encoding, len(source), err)
	}
	encoding = typ.String()

	out, err = r.rewrite(ctx, typ, source, idx, snap, parsers)
	if err != nil {
		return nil, r.fail(idx, encoding, len(source), err)
	}
	return out, nil
}

func (r *Rewriter) rewrite(
	ctx context.Context, typ xcontent.Type, source []byte, idx string,
	snap index.Snapshot, parsers QueryParsingService,
) ([]byte, error) {
	p, err := xcontent.NewParser(typ, source)
	if err != nil {
		return nil, err
	}
	if _, err := xcontent.Expect(p); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := &walker{
		ctx:     ctx,
		r:       r,
		index:   idx,
		snap:    snap,
		parsers: parsers,
		p:       p,
		g:       xcontent.NewGenerator(typ, &buf),
	}
	if err := w.walkCurrent(); err != nil {
		return nil, err
	}
	if _, err := p.Next(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("%w: content after root value", domain.ErrDecodeFailure)
		}
		return nil, err
	}
	if err := w.g.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Rewriter) fail(idx, encoding string, size int, cause error) error {
	r.logger.Error("range rewrite failed",
		zap.String("index", idx),
		zap.String("encoding", encoding),
		zap.Int("source_bytes", size),
		zap.Error(cause),
	)
	return fmt.Errorf("%w: %w", domain.ErrRewriteFailed, cause)
}

func (r *Rewriter) observeConstruct(idx string, kind clause, o Outcome) {
	if r.constructs != nil {
		r.constructs.WithLabelValues(idx, string(kind), o.String()).Inc()
	}
}

func (r *Rewriter) observeScanned(idx string, n int) {
	if r.scanned != nil && n > 0 {
		r.scanned.WithLabelValues(idx).Add(float64(n))
	}
}
