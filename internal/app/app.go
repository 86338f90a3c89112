// Package app assembles the rangedex services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/rangedex/internal/db/redis"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	"github.com/kailas-cloud/rangedex/internal/index/memory"
	"github.com/kailas-cloud/rangedex/internal/metrics"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
	segmentrepo "github.com/kailas-cloud/rangedex/internal/repository/segment"
	corerw "github.com/kailas-cloud/rangedex/internal/rewrite"
	healthuc "github.com/kailas-cloud/rangedex/internal/usecase/health"
	rewriteuc "github.com/kailas-cloud/rangedex/internal/usecase/rewrite"
	segmentuc "github.com/kailas-cloud/rangedex/internal/usecase/segment"
)

// Drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Options configures New.
type Options struct {
	Driver           string
	Addrs            []string
	Username         string
	Password         string
	KeyPrefix        string
	ReadinessTimeout time.Duration
	Indexes          map[string]mapping.Mappings
	Logger           *zap.Logger
	// Metrics wires the process-wide rewrite metrics. Requires
	// metrics.RegisterRewriteMetrics to have been called.
	Metrics bool
}

// App holds the assembled services.
type App struct {
	Registry *queryparser.Registry
	Segments *segmentuc.Service
	Rewrite  *rewriteuc.Service
	Health   *healthuc.Service

	pinger healthuc.DBPinger
	close  func()
}

// New connects the segment store and builds every service.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Indexes) == 0 {
		return nil, errors.New("at least one index must be configured")
	}

	var (
		repo   segmentuc.Repository
		pinger healthuc.DBPinger
		closer func()
	)
	switch opts.Driver {
	case DriverMemory, "":
		store := memory.NewStore()
		repo, pinger, closer = store, store, store.Close
	case DriverRedis, DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    opts.Addrs,
			Username: opts.Username,
			Password: opts.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", opts.Driver, err)
		}
		if opts.ReadinessTimeout > 0 {
			if err := store.WaitForReady(ctx, opts.ReadinessTimeout); err != nil {
				store.Close()
				return nil, fmt.Errorf("%s not ready: %w", opts.Driver, err)
			}
		}
		repo, pinger, closer = segmentrepo.New(store, opts.KeyPrefix), store, store.Close
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}

	registry := queryparser.NewRegistry(opts.Indexes)
	segments := segmentuc.New(repo, registry)

	var rwOpts []corerw.Option
	var ucOpts []rewriteuc.Option
	if opts.Metrics {
		rwOpts = append(rwOpts,
			corerw.WithConstructCounter(metrics.RangeConstructsTotal),
			corerw.WithSegmentsScannedCounter(metrics.ExtentSegmentsScannedTotal),
		)
		ucOpts = append(ucOpts,
			rewriteuc.WithRequestCounter(metrics.RewriteRequestsTotal),
			rewriteuc.WithDurationHistogram(metrics.RewriteDuration),
		)
	}
	engine := corerw.New(logger.Named("rewrite"), rwOpts...)

	return &App{
		Registry: registry,
		Segments: segments,
		Rewrite:  rewriteuc.New(engine, registry, segments, ucOpts...),
		Health:   healthuc.New(pinger, registry),
		pinger:   pinger,
		close:    closer,
	}, nil
}

// Ping checks the segment store.
func (a *App) Ping(ctx context.Context) error {
	if err := a.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the segment store.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}
