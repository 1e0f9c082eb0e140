package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routesim/pkg/cache"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/observability"
	"github.com/matzehuels/routesim/pkg/routing"
)

// Runner encapsulates route computation with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Route computes the routing result described by opts over a snapshot of n.
// The boolean reports whether the shortest paths came from the cache.
func (r *Runner) Route(ctx context.Context, n *network.Network, opts Options) (*routing.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.validateRouters(n); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	sp, hit, err := r.ShortestPathsWithCacheInfo(ctx, n.Snapshot(), opts)
	if err != nil {
		return nil, false, err
	}

	res, err := routing.Project(opts.Algorithm, sp, opts.Destination)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("projected routes",
		"request", opts.String(),
		"routes", len(res.Routes),
		"no_path", res.NoPath)
	return res, hit, nil
}

// ShortestPathsWithCacheInfo returns the solver output for m, reading and
// filling the cache, and reports whether it was a cache hit.
func (r *Runner) ShortestPathsWithCacheInfo(ctx context.Context, m network.Matrix, opts Options) (*routing.ShortestPaths, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	logger := opts.Logger

	matrixHash, err := cache.HashJSON(m)
	if err != nil {
		return nil, false, fmt.Errorf("fingerprint matrix: %w", err)
	}
	cacheKey := r.Keyer.RouteKey(matrixHash, opts.Algorithm.String(), int(opts.Source))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			logger.Warn("cache lookup failed", "error", err)
		case hit:
			var sp routing.ShortestPaths
			if err := json.Unmarshal(data, &sp); err == nil && len(sp.Distances) == m.Size() {
				observability.Cache().OnCacheHit(ctx, keyTypeRoute)
				logger.Debug("cache hit", "algorithm", opts.Algorithm, "source", opts.Source)
				return &sp, true, nil
			}
			logger.Debug("discarding unreadable cache entry", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeRoute)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	sp, err := r.solve(ctx, m, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(sp); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeRoute, len(data))
		}
	}
	return sp, false, nil
}

func (r *Runner) solve(ctx context.Context, m network.Matrix, opts Options) (*routing.ShortestPaths, error) {
	solve, err := opts.Algorithm.Solver()
	if err != nil {
		return nil, err
	}

	hooks := observability.Compute()
	hooks.OnComputeStart(ctx, opts.Algorithm.String(), int(opts.Source), m.Size())
	start := time.Now()

	sp, err := solve(m, opts.Source)

	reachable := 0
	if sp != nil {
		for _, p := range sp.Paths {
			if p != nil {
				reachable++
			}
		}
	}
	elapsed := time.Since(start)
	hooks.OnComputeComplete(ctx, opts.Algorithm.String(), int(opts.Source), reachable, elapsed, err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("computed shortest paths",
		"algorithm", opts.Algorithm,
		"source", opts.Source,
		"reachable", reachable,
		"duration", elapsed)
	return sp, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
