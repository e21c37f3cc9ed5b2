// Package fetch implements the cache-aside fetch engine.
//
// A fetch resolves to fresh network data, cached data (fresh or stale), or a
// failure. Cached data always beats an error: a remote failure never masks an
// entry that could be served offline.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
)

// Engine resolves cache-aside fetches against a store and a connectivity oracle
type Engine struct {
	kv      domain.KeyValueStore
	oracle  domain.ConnectivityOracle
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source used for freshness and timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records fetch outcomes on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// NewEngine creates a fetch engine. Entries younger than ttl are fresh.
func NewEngine(kv domain.KeyValueStore, oracle domain.ConnectivityOracle, ttl time.Duration, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		kv:     kv,
		oracle: oracle,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TTL returns the freshness window
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// Fetch resolves key: online it calls remote and caches the result,
// falling back to any cached entry on failure; offline it serves any cached
// entry or fails with domain.ErrOfflineNoCache.
func Fetch[T any](ctx context.Context, e *Engine, key Key, remote func(context.Context) (T, error)) (T, error) {
	var zero T
	resource := key.Resource()

	// Connectivity is sampled once; a change mid-call does not affect this fetch
	online := e.oracle.Current()
	cached, hasCache := read[T](ctx, e, key)

	if !online {
		if hasCache {
			e.recordCacheHit(resource, cached.storedAt)
			e.logger.Debug("serving cached data while offline", "key", key, "stored_at", cached.storedAt)
			return cached.value, nil
		}
		e.metrics.RecordFetch(resource, metrics.SourceFailure)
		return zero, domain.ErrOfflineNoCache
	}

	start := e.now()
	value, err := remote(ctx)
	e.metrics.ObserveRemote(resource, e.now().Sub(start), err)

	if err == nil {
		write(ctx, e, key, value)
		e.metrics.RecordFetch(resource, metrics.SourceNetwork)
		return value, nil
	}

	if hasCache {
		e.recordCacheHit(resource, cached.storedAt)
		e.logger.Warn("remote fetch failed, serving cached data", "key", key, "error", err)
		return cached.value, nil
	}

	e.metrics.RecordFetch(resource, metrics.SourceFailure)
	return zero, err
}

func (e *Engine) recordCacheHit(resource string, storedAt time.Time) {
	if e.now().Sub(storedAt) < e.ttl {
		e.metrics.RecordFetch(resource, metrics.SourceFreshCache)
	} else {
		e.metrics.RecordFetch(resource, metrics.SourceStaleCache)
	}
}

// read returns the cached entry for key. Store and decode errors count as a miss.
func read[T any](ctx context.Context, e *Engine, key Key) (entry[T], bool) {
	raw, ok, err := e.kv.Get(ctx, string(key))
	if err != nil {
		e.metrics.RecordStorageError("get")
		e.logger.Warn("failed to read cache entry", "key", key, "error", err)
		return entry[T]{}, false
	}
	if !ok {
		return entry[T]{}, false
	}

	cached, err := decodeEntry[T](raw)
	if err != nil {
		e.logger.Warn("failed to decode cache entry", "key", key, "error", err)
		return entry[T]{}, false
	}
	return cached, true
}

// write stores value under key, overwriting any previous entry. Errors are logged.
func write[T any](ctx context.Context, e *Engine, key Key, value T) {
	raw, err := encodeEntry(value, e.now())
	if err != nil {
		e.logger.Error("failed to encode cache entry", "key", key, "error", err)
		return
	}

	// Persist even when ctx was cancelled after the remote call returned
	if err := e.kv.Set(context.WithoutCancel(ctx), string(key), raw); err != nil {
		e.metrics.RecordStorageError("set")
		e.logger.Warn("failed to write cache entry", "key", key, "error", err)
	}
}
