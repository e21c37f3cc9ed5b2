package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/connectivity"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KeyValueStore with injectable failures
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

type fixture struct {
	kv      *memKV
	oracle  *connectivity.Manual
	now     time.Time
	engine  *Engine
	metrics *metrics.Recorder
}

func newFixture(online bool) *fixture {
	f := &fixture{
		kv:      newMemKV(),
		oracle:  connectivity.NewManual(online),
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.engine = NewEngine(f.kv, f.oracle, 5*time.Minute, log.NullLogger(),
		WithClock(func() time.Time { return f.now }),
		WithMetrics(f.metrics),
	)
	return f
}

// seed stores value under key as if it had been fetched age ago
func (f *fixture) seed(t *testing.T, key Key, value any, age time.Duration) {
	t.Helper()
	raw, err := encodeEntry(value, f.now.Add(-age))
	require.NoError(t, err)
	f.kv.data[string(key)] = raw
}

func (f *fixture) fetches(resource, source string) float64 {
	return testutil.ToFloat64(f.metrics.FetchesTotal.WithLabelValues(resource, source))
}

func page(ids ...int) domain.MoviePage {
	p := domain.MoviePage{Page: 1, TotalPages: 3}
	for _, id := range ids {
		p.Results = append(p.Results, domain.Movie{ID: id, Title: "movie"})
	}
	return p
}

func failing(err error) func(context.Context) (domain.MoviePage, error) {
	return func(context.Context) (domain.MoviePage, error) {
		return domain.MoviePage{}, err
	}
}

func serving(p domain.MoviePage) func(context.Context) (domain.MoviePage, error) {
	return func(context.Context) (domain.MoviePage, error) {
		return p, nil
	}
}

func TestFetchOfflineServesStaleCache(t *testing.T) {
	f := newFixture(false)
	key := ListKey(domain.ListUpcoming, 1)
	f.seed(t, key, page(7), 10*time.Minute)

	called := false
	got, err := Fetch(context.Background(), f.engine, key, func(context.Context) (domain.MoviePage, error) {
		called = true
		return domain.MoviePage{}, nil
	})

	require.NoError(t, err)
	assert.False(t, called, "remote must not be called while offline")
	assert.Equal(t, 7, got.Results[0].ID)
	assert.Equal(t, 1.0, f.fetches("upcoming", metrics.SourceStaleCache))
	assert.Equal(t, 0, f.kv.sets, "fallback paths never write")
}

func TestFetchOfflineServesFreshCache(t *testing.T) {
	f := newFixture(false)
	key := DetailsKey(42)
	f.seed(t, key, domain.MovieDetails{Movie: domain.Movie{ID: 42}, Runtime: 120}, time.Minute)

	got, err := Fetch(context.Background(), f.engine, key, func(context.Context) (domain.MovieDetails, error) {
		return domain.MovieDetails{}, errors.New("unreachable")
	})

	require.NoError(t, err)
	assert.Equal(t, 120, got.Runtime)
	assert.Equal(t, 1.0, f.fetches("details", metrics.SourceFreshCache))
}

func TestFetchOfflineWithoutCacheFails(t *testing.T) {
	f := newFixture(false)

	_, err := Fetch(context.Background(), f.engine, ListKey(domain.ListPopular, 1), serving(page(1)))

	require.ErrorIs(t, err, domain.ErrOfflineNoCache)
	assert.Equal(t, 1.0, f.fetches("popular", metrics.SourceFailure))
}

func TestFetchRemoteFailureServesCache(t *testing.T) {
	tests := []struct {
		name   string
		age    time.Duration
		source string
	}{
		{"fresh", time.Minute, metrics.SourceFreshCache},
		{"stale", time.Hour, metrics.SourceStaleCache},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			key := ListKey(domain.ListUpcoming, 2)
			f.seed(t, key, page(3, 4), tt.age)

			remoteErr := &domain.CatalogError{Message: "Network error"}
			got, err := Fetch(context.Background(), f.engine, key, failing(remoteErr))

			require.NoError(t, err)
			assert.Len(t, got.Results, 2)
			assert.Equal(t, 1.0, f.fetches("upcoming", tt.source))
			assert.Equal(t, 0, f.kv.sets)
		})
	}
}

func TestFetchRemoteFailureWithoutCacheReturnsOriginalError(t *testing.T) {
	f := newFixture(true)
	remoteErr := &domain.CatalogError{Message: "Invalid API key", StatusCode: 401}

	_, err := Fetch(context.Background(), f.engine, ListKey(domain.ListUpcoming, 1), failing(remoteErr))

	require.Error(t, err)
	assert.Same(t, remoteErr, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestFetchOnlineSuccessWritesOneEntry(t *testing.T) {
	f := newFixture(true)
	key := ListKey(domain.ListPopular, 1)
	f.seed(t, key, page(1), time.Hour)

	got, err := Fetch(context.Background(), f.engine, key, serving(page(9, 10)))
	require.NoError(t, err)
	assert.Len(t, got.Results, 2)
	assert.Equal(t, 1, f.kv.sets)

	stored, err := decodeEntry[domain.MoviePage](f.kv.data[string(key)])
	require.NoError(t, err)
	assert.Equal(t, 9, stored.value.Results[0].ID)
	assert.Equal(t, f.now.UnixMilli(), stored.storedAt.UnixMilli())
	assert.Equal(t, 1.0, f.fetches("popular", metrics.SourceNetwork))
}

func TestFetchSwallowsStorageErrors(t *testing.T) {
	f := newFixture(true)
	f.kv.getErr = errors.New("disk on fire")
	f.kv.setErr = errors.New("disk on fire")

	got, err := Fetch(context.Background(), f.engine, DetailsKey(1), func(context.Context) (domain.MovieDetails, error) {
		return domain.MovieDetails{Movie: domain.Movie{ID: 1}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StorageErrorsTotal.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StorageErrorsTotal.WithLabelValues("set")))
}

func TestFetchStorageReadErrorOfflineIsMiss(t *testing.T) {
	f := newFixture(false)
	f.kv.getErr = errors.New("locked")

	_, err := Fetch(context.Background(), f.engine, DetailsKey(1), func(context.Context) (domain.MovieDetails, error) {
		return domain.MovieDetails{}, nil
	})

	assert.ErrorIs(t, err, domain.ErrOfflineNoCache)
}

func TestFetchCorruptEntryIsMiss(t *testing.T) {
	f := newFixture(false)
	f.kv.data[string(DetailsKey(5))] = []byte("not json")

	_, err := Fetch(context.Background(), f.engine, DetailsKey(5), func(context.Context) (domain.MovieDetails, error) {
		return domain.MovieDetails{}, nil
	})

	assert.ErrorIs(t, err, domain.ErrOfflineNoCache)
}

func TestFetchSamplesConnectivityOnce(t *testing.T) {
	f := newFixture(true)
	key := ListKey(domain.ListUpcoming, 1)

	got, err := Fetch(context.Background(), f.engine, key, func(context.Context) (domain.MoviePage, error) {
		f.oracle.Set(false)
		return page(1), nil
	})

	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
	assert.Equal(t, 1, f.kv.sets)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, Key("upcoming_movies_3"), ListKey(domain.ListUpcoming, 3))
	assert.Equal(t, Key("popular_movies_1"), ListKey(domain.ListPopular, 1))
	assert.Equal(t, Key("movie_details_550"), DetailsKey(550))

	assert.Equal(t, "upcoming", ListKey(domain.ListUpcoming, 3).Resource())
	assert.Equal(t, "popular", ListKey(domain.ListPopular, 3).Resource())
	assert.Equal(t, "details", DetailsKey(1).Resource())
	assert.Equal(t, "favorites", FavoritesKey.Resource())
}

func TestEnvelopeFormat(t *testing.T) {
	raw, err := encodeEntry([]int{1, 2}, time.UnixMilli(1700000000000))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[1,2],"timestamp":1700000000000}`, string(raw))
}
