package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"FxSignals/internal/domain/models"
	icache "FxSignals/internal/service/cache"
	pkgcache "FxSignals/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(id string) models.Outcome {
	return models.Outcome{
		SubmissionID: id,
		Phase:        models.PhaseSucceeded,
		Parameters:   &models.TradingParameters{Symbol: "EURUSD=X", StartDate: "2022-01-01", EndDate: "2023-01-01", Threshold: 0.002},
		View: models.NewSeriesViewModel(
			[]models.SignalPoint{{Decision: models.DecisionBuy, Timestamp: "2022-01-03"}},
			&models.Metrics{SharpeRatio: 1.1, CumulativeReturns: 9},
		),
		DurationMs: 120,
		FinishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryHistoryNewestFirstAndCapped(t *testing.T) {
	h := NewMemoryHistory(icache.NewTTLCache(), 3, time.Hour)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Save(ctx, outcome(fmt.Sprintf("s%d", i))))
	}

	got, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "s5", got[0].SubmissionID)
	assert.Equal(t, "s3", got[2].SubmissionID)

	got, err = h.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	m, ok := got[0].View.Metrics()
	require.True(t, ok)
	assert.Equal(t, 9.0, m.CumulativeReturns)
	assert.Equal(t, "EURUSD=X", got[0].Parameters.Symbol)
}

func TestMemoryHistorySkipsExpired(t *testing.T) {
	now := time.Now()
	cache := icache.NewTTLCacheWithClock(func() time.Time { return now })
	h := NewMemoryHistory(cache, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, h.Save(ctx, outcome("old")))
	now = now.Add(2 * time.Minute)
	require.NoError(t, h.Save(ctx, outcome("new")))

	got, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].SubmissionID)
}

// listCache is an in-memory stand-in for the Redis-backed cache service.
type listCache struct {
	mu     sync.Mutex
	lists  map[string][]string
	values map[string][]byte
	ttl    time.Duration
}

func newListCache() *listCache {
	return &listCache{lists: make(map[string][]string), values: make(map[string][]byte)}
}

func (c *listCache) Ping(context.Context) error { return nil }
func (c *listCache) Close() error               { return nil }

func (c *listCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = append([]byte(nil), value.([]byte)...)
	return nil
}

func (c *listCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.values[key]
	if !ok {
		return pkgcache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *listCache) ListPush(_ context.Context, key string, value interface{}, maxLen int64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := append([]string{string(value.([]byte))}, c.lists[key]...)
	if int64(len(l)) > maxLen {
		l = l[:maxLen]
	}
	c.lists[key] = l
	c.ttl = ttl
	return nil
}

func (c *listCache) ListRange(_ context.Context, key string, n int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := c.lists[key]
	if int64(len(l)) > n {
		l = l[:n]
	}
	return append([]string(nil), l...), nil
}

func TestRedisHistory(t *testing.T) {
	c := newListCache()
	h := NewRedisHistory(c, 2, 24*time.Hour)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, h.Save(ctx, outcome(id)))
	}
	assert.Equal(t, 24*time.Hour, c.ttl)

	got, err := h.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].SubmissionID)
	assert.Equal(t, "b", got[1].SubmissionID)
	assert.Equal(t, models.ShapeSeries, got[0].View.Shape())
}

func TestRedisHistoryGet(t *testing.T) {
	c := newListCache()
	h := NewRedisHistory(c, 2, time.Hour)
	ctx := context.Background()

	require.NoError(t, h.Save(ctx, outcome("a")))
	assert.Contains(t, c.values, "outcome:a")

	got, err := h.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.SubmissionID)
	assert.Equal(t, int64(120), got.DurationMs)
	assert.Equal(t, models.ShapeSeries, got.View.Shape())

	_, err = h.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrOutcomeNotFound)
}

func TestMemoryHistoryGet(t *testing.T) {
	h := NewMemoryHistory(icache.NewTTLCache(), 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, h.Save(ctx, outcome("first")))
	got, err := h.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD=X", got.Parameters.Symbol)

	require.NoError(t, h.Save(ctx, outcome("second")))
	_, err = h.Get(ctx, "first")
	assert.ErrorIs(t, err, models.ErrOutcomeNotFound, "evicted by the limit")
}
