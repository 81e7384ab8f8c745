package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FxSignals/internal/domain/models"
	"FxSignals/internal/domain/repository"
	pkgcache "FxSignals/pkg/cache"
)

const historyListKey = "history"

// RedisHistory stores outcomes as JSON in a capped Redis list, newest first, and
// under a per-submission key for direct lookup.
type RedisHistory struct {
	cache pkgcache.Service
	limit int64
	ttl   time.Duration
}

// NewRedisHistory keeps at most limit outcomes. ttl refreshes on every save.
func NewRedisHistory(cache pkgcache.Service, limit int, ttl time.Duration) *RedisHistory {
	if limit < 1 {
		limit = 1
	}
	return &RedisHistory{cache: cache, limit: int64(limit), ttl: ttl}
}

func (h *RedisHistory) Save(ctx context.Context, o models.Outcome) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := h.cache.ListPush(ctx, historyListKey, b, h.limit, h.ttl); err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	if err := h.cache.Set(ctx, historyKey(o.SubmissionID), b, h.ttl); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (h *RedisHistory) Get(ctx context.Context, id string) (models.Outcome, error) {
	var o models.Outcome
	if err := h.cache.Get(ctx, historyKey(id), &o); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return models.Outcome{}, models.ErrOutcomeNotFound
		}
		return models.Outcome{}, fmt.Errorf("redis get: %w", err)
	}
	return o, nil
}

func (h *RedisHistory) Recent(ctx context.Context, n int) ([]models.Outcome, error) {
	if int64(n) > h.limit {
		n = int(h.limit)
	}
	raw, err := h.cache.ListRange(ctx, historyListKey, int64(n))
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}

	out := make([]models.Outcome, 0, len(raw))
	for _, s := range raw {
		var o models.Outcome
		if err := json.Unmarshal([]byte(s), &o); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *RedisHistory) Close() error {
	return h.cache.Close()
}

var _ repository.HistoryStore = (*RedisHistory)(nil)
