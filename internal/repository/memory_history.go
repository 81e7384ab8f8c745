package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"FxSignals/internal/domain/models"
	"FxSignals/internal/domain/repository"
	icache "FxSignals/internal/service/cache"
	pkgcache "FxSignals/pkg/cache"
)

// MemoryHistory keeps the newest outcomes in a TTL cache, indexed by submission id.
type MemoryHistory struct {
	mu    sync.Mutex
	cache icache.BytesCache
	ids   []string // newest last
	limit int
	ttl   time.Duration
}

// NewMemoryHistory keeps at most limit outcomes, each for ttl (zero keeps them forever).
func NewMemoryHistory(cache icache.BytesCache, limit int, ttl time.Duration) *MemoryHistory {
	if limit < 1 {
		limit = 1
	}
	return &MemoryHistory{cache: cache, limit: limit, ttl: ttl}
}

func (h *MemoryHistory) Save(_ context.Context, o models.Outcome) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.cache.SetBytes(historyKey(o.SubmissionID), b, h.ttl); err != nil {
		return fmt.Errorf("store outcome: %w", err)
	}
	h.ids = append(h.ids, o.SubmissionID)
	for len(h.ids) > h.limit {
		h.cache.Delete(historyKey(h.ids[0]))
		h.ids = h.ids[1:]
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, n int) ([]models.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.Outcome, 0, min(n, len(h.ids)))
	for i := len(h.ids) - 1; i >= 0 && len(out) < n; i-- {
		b, ok, err := h.cache.GetBytes(historyKey(h.ids[i]))
		if err != nil {
			return nil, fmt.Errorf("load outcome: %w", err)
		}
		if !ok {
			continue
		}
		var o models.Outcome
		if err := json.Unmarshal(b, &o); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *MemoryHistory) Get(_ context.Context, id string) (models.Outcome, error) {
	b, ok, err := h.cache.GetBytes(historyKey(id))
	if err != nil {
		return models.Outcome{}, fmt.Errorf("load outcome: %w", err)
	}
	if !ok {
		return models.Outcome{}, models.ErrOutcomeNotFound
	}
	var o models.Outcome
	if err := json.Unmarshal(b, &o); err != nil {
		return models.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return o, nil
}

func (h *MemoryHistory) Close() error {
	return nil
}

func historyKey(id string) string {
	return pkgcache.GenerateKey("outcome", id)
}

var _ repository.HistoryStore = (*MemoryHistory)(nil)
