package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	// ListPush prepends value to a capped list and refreshes its expiration.
	ListPush(ctx context.Context, key string, value interface{}, maxLen int64, expiration time.Duration) error
	// ListRange returns up to n newest raw entries of a list.
	ListRange(ctx context.Context, key string, n int64) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
