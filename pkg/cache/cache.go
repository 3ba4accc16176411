package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations. Values are marshaled to JSON so all
// backends share the same semantics.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Key builds a namespaced cache key.
func Key(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}
