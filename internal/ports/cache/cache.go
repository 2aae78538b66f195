package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound ключ отсутствует в кэше
var ErrNotFound = errors.New("cache: key not found")

// Cache интерфейс для работы с кэшем
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
