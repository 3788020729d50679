package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockHeld возвращается, когда ключ уже захвачен другим обработчиком
	ErrLockHeld = errors.New("idempotency: key is held by another worker")

	// ErrGuardUnavailable возвращается при недоступности Redis
	ErrGuardUnavailable = errors.New("idempotency: guard unavailable")
)

// ReleaseFunc освобождает захваченный ключ
type ReleaseFunc func(ctx context.Context)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard кратковременная блокировка по ключу на SET NX PX
type RedisGuard struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisGuard создает guard. ttl ограничивает время удержания ключа упавшим обработчиком.
func NewRedisGuard(rdb redis.Cmdable, ttl time.Duration, prefix string) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "idem"
	}
	return &RedisGuard{rdb: rdb, ttl: ttl, prefix: prefix}
}

// Acquire захватывает ключ. ErrLockHeld - ключ занят, ErrGuardUnavailable - Redis недоступен.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	fullKey := g.prefix + ":" + key
	token := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, fullKey, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) {
		_ = releaseScript.Run(ctx, g.rdb, []string{fullKey}, token).Err()
	}, nil
}

// NoopGuard guard без блокировки, когда Redis выключен
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) {}, nil
}
