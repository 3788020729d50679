package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable возвращается при недоступности Redis
var ErrUnavailable = errors.New("ratelimit: redis unavailable")

// fixedWindowScript увеличивает счетчик и ставит TTL окна при первом обращении
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisCounter счетчик фиксированного окна, общий для всех экземпляров сервиса
type RedisCounter struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedisCounter(rdb redis.Scripter, prefix string) *RedisCounter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

// Incr увеличивает счетчик ключа в текущем окне и возвращает новое значение
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = time.Minute.Milliseconds()
	}

	res, err := fixedWindowScript.Run(ctx, c.rdb, []string{c.prefix + ":" + key}, ms).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: unexpected counter value %q", ErrUnavailable, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: unexpected script result type %T", ErrUnavailable, res)
	}
}
