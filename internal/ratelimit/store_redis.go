package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "voto:ratelimit:"

// The expiry is set only by the first hit so the window does not slide.
var incrementScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisStore shares windows between server processes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string, length time.Duration, now time.Time) (int, time.Time, error) {
	out, err := incrementScript.Run(ctx, s.client, []string{keyPrefix + key}, length.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("increment rate limit window: %w", err)
	}
	if len(out) != 2 {
		return 0, time.Time{}, fmt.Errorf("increment rate limit window: unexpected reply %v", out)
	}
	ttl := time.Duration(out[1]) * time.Millisecond
	if ttl < 0 {
		ttl = length
	}
	return int(out[0]), now.Add(ttl), nil
}
