package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiterStore shares rate limit counters between instances. Each
// window gets its own key, which expires once the window has passed.
type RedisLimiterStore struct {
	client rueidis.Client
	prefix string
	now    func() time.Time
}

func NewRedisLimiterStore(client rueidis.Client, prefix string) *RedisLimiterStore {
	return &RedisLimiterStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisLimiterStore) windowKey(key string, window time.Duration) string {
	slot := s.now().UnixNano() / int64(window)
	return s.prefix + "ratelimit:" + key + ":" + strconv.FormatInt(slot, 10)
}

func (s *RedisLimiterStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := s.windowKey(key, window)

	count, err := s.client.Do(ctx, s.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return false, err
	}

	if count == 1 {
		ttl := int64(window/time.Second) + 1
		if err := s.client.Do(ctx, s.client.B().Expire().Key(k).Seconds(ttl).Build()).Error(); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}
