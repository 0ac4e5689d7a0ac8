package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists events as JSON values with a TTL, plus a per-day
// sorted-set index keyed by event kind so events can be queried by time
// range. The index carries the same TTL as its newest member; expired
// values simply come back missing from MGET and are skipped.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func eventKey(e Event) string {
	return fmt.Sprintf("analytics:%s:%s", e.Kind(), e.ID())
}

func indexKey(kind string, day time.Time) string {
	return fmt.Sprintf("analytics:index:%s:%s", kind, day.UTC().Format("2006-01-02"))
}

// Put stores the event value and indexes it by timestamp.
func (s *RedisStore) Put(ctx context.Context, e Event, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Kind(), err)
	}

	now := time.Now().UTC()
	key := eventKey(e)
	idx := indexKey(e.Kind(), now)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	pipe.ZAdd(ctx, idx, redis.Z{Score: float64(now.Unix()), Member: key})
	pipe.Expire(ctx, idx, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store %s event: %w", e.Kind(), err)
	}
	return nil
}

// QueryRange returns the raw JSON events of a kind recorded at or after
// since, reading each day's index partition in the range.
func (s *RedisStore) QueryRange(ctx context.Context, kind string, since time.Time) ([]string, error) {
	var keys []string
	for day := since.UTC().Truncate(24 * time.Hour); !day.After(time.Now().UTC()); day = day.Add(24 * time.Hour) {
		members, err := s.rdb.ZRangeByScore(ctx, indexKey(kind, day), &redis.ZRangeBy{
			Min: fmt.Sprintf("%d", since.Unix()),
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("query %s index: %w", kind, err)
		}
		keys = append(keys, members...)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch %s events: %w", kind, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

// CountSince reports how many events of a kind were recorded at or after
// since. Used by the stats endpoint.
func (s *RedisStore) CountSince(ctx context.Context, kind string, since time.Time) (int64, error) {
	var total int64
	for day := since.UTC().Truncate(24 * time.Hour); !day.After(time.Now().UTC()); day = day.Add(24 * time.Hour) {
		n, err := s.rdb.ZCount(ctx, indexKey(kind, day), fmt.Sprintf("%d", since.Unix()), "+inf").Result()
		if err != nil {
			return 0, fmt.Errorf("count %s index: %w", kind, err)
		}
		total += n
	}
	return total, nil
}
