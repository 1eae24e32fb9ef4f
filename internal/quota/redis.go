package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var dayWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Redis is a Redis-backed daily quota shared across empire processes.
type Redis struct {
	limit  int
	prefix string
	client *redis.Client
	now    func() time.Time
}

// NewRedis creates a Redis-backed daily quota.
func NewRedis(addr, password, prefix string, limit int) (*Redis, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("quota redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "beatempire:quota"
	}
	return &Redis{
		limit:  limit,
		prefix: prefix,
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		now: time.Now,
	}, nil
}

// NewRedisWithClient wraps an existing client; used by tests.
func NewRedisWithClient(client *redis.Client, prefix string, limit int) *Redis {
	if prefix == "" {
		prefix = "beatempire:quota"
	}
	return &Redis{limit: limit, prefix: prefix, client: client, now: time.Now}
}

// Allow consumes one unit for key in the current UTC day window.
// On Redis failures it fails closed so caps are never exceeded.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	now := r.now().UTC()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	ttlMs := endOfDay.Sub(now).Milliseconds()
	if ttlMs <= 0 {
		ttlMs = 1
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := dayWindowScript.Run(ctx, r.client, []string{r.dayKey(key, now)}, ttlMs).Int64()
	if err != nil {
		return false, fmt.Errorf("quota redis: %w", err)
	}
	return count <= int64(r.limit), nil
}

// Check reads the current tally without consuming. Fails closed like Allow.
func (r *Redis) Check(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := r.client.Get(ctx, r.dayKey(key, r.now().UTC())).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("quota redis: %w", err)
	}
	return count < int64(r.limit), nil
}

func (r *Redis) dayKey(key string, now time.Time) string {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, key, now.Format("2006-01-02"))
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
