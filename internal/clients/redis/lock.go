package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/swapi-mirror/internal/platform/lock"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const lockPrefix = "swapi:lock:"

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type locker struct {
	rdb  *goredis.Client
	ttl  time.Duration
	poll time.Duration
	log  *logger.Logger
}

// NewLocker returns a lock.Locker shared by every process using rdb. Keys expire
// after ttl so a crashed holder cannot block others forever.
func NewLocker(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) lock.Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &locker{rdb: rdb, ttl: ttl, poll: 200 * time.Millisecond, log: log.With("component", "RedisLocker")}
}

func (l *locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.rdb == nil {
		return nil, errors.New("redis locker not initialized")
	}
	k := lockPrefix + key
	token := uuid.NewString()

	t := time.NewTicker(l.poll)
	defer t.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", k, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.rdb, []string{k}, token).Err(); err != nil {
			l.log.Warn("release lock failed", "key", k, "error", err)
		}
	}, nil
}
