package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/swapi-mirror/internal/clients/redis"
	"github.com/yungbote/swapi-mirror/internal/clients/swapi"
	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/lock"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type Clients struct {
	Swapi swapi.Client
	// Redis is nil unless REDIS_ADDR is configured.
	Redis  *goredis.Client
	Locker lock.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	locker := lock.NewLocal()
	if rdb != nil {
		log.Info("Using redis sync lock", "addr", cfg.Redis.Addr)
		locker = redis.NewLocker(rdb, cfg.Redis.LockTTL, log)
	}

	return Clients{
		Swapi:  swapi.NewClient(log, cfg.Swapi),
		Redis:  rdb,
		Locker: locker,
	}, nil
}
