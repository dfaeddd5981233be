package lock

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/meritscore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(NewKeyLocker),
)

// NewKeyLocker picks Redis when REDIS_ADDR is set, otherwise an in-process map.
func NewKeyLocker(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) KeyLocker {
	if cfg.RedisAddr == "" {
		log.Info("using in-process key locker")
		return NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("using redis key locker", zap.String("addr", cfg.RedisAddr))
	return NewRedisLocker(client, 0)
}
