package config

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis opens the cache client. Redis is optional: with no
// REDIS_ADDR set (or an unreachable server) RDB stays nil and callers skip
// caching.
func ConnectRedis(cfg *Config) {
	if cfg.RedisAddr == "" {
		log.Printf("REDIS_ADDR not set, caching disabled")
		return
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(Ctx).Result(); err != nil {
		log.Printf("redis unreachable, caching disabled: %v", err)
		return
	}

	RDB = rdb
	log.Printf("redis connected at %s", cfg.RedisAddr)
}
