package storage

import (
	"context"
	"time"

	"github.com/gringotts/onboarding/config"
	"github.com/redis/go-redis/v9"
)

// RedisClient holds the redis connection
var RedisClient *redis.Client

// InitializeRedis connects to redis and verifies the connection
func InitializeRedis() error {
	conf := config.ServerConfig()

	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	RedisClient = client
	return nil
}
