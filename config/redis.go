package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs chat sessions, the reference cache and the chat log stream.
var RedisClient *redis.Client

// ErrRedisDisabled is returned when no Redis address is set; in-process stores are used instead.
var ErrRedisDisabled = errors.New("REDIS_ADDR (or REDIS_URI/REDIS_URL) environment variable is not set")

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(val string) (*redis.Options, error) {
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		return redis.ParseURL(val)
	}
	return &redis.Options{
		Addr:     val,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}, nil
}

func redisAddr() string {
	for _, k := range []string{"REDIS_ADDR", "REDIS_URI", "REDIS_URL"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// InitRedis connects and pings; on failure RedisClient stays nil.
func InitRedis(ctx context.Context) error {
	val := redisAddr()
	if val == "" {
		return ErrRedisDisabled
	}
	opt, err := redisOptions(val)
	if err != nil {
		return err
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	RedisClient = client
	return nil
}
