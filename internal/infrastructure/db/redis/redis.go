package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultCommandTimeout = 500 * time.Millisecond
)

// Config holds the revocation list connection. CommandTimeout bounds every
// read and write, since a lookup sits on the path of each authenticated
// request.
type Config struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
}

func clientOptions(cfg Config) *redis.Options {
	command := cfg.CommandTimeout
	if command <= 0 {
		command = defaultCommandTimeout
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  command,
		ReadTimeout:  command,
		WriteTimeout: command,
		MaxRetries:   1,
	}
}

// Connect opens the client backing the token revocation list and pings it
// once, so a misconfigured REDIS_ADDR fails at startup instead of on the
// first logout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(clientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
