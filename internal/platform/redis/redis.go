package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client so platform concerns stay in one place.
type Client struct {
	*redis.Client
}

// Open connects to Redis and pings it to validate the connection.
func Open(ctx context.Context, host string, port int, password string, db int) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("empty redis host")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: c}, nil
}
