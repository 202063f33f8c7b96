package database

import (
	"context"
	"fmt"
	"time"

	"lab-inventory/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client and pings it once.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Logger.Info().Str("addr", addr).Msg("Redis connection established")
	return client, nil
}
