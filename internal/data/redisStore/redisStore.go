package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Store is a thin wrapper over one redis client so callers never import go-redis directly.
type Store struct {
	client *redis.Client
	logger *logger_i.Logger
}

// NewStore connects to the redis described by settings and pings it once.
func NewStore(ctx context.Context, settings config.SnapshotSettings) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  settings.RedisAddr,
		Password:              settings.RedisPassword,
		DB:                    settings.RedisDB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := newClient.Ping(pingCtx).Err(); err != nil {
		_ = newClient.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", settings.RedisAddr, err)
	}

	s := FromClient(newClient)
	s.logger.Info("Redis store init successfully", "addr", settings.RedisAddr, "db", settings.RedisDB)
	return s, nil
}

// FromClient wraps an existing client; tests hand in a miniredis-backed one.
func FromClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store"),
	}
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
		return err
	}
	s.logger.Info("Redis store closed successfully")
	return nil
}
