package redisStore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ReplaceValue writes value under "<key>:tmp" and renames it onto key inside one MULTI/EXEC,
// so readers see either the old value or the whole new one.
func (s *Store) ReplaceValue(ctx context.Context, key string, value []byte) error {
	tmpKey := key + ":tmp"
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tmpKey, value, 0)
		pipe.Rename(ctx, tmpKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// GetBytes returns the raw value of key. found is false when the key does not exist.
func (s *Store) GetBytes(ctx context.Context, key string) (value []byte, found bool, err error) {
	value, err = s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
