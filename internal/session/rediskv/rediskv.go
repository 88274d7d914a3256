// Package rediskv persists session entries in Redis.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) session.KeyValueStore {
	return &Store{client: client, prefix: prefix}
}

// Open parses a redis:// URL and verifies the server answers.
func Open(ctx context.Context, source, prefix string) (session.KeyValueStore, error) {
	opts, err := redis.ParseURL(source)
	if err != nil {
		return nil, fmt.Errorf("invalid redis source: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return New(client, prefix), nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Put(ctx context.Context, entries map[string]string) error {
	pipe := s.client.TxPipeline()
	for k, v := range entries {
		pipe.Set(ctx, s.key(k), v, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
