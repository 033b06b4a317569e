// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 5 * time.Second

var _ KeyValueStore = (*RedisStore)(nil)

// RedisStore keeps items in a Redis server so several processes can share
// one namespace.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStore connects to the server described by [opts] and pings it.
func NewRedisStore(opts *redis.Options, timeout time.Duration) (*RedisStore, error) {
	if opts == nil || opts.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	s := NewRedisStoreFromClient(redis.NewClient(opts), timeout)

	ctx, cancel := s.context()
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client without checking that the
// server is reachable.
func NewRedisStoreFromClient(client *redis.Client, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisStore{
		client:  client,
		timeout: timeout,
	}
}

func (r *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisStore) GetItem(key string) (string, error) {
	ctx, cancel := r.context()
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (r *RedisStore) SetItem(key, value string) error {
	ctx, cancel := r.context()
	defer cancel()
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisStore) RemoveItem(key string) error {
	ctx, cancel := r.context()
	defer cancel()
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
