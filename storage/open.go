// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Supported backends.
const (
	BackendNoop     = "noop"
	BackendMemory   = "memory"
	BackendLevelDB  = "leveldb"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendBigCache = "bigcache"
)

const defaultLifeWindow = 24 * time.Hour

// StoreConfig selects and configures a KeyValueStore backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the database directory for leveldb and badger. Empty keeps the
	// database in memory.
	Path string `mapstructure:"path"`

	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// LifeWindow bounds how long bigcache keeps an entry.
	LifeWindow time.Duration `mapstructure:"life-window"`
}

// OpenStore builds the backend named by [cfg.Backend]. Callers should close
// the result when it implements io.Closer.
func OpenStore(ctx context.Context, cfg StoreConfig) (KeyValueStore, error) {
	switch cfg.Backend {
	case "", BackendNoop:
		return NoopStore{}, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendLevelDB:
		return NewLevelDBStore(cfg.Path)
	case BackendBadger:
		return NewBadgerStore(cfg.Path)
	case BackendRedis:
		return NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Timeout)
	case BackendBigCache:
		lifeWindow := cfg.LifeWindow
		if lifeWindow <= 0 {
			lifeWindow = defaultLifeWindow
		}
		return NewBigCacheStore(ctx, lifeWindow)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
