// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

var _ KeyValueStore = (*BigCacheStore)(nil)

// BigCacheStore keeps items in memory and evicts them after a life window.
type BigCacheStore struct {
	cache *bigcache.BigCache
}

func NewBigCacheStore(ctx context.Context, lifeWindow time.Duration) (*BigCacheStore, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &BigCacheStore{cache: cache}, nil
}

func (b *BigCacheStore) GetItem(key string) (string, error) {
	value, err := b.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (b *BigCacheStore) SetItem(key, value string) error {
	return b.cache.Set(key, []byte(value))
}

func (b *BigCacheStore) RemoveItem(key string) error {
	err := b.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *BigCacheStore) Close() error {
	return b.cache.Close()
}
