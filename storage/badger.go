// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v3"
)

var _ KeyValueStore = (*BadgerStore)(nil)

// BadgerStore persists items in a Badger database.
type BadgerStore struct {
	db *badgerdb.DB
}

// NewBadgerStore opens or creates a Badger database in [dir]. An empty dir
// keeps the database in memory.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) GetItem(key string) (string, error) {
	var value []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (b *BadgerStore) SetItem(key, value string) error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (b *BadgerStore) RemoveItem(key string) error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
