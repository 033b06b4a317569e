// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

var _ KeyValueStore = (*LevelDBStore)(nil)

// LevelDBStore persists items in a LevelDB database.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens or creates a LevelDB database at [path]. An empty
// path keeps the database in memory.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %q: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

func (l *LevelDBStore) GetItem(key string) (string, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (l *LevelDBStore) SetItem(key, value string) error {
	return l.db.Put([]byte(key), []byte(value), nil)
}

func (l *LevelDBStore) RemoveItem(key string) error {
	return l.db.Delete([]byte(key), nil)
}

func (l *LevelDBStore) Close() error {
	return l.db.Close()
}
