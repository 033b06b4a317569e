// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
)

var (
	_ KeyValueStore = NoopStore{}
	_ KeyValueStore = (*DatabaseStore)(nil)
)

// KeyValueStore is the string keyed store a Storage writes through.
//
// GetItem returns an empty string and a nil error when [key] is missing.
type KeyValueStore interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// NoopStore accepts and discards every write. It backs environments without
// persistence.
type NoopStore struct{}

func (NoopStore) GetItem(string) (string, error) { return "", nil }
func (NoopStore) SetItem(string, string) error   { return nil }
func (NoopStore) RemoveItem(string) error        { return nil }

// DatabaseStore adapts an avalanchego database to a KeyValueStore.
type DatabaseStore struct {
	db database.Database
}

func NewDatabaseStore(db database.Database) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// NewMemoryStore returns a DatabaseStore over a fresh in-memory database.
func NewMemoryStore() *DatabaseStore {
	return NewDatabaseStore(memdb.New())
}

func (d *DatabaseStore) GetItem(key string) (string, error) {
	value, err := d.db.Get([]byte(key))
	if errors.Is(err, database.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (d *DatabaseStore) SetItem(key, value string) error {
	return d.db.Put([]byte(key), []byte(value))
}

func (d *DatabaseStore) RemoveItem(key string) error {
	return d.db.Delete([]byte(key))
}

func (d *DatabaseStore) Close() error {
	return d.db.Close()
}
