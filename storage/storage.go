// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage persists connection and query state in a host provided
// key-value store. Every key is namespaced under a prefix and every value goes
// through a pluggable Serializer.
//
// Storage never returns errors: failed reads fall back to the caller's default
// and failed writes are logged and dropped.
package storage

import (
	"fmt"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"
)

// DefaultPrefix is the namespace used when Options.Prefix is empty.
const DefaultPrefix = "wagmi"

// Well known keys.
const (
	KeyCache             = "cache"
	KeyRecentConnectorID = "recentConnectorId"
	KeyState             = "state"
)

const metricsNamespace = "wagmi_storage"

type Options struct {
	// Serializer defaults to JSONSerializer.
	Serializer Serializer
	// Prefix defaults to DefaultPrefix.
	Prefix string
	// Store defaults to NoopStore.
	Store KeyValueStore
	// Logger defaults to a child of the root logger.
	Logger log.Logger
	// Registerer is optional.
	Registerer prometheus.Registerer
}

// Storage is a namespaced, fail-soft view over a KeyValueStore.
type Storage struct {
	serializer Serializer
	prefix     string
	store      KeyValueStore
	log        log.Logger
	metrics    *metrics
}

func New(opts Options) *Storage {
	s := &Storage{
		serializer: opts.Serializer,
		prefix:     opts.Prefix,
		store:      opts.Store,
		log:        opts.Logger,
	}
	if s.serializer == nil {
		s.serializer = JSONSerializer{}
	}
	if s.prefix == "" {
		s.prefix = DefaultPrefix
	}
	if s.store == nil {
		s.store = NoopStore{}
	}
	if s.log == nil {
		s.log = log.New("module", "storage")
	}

	m, err := newMetrics(metricsNamespace, opts.Registerer)
	if err != nil {
		s.log.Warn("couldn't register storage metrics", "err", err)
	}
	s.metrics = m
	return s
}

// Prefix returns the namespace prepended to every key.
func (s *Storage) Prefix() string { return s.prefix }

// Store returns the underlying key-value store.
func (s *Storage) Store() KeyValueStore { return s.store }

func (s *Storage) storageKey(key string) string {
	return s.prefix + "." + key
}

// GetItem decodes the value stored under [key] into [dst], which must be a
// non-nil pointer. It returns false when the key is missing or the stored
// value can't be read, in which case [dst] is left untouched.
func (s *Storage) GetItem(key string, dst interface{}) bool {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		s.log.Error("cannot decode into a non-pointer", "key", key, "type", fmt.Sprintf("%T", dst))
		return false
	}

	raw, err := s.store.GetItem(s.storageKey(key))
	if err != nil {
		s.metrics.readFailures.Inc()
		s.log.Warn("failed to read item", "key", key, "err", err)
		return false
	}
	if raw == "" {
		s.log.Debug("item not found", "key", key)
		return false
	}

	// Decode into a scratch value so a partial decode never leaks into dst.
	tmp := reflect.New(dv.Elem().Type())
	if err := s.serializer.Deserialize(raw, tmp.Interface()); err != nil {
		s.metrics.readFailures.Inc()
		s.log.Warn("failed to deserialize item", "key", key, "err", err)
		return false
	}
	dv.Elem().Set(tmp.Elem())
	return true
}

// SetItem stores [value] under [key]. A nil value removes the key.
func (s *Storage) SetItem(key string, value interface{}) {
	if isNil(value) {
		s.RemoveItem(key)
		return
	}

	raw, err := s.serializer.Serialize(value)
	if err != nil {
		s.metrics.writeFailures.Inc()
		s.log.Error("failed to serialize item", "key", key, "err", err)
		return
	}
	if err := s.store.SetItem(s.storageKey(key), raw); err != nil {
		s.metrics.writeFailures.Inc()
		s.log.Error("failed to write item", "key", key, "err", err)
	}
}

func (s *Storage) RemoveItem(key string) {
	s.metrics.removals.Inc()
	if err := s.store.RemoveItem(s.storageKey(key)); err != nil {
		s.log.Error("failed to remove item", "key", key, "err", err)
	}
}

// Get returns the value stored under [key], or [def] when it is missing or
// unreadable.
func Get[T any](s *Storage, key string, def T) T {
	var v T
	if !s.GetItem(key, &v) {
		return def
	}
	return v
}

// Set stores [*value] under [key], or removes the key when [value] is nil.
func Set[T any](s *Storage, key string, value *T) {
	if value == nil {
		s.RemoveItem(key)
		return
	}
	s.SetItem(key, *value)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
