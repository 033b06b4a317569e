// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/wagmigo/chains"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/storage"
)

// Keys understood by LoadSettings.
const (
	ChainsKey         = "chains"
	StorageKey        = "storage"
	StorageBackendKey = "storage.backend"
	StoragePathKey    = "storage.path"
	StoragePrefixKey  = "storage.prefix"
	KeystoreKey       = "keystore"
	LogLevelKey       = "log-level"
	HTTPAddrKey       = "http-addr"
)

// StorageSettings configures the storage backend and its namespace.
type StorageSettings struct {
	storage.StoreConfig `mapstructure:",squash"`
	Prefix              string `mapstructure:"prefix"`
}

// Settings is the file/env/flag configuration of a Config.
type Settings struct {
	Chains   []chains.Chain  `mapstructure:"chains"`
	Storage  StorageSettings `mapstructure:"storage"`
	Keystore string          `mapstructure:"keystore"`
	LogLevel string          `mapstructure:"log-level"`
	HTTPAddr string          `mapstructure:"http-addr"`
}

// SetDefaults registers the default value of every key on [v].
func SetDefaults(v *viper.Viper) {
	v.SetDefault(StorageBackendKey, storage.BackendMemory)
	v.SetDefault(StoragePrefixKey, storage.DefaultPrefix)
	v.SetDefault(LogLevelKey, "info")
	v.SetDefault(HTTPAddrKey, "127.0.0.1:9650")
}

// LoadSettings decodes the settings held by [v]. Avalanche and Fuji are used
// when no chain is configured.
func LoadSettings(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("couldn't decode settings: %w", err)
	}
	if len(s.Chains) == 0 {
		s.Chains = []chains.Chain{chains.Avalanche, chains.Fuji}
	}
	return s, nil
}

// FromSettings opens the configured storage backend and builds a Config over
// it. The returned Config owns the backend and closes it on Close.
func FromSettings(ctx context.Context, s Settings, logger log.Logger, reg prometheus.Registerer) (*Config, error) {
	if logger == nil {
		logger = log.New()
	}
	store, err := storage.OpenStore(ctx, s.Storage.StoreConfig)
	if err != nil {
		return nil, err
	}

	var conns []connectors.Connector
	if s.Keystore != "" {
		conns = append(conns, connectors.NewKeystore(s.Keystore))
	}

	c, err := New(Options{
		Chains:     s.Chains,
		Connectors: conns,
		Storage: storage.New(storage.Options{
			Prefix:     s.Storage.Prefix,
			Store:      store,
			Logger:     logger.New("module", "storage"),
			Registerer: reg,
		}),
		Logger:     logger.New("module", "config"),
		Registerer: reg,
	})
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return c, nil
}
