// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/wagmigo/config"
)

const (
	configFileKey = "config-file"
	envPrefix     = "wagmi"
)

// flagKeys maps command line flags to the settings keys they override.
var flagKeys = map[string]string{
	"storage-backend":        config.StorageBackendKey,
	"storage-path":           config.StoragePathKey,
	"storage-prefix":         config.StoragePrefixKey,
	"storage-redis-addr":     "storage.redis-addr",
	"storage-redis-password": "storage.redis-password",
	"storage-timeout":        "storage.timeout",
	config.KeystoreKey:       config.KeystoreKey,
	config.LogLevelKey:       config.LogLevelKey,
	config.HTTPAddrKey:       config.HTTPAddrKey,
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String(configFileKey, "", "Path to a yaml, json or toml config file")
	fs.String("storage-backend", "", "Storage backend: noop, memory, leveldb, badger, redis or bigcache")
	fs.String("storage-path", "", "Database directory of the leveldb and badger backends")
	fs.String("storage-prefix", "", "Prefix prepended to every storage key")
	fs.String("storage-redis-addr", "", "Address of the redis backend")
	fs.String("storage-redis-password", "", "Password of the redis backend")
	fs.Duration("storage-timeout", 0, "Timeout of a single redis operation")
	fs.String(config.KeystoreKey, "", "Keystore directory used as the wallet connector")
	fs.String(config.LogLevelKey, "", "Log level: debug, info, warn, error or crit")
	fs.String(config.HTTPAddrKey, "", "Address the serve command listens on")
}

// getViper returns the viper environment for [fs]. Values are read from, in
// increasing priority, the config file, WAGMI_ environment variables and the
// flags that were set.
func getViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}
	// AutomaticEnv only applies to keys viper already knows
	for _, key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	path, err := fs.GetString(configFileKey)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("WAGMI_CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// loadSettings reads the settings and installs the root log handler.
func loadSettings(fs *pflag.FlagSet) (config.Settings, error) {
	v, err := getViper(fs)
	if err != nil {
		return config.Settings{}, err
	}
	s, err := config.LoadSettings(v)
	if err != nil {
		return config.Settings{}, err
	}

	lvl, err := log.LvlFromString(s.LogLevel)
	if err != nil {
		return config.Settings{}, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))
	return s, nil
}
