// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the chains, clients, connectors and connection state
// shared by the actions.
package config

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/wagmigo/chains"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/storage"
)

var (
	ErrNoChains           = errors.New("at least one chain must be configured")
	ErrChainNotConfigured = errors.New("chain not configured")
	errDuplicateChain     = errors.New("duplicate chain")
)

type Options struct {
	Chains []chains.Chain
	// Transports overrides how the client of a chain is built. Chains without
	// an entry use HTTP with their first rpc url.
	Transports map[uint64]Transport
	Connectors []connectors.Connector
	// Storage is optional. When set, connection state and the most recent
	// connector are persisted through it.
	Storage    *storage.Storage
	Logger     log.Logger
	Registerer prometheus.Registerer
}

type Config struct {
	chains     []chains.Chain
	transports map[uint64]Transport
	connectors []connectors.Connector
	storage    *storage.Storage
	log        log.Logger
	metrics    *Metrics

	clientsLock sync.Mutex
	clients     map[uint64]Client

	// persistLock orders SetState calls so storage sees states in the order
	// they were applied.
	persistLock sync.Mutex
	stateLock   sync.RWMutex
	state       State
}

func New(opts Options) (*Config, error) {
	if len(opts.Chains) == 0 {
		return nil, ErrNoChains
	}

	c := &Config{
		chains:     make([]chains.Chain, 0, len(opts.Chains)),
		transports: make(map[uint64]Transport, len(opts.Chains)),
		connectors: opts.Connectors,
		storage:    opts.Storage,
		log:        opts.Logger,
		clients:    make(map[uint64]Client),
		state: State{
			ChainID:     opts.Chains[0].ID,
			Connections: make(map[string]Connection),
			Status:      StatusDisconnected,
		},
	}
	if c.log == nil {
		c.log = log.New("module", "config")
	}
	for _, chain := range opts.Chains {
		if _, ok := c.transports[chain.ID]; ok {
			return nil, fmt.Errorf("%w: %d", errDuplicateChain, chain.ID)
		}
		c.chains = append(c.chains, chain)

		transport, ok := opts.Transports[chain.ID]
		if !ok {
			transport = HTTP("")
		}
		c.transports[chain.ID] = transport
	}

	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("couldn't register metrics: %w", err)
	}
	c.metrics = m

	c.hydrate()
	return c, nil
}

// hydrate restores the last used chain from storage.
func (c *Config) hydrate() {
	if c.storage == nil {
		return
	}
	var persisted PartializedState
	if !c.storage.GetItem(storage.KeyState, &persisted) {
		return
	}
	if _, ok := chains.Find(c.chains, persisted.ChainID); !ok {
		c.log.Debug("ignoring persisted chain", "chainID", persisted.ChainID)
		return
	}
	c.state.ChainID = persisted.ChainID
}

func (c *Config) Chains() []chains.Chain {
	list := make([]chains.Chain, len(c.chains))
	copy(list, c.chains)
	return list
}

// Chain returns the configured chain with the given id.
func (c *Config) Chain(chainID uint64) (chains.Chain, error) {
	chain, ok := chains.Find(c.chains, chainID)
	if !ok {
		return chains.Chain{}, fmt.Errorf("%w: %d", ErrChainNotConfigured, chainID)
	}
	return chain, nil
}

func (c *Config) Connectors() []connectors.Connector {
	list := make([]connectors.Connector, len(c.connectors))
	copy(list, c.connectors)
	return list
}

// Storage returns the configured storage, or nil.
func (c *Config) Storage() *storage.Storage { return c.storage }

func (c *Config) Logger() log.Logger { return c.log }

func (c *Config) Metrics() *Metrics { return c.metrics }

// GetClient returns the client for [chainID], building it on first use. A
// zero chain id selects the current chain.
func (c *Config) GetClient(chainID uint64) (Client, error) {
	if chainID == 0 {
		chainID = c.State().ChainID
	}
	chain, err := c.Chain(chainID)
	if err != nil {
		return nil, err
	}

	c.clientsLock.Lock()
	defer c.clientsLock.Unlock()

	if client, ok := c.clients[chainID]; ok {
		return client, nil
	}
	client, err := c.transports[chainID](chain)
	if err != nil {
		return nil, err
	}
	c.clients[chainID] = client
	c.log.Debug("created client", "chainID", chainID)
	return client, nil
}

// State returns a copy of the current connection state.
func (c *Config) State() State {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()

	return c.state.clone()
}

// SetState replaces the state with the result of [f], which receives a copy
// it may modify freely. The new state is persisted when storage is set.
func (c *Config) SetState(f func(State) State) {
	c.persistLock.Lock()
	defer c.persistLock.Unlock()

	c.stateLock.Lock()
	next := f(c.state.clone())
	if next.Connections == nil {
		next.Connections = make(map[string]Connection)
	}
	c.state = next
	persisted := partialize(next)
	c.stateLock.Unlock()

	if c.storage != nil {
		c.storage.SetItem(storage.KeyState, persisted)
	}
}

// Close releases the cached clients and the storage backend.
func (c *Config) Close() error {
	c.clientsLock.Lock()
	for chainID, client := range c.clients {
		if closer, ok := client.(interface{ Close() }); ok {
			closer.Close()
		}
		delete(c.clients, chainID)
	}
	c.clientsLock.Unlock()

	errs := wrappers.Errs{}
	if c.storage != nil {
		if closer, ok := c.storage.Store().(io.Closer); ok {
			errs.Add(closer.Close())
		}
	}
	return errs.Err
}
