// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/wagmigo/chains"
	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/storage"
)

func newStoredConfig(t *testing.T, st *storage.Storage, conns ...connectors.Connector) *config.Config {
	cfg, err := config.New(config.Options{
		Chains:     []chains.Chain{chains.Fuji, chains.Avalanche},
		Transports: map[uint64]config.Transport{},
		Connectors: conns,
		Storage:    st,
	})
	require.NoError(t, err)
	return cfg
}

func TestConnect(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := storage.New(storage.Options{Store: storage.NewMemoryStore()})
	cfg := newStoredConfig(t, st)

	mock := connectors.NewMock(connectors.MockParameters{
		Accounts: []common.Address{alice, bob},
		ChainID:  chains.Fuji.ID,
	})
	res, err := Connect(ctx, cfg, mock, chains.Avalanche.ID)
	require.NoError(t, err)
	assert.Equal([]common.Address{alice, bob}, res.Accounts)
	assert.Equal(chains.Avalanche.ID, res.ChainID)

	state := cfg.State()
	assert.Equal(config.StatusConnected, state.Status)
	assert.Equal(mock.UID(), state.Current)
	assert.Equal(chains.Avalanche.ID, state.ChainID)
	assert.Equal(connectors.MockID, storage.Get(st, storage.KeyRecentConnectorID, ""))
	assert.Equal(1.0, testutil.ToFloat64(cfg.Metrics().Connects))

	_, err = Connect(ctx, cfg, mock, 0)
	assert.ErrorIs(err, ErrConnectorAlreadyConnected)

	_, err = Connect(ctx, cfg, connectors.NewMock(connectors.MockParameters{Accounts: []common.Address{alice}}), chains.Mainnet.ID)
	assert.ErrorIs(err, config.ErrChainNotConfigured)
}

func TestConnectFailure(t *testing.T) {
	assert := assert.New(t)
	cfg := newStoredConfig(t, nil)
	errRejected := errors.New("user rejected the request")

	mock := connectors.NewMock(connectors.MockParameters{
		Accounts:     []common.Address{alice},
		ConnectError: errRejected,
	})
	_, err := Connect(context.Background(), cfg, mock, 0)
	assert.ErrorIs(err, errRejected)

	state := cfg.State()
	assert.Equal(config.StatusDisconnected, state.Status)
	assert.Empty(state.Connections)
	assert.Zero(testutil.ToFloat64(cfg.Metrics().Connects))
}

func TestDisconnect(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := storage.New(storage.Options{Store: storage.NewMemoryStore()})
	cfg := newStoredConfig(t, st)

	assert.ErrorIs(Disconnect(ctx, cfg, nil), ErrConnectorNotConnected)

	first := connectors.NewMock(connectors.MockParameters{Accounts: []common.Address{alice}, ChainID: chains.Fuji.ID})
	second := connectors.NewMock(connectors.MockParameters{Accounts: []common.Address{bob}, ChainID: chains.Fuji.ID})
	_, err := Connect(ctx, cfg, first, 0)
	require.NoError(t, err)
	_, err = Connect(ctx, cfg, second, 0)
	require.NoError(t, err)
	assert.Equal(second.UID(), cfg.State().Current)

	// the other connection takes over
	require.NoError(t, Disconnect(ctx, cfg, nil))
	state := cfg.State()
	assert.Equal(first.UID(), state.Current)
	assert.Equal(config.StatusConnected, state.Status)
	assert.Equal(alice, GetAccount(cfg).Address)
	assert.Equal(connectors.MockID, storage.Get(st, storage.KeyRecentConnectorID, ""))

	require.NoError(t, Disconnect(ctx, cfg, first))
	state = cfg.State()
	assert.Empty(state.Current)
	assert.Equal(config.StatusDisconnected, state.Status)
	assert.Equal("", storage.Get(st, storage.KeyRecentConnectorID, ""))
	assert.Equal(2.0, testutil.ToFloat64(cfg.Metrics().Disconnects))

	_, err = first.Accounts(ctx)
	assert.ErrorIs(err, connectors.ErrNotConnected)
}

func TestReconnect(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := storage.New(storage.Options{Store: storage.NewMemoryStore()})
	st.SetItem(storage.KeyRecentConnectorID, connectors.MockID)

	unauthorized := connectors.NewMock(connectors.MockParameters{Accounts: []common.Address{bob}})
	failing := connectors.NewMock(connectors.MockParameters{
		Accounts:     []common.Address{bob},
		Authorized:   true,
		ConnectError: errors.New("locked"),
	})
	authorized := connectors.NewMock(connectors.MockParameters{
		Accounts:   []common.Address{alice},
		ChainID:    chains.Avalanche.ID,
		Authorized: true,
	})
	cfg := newStoredConfig(t, st, unauthorized, failing, authorized)

	results, err := Reconnect(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal([]common.Address{alice}, results[0].Accounts)

	account := GetAccount(cfg)
	assert.True(account.IsConnected())
	assert.Equal(alice, account.Address)
	assert.Equal(chains.Avalanche.ID, account.ChainID)
	assert.Equal(chains.Avalanche.ID, cfg.State().ChainID)
	assert.Same(authorized, account.Connector)

	// already connected connectors are skipped
	results, err = Reconnect(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(results)
	assert.Equal(config.StatusConnected, cfg.State().Status)
}

func TestReconnectNothing(t *testing.T) {
	cfg := newStoredConfig(t, nil, connectors.NewMock(connectors.MockParameters{}))
	results, err := Reconnect(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, config.StatusDisconnected, cfg.State().Status)
}

func TestGetAccountDisconnected(t *testing.T) {
	assert := assert.New(t)
	account := GetAccount(newStoredConfig(t, nil))
	assert.False(account.IsConnected())
	assert.Equal(common.Address{}, account.Address)
	assert.Nil(account.Connector)
	assert.Equal(config.StatusDisconnected, account.Status)
}

func TestSwitchChain(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	cfg := newStoredConfig(t, nil)

	chain, err := SwitchChain(ctx, cfg, chains.Avalanche.ID)
	require.NoError(t, err)
	assert.Equal(chains.Avalanche, chain)
	assert.Equal(chains.Avalanche.ID, cfg.State().ChainID)

	_, err = SwitchChain(ctx, cfg, chains.Mainnet.ID)
	assert.ErrorIs(err, config.ErrChainNotConfigured)

	mock := connectors.NewMock(connectors.MockParameters{Accounts: []common.Address{alice}, ChainID: chains.Fuji.ID})
	_, err = Connect(ctx, cfg, mock, chains.Fuji.ID)
	require.NoError(t, err)

	_, err = SwitchChain(ctx, cfg, chains.Avalanche.ID)
	require.NoError(t, err)
	id, err := mock.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(chains.Avalanche.ID, id)
	assert.Equal(chains.Avalanche.ID, GetAccount(cfg).ChainID)

	// still consistent for the connector client
	client, err := GetConnectorClient(ctx, cfg, GetConnectorClientParameters{ChainID: chains.Avalanche.ID})
	require.NoError(t, err)
	assert.Equal(alice, client.Account)

	errDenied := errors.New("denied")
	denied := connectors.NewMock(connectors.MockParameters{
		Accounts:         []common.Address{bob},
		ChainID:          chains.Fuji.ID,
		SwitchChainError: errDenied,
	})
	require.NoError(t, Disconnect(ctx, cfg, nil))
	_, err = Connect(ctx, cfg, denied, 0)
	require.NoError(t, err)
	_, err = SwitchChain(ctx, cfg, chains.Avalanche.ID)
	assert.ErrorIs(err, errDenied)
	assert.Equal(chains.Fuji.ID, cfg.State().ChainID)
}

// accountlessConnector connects successfully without exposing any account.
type accountlessConnector struct {
	*connectors.Mock
}

func (accountlessConnector) Connect(context.Context, uint64) (connectors.ConnectResult, error) {
	return connectors.ConnectResult{ChainID: chains.Fuji.ID}, nil
}

func (accountlessConnector) IsAuthorized(context.Context) (bool, error) { return true, nil }

func TestConnectWithoutAccounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := storage.New(storage.Options{Store: storage.NewMemoryStore()})
	empty := accountlessConnector{Mock: connectors.NewMock(connectors.MockParameters{})}
	cfg := newStoredConfig(t, st, empty)

	_, err := Connect(ctx, cfg, empty, chains.Fuji.ID)
	assert.ErrorIs(err, connectors.ErrNoAccounts)

	state := cfg.State()
	assert.Empty(state.Connections)
	assert.Empty(state.Current)
	assert.Equal(config.StatusDisconnected, state.Status)
	assert.Equal("", storage.Get(st, storage.KeyRecentConnectorID, ""))
	assert.Zero(testutil.ToFloat64(cfg.Metrics().Connects))

	results, err := Reconnect(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(results)
	assert.Empty(cfg.State().Connections)
	assert.Equal(config.StatusDisconnected, cfg.State().Status)
}
