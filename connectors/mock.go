// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connectors

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const MockID = "mock"

var _ Connector = (*Mock)(nil)

type MockParameters struct {
	Accounts []common.Address
	// ChainID is the chain the wallet starts on.
	ChainID uint64
	// Authorized makes IsAuthorized report true.
	Authorized bool

	ConnectError     error
	SwitchChainError error
}

// Mock is an in-memory connector with fixed accounts.
type Mock struct {
	uid    string
	params MockParameters

	lock      sync.Mutex
	connected bool
	chainID   uint64
}

func NewMock(params MockParameters) *Mock {
	return &Mock{
		uid:     uuid.NewString(),
		params:  params,
		chainID: params.ChainID,
	}
}

func (*Mock) ID() string    { return MockID }
func (*Mock) Name() string  { return "Mock Connector" }
func (m *Mock) UID() string { return m.uid }

func (m *Mock) Connect(_ context.Context, chainID uint64) (ConnectResult, error) {
	if m.params.ConnectError != nil {
		return ConnectResult{}, m.params.ConnectError
	}
	if len(m.params.Accounts) == 0 {
		return ConnectResult{}, ErrNoAccounts
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if chainID != 0 {
		m.chainID = chainID
	}
	m.connected = true
	return ConnectResult{
		Accounts: m.accounts(),
		ChainID:  m.chainID,
	}, nil
}

func (m *Mock) Disconnect(context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.connected = false
	return nil
}

func (m *Mock) Accounts(context.Context) ([]common.Address, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.connected {
		return nil, ErrNotConnected
	}
	return m.accounts(), nil
}

func (m *Mock) ChainID(context.Context) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.chainID, nil
}

func (m *Mock) IsAuthorized(context.Context) (bool, error) {
	return m.params.Authorized && len(m.params.Accounts) > 0, nil
}

func (m *Mock) SwitchChain(_ context.Context, chainID uint64) error {
	if m.params.SwitchChainError != nil {
		return m.params.SwitchChainError
	}
	m.SetChainID(chainID)
	return nil
}

// SetChainID moves the wallet to [chainID] as if the user switched networks
// outside of the application.
func (m *Mock) SetChainID(chainID uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.chainID = chainID
}

func (m *Mock) accounts() []common.Address {
	accounts := make([]common.Address, len(m.params.Accounts))
	copy(accounts, m.params.Accounts)
	return accounts
}
