// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
)

type GetConnectorClientParameters struct {
	// ChainID, when set, must be a configured chain.
	ChainID uint64
	// Connector selects a connection. nil uses the current one.
	Connector connectors.Connector
}

// ConnectorClient is an account bound to a connected wallet.
type ConnectorClient struct {
	Account   common.Address
	Accounts  []common.Address
	ChainID   uint64
	Connector connectors.Connector
}

// GetConnectorClient resolves the account and the active chain of a
// connection.
func GetConnectorClient(ctx context.Context, cfg *config.Config, params GetConnectorClientParameters) (*ConnectorClient, error) {
	if params.ChainID != 0 {
		if _, err := cfg.Chain(params.ChainID); err != nil {
			return nil, err
		}
	}

	state := cfg.State()
	uid := state.Current
	if params.Connector != nil {
		uid = params.Connector.UID()
	}
	conn, ok := state.Connections[uid]
	if !ok {
		return nil, ErrConnectorNotConnected
	}
	if len(conn.Accounts) == 0 {
		return nil, ErrConnectorAccountNotFound
	}

	connectorChainID, err := conn.Connector.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't read connector chain: %w", err)
	}
	if connectorChainID != conn.ChainID {
		return nil, &ConnectorChainMismatchError{
			ConnectionChainID: conn.ChainID,
			ConnectorChainID:  connectorChainID,
		}
	}

	return &ConnectorClient{
		Account:   conn.Accounts[0],
		Accounts:  conn.Accounts,
		ChainID:   conn.ChainID,
		Connector: conn.Connector,
	}, nil
}

// AssertActiveChain fails unless [chainID] is configured and equal to
// [activeChainID].
func AssertActiveChain(cfg *config.Config, activeChainID, chainID uint64) error {
	if _, err := cfg.Chain(chainID); err != nil {
		return err
	}
	if activeChainID != chainID {
		return &ChainMismatchError{
			ActiveChainID: activeChainID,
			TargetChainID: chainID,
		}
	}
	return nil
}
