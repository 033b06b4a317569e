// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
)

type Account struct {
	// Address is the zero address when disconnected.
	Address   common.Address
	Addresses []common.Address
	ChainID   uint64
	Connector connectors.Connector
	Status    config.Status
}

func (a Account) IsConnected() bool { return a.Status == config.StatusConnected }

// GetAccount returns the account of the current connection.
func GetAccount(cfg *config.Config) Account {
	state := cfg.State()
	conn, ok := state.CurrentConnection()
	if !ok {
		status := state.Status
		if status == config.StatusConnected {
			status = config.StatusDisconnected
		}
		return Account{Status: status}
	}
	var address common.Address
	if len(conn.Accounts) > 0 {
		address = conn.Accounts[0]
	}
	return Account{
		Address:   address,
		Addresses: conn.Accounts,
		ChainID:   conn.ChainID,
		Connector: conn.Connector,
		Status:    state.Status,
	}
}
