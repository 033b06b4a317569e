// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package connectors contains the wallet backends a config can connect to.
package connectors

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotConnected = errors.New("connector not connected")
	ErrNoAccounts   = errors.New("connector has no accounts")
)

// ConnectResult is what a wallet reports once a connection is established.
type ConnectResult struct {
	Accounts []common.Address
	ChainID  uint64
}

// Connector is a wallet or signing backend providing accounts and an active
// chain.
type Connector interface {
	// ID identifies the kind of connector and is what gets persisted as the
	// most recently used connector.
	ID() string
	Name() string
	// UID is unique per instance.
	UID() string

	// Connect establishes a connection on [chainID], or on the wallet's
	// current chain when [chainID] is 0.
	Connect(ctx context.Context, chainID uint64) (ConnectResult, error)
	Disconnect(ctx context.Context) error

	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	// IsAuthorized reports whether a connection can be restored without
	// prompting the user.
	IsAuthorized(ctx context.Context) (bool, error)
	SwitchChain(ctx context.Context, chainID uint64) error
}
