// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"errors"
	"fmt"
)

var (
	ErrConnectorNotConnected     = errors.New("connector not connected")
	ErrConnectorAlreadyConnected = errors.New("connector already connected")
	ErrConnectorAccountNotFound  = errors.New("connector has no account")
)

// ChainMismatchError is returned when a request targets a chain other than
// the one the wallet is on.
type ChainMismatchError struct {
	ActiveChainID uint64
	TargetChainID uint64
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf(
		"the current chain of the wallet (id: %d) does not match the target chain for the request (id: %d)",
		e.ActiveChainID,
		e.TargetChainID,
	)
}

// ConnectorChainMismatchError is returned when a connector reports a chain
// other than the one recorded for its connection.
type ConnectorChainMismatchError struct {
	ConnectionChainID uint64
	ConnectorChainID  uint64
}

func (e *ConnectorChainMismatchError) Error() string {
	return fmt.Sprintf(
		"the current chain of the connector (id: %d) does not match the connection's chain (id: %d)",
		e.ConnectorChainID,
		e.ConnectionChainID,
	)
}
