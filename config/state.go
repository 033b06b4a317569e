// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/wagmigo/connectors"
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusConnecting   Status = "connecting"
	StatusDisconnected Status = "disconnected"
	StatusReconnecting Status = "reconnecting"
)

// Connection is an established link to a connector.
type Connection struct {
	Accounts  []common.Address
	ChainID   uint64
	Connector connectors.Connector
}

// State is the connection state of a Config.
type State struct {
	// ChainID is the chain used when a call doesn't name one.
	ChainID uint64
	// Connections is keyed by connector UID.
	Connections map[string]Connection
	// Current is the UID of the connection in use, empty when disconnected.
	Current string
	Status  Status
}

func (s State) clone() State {
	connections := make(map[string]Connection, len(s.Connections))
	for uid, conn := range s.Connections {
		accounts := make([]common.Address, len(conn.Accounts))
		copy(accounts, conn.Accounts)
		conn.Accounts = accounts
		connections[uid] = conn
	}
	s.Connections = connections
	return s
}

// CurrentConnection returns the connection in use.
func (s State) CurrentConnection() (Connection, bool) {
	conn, ok := s.Connections[s.Current]
	return conn, ok
}

// PartializedState is the part of State written to storage.
type PartializedState struct {
	ChainID     uint64                         `json:"chainId"`
	Connections map[string]PersistedConnection `json:"connections"`
	Current     string                         `json:"current,omitempty"`
}

type PersistedConnection struct {
	Accounts     []common.Address `json:"accounts"`
	ChainID      uint64           `json:"chainId"`
	ConnectorID  string           `json:"connectorId"`
	ConnectorUID string           `json:"connectorUid"`
}

func partialize(s State) PartializedState {
	p := PartializedState{
		ChainID:     s.ChainID,
		Connections: make(map[string]PersistedConnection, len(s.Connections)),
		Current:     s.Current,
	}
	for uid, conn := range s.Connections {
		p.Connections[uid] = PersistedConnection{
			Accounts:     conn.Accounts,
			ChainID:      conn.ChainID,
			ConnectorID:  conn.Connector.ID(),
			ConnectorUID: uid,
		}
	}
	return p
}
