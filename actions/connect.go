// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/storage"
)

type ConnectReturnType struct {
	Accounts []common.Address
	ChainID  uint64
}

// Connect connects [connector] on [chainID] (its own chain when zero), makes
// it the current connection and remembers it as the most recent connector.
func Connect(ctx context.Context, cfg *config.Config, connector connectors.Connector, chainID uint64) (*ConnectReturnType, error) {
	state := cfg.State()
	if connector.UID() == state.Current {
		return nil, ErrConnectorAlreadyConnected
	}
	if chainID != 0 {
		if _, err := cfg.Chain(chainID); err != nil {
			return nil, err
		}
	}

	cfg.SetState(func(s config.State) config.State {
		s.Status = config.StatusConnecting
		return s
	})
	res, err := connector.Connect(ctx, chainID)
	if err == nil && len(res.Accounts) == 0 {
		err = connectors.ErrNoAccounts
	}
	if err != nil {
		cfg.SetState(func(s config.State) config.State {
			s.Status = statusOf(s)
			return s
		})
		return nil, err
	}

	setConnection(cfg, connector, res)
	cfg.Metrics().Connects.Inc()
	if st := cfg.Storage(); st != nil {
		st.SetItem(storage.KeyRecentConnectorID, connector.ID())
	}
	cfg.Logger().Info("connected",
		"connector", connector.ID(),
		"account", res.Accounts[0],
		"chainID", res.ChainID,
	)
	return &ConnectReturnType{
		Accounts: res.Accounts,
		ChainID:  res.ChainID,
	}, nil
}

// Disconnect closes the connection of [connector], or the current one when
// nil. Another open connection, if any, becomes current.
func Disconnect(ctx context.Context, cfg *config.Config, connector connectors.Connector) error {
	state := cfg.State()
	uid := state.Current
	if connector != nil {
		uid = connector.UID()
	}
	conn, ok := state.Connections[uid]
	if !ok {
		return ErrConnectorNotConnected
	}
	if err := conn.Connector.Disconnect(ctx); err != nil {
		return err
	}

	var remaining int
	cfg.SetState(func(s config.State) config.State {
		delete(s.Connections, uid)
		if s.Current == uid {
			s.Current = firstConnection(s)
		}
		s.Status = statusOf(s)
		remaining = len(s.Connections)
		return s
	})
	cfg.Metrics().Disconnects.Inc()
	if st := cfg.Storage(); st != nil && remaining == 0 {
		st.RemoveItem(storage.KeyRecentConnectorID)
	}
	return nil
}

// Reconnect restores connections to every connector that can connect
// without prompting, starting with the most recently used one.
func Reconnect(ctx context.Context, cfg *config.Config) ([]ConnectReturnType, error) {
	var recent string
	if st := cfg.Storage(); st != nil {
		recent = storage.Get(st, storage.KeyRecentConnectorID, "")
	}
	candidates := cfg.Connectors()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ID() == recent && candidates[j].ID() != recent
	})

	cfg.SetState(func(s config.State) config.State {
		s.Status = config.StatusReconnecting
		return s
	})

	var results []ConnectReturnType
	for _, connector := range candidates {
		if _, ok := cfg.State().Connections[connector.UID()]; ok {
			continue
		}
		authorized, err := connector.IsAuthorized(ctx)
		if err != nil || !authorized {
			continue
		}
		res, err := connector.Connect(ctx, 0)
		if err == nil && len(res.Accounts) == 0 {
			err = connectors.ErrNoAccounts
		}
		if err != nil {
			cfg.Logger().Warn("couldn't reconnect", "connector", connector.ID(), "err", err)
			continue
		}
		setConnection(cfg, connector, res)
		results = append(results, ConnectReturnType{
			Accounts: res.Accounts,
			ChainID:  res.ChainID,
		})
	}

	cfg.SetState(func(s config.State) config.State {
		s.Status = statusOf(s)
		return s
	})
	return results, nil
}

// setConnection records [res] for [connector]. The first connection becomes
// current.
func setConnection(cfg *config.Config, connector connectors.Connector, res connectors.ConnectResult) {
	cfg.SetState(func(s config.State) config.State {
		s.Connections[connector.UID()] = config.Connection{
			Accounts:  res.Accounts,
			ChainID:   res.ChainID,
			Connector: connector,
		}
		if _, ok := s.CurrentConnection(); !ok || s.Status == config.StatusConnecting {
			s.Current = connector.UID()
		}
		if _, err := cfg.Chain(res.ChainID); err == nil && s.Current == connector.UID() {
			s.ChainID = res.ChainID
		}
		s.Status = config.StatusConnected
		return s
	})
}

func statusOf(s config.State) config.Status {
	if _, ok := s.CurrentConnection(); ok {
		return config.StatusConnected
	}
	return config.StatusDisconnected
}

func firstConnection(s config.State) string {
	uids := make([]string, 0, len(s.Connections))
	for uid := range s.Connections {
		uids = append(uids, uid)
	}
	if len(uids) == 0 {
		return ""
	}
	sort.Strings(uids)
	return uids[0]
}
