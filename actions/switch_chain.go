// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/wagmigo/chains"
	"github.com/ava-labs/wagmigo/config"
)

// SwitchChain moves the current connection, or just the config when
// disconnected, to [chainID].
func SwitchChain(ctx context.Context, cfg *config.Config, chainID uint64) (chains.Chain, error) {
	chain, err := cfg.Chain(chainID)
	if err != nil {
		return chains.Chain{}, err
	}

	conn, ok := cfg.State().CurrentConnection()
	if ok {
		if err := conn.Connector.SwitchChain(ctx, chainID); err != nil {
			return chains.Chain{}, err
		}
	}

	cfg.SetState(func(s config.State) config.State {
		s.ChainID = chainID
		if ok {
			if conn, exists := s.Connections[s.Current]; exists {
				conn.ChainID = chainID
				s.Connections[s.Current] = conn
			}
		}
		return s
	})
	cfg.Logger().Debug("switched chain", "chainID", chainID)
	return chain, nil
}
