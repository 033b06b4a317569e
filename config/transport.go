// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ava-labs/wagmigo/chains"
)

var errNoRPCURL = errors.New("chain has no rpc url")

// Client is the part of an EVM JSON-RPC client the actions rely on.
// *ethclient.Client satisfies it.
type Client interface {
	ethereum.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
}

// Transport builds the Client for a chain.
type Transport func(chain chains.Chain) (Client, error)

// HTTP dials [url] with ethclient. An empty url uses the chain's first rpc url.
func HTTP(url string) Transport {
	return func(chain chains.Chain) (Client, error) {
		endpoint := url
		if endpoint == "" {
			if len(chain.RPCURLs) == 0 {
				return nil, fmt.Errorf("%w: %d", errNoRPCURL, chain.ID)
			}
			endpoint = chain.RPCURLs[0]
		}
		client, err := ethclient.Dial(endpoint)
		if err != nil {
			return nil, fmt.Errorf("couldn't dial %s: %w", endpoint, err)
		}
		return client, nil
	}
}

// Static always returns [client].
func Static(client Client) Transport {
	return func(chains.Chain) (Client, error) {
		return client, nil
	}
}
