// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/contract"
)

// Sender selects the account a call is made from. It is either an explicit
// account (WithAccount) or a connector (WithConnector), never both.
type Sender interface {
	isSender()
}

type accountSender struct {
	address common.Address
}

type connectorSender struct {
	connector connectors.Connector
}

func (accountSender) isSender()   {}
func (connectorSender) isSender() {}

// WithAccount sends from [address] without consulting any connector.
func WithAccount(address common.Address) Sender {
	return accountSender{address: address}
}

// WithConnector sends from the first account of [connector]'s connection. A
// nil connector uses the current connection.
func WithConnector(connector connectors.Connector) Sender {
	return connectorSender{connector: connector}
}

type Mode string

// ModePrepared marks a request whose account and chain were already
// resolved and checked.
const ModePrepared Mode = "prepared"

type SimulateContractParameters struct {
	Address      common.Address
	ABI          abi.ABI
	FunctionName string
	Args         []interface{}

	Value       *big.Int
	Gas         uint64
	GasPrice    *big.Int
	GasFeeCap   *big.Int
	GasTipCap   *big.Int
	BlockNumber *big.Int

	// Sender defaults to the current connection.
	Sender Sender
	// ChainID is the chain the call must run on. Zero means the current chain
	// and skips the active chain check.
	ChainID uint64
}

// PreparedRequest is a simulated call that can be submitted later without
// resolving the account and chain again.
type PreparedRequest struct {
	Mode Mode
	// ChainID is zero when the simulation did not target a specific chain.
	ChainID uint64
	Account common.Address

	Address      common.Address
	ABI          abi.ABI
	FunctionName string
	Args         []interface{}
	Data         []byte

	Value     *big.Int
	Gas       uint64
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
}

func (r *PreparedRequest) Prepared() bool { return r.Mode == ModePrepared }

type SimulateContractReturnType struct {
	Result  interface{}
	Request PreparedRequest
}

// SimulateContract runs the call described by [params] against the chain
// without changing its state and returns the decoded result together with a
// prepared request.
//
// The account is resolved first, then the target chain is checked against
// the wallet's active chain, and only then is the node called.
func SimulateContract(ctx context.Context, cfg *config.Config, params SimulateContractParameters) (*SimulateContractReturnType, error) {
	var (
		account       common.Address
		activeChainID uint64
	)
	if sender, ok := params.Sender.(accountSender); ok {
		account = sender.address
	} else {
		var connector connectors.Connector
		if sender, ok := params.Sender.(connectorSender); ok {
			connector = sender.connector
		}
		client, err := GetConnectorClient(ctx, cfg, GetConnectorClientParameters{
			ChainID:   params.ChainID,
			Connector: connector,
		})
		if err != nil {
			return nil, err
		}
		account = client.Account
		activeChainID = client.ChainID
	}

	if params.ChainID != 0 && activeChainID != 0 {
		if err := AssertActiveChain(cfg, activeChainID, params.ChainID); err != nil {
			return nil, err
		}
	}

	client, err := cfg.GetClient(params.ChainID)
	if err != nil {
		return nil, err
	}

	metrics := cfg.Metrics()
	metrics.Simulations.Inc()
	sim, err := contract.Simulate(ctx, client, contract.Call{
		Address:      params.Address,
		ABI:          params.ABI,
		FunctionName: params.FunctionName,
		Args:         params.Args,
		From:         account,
		Value:        params.Value,
		Gas:          params.Gas,
		GasPrice:     params.GasPrice,
		GasFeeCap:    params.GasFeeCap,
		GasTipCap:    params.GasTipCap,
		BlockNumber:  params.BlockNumber,
	})
	if err != nil {
		metrics.SimulationFailures.Inc()
		cfg.Logger().Debug("simulation failed",
			"address", params.Address,
			"function", params.FunctionName,
			"err", err,
		)
		return nil, err
	}

	return &SimulateContractReturnType{
		Result: sim.Result,
		Request: PreparedRequest{
			Mode:         ModePrepared,
			ChainID:      params.ChainID,
			Account:      account,
			Address:      params.Address,
			ABI:          params.ABI,
			FunctionName: params.FunctionName,
			Args:         params.Args,
			Data:         sim.Data,
			Value:        params.Value,
			Gas:          params.Gas,
			GasPrice:     params.GasPrice,
			GasFeeCap:    params.GasFeeCap,
			GasTipCap:    params.GasTipCap,
		},
	}, nil
}
