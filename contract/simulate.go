// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract runs read-only contract calls against an EVM node and
// decodes their results.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownFunction = errors.New("function not found on abi")
	ErrZeroData        = errors.New("contract call returned no data")
)

// Call describes a single contract function invocation.
type Call struct {
	Address      common.Address
	ABI          abi.ABI
	FunctionName string
	Args         []interface{}

	From        common.Address
	Value       *big.Int
	Gas         uint64
	GasPrice    *big.Int
	GasFeeCap   *big.Int
	GasTipCap   *big.Int
	BlockNumber *big.Int // nil means latest
}

// Simulation is the outcome of a successful Simulate.
type Simulation struct {
	// Result is the decoded return value: nil for functions without outputs,
	// the value itself for a single output and a []interface{} otherwise.
	Result interface{}
	// Data is the ABI encoded calldata that was sent.
	Data []byte
}

// ExecutionError wraps any failure of a simulated call.
type ExecutionError struct {
	Address      common.Address
	FunctionName string
	Sender       common.Address
	Err          error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("simulating %s on %s from %s: %v", e.FunctionName, e.Address, e.Sender, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Simulate encodes [call], performs a single eth_call through [caller] and
// decodes the returned data. It never mutates chain state.
func Simulate(ctx context.Context, caller ethereum.ContractCaller, call Call) (*Simulation, error) {
	fail := func(err error) (*Simulation, error) {
		return nil, &ExecutionError{
			Address:      call.Address,
			FunctionName: call.FunctionName,
			Sender:       call.From,
			Err:          err,
		}
	}

	method, ok := call.ABI.Methods[call.FunctionName]
	if !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnknownFunction, call.FunctionName))
	}
	data, err := call.ABI.Pack(call.FunctionName, call.Args...)
	if err != nil {
		return fail(fmt.Errorf("couldn't encode arguments: %w", err))
	}

	to := call.Address
	out, err := caller.CallContract(ctx, ethereum.CallMsg{
		From:      call.From,
		To:        &to,
		Gas:       call.Gas,
		GasPrice:  call.GasPrice,
		GasFeeCap: call.GasFeeCap,
		GasTipCap: call.GasTipCap,
		Value:     call.Value,
		Data:      data,
	}, call.BlockNumber)
	if err != nil {
		return fail(decodeCallError(call.ABI, err))
	}

	if len(out) == 0 && len(method.Outputs) > 0 {
		return fail(ErrZeroData)
	}
	values, err := method.Outputs.Unpack(out)
	if err != nil {
		return fail(fmt.Errorf("couldn't decode result: %w", err))
	}

	sim := &Simulation{Data: data}
	switch len(values) {
	case 0:
	case 1:
		sim.Result = values[0]
	default:
		sim.Result = values
	}
	return sim, nil
}
