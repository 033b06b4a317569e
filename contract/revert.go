// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertError is a call that the EVM reverted.
type RevertError struct {
	// Reason is set for Error(string) and Panic(uint256) reverts.
	Reason string
	// ErrorName and Args are set when the data matches a custom error of the
	// contract abi.
	ErrorName string
	Args      []interface{}
	// Data is the raw revert data.
	Data []byte
	// Cause is the transport error the data was extracted from.
	Cause error
}

func (e *RevertError) Error() string {
	switch {
	case e.Reason != "":
		return "execution reverted: " + e.Reason
	case e.ErrorName != "":
		return fmt.Sprintf("execution reverted: %s%v", e.ErrorName, e.Args)
	default:
		return "execution reverted"
	}
}

func (e *RevertError) Unwrap() error { return e.Cause }

// DecodeRevert interprets revert [data] against the standard error selectors
// and the custom errors declared in [parsed].
func DecodeRevert(parsed abi.ABI, data []byte) *RevertError {
	re := &RevertError{Data: data}
	if reason, err := abi.UnpackRevert(data); err == nil {
		re.Reason = reason
		return re
	}
	if len(data) < 4 {
		return re
	}
	for name, abiErr := range parsed.Errors {
		if !bytes.Equal(abiErr.ID[:4], data[:4]) {
			continue
		}
		args, err := abiErr.Inputs.Unpack(data[4:])
		if err != nil {
			continue
		}
		re.ErrorName = name
		re.Args = args
		break
	}
	return re
}

// decodeCallError turns a node error carrying revert data into a RevertError.
// Any other error is returned as is.
func decodeCallError(parsed abi.ABI, err error) error {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return err
	}

	var data []byte
	switch d := dataErr.ErrorData().(type) {
	case string:
		b, decodeErr := hexutil.Decode(d)
		if decodeErr != nil {
			return err
		}
		data = b
	case []byte:
		data = d
	default:
		return err
	}

	re := DecodeRevert(parsed, data)
	re.Cause = err
	return re
}
