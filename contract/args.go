// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errArgCount        = errors.New("wrong number of arguments")
	errUnsupportedType = errors.New("unsupported abi type")

	bigIntType = reflect.TypeOf((*big.Int)(nil))
)

// ParseArgs converts JSON encoded arguments into the Go values expected by
// abi.Pack for [method]. Integers may be JSON numbers or decimal/hex strings,
// addresses and byte strings are hex strings.
func ParseArgs(method abi.Method, raw []json.RawMessage) ([]interface{}, error) {
	if len(raw) != len(method.Inputs) {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", errArgCount, method.Name, len(method.Inputs), len(raw))
	}
	args := make([]interface{}, len(raw))
	for i, input := range method.Inputs {
		arg, err := ParseArg(input.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, input.Type, err)
		}
		args[i] = arg
	}
	return args, nil
}

// ParseArg converts a single JSON value into the Go representation of [t].
func ParseArg(t abi.Type, raw json.RawMessage) (interface{}, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return parseInteger(t, raw)
	case abi.BoolTy:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case abi.StringTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case abi.AddressTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BytesTy:
		return parseHex(raw)
	case abi.FixedBytesTy:
		b, err := parseHex(raw)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}

		var v reflect.Value
		if t.T == abi.SliceTy {
			v = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			v = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			elem, err := ParseArg(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			v.Index(i).Set(reflect.ValueOf(elem))
		}
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, t)
	}
}

func parseInteger(t abi.Type, raw json.RawMessage) (interface{}, error) {
	s := strings.TrimSpace(string(raw))
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		s = quoted
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s out of range for %s", n, t)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s out of range for %s", n, t)
		}
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}
	v := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}

func parseHex(raw json.RawMessage) ([]byte, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return hexutil.Decode(s)
}
