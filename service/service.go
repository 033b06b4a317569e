// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package service exposes the actions and the storage of a Config over
// JSON-RPC.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"reflect"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/rpc/v2"

	log "github.com/inconshreveable/log15"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/wagmigo/actions"
	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/contract"
)

// Name is the name the service is registered under. Methods are called as
// "wagmi.simulateContract".
const Name = "wagmi"

const abiCacheSize = 128

var (
	errNoStorage = errors.New("storage is not configured")
	errNoKey     = errors.New("key is required")
)

// Service is the API service over a Config
type Service struct {
	cfg  *config.Config
	abis *contract.ABICache
	log  log.Logger
}

func New(cfg *config.Config) *Service {
	return &Service{
		cfg:  cfg,
		abis: contract.NewABICache(abiCacheSize),
		log:  cfg.Logger().New("module", "service"),
	}
}

// NewHandler returns an http.Handler serving [s] with the JSON-RPC 2.0 codec.
func NewHandler(s *Service) (http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(s, Name)
}

// SimulateContractArgs are the arguments to SimulateContract
type SimulateContractArgs struct {
	Address common.Address `json:"address"`
	// ABI is the json abi of the contract. Only the called function and the
	// errors it can revert with are needed.
	ABI          string            `json:"abi"`
	FunctionName string            `json:"functionName"`
	Args         []json.RawMessage `json:"args"`

	// Account is the sender. When omitted the current connection is used.
	Account *common.Address `json:"account,omitempty"`
	ChainID cjson.Uint64    `json:"chainId"`
	Value   *hexutil.Big    `json:"value,omitempty"`
	Gas     cjson.Uint64    `json:"gas"`
}

// PreparedRequest is the prepared request returned by SimulateContract
type PreparedRequest struct {
	Mode         actions.Mode   `json:"mode"`
	ChainID      cjson.Uint64   `json:"chainId"`
	Account      common.Address `json:"account"`
	Address      common.Address `json:"address"`
	FunctionName string         `json:"functionName"`
	Data         hexutil.Bytes  `json:"data"`
	Value        *hexutil.Big   `json:"value,omitempty"`
	Gas          cjson.Uint64   `json:"gas"`
}

// SimulateContractReply is the reply from SimulateContract
type SimulateContractReply struct {
	Result  interface{}     `json:"result"`
	Request PreparedRequest `json:"request"`
}

// SimulateContract simulates a contract call and returns its result with a
// prepared request.
func (s *Service) SimulateContract(r *http.Request, args *SimulateContractArgs, reply *SimulateContractReply) error {
	parsed, err := s.abis.Parse(args.ABI)
	if err != nil {
		return fmt.Errorf("couldn't parse abi: %w", err)
	}
	method, ok := parsed.Methods[args.FunctionName]
	if !ok {
		return fmt.Errorf("%w: %q", contract.ErrUnknownFunction, args.FunctionName)
	}
	callArgs, err := contract.ParseArgs(method, args.Args)
	if err != nil {
		return err
	}

	params := actions.SimulateContractParameters{
		Address:      args.Address,
		ABI:          parsed,
		FunctionName: args.FunctionName,
		Args:         callArgs,
		Value:        (*big.Int)(args.Value),
		Gas:          uint64(args.Gas),
		ChainID:      uint64(args.ChainID),
	}
	if args.Account != nil {
		params.Sender = actions.WithAccount(*args.Account)
	}

	res, err := actions.SimulateContract(requestContext(r), s.cfg, params)
	if err != nil {
		s.log.Debug("simulateContract failed", "address", args.Address, "function", args.FunctionName, "err", err)
		return err
	}

	reply.Result = jsonValue(res.Result)
	reply.Request = PreparedRequest{
		Mode:         res.Request.Mode,
		ChainID:      cjson.Uint64(res.Request.ChainID),
		Account:      res.Request.Account,
		Address:      res.Request.Address,
		FunctionName: res.Request.FunctionName,
		Data:         res.Request.Data,
		Value:        (*hexutil.Big)(res.Request.Value),
		Gas:          cjson.Uint64(res.Request.Gas),
	}
	return nil
}

// GetAccountReply is the reply from GetAccount
type GetAccountReply struct {
	Address     *common.Address  `json:"address,omitempty"`
	Addresses   []common.Address `json:"addresses"`
	ChainID     cjson.Uint64     `json:"chainId"`
	ConnectorID string           `json:"connectorId,omitempty"`
	Status      config.Status    `json:"status"`
}

// GetAccount returns the account of the current connection
func (s *Service) GetAccount(_ *http.Request, _ *struct{}, reply *GetAccountReply) error {
	account := actions.GetAccount(s.cfg)
	reply.Status = account.Status
	reply.Addresses = account.Addresses
	if account.Connector != nil {
		address := account.Address
		reply.Address = &address
		reply.ChainID = cjson.Uint64(account.ChainID)
		reply.ConnectorID = account.Connector.ID()
	}
	return nil
}

// StorageKeyArgs is an API request where the only argument is a storage key
type StorageKeyArgs struct {
	Key string `json:"key"`
}

// GetItemReply is the reply from GetItem
type GetItemReply struct {
	Found bool            `json:"found"`
	Value json.RawMessage `json:"value"`
}

// GetItem reads the value stored under [args.Key]. Missing and unreadable
// values are both reported as not found.
func (s *Service) GetItem(_ *http.Request, args *StorageKeyArgs, reply *GetItemReply) error {
	st := s.cfg.Storage()
	if st == nil {
		return errNoStorage
	}
	if args.Key == "" {
		return errNoKey
	}
	var value json.RawMessage
	reply.Found = st.GetItem(args.Key, &value)
	if reply.Found {
		reply.Value = value
	} else {
		reply.Value = json.RawMessage("null")
	}
	return nil
}

// SetItemArgs are the arguments to SetItem
type SetItemArgs struct {
	Key string `json:"key"`
	// Value is stored as given. null removes the key.
	Value json.RawMessage `json:"value"`
}

// SetItem stores [args.Value] under [args.Key]
func (s *Service) SetItem(_ *http.Request, args *SetItemArgs, reply *api.SuccessResponse) error {
	st := s.cfg.Storage()
	if st == nil {
		return errNoStorage
	}
	if args.Key == "" {
		return errNoKey
	}
	if len(args.Value) == 0 || string(args.Value) == "null" {
		st.SetItem(args.Key, nil)
		reply.Success = true
		return nil
	}
	if !json.Valid(args.Value) {
		return fmt.Errorf("value of %q is not valid json", args.Key)
	}
	st.SetItem(args.Key, args.Value)
	reply.Success = true
	return nil
}

// RemoveItem deletes the value stored under [args.Key]
func (s *Service) RemoveItem(_ *http.Request, args *StorageKeyArgs, reply *api.SuccessResponse) error {
	st := s.cfg.Storage()
	if st == nil {
		return errNoStorage
	}
	if args.Key == "" {
		return errNoKey
	}
	st.RemoveItem(args.Key)
	reply.Success = true
	return nil
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

// jsonValue converts a decoded abi value into a form that survives a json
// round trip: integers become decimal strings and byte arrays hex strings.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Bytes(x)
	case common.Address:
		return x
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()).String()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()).String()
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Bytes(b)
		}
		fallthrough
	case reflect.Slice:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = jsonValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		out := make(map[string]interface{}, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			field := rv.Type().Field(i)
			if field.PkgPath != "" {
				continue
			}
			out[field.Name] = jsonValue(rv.Field(i).Interface())
		}
		return out
	default:
		return v
	}
}
