// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/api"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/ava-labs/wagmigo/service"
)

// Client defines wagmi service client operations.
type Client interface {
	// SimulateContract simulates a contract call on the server's config
	SimulateContract(ctx context.Context, args *service.SimulateContractArgs) (*service.SimulateContractReply, error)

	// GetAccount fetches the account of the server's current connection
	GetAccount(ctx context.Context) (*service.GetAccountReply, error)

	// GetItem fetches the value stored under [key] into [dst]. It reports
	// false when nothing readable is stored.
	GetItem(ctx context.Context, key string, dst interface{}) (bool, error)

	// SetItem stores [value] under [key]. A nil value removes the key.
	SetItem(ctx context.Context, key string, value interface{}) error

	// RemoveItem deletes the value stored under [key]
	RemoveItem(ctx context.Context, key string) error
}

// New creates a new client object for the service served at [uri].
func New(uri string) Client {
	return &client{
		uri:  uri,
		http: http.DefaultClient,
	}
}

type client struct {
	uri  string
	http *http.Client
}

func (cli *client) SimulateContract(ctx context.Context, args *service.SimulateContractArgs) (*service.SimulateContractReply, error) {
	resp := new(service.SimulateContractReply)
	return resp, cli.sendRequest(ctx, "simulateContract", args, resp)
}

func (cli *client) GetAccount(ctx context.Context) (*service.GetAccountReply, error) {
	resp := new(service.GetAccountReply)
	return resp, cli.sendRequest(ctx, "getAccount", struct{}{}, resp)
}

func (cli *client) GetItem(ctx context.Context, key string, dst interface{}) (bool, error) {
	resp := new(service.GetItemReply)
	err := cli.sendRequest(ctx, "getItem", &service.StorageKeyArgs{Key: key}, resp)
	if err != nil || !resp.Found {
		return false, err
	}
	if err := json.Unmarshal(resp.Value, dst); err != nil {
		return false, fmt.Errorf("couldn't decode %q: %w", key, err)
	}
	return true, nil
}

func (cli *client) SetItem(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("couldn't encode %q: %w", key, err)
	}
	return cli.sendRequest(ctx, "setItem", &service.SetItemArgs{Key: key, Value: raw}, &api.SuccessResponse{})
}

func (cli *client) RemoveItem(ctx context.Context, key string) error {
	return cli.sendRequest(ctx, "removeItem", &service.StorageKeyArgs{Key: key}, &api.SuccessResponse{})
}

func (cli *client) sendRequest(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(service.Name+"."+method, args)
	if err != nil {
		return fmt.Errorf("couldn't encode %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cli.uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cli.http.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't issue %s request: %w", method, err)
	}
	defer resp.Body.Close()

	err = json2.DecodeClientResponse(resp.Body, reply)
	var rpcErr *json2.Error
	if resp.StatusCode != http.StatusOK && !errors.As(err, &rpcErr) {
		return fmt.Errorf("%s request failed with status %d", method, resp.StatusCode)
	}
	return err
}
