// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/wagmigo/actions"
	"github.com/ava-labs/wagmigo/config"
	"github.com/ava-labs/wagmigo/connectors"
	"github.com/ava-labs/wagmigo/contract"
	"github.com/ava-labs/wagmigo/service"
)

const shutdownTimeout = 5 * time.Second

var (
	errNoConnector  = errors.New("no account given and no keystore configured")
	errInvalidValue = errors.New("invalid value")
)

// openConfig loads the settings of [cmd] and builds the Config they describe.
func openConfig(ctx context.Context, cmd *cobra.Command, reg prometheus.Registerer) (*config.Config, config.Settings, error) {
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return nil, config.Settings{}, err
	}
	cfg, err := config.FromSettings(ctx, s, log.New("cmd", cmd.Name()), reg)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return cfg, s, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wagmi JSON-RPC API and metrics over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			cfg, s, err := openConfig(ctx, cmd, reg)
			if err != nil {
				return err
			}
			defer cfg.Close()

			if _, err := actions.Reconnect(ctx, cfg); err != nil {
				return err
			}

			handler, err := service.NewHandler(service.New(cfg))
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle("/rpc", handler)
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			server := &http.Server{
				Addr:              s.HTTPAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errs := make(chan error, 1)
			go func() {
				errs <- server.ListenAndServe()
			}()
			log.Info("serving", "addr", s.HTTPAddr, "chains", len(cfg.Chains()))

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

type simulateFlags struct {
	address  string
	abi      string
	function string
	args     string
	account  string
	chainID  uint64
	value    string
	gas      uint64
}

func newSimulateCommand() *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a contract call and print its result and prepared request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, _, err := openConfig(ctx, cmd, nil)
			if err != nil {
				return err
			}
			defer cfg.Close()

			params, err := f.parameters(ctx, cfg)
			if err != nil {
				return err
			}
			res, err := actions.SimulateContract(ctx, cfg, params)
			if err != nil {
				return err
			}
			return printSimulation(cmd.OutOrStdout(), res)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.address, "address", "", "Contract address")
	fs.StringVar(&f.abi, "abi", "", "Contract abi, inline json or a path to a json file")
	fs.StringVar(&f.function, "function", "", "Name of the function to call")
	fs.StringVar(&f.args, "args", "[]", "Function arguments as a json array")
	fs.StringVar(&f.account, "account", "", "Sender address. Defaults to the first keystore account")
	fs.Uint64Var(&f.chainID, "chain-id", 0, "Chain to simulate on. Defaults to the current chain")
	fs.StringVar(&f.value, "value", "", "Wei sent with the call")
	fs.Uint64Var(&f.gas, "gas", 0, "Gas limit of the call")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("abi")
	_ = cmd.MarkFlagRequired("function")
	return cmd
}

func (f *simulateFlags) parameters(ctx context.Context, cfg *config.Config) (actions.SimulateContractParameters, error) {
	if !common.IsHexAddress(f.address) {
		return actions.SimulateContractParameters{}, fmt.Errorf("invalid contract address %q", f.address)
	}

	rawABI := f.abi
	if !strings.HasPrefix(strings.TrimSpace(rawABI), "[") {
		b, err := os.ReadFile(rawABI)
		if err != nil {
			return actions.SimulateContractParameters{}, err
		}
		rawABI = string(b)
	}
	parsed, err := contract.NewABICache(1).Parse(rawABI)
	if err != nil {
		return actions.SimulateContractParameters{}, fmt.Errorf("couldn't parse abi: %w", err)
	}
	method, ok := parsed.Methods[f.function]
	if !ok {
		return actions.SimulateContractParameters{}, fmt.Errorf("%w: %q", contract.ErrUnknownFunction, f.function)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(f.args), &raw); err != nil {
		return actions.SimulateContractParameters{}, fmt.Errorf("args must be a json array: %w", err)
	}
	args, err := contract.ParseArgs(method, raw)
	if err != nil {
		return actions.SimulateContractParameters{}, err
	}

	params := actions.SimulateContractParameters{
		Address:      common.HexToAddress(f.address),
		ABI:          parsed,
		FunctionName: f.function,
		Args:         args,
		Gas:          f.gas,
		ChainID:      f.chainID,
	}
	if f.value != "" {
		value, ok := new(big.Int).SetString(f.value, 0)
		if !ok {
			return actions.SimulateContractParameters{}, fmt.Errorf("%w: %q", errInvalidValue, f.value)
		}
		params.Value = value
	}

	if f.account != "" {
		if !common.IsHexAddress(f.account) {
			return actions.SimulateContractParameters{}, fmt.Errorf("invalid account %q", f.account)
		}
		params.Sender = actions.WithAccount(common.HexToAddress(f.account))
		return params, nil
	}

	// send from the keystore, connected on the requested chain
	for _, connector := range cfg.Connectors() {
		if connector.ID() != connectors.KeystoreID {
			continue
		}
		chainID := f.chainID
		if chainID == 0 {
			chainID = cfg.State().ChainID
		}
		if _, err := actions.Connect(ctx, cfg, connector, chainID); err != nil {
			return actions.SimulateContractParameters{}, err
		}
		params.Sender = actions.WithConnector(connector)
		return params, nil
	}
	return actions.SimulateContractParameters{}, errNoConnector
}

func printSimulation(w io.Writer, res *actions.SimulateContractReturnType) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"result": fmt.Sprint(res.Result),
		"request": map[string]interface{}{
			"mode":         res.Request.Mode,
			"chainId":      res.Request.ChainID,
			"account":      res.Request.Account,
			"address":      res.Request.Address,
			"functionName": res.Request.FunctionName,
			"data":         fmt.Sprintf("%#x", res.Request.Data),
		},
	})
}

func newStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Read and write the configured storage",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print the value stored under a key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := openConfig(cmd.Context(), cmd, nil)
				if err != nil {
					return err
				}
				defer cfg.Close()

				var value json.RawMessage
				if !cfg.Storage().GetItem(args[0], &value) {
					value = json.RawMessage("null")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(value))
				return err
			},
		},
		&cobra.Command{
			Use:   "set <key> <json>",
			Short: "Store a json value under a key. null removes the key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := json.RawMessage(args[1])
				if !json.Valid(value) {
					return fmt.Errorf("%w: %s is not valid json", errInvalidValue, args[1])
				}
				cfg, _, err := openConfig(cmd.Context(), cmd, nil)
				if err != nil {
					return err
				}
				defer cfg.Close()

				if string(value) == "null" {
					cfg.Storage().SetItem(args[0], nil)
					return nil
				}
				cfg.Storage().SetItem(args[0], value)
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <key>",
			Aliases: []string{"remove"},
			Short:   "Remove the value stored under a key",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := openConfig(cmd.Context(), cmd, nil)
				if err != nil {
					return err
				}
				defer cfg.Close()

				cfg.Storage().RemoveItem(args[0])
				return nil
			},
		},
	)
	return cmd
}
