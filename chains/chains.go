// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chains describes the EVM networks a config can talk to.
package chains

type Currency struct {
	Name     string `json:"name" mapstructure:"name"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals"`
}

// Chain is an EVM network identified by its EIP-155 chain id.
type Chain struct {
	ID             uint64   `json:"id" mapstructure:"id"`
	Name           string   `json:"name" mapstructure:"name"`
	NativeCurrency Currency `json:"nativeCurrency" mapstructure:"native-currency"`
	RPCURLs        []string `json:"rpcUrls" mapstructure:"rpc-urls"`
	Testnet        bool     `json:"testnet,omitempty" mapstructure:"testnet"`
}

var ether = Currency{Name: "Ether", Symbol: "ETH", Decimals: 18}

var (
	Mainnet = Chain{
		ID:             1,
		Name:           "Ethereum",
		NativeCurrency: ether,
		RPCURLs:        []string{"https://cloudflare-eth.com"},
	}
	Sepolia = Chain{
		ID:             11155111,
		Name:           "Sepolia",
		NativeCurrency: Currency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://rpc.sepolia.org"},
		Testnet:        true,
	}
	Avalanche = Chain{
		ID:             43114,
		Name:           "Avalanche",
		NativeCurrency: Currency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
		RPCURLs:        []string{"https://api.avax.network/ext/bc/C/rpc"},
	}
	Fuji = Chain{
		ID:             43113,
		Name:           "Avalanche Fuji",
		NativeCurrency: Currency{Name: "Avalanche Fuji", Symbol: "AVAX", Decimals: 18},
		RPCURLs:        []string{"https://api.avax-test.network/ext/bc/C/rpc"},
		Testnet:        true,
	}
)

// Find returns the chain in [list] with the given id.
func Find(list []Chain, id uint64) (Chain, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}
