// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"strings"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const defaultABICacheSize = 256

// ABICache memoizes parsed JSON abis keyed by their source text.
type ABICache struct {
	cache cache.Cacher
}

func NewABICache(size int) *ABICache {
	if size <= 0 {
		size = defaultABICacheSize
	}
	return &ABICache{cache: &cache.LRU{Size: size}}
}

func (c *ABICache) Parse(raw string) (abi.ABI, error) {
	if parsed, ok := c.cache.Get(raw); ok {
		return parsed.(abi.ABI), nil
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, err
	}
	c.cache.Put(raw, parsed)
	return parsed, nil
}
