// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	assert := assert.New(t)
	list := []Chain{Mainnet, Avalanche, Fuji}

	c, ok := Find(list, 43113)
	assert.True(ok)
	assert.Equal("Avalanche Fuji", c.Name)

	_, ok = Find(list, Sepolia.ID)
	assert.False(ok)

	_, ok = Find(nil, 1)
	assert.False(ok)
}
