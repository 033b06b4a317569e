// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connectors

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const KeystoreID = "keystore"

var _ Connector = (*Keystore)(nil)

// Keystore exposes the accounts of an encrypted key directory. The active
// chain is local state since a key directory has no notion of a network.
type Keystore struct {
	uid string
	ks  *keystore.KeyStore

	lock      sync.Mutex
	connected bool
	chainID   uint64
}

// NewKeystore opens the key directory at [dir] with standard scrypt
// parameters.
func NewKeystore(dir string) *Keystore {
	return NewKeystoreFrom(keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP))
}

func NewKeystoreFrom(ks *keystore.KeyStore) *Keystore {
	return &Keystore{
		uid: uuid.NewString(),
		ks:  ks,
	}
}

func (*Keystore) ID() string    { return KeystoreID }
func (*Keystore) Name() string  { return "Keystore" }
func (k *Keystore) UID() string { return k.uid }

// KeyStore returns the underlying key directory.
func (k *Keystore) KeyStore() *keystore.KeyStore { return k.ks }

func (k *Keystore) Connect(_ context.Context, chainID uint64) (ConnectResult, error) {
	accounts := k.addresses()
	if len(accounts) == 0 {
		return ConnectResult{}, ErrNoAccounts
	}

	k.lock.Lock()
	defer k.lock.Unlock()

	if chainID != 0 {
		k.chainID = chainID
	}
	k.connected = true
	return ConnectResult{
		Accounts: accounts,
		ChainID:  k.chainID,
	}, nil
}

func (k *Keystore) Disconnect(context.Context) error {
	k.lock.Lock()
	defer k.lock.Unlock()

	k.connected = false
	return nil
}

func (k *Keystore) Accounts(context.Context) ([]common.Address, error) {
	k.lock.Lock()
	connected := k.connected
	k.lock.Unlock()

	if !connected {
		return nil, ErrNotConnected
	}
	return k.addresses(), nil
}

func (k *Keystore) ChainID(context.Context) (uint64, error) {
	k.lock.Lock()
	defer k.lock.Unlock()

	return k.chainID, nil
}

func (k *Keystore) IsAuthorized(context.Context) (bool, error) {
	return len(k.ks.Accounts()) > 0, nil
}

func (k *Keystore) SwitchChain(_ context.Context, chainID uint64) error {
	k.lock.Lock()
	defer k.lock.Unlock()

	k.chainID = chainID
	return nil
}

func (k *Keystore) addresses() []common.Address {
	accounts := k.ks.Accounts()
	addrs := make([]common.Address, 0, len(accounts))
	for _, a := range accounts {
		addrs = append(addrs, a.Address)
	}
	return addrs
}
