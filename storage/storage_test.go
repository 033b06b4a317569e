// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	log "github.com/inconshreveable/log15"
)

type recorder struct {
	lock    sync.Mutex
	records []*log.Record
}

func (r *recorder) count(lvl log.Lvl) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	n := 0
	for _, rec := range r.records {
		if rec.Lvl == lvl {
			n++
		}
	}
	return n
}

func newTestLogger() (log.Logger, *recorder) {
	r := &recorder{}
	logger := log.New()
	logger.SetHandler(log.FuncHandler(func(rec *log.Record) error {
		r.lock.Lock()
		r.records = append(r.records, rec)
		r.lock.Unlock()
		return nil
	}))
	return logger, r
}

func newTestStorage(store KeyValueStore) (*Storage, *recorder) {
	logger, rec := newTestLogger()
	return New(Options{Store: store, Logger: logger}), rec
}

type failingStore struct{}

var errBackend = errors.New("backend unavailable")

func (failingStore) GetItem(string) (string, error) { return "", errBackend }
func (failingStore) SetItem(string, string) error   { return errBackend }
func (failingStore) RemoveItem(string) error        { return errBackend }

type failingSerializer struct{ JSONSerializer }

func (failingSerializer) Serialize(interface{}) (string, error) {
	return "", errors.New("cannot serialize")
}

type session struct {
	ChainID  uint64   `json:"chainId"`
	Accounts []string `json:"accounts"`
	Balance  *big.Int `json:"balance"`
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)
	s, rec := newTestStorage(NewMemoryStore())

	want := session{
		ChainID:  43114,
		Accounts: []string{"0x0000000000000000000000000000000000000001"},
		Balance:  big.NewInt(1_000_000),
	}
	s.SetItem("session", want)

	var got session
	assert.True(s.GetItem("session", &got))
	assert.Equal(want.ChainID, got.ChainID)
	assert.Equal(want.Accounts, got.Accounts)
	assert.Zero(want.Balance.Cmp(got.Balance))

	assert.Equal(want.ChainID, Get(s, "session", session{}).ChainID)
	assert.Zero(rec.count(log.LvlWarn))
	assert.Zero(rec.count(log.LvlError))
}

func TestPrefixedKey(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	s, _ := newTestStorage(store)
	assert.Equal(DefaultPrefix, s.Prefix())

	s.SetItem(KeyRecentConnectorID, "io.metamask")

	raw, err := store.GetItem("wagmi.recentConnectorId")
	assert.NoError(err)
	assert.Equal(`"io.metamask"`, raw)

	raw, err = store.GetItem(KeyRecentConnectorID)
	assert.NoError(err)
	assert.Empty(raw)

	assert.Equal("io.metamask", Get(s, KeyRecentConnectorID, ""))
}

func TestCustomPrefix(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	s := New(Options{Store: store, Prefix: "app"})

	s.SetItem(KeyState, map[string]int{"chainId": 1})
	raw, err := store.GetItem("app.state")
	assert.NoError(err)
	assert.Equal(`{"chainId":1}`, raw)
}

func TestSetNilRemoves(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	s, _ := newTestStorage(store)

	s.SetItem(KeyRecentConnectorID, "io.metamask")
	s.SetItem(KeyRecentConnectorID, nil)
	assert.Equal("fallback", Get(s, KeyRecentConnectorID, "fallback"))

	raw, err := store.GetItem("wagmi.recentConnectorId")
	assert.NoError(err)
	assert.Empty(raw)

	id := "io.rabby"
	Set(s, KeyRecentConnectorID, &id)
	assert.Equal(id, Get(s, KeyRecentConnectorID, ""))

	Set[string](s, KeyRecentConnectorID, nil)
	assert.Equal("fallback", Get(s, KeyRecentConnectorID, "fallback"))

	var nilSession *session
	s.SetItem("session", &session{ChainID: 1})
	s.SetItem("session", nilSession)
	assert.False(s.GetItem("session", &session{}))
}

func TestMissingKeyReturnsDefault(t *testing.T) {
	assert := assert.New(t)
	s, rec := newTestStorage(NewMemoryStore())

	assert.Equal(uint64(7), Get(s, "missing", uint64(7)))
	assert.Nil(Get[*session](s, "missing", nil))

	dst := "unchanged"
	assert.False(s.GetItem("missing", &dst))
	assert.Equal("unchanged", dst)
	assert.Zero(rec.count(log.LvlWarn))
	assert.Equal(3, rec.count(log.LvlDebug))
}

func TestCorruptedValueFallsBack(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	s, rec := newTestStorage(store)

	require.NoError(t, store.SetItem("wagmi.state", "{not json"))

	dst := session{ChainID: 5}
	assert.False(s.GetItem(KeyState, &dst))
	assert.Equal(uint64(5), dst.ChainID)
	assert.Equal(uint64(9), Get(s, KeyState, session{ChainID: 9}).ChainID)
	assert.Equal(2, rec.count(log.LvlWarn))
}

func TestPartialDecodeDoesNotLeak(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	s, _ := newTestStorage(store)

	// chainId decodes, accounts does not
	require.NoError(t, store.SetItem("wagmi.session", `{"chainId":3,"accounts":7}`))

	dst := session{ChainID: 1}
	assert.False(s.GetItem("session", &dst))
	assert.Equal(uint64(1), dst.ChainID)
}

func TestGetItemRequiresPointer(t *testing.T) {
	assert := assert.New(t)
	s, rec := newTestStorage(NewMemoryStore())
	s.SetItem("n", 1)

	assert.False(s.GetItem("n", 0))
	var nilPtr *int
	assert.False(s.GetItem("n", nilPtr))
	assert.Equal(2, rec.count(log.LvlError))
}

func TestSerializeFailureIsDropped(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	logger, rec := newTestLogger()
	s := New(Options{Store: store, Logger: logger, Serializer: failingSerializer{}})

	s.SetItem("n", 1)
	raw, err := store.GetItem("wagmi.n")
	assert.NoError(err)
	assert.Empty(raw)
	assert.Equal(1, rec.count(log.LvlError))

	s, rec = newTestStorage(store)
	s.SetItem("ch", make(chan int))
	assert.Equal(1, rec.count(log.LvlError))
}

func TestBackendFailuresAreSwallowed(t *testing.T) {
	assert := assert.New(t)
	s, rec := newTestStorage(failingStore{})

	assert.NotPanics(func() {
		s.SetItem(KeyRecentConnectorID, "io.metamask")
		s.RemoveItem(KeyRecentConnectorID)
		s.SetItem(KeyRecentConnectorID, nil)
	})
	assert.Equal("default", Get(s, KeyRecentConnectorID, "default"))
	assert.Equal(3, rec.count(log.LvlError))
	assert.Equal(1, rec.count(log.LvlWarn))
}

func TestNoopStore(t *testing.T) {
	assert := assert.New(t)
	s := New(Options{})

	s.SetItem(KeyRecentConnectorID, "io.metamask")
	s.SetItem(KeyState, session{ChainID: 1})
	assert.Equal("", Get(s, KeyRecentConnectorID, ""))
	assert.Equal("default", Get(s, KeyRecentConnectorID, "default"))
	assert.False(s.GetItem(KeyState, &session{}))

	raw, err := NoopStore{}.GetItem("wagmi.recentConnectorId")
	assert.NoError(err)
	assert.Equal("", raw)
	assert.NoError(NoopStore{}.RemoveItem("anything"))
}

func TestMetrics(t *testing.T) {
	assert := assert.New(t)
	store := NewMemoryStore()
	reg := prometheus.NewRegistry()
	logger, _ := newTestLogger()
	s := New(Options{Store: store, Logger: logger, Registerer: reg})

	require.NoError(t, store.SetItem("wagmi.bad", "]"))
	s.GetItem("bad", new(int))
	s.SetItem("ch", make(chan int))
	s.RemoveItem("bad")

	assert.Equal(float64(1), testutil.ToFloat64(s.metrics.readFailures))
	assert.Equal(float64(1), testutil.ToFloat64(s.metrics.writeFailures))
	assert.Equal(float64(1), testutil.ToFloat64(s.metrics.removals))

	// a second storage on the same registry still works
	logger, rec := newTestLogger()
	other := New(Options{Store: store, Logger: logger, Registerer: reg})
	assert.Equal(1, rec.count(log.LvlWarn))
	other.SetItem("n", 2)
	assert.Equal(2, Get(other, "n", 0))
}
