// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	readFailures  prometheus.Counter
	writeFailures prometheus.Counter
	removals      prometheus.Counter
}

func newMetrics(namespace string, reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		readFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_failures",
			Help:      "Number of reads that fell back to the default value",
		}),
		writeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures",
			Help:      "Number of writes that were dropped",
		}),
		removals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removals",
			Help:      "Number of removed items",
		}),
	}
	if reg == nil {
		return m, nil
	}

	errs := wrappers.Errs{}
	errs.Add(
		reg.Register(m.readFailures),
		reg.Register(m.writeFailures),
		reg.Register(m.removals),
	)
	return m, errs.Err
}
