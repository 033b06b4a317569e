// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "wagmi"

// Metrics are updated by the actions running against a Config.
type Metrics struct {
	Simulations        prometheus.Counter
	SimulationFailures prometheus.Counter
	Connects           prometheus.Counter
	Disconnects        prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "simulations",
			Help:      "Number of simulated contract calls",
		}),
		SimulationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "simulation_failures",
			Help:      "Number of simulated contract calls that failed",
		}),
		Connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connects",
			Help:      "Number of established connector connections",
		}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disconnects",
			Help:      "Number of closed connector connections",
		}),
	}
	if reg == nil {
		return m, nil
	}

	errs := wrappers.Errs{}
	errs.Add(
		reg.Register(m.Simulations),
		reg.Register(m.SimulationFailures),
		reg.Register(m.Connects),
		reg.Register(m.Disconnects),
	)
	return m, errs.Err
}
