// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the current state and the transitions between states. A
// nil *Metrics records nothing.
type Metrics struct {
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "concordium_ledger",
			Subsystem: "session",
			Name:      "state",
			Help:      "1 for the current device session state, 0 otherwise",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concordium_ledger",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Device session state transitions",
		}, []string{"from", "to"}),
	}
	reg.MustRegister(m.state, m.transitions)
	return m
}

func (m *Metrics) observeTransition(from, to State) {
	if m == nil {
		return
	}
	for s := Disconnected; s <= Error; s++ {
		value := 0.0
		if s == to {
			value = 1
		}
		m.state.WithLabelValues(s.String()).Set(value)
	}
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}
