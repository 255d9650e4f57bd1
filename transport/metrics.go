// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package transport

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts frames and errors of every transport sharing it. A nil
// *Metrics records nothing.
type Metrics struct {
	frames   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concordium_ledger",
			Subsystem: "transport",
			Name:      "frames_total",
			Help:      "Command frames exchanged with the device",
		}, []string{"ins"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concordium_ledger",
			Subsystem: "transport",
			Name:      "exchange_latency_ms",
			Help:      "Time between sending a frame and receiving its response in milliseconds",
			Buckets:   []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000, 30000, 120000},
		}, []string{"ins"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concordium_ledger",
			Subsystem: "transport",
			Name:      "errors_total",
			Help:      "Failed exchanges by error class",
		}, []string{"class"}),
	}
	reg.MustRegister(m.frames, m.latency, m.failures)
	return m
}

func (m *Metrics) observeExchange(ins byte, d time.Duration) {
	if m == nil {
		return
	}
	label := fmt.Sprintf("0x%02x", ins)
	m.frames.WithLabelValues(label).Inc()
	m.latency.WithLabelValues(label).Observe(d.Seconds() * 1000)
}

func (m *Metrics) observeError(class string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(class).Inc()
}
