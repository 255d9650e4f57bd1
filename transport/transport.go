// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package transport sends single command frames to a Ledger device and
// returns the response with its status word checked and stripped.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skythen/apdu"
	"go.uber.org/zap"
)

// MaxDataSize is the largest command data the device accepts in one frame.
const MaxDataSize = 255

// Transport exchanges one command frame for one response frame.
type Transport interface {
	Send(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error)
	Close() error
}

// Device is a raw APDU channel, such as an open HID device.
type Device interface {
	Exchange(command []byte) ([]byte, error)
	Close() error
}

// Option configures a DeviceTransport.
type Option func(*DeviceTransport)

func WithLogger(logger *zap.Logger) Option {
	return func(t *DeviceTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(t *DeviceTransport) { t.metrics = m }
}

// DeviceTransport is a Transport over a Device. At most one Send is in
// flight; further calls wait for it or for their context.
type DeviceTransport struct {
	device  Device
	logger  *zap.Logger
	metrics *Metrics

	sem       chan struct{}
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func New(device Device, opts ...Option) *DeviceTransport {
	t := &DeviceTransport{
		device: device,
		logger: zap.NewNop(),
		sem:    make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type exchangeResult struct {
	resp []byte
	err  error
}

func (t *DeviceTransport) Send(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	command, err := EncodeCommand(cla, ins, p1, p2, data)
	if err != nil {
		return nil, err
	}

	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrClosed
	}
	if t.closed.Load() {
		<-t.sem
		return nil, ErrClosed
	}

	t.logger.Debug("send frame",
		zap.Uint8("cla", cla), zap.Uint8("ins", ins),
		zap.Uint8("p1", p1), zap.Uint8("p2", p2), zap.Int("len", len(data)))

	start := time.Now()
	result := make(chan exchangeResult, 1)
	go func() {
		// The device cannot be interrupted mid exchange, so the slot is only
		// released once it returns.
		defer func() { <-t.sem }()
		resp, err := t.device.Exchange(command)
		result <- exchangeResult{resp: resp, err: err}
	}()

	var r exchangeResult
	select {
	case r = <-result:
	case <-t.done:
		t.metrics.observeError("closed")
		return nil, ErrClosedWhileSending
	case <-ctx.Done():
		t.metrics.observeError("context")
		return nil, ctx.Err()
	}
	t.metrics.observeExchange(ins, time.Since(start))

	if t.closed.Load() {
		t.metrics.observeError("closed")
		return nil, ErrClosedWhileSending
	}
	if r.err != nil {
		t.metrics.observeError("io")
		return nil, &IOError{Op: "exchange", Err: r.err}
	}

	payload, err := ParseResponse(r.resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			t.metrics.observeError("status")
			t.logger.Debug("device status", zap.Uint8("ins", ins), zap.String("status", StatusText(se.Code)))
		} else {
			t.metrics.observeError("io")
		}
		return nil, err
	}
	return payload, nil
}

// Close closes the device once. A Send in flight fails with
// ErrClosedWhileSending.
func (t *DeviceTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.done)
		t.closeErr = t.device.Close()
	})
	return t.closeErr
}

// Closed reports whether Close has been called.
func (t *DeviceTransport) Closed() bool {
	return t.closed.Load()
}

// EncodeCommand builds a short command APDU. Commands without data still
// carry an explicit zero length byte, which the device requires.
func EncodeCommand(cla, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	if len(data) == 0 {
		return []byte{cla, ins, p1, p2, 0}, nil
	}
	capdu := apdu.Capdu{Cla: cla, Ins: ins, P1: p1, P2: p2, Data: data}
	return capdu.Bytes()
}

// ParseResponse splits a response APDU into data and status word. Any status
// other than StatusOK is returned as a *StatusError.
func ParseResponse(resp []byte) ([]byte, error) {
	if len(resp) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortResponse, len(resp))
	}
	rapdu, err := apdu.ParseRapdu(resp)
	if err != nil {
		return nil, &IOError{Op: "parse response", Err: err}
	}
	code := uint16(rapdu.SW1)<<8 | uint16(rapdu.SW2)
	if code != StatusOK {
		return nil, &StatusError{Code: code}
	}
	if rapdu.Data == nil {
		return []byte{}, nil
	}
	return rapdu.Data, nil
}
