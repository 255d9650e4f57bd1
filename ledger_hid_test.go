//go:build !ledger_mock && !ledger_zemu
// +build !ledger_mock,!ledger_zemu

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	mu      sync.Mutex
	written [][]byte
	replies chan []byte
	closed  chan struct{}
	once    sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{replies: make(chan []byte, 16), closed: make(chan struct{})}
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case packet := <-p.replies:
		return copy(b, packet), nil
	case <-p.closed:
		return 0, errors.New("hid: device closed")
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, append([]byte(nil), b...))
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *fakePort) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *fakePort) reply(t *testing.T, response []byte) {
	t.Helper()
	packets, err := WrapCommandAPDU(Channel, response, PacketSize)
	require.NoError(t, err)
	for _, packet := range packets {
		p.replies <- packet
	}
}

func TestHIDExchange(t *testing.T) {
	port := newFakePort()
	device := newLedgerDeviceHID(port, time.Second)
	defer device.Close()

	command := append([]byte{0xe0, 0x01, 0x00, 0x00, 0x64}, bytes.Repeat([]byte{0x01}, 100)...)
	response := append(bytes.Repeat([]byte{0x3c}, 32), 0x90, 0x00)
	port.reply(t, response)

	got, err := device.Exchange(command)
	require.NoError(t, err)
	assert.Equal(t, response, got)

	want, err := WrapCommandAPDU(Channel, command, PacketSize)
	require.NoError(t, err)
	assert.Equal(t, want, port.written)
	assert.False(t, port.isClosed())
}

func TestHIDTimeoutClosesDevice(t *testing.T) {
	port := newFakePort()
	device := newLedgerDeviceHID(port, 20*time.Millisecond)

	command := []byte{0xb0, 0x01, 0x00, 0x00, 0x00}
	_, err := device.Exchange(command)
	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, port.isClosed())

	// the late answer is never handed to a later command
	port.reply(t, []byte{0x90, 0x00})
	_, err = device.Exchange(command)
	require.ErrorIs(t, err, ErrDeviceClosed)
	assert.Len(t, port.written, 1)
}

func TestHIDBadSequenceClosesDevice(t *testing.T) {
	port := newFakePort()
	device := newLedgerDeviceHID(port, time.Second)

	packets, err := WrapCommandAPDU(Channel, bytes.Repeat([]byte{0x01}, 100), PacketSize)
	require.NoError(t, err)
	require.Len(t, packets, 2)
	port.replies <- packets[1]

	_, err = device.Exchange([]byte{0xe0, 0x02, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, ErrUnexpectedSequence)
	assert.True(t, port.isClosed())
}
