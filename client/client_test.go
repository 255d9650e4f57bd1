// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package client

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/transport/transporttest"
	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

var (
	path   = wire.AccountPath(0, 0, 0)
	header = types.AccountHeader{Nonce: 1, Energy: 501, Expiry: 1700000000}
)

func appInfo(name, version string) []byte {
	out := []byte{0x01, byte(len(name))}
	out = append(out, name...)
	out = append(out, byte(len(version)))
	return append(out, version...)
}

func TestClientSign(t *testing.T) {
	rec := transporttest.New().WithDefault(bytes.Repeat([]byte{7}, 64))
	var statuses []string
	c := New(rec, WithStatus(func(s string) { statuses = append(statuses, s) }))

	sig, err := c.SignSimpleTransfer(context.Background(), path, header, types.SimpleTransfer{Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{7}, 64), sig)
	assert.NotEmpty(t, statuses)

	sig, err = c.Sign(context.Background(), types.AccountTransaction{Header: header, Payload: types.TransferToEncrypted{Amount: 2}}, path)
	require.NoError(t, err)
	assert.Len(t, sig, 64)
	assert.Len(t, rec.Frames(), 2)
}

func TestClientClosed(t *testing.T) {
	rec := transporttest.New()
	c := New(rec)
	require.NotEmpty(t, c.ID())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, rec.Closed())
	assert.True(t, c.Closed())

	_, err := c.GetPublicKeySilent(context.Background(), path)
	require.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, rec.Frames())
}

func TestClientRequireApplication(t *testing.T) {
	rec := transporttest.New()
	c := New(rec)

	rec.Respond(appInfo("BOLOS", "1.0.0"))
	_, err := c.RequireApplication(context.Background(), "Concordium")
	require.ErrorIs(t, err, ErrApplicationMismatch)

	rec.Respond(appInfo("Concordium", "4.1.0"))
	info, err := c.RequireApplication(context.Background(), "Concordium")
	require.NoError(t, err)
	assert.Equal(t, "4.1.0", info.Version)
}

func TestClientIDsAreUnique(t *testing.T) {
	a, b := New(transporttest.New()), New(transporttest.New())
	assert.NotEqual(t, a.ID(), b.ID())
}

type blockingDevice struct {
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDevice) Exchange([]byte) ([]byte, error) {
	close(d.entered)
	<-d.release
	return append(bytes.Repeat([]byte{1}, 64), 0x90, 0x00), nil
}

func (d *blockingDevice) Close() error {
	close(d.release)
	return nil
}

func TestClientCloseDuringSign(t *testing.T) {
	dev := &blockingDevice{entered: make(chan struct{}), release: make(chan struct{})}
	c := New(transport.New(dev))

	type result struct {
		sig []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		sig, err := c.SignSimpleTransfer(context.Background(), path, header, types.SimpleTransfer{Amount: 1})
		done <- result{sig, err}
	}()

	<-dev.entered
	require.NoError(t, c.Close())

	select {
	case r := <-done:
		require.ErrorIs(t, r.err, transport.ErrClosedWhileSending)
		assert.Nil(t, r.sig)
	case <-time.After(5 * time.Second):
		t.Fatal("sign did not return after close")
	}
}

func TestClientSerializesFlows(t *testing.T) {
	dev := &blockingDevice{entered: make(chan struct{}), release: make(chan struct{})}
	c := New(transport.New(dev))

	go func() { _, _ = c.GetPublicKeySilent(context.Background(), path) }()
	<-dev.entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ExportPrivateKeySeed(ctx, 0, protocol.ExportPRFKey)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, c.Close())
}
