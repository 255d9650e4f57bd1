// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	mu       sync.Mutex
	commands [][]byte
	reply    []byte
	err      error
	closes   int

	entered chan struct{}
	release chan struct{}
}

func (d *fakeDevice) Exchange(command []byte) ([]byte, error) {
	d.mu.Lock()
	d.commands = append(d.commands, command)
	entered, release := d.entered, d.release
	d.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if release != nil {
		<-release
	}
	return d.reply, d.err
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	if d.release != nil {
		close(d.release)
		d.release = nil
	}
	return nil
}

func TestEncodeCommand(t *testing.T) {
	cmd, err := EncodeCommand(0xe0, 0x01, 0x00, 0x00, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe0, 0x01, 0x00, 0x00, 0x00}, cmd)

	cmd, err = EncodeCommand(0xe0, 0x02, 0x01, 0x00, []byte{0xaa, 0xbb})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe0, 0x02, 0x01, 0x00, 0x02, 0xaa, 0xbb}, cmd)

	full := bytes.Repeat([]byte{1}, MaxDataSize)
	cmd, err = EncodeCommand(0xe0, 0x02, 0x00, 0x00, full)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), cmd[4])
	assert.Len(t, cmd, 5+MaxDataSize)

	_, err = EncodeCommand(0xe0, 0x02, 0x00, 0x00, make([]byte, 256))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestParseResponse(t *testing.T) {
	data, err := ParseResponse([]byte{0x01, 0x02, 0x90, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	data, err = ParseResponse([]byte{0x90, 0x00})
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = ParseResponse([]byte{0x69, 0x85})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StatusConditionsNotSatisfied, se.Code)
	assert.True(t, se.Rejected())
	assert.Contains(t, se.Error(), "0x6985")

	_, err = ParseResponse([]byte{0x90})
	require.ErrorIs(t, err, ErrShortResponse)
}

func TestSend(t *testing.T) {
	dev := &fakeDevice{reply: []byte{0xde, 0xad, 0x90, 0x00}}
	tr := New(dev)

	resp, err := tr.Send(context.Background(), 0xe0, 0x01, 0x01, 0x00, []byte{0x05})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, resp)
	require.Len(t, dev.commands, 1)
	assert.Equal(t, []byte{0xe0, 0x01, 0x01, 0x00, 0x01, 0x05}, dev.commands[0])
}

func TestSendStatusError(t *testing.T) {
	tr := New(&fakeDevice{reply: []byte{0x6e, 0x01}})

	_, err := tr.Send(context.Background(), 0xe0, 0x02, 0x00, 0x00, []byte{1})
	code, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, StatusAppNotOpen, code)
}

func TestSendIOError(t *testing.T) {
	cause := errors.New("hid: read failed")
	tr := New(&fakeDevice{err: cause})

	_, err := tr.Send(context.Background(), 0xe0, 0x02, 0x00, 0x00, nil)
	require.ErrorIs(t, err, cause)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "exchange", ioErr.Op)
}

func TestSendAfterClose(t *testing.T) {
	dev := &fakeDevice{reply: []byte{0x90, 0x00}}
	tr := New(dev)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, 1, dev.closes)
	assert.True(t, tr.Closed())

	_, err := tr.Send(context.Background(), 0xe0, 0x01, 0x00, 0x00, nil)
	require.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, dev.commands)
}

func TestCloseDuringSend(t *testing.T) {
	signature := append(bytes.Repeat([]byte{0x42}, 64), 0x90, 0x00)
	dev := &fakeDevice{
		reply:   signature,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr := New(dev)

	type result struct {
		resp []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := tr.Send(context.Background(), 0xe0, 0x02, 0x00, 0x00, []byte{1})
		done <- result{resp, err}
	}()

	<-dev.entered
	require.NoError(t, tr.Close())

	select {
	case r := <-done:
		require.ErrorIs(t, r.err, ErrClosedWhileSending)
		assert.Nil(t, r.resp)
	case <-time.After(5 * time.Second):
		t.Fatal("send did not return after close")
	}
}

func TestSendWaitsForInFlight(t *testing.T) {
	dev := &fakeDevice{
		reply:   []byte{0x90, 0x00},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr := New(dev)
	go func() { _, _ = tr.Send(context.Background(), 0xe0, 0x01, 0x00, 0x00, nil) }()
	<-dev.entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := tr.Send(ctx, 0xe0, 0x01, 0x00, 0x00, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tr.Close())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	tr := New(&fakeDevice{reply: []byte{0x69, 0x85}}, WithMetrics(m))

	_, err := tr.Send(context.Background(), 0xe0, 0x02, 0x00, 0x00, nil)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames.WithLabelValues("0x02")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("status")))

	var nilMetrics *Metrics
	nilMetrics.observeError("io")
}
