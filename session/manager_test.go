// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

var (
	nanoS     = DeviceInfo{Path: "hid-1", Product: "Nano S"}
	errUnplug = errors.New("device unplugged")
)

type fakeSource struct {
	mu       sync.Mutex
	devices  []DeviceInfo
	app      string
	version  string
	openErr  error
	failNext bool
	// status, when set, answers every command with that status word.
	status uint16
	opened []*fakeDevice
}

func newSource(app, version string) *fakeSource {
	return &fakeSource{devices: []DeviceInfo{nanoS}, app: app, version: version}
}

func (s *fakeSource) Devices() ([]DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeviceInfo(nil), s.devices...), nil
}

func (s *fakeSource) Open(DeviceInfo) (transport.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	d := &fakeDevice{source: s}
	s.opened = append(s.opened, d)
	return d, nil
}

func (s *fakeSource) set(fn func(*fakeSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *fakeSource) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.opened)
}

func (s *fakeSource) allClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.opened {
		if !d.isClosed() {
			return false
		}
	}
	return true
}

type fakeDevice struct {
	source *fakeSource
	mu     sync.Mutex
	closed bool
}

func (d *fakeDevice) Exchange(command []byte) ([]byte, error) {
	d.source.mu.Lock()
	defer d.source.mu.Unlock()
	if d.source.failNext {
		d.source.failNext = false
		return nil, errUnplug
	}
	if d.source.status != 0 {
		return []byte{byte(d.source.status >> 8), byte(d.source.status)}, nil
	}
	if command[0] == 0xb0 {
		out := []byte{0x01, byte(len(d.source.app))}
		out = append(out, d.source.app...)
		out = append(out, byte(len(d.source.version)))
		out = append(out, d.source.version...)
		return append(out, 0x90, 0x00), nil
	}
	return append(bytes.Repeat([]byte{0x5a}, 64), 0x90, 0x00), nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func start(t *testing.T, source Source, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{
		WithPresenceInterval(5 * time.Millisecond),
		WithPollInterval(10 * time.Millisecond),
		WithQueryTimeout(time.Second),
	}, opts...)
	m := New(source, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Error("manager did not stop")
		}
	})
	return m
}

func waitFor(t *testing.T, m *Manager, state State) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Status().State == state }, 2*time.Second, 5*time.Millisecond,
		"state %s, want %s", m.Status().State, state)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "awaiting_application", AwaitingApplication.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		found, minimum string
		err            error
	}{
		{"1.0.0", "1.0.0", nil},
		{"4.1.0", "v2.0.0", nil},
		{"v2.0.1", "2.0.0", nil},
		{"1.0.0", "2.0.0", ErrApplicationOutdated},
		{"1.9.9", "2.0.0", ErrApplicationOutdated},
		{"one", "2.0.0", ErrInvalidVersion},
		{"1.0.0", "latest", ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.found+"/"+tt.minimum, func(t *testing.T) {
			err := CheckVersion(tt.found, tt.minimum)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}

	var verr *VersionError
	require.ErrorAs(t, CheckVersion("1.0.0", "2.0.0"), &verr)
	assert.Equal(t, "1.0.0", verr.Found)
	assert.Equal(t, "2.0.0", verr.Required)
}

func TestManagerConnects(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	m := start(t, source)

	waitFor(t, m, Connected)
	status := m.Status()
	require.NotNil(t, status.App)
	assert.Equal(t, "4.1.0", status.App.Version)
	assert.Equal(t, nanoS, *status.Device)
	assert.NotEmpty(t, status.Session)

	c, err := m.Client()
	require.NoError(t, err)
	assert.Equal(t, status.Session, c.ID())

	tx := types.AccountTransaction{
		Header:  types.AccountHeader{Nonce: 1, Energy: 501, Expiry: 1700000000},
		Payload: types.SimpleTransfer{Amount: 10},
	}
	sig, err := m.Sign(context.Background(), tx, wire.AccountPath(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x5a}, 64), sig)
	assert.Equal(t, 1, source.openCount())
}

func TestManagerAwaitingApplication(t *testing.T) {
	source := newSource("BOLOS", "1.5.0")
	m := start(t, source)

	waitFor(t, m, AwaitingApplication)
	_, err := m.Client()
	require.ErrorIs(t, err, client.ErrApplicationMismatch)
	assert.Equal(t, "BOLOS", m.Status().App.Name)
	require.Eventually(t, source.allClosed, time.Second, 5*time.Millisecond)

	source.set(func(s *fakeSource) { s.app, s.version = "Concordium", "4.1.0" })
	waitFor(t, m, Connected)
	assert.Greater(t, source.openCount(), 1)
}

func TestManagerOutdated(t *testing.T) {
	source := newSource("Concordium", "1.0.0")
	m := start(t, source, WithMinVersion("2.0.0"))

	waitFor(t, m, Outdated)
	_, err := m.Client()
	require.ErrorIs(t, err, ErrApplicationOutdated)

	var verr *VersionError
	require.ErrorAs(t, m.Status().Err, &verr)
	assert.Equal(t, "2.0.0", verr.Required)
	require.Eventually(t, source.allClosed, time.Second, 5*time.Millisecond)
}

func TestManagerDetach(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	m := start(t, source)
	waitFor(t, m, Connected)

	source.set(func(s *fakeSource) { s.devices = nil })
	waitFor(t, m, Disconnected)
	assert.Nil(t, m.Status().Device)
	assert.True(t, source.allClosed())

	_, err := m.Client()
	require.ErrorIs(t, err, ErrNotConnected)

	source.set(func(s *fakeSource) { s.devices = []DeviceInfo{nanoS} })
	waitFor(t, m, Connected)
}

func TestManagerOpenError(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	source.openErr = errors.New("permission denied")
	m := start(t, source)

	waitFor(t, m, Error)
	_, err := m.Client()
	require.ErrorContains(t, err, "permission denied")
}

func TestManagerRecoversFromLockedDevice(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	source.status = transport.StatusLocked
	m := start(t, source)

	waitFor(t, m, Error)
	code, ok := transport.StatusCode(m.Status().Err)
	require.True(t, ok)
	assert.Equal(t, transport.StatusLocked, code)
	require.Eventually(t, source.allClosed, time.Second, 5*time.Millisecond)

	source.set(func(s *fakeSource) { s.status = 0 })
	waitFor(t, m, Connected)
	assert.Greater(t, source.openCount(), 1)
}

func TestManagerRetriesFailedQuery(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	source.failNext = true
	m := start(t, source)

	waitFor(t, m, Connected)
	assert.GreaterOrEqual(t, source.openCount(), 2)
}

func TestManagerNotifyReset(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	m := start(t, source)
	waitFor(t, m, Connected)
	first := m.Status().Session

	require.NoError(t, m.Notify(context.Background(), Event{Kind: Reset}))
	require.Eventually(t, func() bool {
		s := m.Status()
		return s.State == Connected && s.Session != first
	}, 2*time.Second, 5*time.Millisecond)
}

func TestManagerResetAfterDisconnect(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	m := start(t, source)
	waitFor(t, m, Connected)
	first := m.Status().Session

	source.set(func(s *fakeSource) { s.failNext = true })
	tx := types.AccountTransaction{Payload: types.TransferToEncrypted{Amount: 1}}
	_, err := m.Sign(context.Background(), tx, wire.AccountPath(0, 0, 0))
	var ioErr *transport.IOError
	require.ErrorAs(t, err, &ioErr)

	require.Eventually(t, func() bool {
		s := m.Status()
		return s.State == Connected && s.Session != first
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, source.openCount())
}

func TestManagerSubscribe(t *testing.T) {
	source := newSource("Concordium", "4.1.0")
	source.devices = nil
	m := New(source, WithPresenceInterval(5*time.Millisecond))

	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()
	assert.Equal(t, Disconnected, (<-ch).State)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	source.set(func(s *fakeSource) { s.devices = []DeviceInfo{nanoS} })
	select {
	case s := <-ch:
		assert.Equal(t, Connected, s.State)
	case <-time.After(2 * time.Second):
		t.Fatal("no status published")
	}

	cancel()
	require.NoError(t, <-done)
	assert.True(t, source.allClosed())
}

func TestManagerRunTwice(t *testing.T) {
	m := start(t, newSource("Concordium", "4.1.0"))
	waitFor(t, m, Connected)
	require.Error(t, m.Run(context.Background()))
}

func TestManagerMetrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	m := start(t, newSource("Concordium", "4.1.0"), WithMetrics(metrics))
	waitFor(t, m, Connected)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.state.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.state.WithLabelValues("disconnected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("disconnected", "connected")))
}

func TestStatusJSON(t *testing.T) {
	s := Status{State: Outdated, Err: &VersionError{Found: "1.0.0", Required: "2.0.0"}}
	out, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "outdated", decoded["state"])
	assert.Contains(t, decoded["error"], "below required 2.0.0")
}
