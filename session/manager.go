// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package session tracks the attached device and keeps at most one client
// open against it. Device events are consumed by a single goroutine, so
// transitions never interleave.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/types"
)

const (
	DefaultApplication      = "Concordium"
	DefaultPollInterval     = 5 * time.Second
	DefaultPresenceInterval = time.Second
	DefaultQueryTimeout     = 10 * time.Second
)

// Source enumerates attached devices and opens them.
type Source interface {
	Devices() ([]DeviceInfo, error)
	Open(info DeviceInfo) (transport.Device, error)
}

// EventKind is the kind of a device event.
type EventKind int

const (
	Attached EventKind = iota
	Detached
	// Refresh re-reads the open application on the current device.
	Refresh
	// Reset tears the client down and reconnects, used after a flow failed
	// because the device went away underneath it.
	Reset
)

func (k EventKind) String() string {
	switch k {
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	case Refresh:
		return "refresh"
	case Reset:
		return "reset"
	}
	return "unknown"
}

// Event is delivered to the manager's event loop.
type Event struct {
	Kind   EventKind
	Device DeviceInfo
}

type options struct {
	app              string
	minVersion       string
	pollInterval     time.Duration
	presenceInterval time.Duration
	queryTimeout     time.Duration
	logger           *zap.Logger
	metrics          *Metrics
	transportMetrics *transport.Metrics
	status           protocol.StatusFunc
}

type Option func(*options)

// WithApplication sets the application name the device must have open.
func WithApplication(name string) Option {
	return func(o *options) { o.app = name }
}

// WithMinVersion sets the oldest accepted application version. Empty
// accepts any version.
func WithMinVersion(v string) Option {
	return func(o *options) { o.minVersion = v }
}

// WithPollInterval sets how often the open application is re-read while
// the device shows a different application.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithPresenceInterval sets how often attached devices are enumerated.
func WithPresenceInterval(d time.Duration) Option {
	return func(o *options) { o.presenceInterval = d }
}

func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTransportMetrics(m *transport.Metrics) Option {
	return func(o *options) { o.transportMetrics = m }
}

// WithStatus forwards flow progress messages of every client created.
func WithStatus(fn protocol.StatusFunc) Option {
	return func(o *options) { o.status = fn }
}

// Manager owns the device session.
type Manager struct {
	source Source
	opts   options
	logger *zap.Logger
	events chan Event

	mu      sync.RWMutex
	status  Status
	client  *client.Client
	subs    map[chan Status]struct{}
	running bool
}

func New(source Source, opts ...Option) *Manager {
	o := options{
		app:              DefaultApplication,
		pollInterval:     DefaultPollInterval,
		presenceInterval: DefaultPresenceInterval,
		queryTimeout:     DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Manager{
		source: source,
		opts:   o,
		logger: o.logger.Named("session"),
		events: make(chan Event, 16),
		status: Status{State: Disconnected, At: time.Now()},
		subs:   make(map[chan Status]struct{}),
	}
}

// Run consumes device events and polls for presence and application changes
// until ctx is done. The client, if any, is closed on return.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("session: manager already running")
	}
	m.running = true
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.consume(gctx) })
	g.Go(func() error { return m.pollPresence(gctx) })
	g.Go(func() error { return m.pollApplication(gctx) })
	err := g.Wait()

	m.teardown()
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Notify queues an event for the event loop. It blocks while the queue is
// full.
func (m *Manager) Notify(ctx context.Context, ev Event) error {
	select {
	case m.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset asks the event loop to close the client and query the device
// again, whatever state the session is in.
func (m *Manager) Reset(ctx context.Context) error {
	return m.Notify(ctx, Event{Kind: Reset})
}

// Status returns the latest published snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe returns a channel of state snapshots starting with the current
// one. A slow subscriber loses older snapshots, never the newest. The
// returned func unsubscribes.
func (m *Manager) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 8)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	ch <- m.status
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
		})
	}
}

// Client returns the connected client. The error explains why no client is
// available in the other states.
func (m *Manager) Client() (*client.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.status.State {
	case Connected:
		return m.client, nil
	case AwaitingApplication:
		return nil, client.ErrApplicationMismatch
	case Outdated, Error:
		if m.status.Err != nil {
			return nil, m.status.Err
		}
	}
	return nil, ErrNotConnected
}

// Sign signs tx with the connected client. A failure caused by the device
// going away resets the session.
func (m *Manager) Sign(ctx context.Context, tx types.Transaction, path []uint32) ([]byte, error) {
	c, err := m.Client()
	if err != nil {
		return nil, err
	}
	sig, err := c.Sign(ctx, tx, path)
	if err != nil && disconnected(err) {
		m.logger.Info("signing interrupted by disconnect, resetting session", zap.Error(err))
		select {
		case m.events <- Event{Kind: Reset}:
		default:
		}
	}
	return sig, err
}

func disconnected(err error) bool {
	var ioErr *transport.IOError
	return errors.Is(err, transport.ErrClosedWhileSending) ||
		errors.Is(err, transport.ErrClosed) ||
		errors.Is(err, client.ErrClosed) ||
		errors.As(err, &ioErr)
}

func (m *Manager) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev Event) {
	current := m.device()
	m.logger.Debug("device event", zap.Stringer("kind", ev.Kind), zap.String("path", ev.Device.Path))

	switch ev.Kind {
	case Attached:
		if current != nil {
			if current.Path != ev.Device.Path {
				m.logger.Info("ignoring additional device", zap.String("path", ev.Device.Path))
			}
			return
		}
		m.connect(ctx, ev.Device)
	case Detached:
		if current == nil || (ev.Device.Path != "" && current.Path != ev.Device.Path) {
			return
		}
		m.teardown()
		m.transition(Status{State: Disconnected})
	case Refresh, Reset:
		if current == nil {
			return
		}
		if ev.Kind == Refresh && m.Status().State == Connected {
			return
		}
		m.teardown()
		m.connect(ctx, *current)
	}
}

// connect opens the device and classifies the open application. Only a
// Connected session keeps the device open.
func (m *Manager) connect(ctx context.Context, dev DeviceInfo) {
	logger := m.logger.With(zap.String("path", dev.Path), zap.String("product", dev.Product))

	d, err := m.source.Open(dev)
	if err != nil {
		logger.Warn("failed to open device", zap.Error(err))
		m.transition(Status{State: Error, Device: &dev, Err: fmt.Errorf("session: open device: %w", err)})
		return
	}

	t := transport.New(d, transport.WithLogger(m.opts.logger), transport.WithMetrics(m.opts.transportMetrics))
	c := client.New(t, client.WithLogger(m.opts.logger), client.WithStatus(m.opts.status))

	qctx, cancel := context.WithTimeout(ctx, m.opts.queryTimeout)
	info, err := c.AppInfo(qctx)
	cancel()
	if err != nil {
		_ = c.Close()
		logger.Warn("failed to read open application", zap.Error(err))
		m.transition(Status{State: Error, Device: &dev, Err: err})
		return
	}

	app := info
	if info.Name != m.opts.app {
		_ = c.Close()
		logger.Info("waiting for application", zap.String("open", info.Name), zap.String("want", m.opts.app))
		m.transition(Status{
			State:  AwaitingApplication,
			Device: &dev,
			App:    &app,
			Err:    fmt.Errorf("%w: %q", client.ErrApplicationMismatch, info.Name),
		})
		return
	}

	if m.opts.minVersion != "" {
		if err := CheckVersion(info.Version, m.opts.minVersion); err != nil {
			_ = c.Close()
			state := Error
			if errors.Is(err, ErrApplicationOutdated) {
				state = Outdated
			}
			logger.Warn("application version rejected", zap.String("version", info.Version), zap.Error(err))
			m.transition(Status{State: state, Device: &dev, App: &app, Err: err})
			return
		}
	}

	m.mu.Lock()
	m.client = c
	m.mu.Unlock()
	logger.Info("application connected", zap.String("version", info.Version), zap.String("session", c.ID()))
	m.transition(Status{State: Connected, Device: &dev, App: &app, Session: c.ID()})
}

// teardown closes the current client before any new one is built.
func (m *Manager) teardown() {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.mu.Unlock()
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		m.logger.Debug("closing client", zap.Error(err))
	}
}

func (m *Manager) device() *DeviceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status.Device == nil {
		return nil
	}
	dev := *m.status.Device
	return &dev
}

func (m *Manager) transition(next Status) {
	next.At = time.Now()

	m.mu.Lock()
	prev := m.status.State
	m.status = next
	for ch := range m.subs {
		publish(ch, next)
	}
	m.mu.Unlock()

	if prev != next.State {
		m.logger.Info("session state changed", zap.Stringer("from", prev), zap.Stringer("to", next.State))
	}
	m.opts.metrics.observeTransition(prev, next.State)
}

func publish(ch chan Status, s Status) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// pollPresence enumerates devices and reports changes against the current
// session. It also catches detaches that no other source reported.
func (m *Manager) pollPresence(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.presenceInterval)
	defer ticker.Stop()
	for {
		if err := m.checkPresence(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) checkPresence(ctx context.Context) error {
	devices, err := m.source.Devices()
	if err != nil {
		m.logger.Debug("enumerating devices", zap.Error(err))
		return nil
	}

	current := m.device()
	if current != nil {
		for _, d := range devices {
			if d.Path == current.Path {
				return nil
			}
		}
		return m.Notify(ctx, Event{Kind: Detached, Device: *current})
	}
	if len(devices) > 0 {
		return m.Notify(ctx, Event{Kind: Attached, Device: devices[0]})
	}
	return nil
}

// pollApplication re-reads the open application while the device shows
// another one or the last query failed. A locked device or a timed out
// query clears up without the device being unplugged.
func (m *Manager) pollApplication(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !retryable(m.Status().State) {
			continue
		}
		if err := m.Notify(ctx, Event{Kind: Refresh}); err != nil {
			return err
		}
	}
}

func retryable(state State) bool {
	return state == AwaitingApplication || state == Error
}
