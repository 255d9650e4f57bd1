// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package client is the entry point for talking to the Concordium
// application. A Client owns one transport and runs one device flow at a
// time.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/types"
)

var (
	ErrClosed              = errors.New("client: closed")
	ErrApplicationMismatch = errors.New("client: unexpected application open on device")
)

// Client binds a transport to the Concordium protocol. It is not reusable
// once closed; reconnecting creates a new Client.
type Client struct {
	id        string
	transport transport.Transport
	proto     *protocol.Protocol
	logger    *zap.Logger

	// flow admits one device flow at a time.
	flow   chan struct{}
	closed atomic.Bool
}

type options struct {
	logger *zap.Logger
	status protocol.StatusFunc
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStatus receives progress messages of every flow run by the client.
func WithStatus(fn protocol.StatusFunc) Option {
	return func(o *options) { o.status = fn }
}

func New(t transport.Transport, opts ...Option) *Client {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	id := uuid.NewString()
	logger := o.logger.With(zap.String("session", id))
	return &Client{
		id:        id,
		transport: t,
		logger:    logger,
		proto:     protocol.New(t, protocol.WithLogger(logger), protocol.WithStatus(o.status)),
		flow:      make(chan struct{}, 1),
	}
}

// ID identifies the client in logs and state events.
func (c *Client) ID() string { return c.id }

// Close closes the transport. A flow in progress fails with
// transport.ErrClosedWhileSending.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.logger.Debug("closing client")
	return c.transport.Close()
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool { return c.closed.Load() }

// run executes fn as the only flow on the device.
func run[T any](ctx context.Context, c *Client, fn func(*protocol.Protocol) (T, error)) (T, error) {
	var zero T
	select {
	case c.flow <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-c.flow }()

	if c.closed.Load() {
		return zero, ErrClosed
	}
	return fn(c.proto)
}

// AppInfo queries the name and version of the open application.
func (c *Client) AppInfo(ctx context.Context) (protocol.AppInfo, error) {
	return run(ctx, c, func(p *protocol.Protocol) (protocol.AppInfo, error) {
		return p.GetAppAndVersion(ctx)
	})
}

// RequireApplication fails with ErrApplicationMismatch unless the open
// application is called name.
func (c *Client) RequireApplication(ctx context.Context, name string) (protocol.AppInfo, error) {
	info, err := c.AppInfo(ctx)
	if err != nil {
		return info, err
	}
	if info.Name != name {
		return info, fmt.Errorf("%w: %q", ErrApplicationMismatch, info.Name)
	}
	return info, nil
}

func (c *Client) GetPublicKey(ctx context.Context, path []uint32) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.GetPublicKey(ctx, path) })
}

func (c *Client) GetPublicKeySilent(ctx context.Context, path []uint32) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.GetPublicKeySilent(ctx, path) })
}

func (c *Client) GetSignedPublicKey(ctx context.Context, path []uint32) (protocol.SignedPublicKey, error) {
	return run(ctx, c, func(p *protocol.Protocol) (protocol.SignedPublicKey, error) {
		return p.GetSignedPublicKey(ctx, path)
	})
}

func (c *Client) ExportPrivateKeySeed(ctx context.Context, identity uint32, what protocol.SeedExport) (protocol.PrivateKeySeeds, error) {
	return run(ctx, c, func(p *protocol.Protocol) (protocol.PrivateKeySeeds, error) {
		return p.ExportPrivateKeySeed(ctx, identity, what)
	})
}

func (c *Client) VerifyAddress(ctx context.Context, identity, credential uint32) error {
	_, err := run(ctx, c, func(p *protocol.Protocol) (struct{}, error) {
		return struct{}{}, p.VerifyAddress(ctx, identity, credential)
	})
	return err
}

// Sign signs any supported transaction, choosing the flow by its type.
func (c *Client) Sign(ctx context.Context, tx types.Transaction, path []uint32) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) {
		sig, err := p.Sign(ctx, tx, path)
		if err != nil {
			c.logger.Debug("signing failed", zap.Error(err))
		}
		return sig, err
	})
}
