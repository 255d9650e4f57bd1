// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

// exchange is one run of a frame sequence under a single instruction. It
// remembers the last response, which carries the signature once the
// sequence is complete.
type exchange struct {
	ctx    context.Context
	p      *Protocol
	ins    byte
	name   string
	frames int
	last   []byte
}

func (p *Protocol) begin(ctx context.Context, ins byte, name string) *exchange {
	p.logger.Debug("begin exchange", zap.String("flow", name), zap.Uint8("ins", ins))
	p.report(fmt.Sprintf("Sending %s to the device", name))
	return &exchange{ctx: ctx, p: p, ins: ins, name: name}
}

// send transmits parts concatenated into one frame.
func (e *exchange) send(p1, p2 byte, parts ...[]byte) error {
	resp, err := e.p.transport.Send(e.ctx, CLA, e.ins, p1, p2, wire.Concat(parts...))
	if err != nil {
		return fmt.Errorf("protocol: %s frame %d (p1=%d p2=%d): %w", e.name, e.frames, p1, p2, err)
	}
	e.frames++
	e.last = resp
	if e.frames == 1 {
		e.p.report("Waiting for confirmation on the device")
	}
	return nil
}

// stream sends data in frames of at most 255 bytes. Empty data sends nothing.
func (e *exchange) stream(p1, p2 byte, data []byte) error {
	for _, chunk := range wire.Chunk(data, wire.MaxFrameData) {
		if err := e.send(p1, p2, chunk); err != nil {
			return err
		}
	}
	return nil
}

// streamTerminal is stream for a section whose last response is the
// signature. Empty data still produces one empty frame; only the protocol
// update auxiliary data and token initialization parameters expect that.
func (e *exchange) streamTerminal(p1, p2 byte, data []byte) error {
	if len(data) == 0 {
		return e.send(p1, p2)
	}
	return e.stream(p1, p2, data)
}

func (e *exchange) signature() ([]byte, error) {
	sig, err := Signature(e.last)
	if err != nil {
		return nil, fmt.Errorf("protocol: %s: %w", e.name, err)
	}
	e.p.logger.Debug("signed", zap.String("flow", e.name), zap.Int("frames", e.frames))
	return sig, nil
}

// accountPrefix returns the encoded path and the account header sized for
// the payload.
func accountPrefix(path []uint32, header types.AccountHeader, payload types.AccountPayload) ([]byte, error) {
	encodedPath, err := wire.EncodePath(path)
	if err != nil {
		return nil, err
	}
	tx := types.AccountTransaction{Header: header, Payload: payload}
	encodedHeader, err := tx.SerializeHeader()
	if err != nil {
		return nil, err
	}
	return wire.Concat(encodedPath, encodedHeader), nil
}

// updatePrefix returns the encoded path, update header and update type byte.
func updatePrefix(path []uint32, header types.UpdateHeader, payload types.UpdatePayload) ([]byte, error) {
	encodedPath, err := wire.EncodePath(path)
	if err != nil {
		return nil, err
	}
	u := types.UpdateInstruction{Header: header, Payload: payload}
	encodedHeader, err := u.SerializeHeader()
	if err != nil {
		return nil, err
	}
	return wire.Concat(encodedPath, encodedHeader, []byte{byte(payload.UpdateType())}), nil
}
