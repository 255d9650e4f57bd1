// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package transporttest provides a scripted transport that records every
// frame sent through it.
package transporttest

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/ledger-concordium-go/transport"
)

// Frame is a command as seen by the device.
type Frame struct {
	CLA, INS, P1, P2 byte
	Data             []byte
}

func (f Frame) String() string {
	return fmt.Sprintf("%02x %02x %02x %02x %x", f.CLA, f.INS, f.P1, f.P2, f.Data)
}

// Equal compares two frames including their data.
func (f Frame) Equal(o Frame) bool {
	return f.CLA == o.CLA && f.INS == o.INS && f.P1 == o.P1 && f.P2 == o.P2 && bytes.Equal(f.Data, o.Data)
}

// Recorder answers frames from a queue of scripted responses, falling back to
// Default once the queue is empty.
type Recorder struct {
	mu        sync.Mutex
	frames    []Frame
	responses [][]byte
	failures  map[int]error
	closed    bool

	Default []byte
}

var _ transport.Transport = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{failures: make(map[int]error)}
}

// WithDefault sets the response returned when no scripted response is queued.
func (r *Recorder) WithDefault(resp []byte) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Default = resp
	return r
}

// Respond queues responses for the next frames, in order.
func (r *Recorder) Respond(responses ...[]byte) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, responses...)
	return r
}

// FailAt makes the n-th frame (zero based) fail with err.
func (r *Recorder) FailAt(n int, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[n] = err
	return r
}

func (r *Recorder) Send(ctx context.Context, cla, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, transport.ErrClosed
	}
	if len(data) > transport.MaxDataSize {
		return nil, transport.ErrFrameTooLarge
	}

	n := len(r.frames)
	r.frames = append(r.frames, Frame{CLA: cla, INS: ins, P1: p1, P2: p2, Data: bytes.Clone(data)})
	if err, ok := r.failures[n]; ok {
		return nil, err
	}

	resp := r.Default
	if len(r.responses) > 0 {
		resp = r.responses[0]
		r.responses = r.responses[1:]
	}
	return append([]byte{}, resp...), nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Frames returns a copy of the frames sent so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Reset forgets recorded frames and queued responses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.responses = nil
	r.failures = make(map[int]error)
}
