// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Send on a transport that was already closed.
	ErrClosed = errors.New("transport: closed")

	// ErrClosedWhileSending is returned by a Send that was in flight when the
	// transport was closed. Any response the device produced is discarded.
	ErrClosedWhileSending = errors.New("transport: closed while sending")

	// ErrFrameTooLarge is returned for command data longer than 255 bytes.
	ErrFrameTooLarge = errors.New("transport: command data exceeds 255 bytes")

	// ErrShortResponse is returned when a response has no status word.
	ErrShortResponse = errors.New("transport: response shorter than status word")
)

// IOError wraps a failure of the underlying device exchange.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// StatusError carries a status word other than StatusOK.
type StatusError struct {
	Code uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: device returned 0x%04x (%s)", e.Code, StatusText(e.Code))
}

// Rejected reports whether the user declined the request on the device.
func (e *StatusError) Rejected() bool {
	return e.Code == StatusConditionsNotSatisfied || e.Code == StatusTransactionRejected
}

// StatusCode extracts the status word from err, if it carries one.
func StatusCode(err error) (uint16, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
