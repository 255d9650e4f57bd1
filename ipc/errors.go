// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/session"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

// Code is the stable machine-readable error identifier of a response.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnsupported     Code = "UNSUPPORTED_TRANSACTION"
	CodeNotConnected    Code = "NOT_CONNECTED"
	CodeAppNotOpen      Code = "APP_NOT_OPEN"
	CodeAppOutdated     Code = "APP_OUTDATED"
	CodeRejected        Code = "REJECTED_BY_USER"
	CodeDeviceLocked    Code = "DEVICE_LOCKED"
	CodeDeviceError     Code = "DEVICE_ERROR"
	CodeDisconnected    Code = "DISCONNECTED"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

var httpStatus = map[Code]int{
	CodeInvalidArgument: http.StatusBadRequest,
	CodeUnsupported:     http.StatusBadRequest,
	CodeNotConnected:    http.StatusServiceUnavailable,
	CodeAppNotOpen:      http.StatusConflict,
	CodeAppOutdated:     http.StatusConflict,
	CodeRejected:        http.StatusForbidden,
	CodeDeviceLocked:    http.StatusLocked,
	CodeDeviceError:     http.StatusBadGateway,
	CodeDisconnected:    http.StatusServiceUnavailable,
	CodeTimeout:         http.StatusGatewayTimeout,
	CodeInternal:        http.StatusInternalServerError,
}

// HTTPStatus returns the response status used for code.
func HTTPStatus(code Code) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is an error with a code attached.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func invalid(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// Classify maps an error from the device stack to its code.
func Classify(err error) Code {
	var (
		coded  *Error
		status *transport.StatusError
		ioErr  *transport.IOError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &coded):
		return coded.Code
	case errors.Is(err, wire.ErrInvalidPath),
		errors.Is(err, wire.ErrInvalidAddress),
		errors.Is(err, wire.ErrMemoTooLong),
		errors.Is(err, types.ErrUnknownType),
		errors.Is(err, types.ErrLongProof),
		errors.Is(err, protocol.ErrMissingProof):
		return CodeInvalidArgument
	case errors.Is(err, protocol.ErrUnsupportedTransactionKind):
		return CodeUnsupported
	case errors.Is(err, session.ErrNotConnected):
		return CodeNotConnected
	case errors.Is(err, client.ErrApplicationMismatch):
		return CodeAppNotOpen
	case errors.Is(err, session.ErrApplicationOutdated):
		return CodeAppOutdated
	case errors.As(err, &status):
		switch {
		case status.Rejected():
			return CodeRejected
		case status.Code == transport.StatusLocked:
			return CodeDeviceLocked
		case status.Code == transport.StatusAppNotOpen, status.Code == transport.StatusCLANotSupported:
			return CodeAppNotOpen
		}
		return CodeDeviceError
	case errors.Is(err, transport.ErrClosedWhileSending),
		errors.Is(err, transport.ErrClosed),
		errors.Is(err, client.ErrClosed),
		errors.As(err, &ioErr):
		return CodeDisconnected
	case errors.Is(err, protocol.ErrMissingSignature),
		errors.Is(err, protocol.ErrMalformedResponse):
		return CodeDeviceError
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	return CodeInternal
}
