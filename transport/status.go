// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package transport

import "fmt"

// Status words returned by the device.
const (
	StatusOK                      uint16 = 0x9000
	StatusDeviceBusy              uint16 = 0x9001
	StatusLocked                  uint16 = 0x5515
	StatusErrorDerivingKeys       uint16 = 0x6802
	StatusExecutionError          uint16 = 0x6400
	StatusWrongLength             uint16 = 0x6700
	StatusEmptyBuffer             uint16 = 0x6982
	StatusOutputBufferTooSmall    uint16 = 0x6983
	StatusConditionsNotSatisfied  uint16 = 0x6985
	StatusTransactionRejected     uint16 = 0x6986
	StatusDataInvalid             uint16 = 0x6a80
	StatusBadKeyHandle            uint16 = 0x6a81
	StatusInvalidP1P2             uint16 = 0x6b00
	StatusInstructionNotSupported uint16 = 0x6d00
	StatusCLANotSupported         uint16 = 0x6e00
	StatusAppNotOpen              uint16 = 0x6e01
	StatusUnknownError            uint16 = 0x6f00
	StatusSignVerifyError         uint16 = 0x6f01
)

var statusText = map[uint16]string{
	StatusOK:                      "ok",
	StatusDeviceBusy:              "device is busy",
	StatusLocked:                  "device is locked",
	StatusErrorDerivingKeys:       "error deriving keys",
	StatusExecutionError:          "execution error",
	StatusWrongLength:             "wrong length",
	StatusEmptyBuffer:             "empty buffer",
	StatusOutputBufferTooSmall:    "output buffer too small",
	StatusConditionsNotSatisfied:  "conditions not satisfied, rejected by user",
	StatusTransactionRejected:     "transaction rejected",
	StatusDataInvalid:             "data is invalid",
	StatusBadKeyHandle:            "bad key handle",
	StatusInvalidP1P2:             "invalid p1 or p2",
	StatusInstructionNotSupported: "instruction not supported",
	StatusCLANotSupported:         "application does not seem to be open",
	StatusAppNotOpen:              "application does not seem to be open",
	StatusUnknownError:            "unknown error",
	StatusSignVerifyError:         "sign or verify error",
}

// StatusText returns a short description of a status word.
func StatusText(code uint16) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return fmt.Sprintf("unknown status 0x%04x", code)
}
