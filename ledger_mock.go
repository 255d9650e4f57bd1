//go:build ledger_mock
// +build ledger_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	MockPath    = "mock"
	MockApp     = "Concordium"
	MockVersion = "4.1.0"
)

var mockStatusOK = []byte{0x90, 0x00}

type LedgerAdminMock struct{}

// LedgerDeviceMock answers like a device with the Concordium application
// open: the identity query returns MockApp and MockVersion, public key
// queries a fixed key and everything else a fixed signature.
type LedgerDeviceMock struct {
	Commands [][]byte
}

func NewLedgerAdmin(...AdminOption) LedgerAdmin {
	return &LedgerAdminMock{}
}

func (admin *LedgerAdminMock) CountDevices() int {
	return 1
}

func (admin *LedgerAdminMock) ListDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{{Path: MockPath, Product: "Nano S Plus (mock)", ProductID: 0x5011}}, nil
}

func (admin *LedgerAdminMock) Connect(deviceIndex int) (LedgerDevice, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("%w: index %d", ErrDeviceNotFound, deviceIndex)
	}
	return &LedgerDeviceMock{}, nil
}

func (admin *LedgerAdminMock) Open(path string) (LedgerDevice, error) {
	if path != MockPath {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	}
	return &LedgerDeviceMock{}, nil
}

// MockPublicKey and MockSignature are the fixed answers of the mock device.
var (
	MockPublicKey = bytes.Repeat([]byte{0x3c}, 32)
	MockSignature = bytes.Repeat([]byte{0x5a}, 64)
)

func (ledger *LedgerDeviceMock) Exchange(command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("ledger: command shorter than 5 bytes")
	}
	ledger.Commands = append(ledger.Commands, append([]byte(nil), command...))
	log().Debugf("[MOCK] => %x", command)

	cla, ins, p2 := command[0], command[1], command[3]
	var response []byte
	switch {
	case cla == 0xb0 && ins == 0x01:
		response = append(response, 0x01, byte(len(MockApp)))
		response = append(response, MockApp...)
		response = append(response, byte(len(MockVersion)))
		response = append(response, MockVersion...)
		response = append(response, 0x01, 0x00)
	case cla == 0xe0 && ins == 0x01:
		response = append(response, MockPublicKey...)
		if p2 == 0x01 {
			response = append(response, MockSignature...)
		}
	case cla == 0xe0 && ins == 0x05:
		response = append(response, bytes.Repeat([]byte{0x11}, 64)...)
	case cla == 0xe0 && ins == 0x00:
	default:
		response = append(response, MockSignature...)
	}
	return append(response, mockStatusOK...), nil
}

func (ledger *LedgerDeviceMock) Close() error {
	return nil
}
