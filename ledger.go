// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package ledger_concordium finds Ledger devices and exchanges raw command
// frames with them. The backend is chosen at build time: USB HID by default,
// a canned mock with the ledger_mock tag and the Speculos emulator with the
// ledger_zemu tag.
package ledger_concordium

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ledger-concordium-go/session"
	"github.com/luxfi/ledger-concordium-go/transport"
)

// DefaultExchangeTimeout bounds one command/response round trip. It covers
// the time the user takes to review a transaction on the device.
const DefaultExchangeTimeout = 2 * time.Minute

var ErrDeviceNotFound = errors.New("ledger: device not found")

// LedgerAdmin finds attached devices and opens them.
type LedgerAdmin interface {
	CountDevices() int
	ListDevices() ([]DeviceInfo, error)
	Connect(deviceIndex int) (LedgerDevice, error)
	Open(path string) (LedgerDevice, error)
}

// LedgerDevice exchanges one command frame for one response frame, status
// word included.
type LedgerDevice interface {
	Exchange(command []byte) ([]byte, error)
	Close() error
}

// DeviceInfo describes an attached device.
type DeviceInfo struct {
	Path      string `json:"path"`
	Product   string `json:"product"`
	ProductID uint16 `json:"productId"`
	Serial    string `json:"serial,omitempty"`
}

type adminOptions struct {
	timeout     time.Duration
	emulatorURL string
}

type AdminOption func(*adminOptions)

// WithTimeout bounds a single exchange with the device.
func WithTimeout(d time.Duration) AdminOption {
	return func(o *adminOptions) { o.timeout = d }
}

// WithEmulatorURL points the emulator backend at a Speculos instance. Other
// backends ignore it.
func WithEmulatorURL(url string) AdminOption {
	return func(o *adminOptions) { o.emulatorURL = url }
}

func newAdminOptions(opts []AdminOption) adminOptions {
	o := adminOptions{timeout: DefaultExchangeTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultExchangeTimeout
	}
	return o
}

// products maps the high byte of the USB product id to a model name.
// See https://github.com/LedgerHQ/ledger-live/blob/develop/libs/ledgerjs/packages/devices/src/index.ts
var products = map[uint8]string{
	0x10: "Nano S",
	0x40: "Nano X",
	0x50: "Nano S Plus",
	0x60: "Stax",
	0x70: "Flex",
}

// legacyProducts are the ids reported by firmware older than the
// interface-encoding scheme.
var legacyProducts = map[uint16]string{
	0x0001: "Nano S",
	0x0004: "Nano X",
	0x0005: "Nano S Plus",
}

// ProductName names the device model of a USB product id.
func ProductName(productID uint16) string {
	if name, ok := legacyProducts[productID]; ok {
		return name
	}
	if name, ok := products[uint8(productID>>8)]; ok {
		return name
	}
	return fmt.Sprintf("Ledger (0x%04x)", productID)
}

// Source adapts a LedgerAdmin to the session manager.
type Source struct {
	admin LedgerAdmin
}

var _ session.Source = (*Source)(nil)

func NewSource(admin LedgerAdmin) *Source {
	return &Source{admin: admin}
}

func (s *Source) Devices() ([]session.DeviceInfo, error) {
	devices, err := s.admin.ListDevices()
	if err != nil {
		return nil, err
	}
	out := make([]session.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, session.DeviceInfo{Path: d.Path, Product: d.Product})
	}
	return out, nil
}

func (s *Source) Open(info session.DeviceInfo) (transport.Device, error) {
	return s.admin.Open(info.Path)
}
