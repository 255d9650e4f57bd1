// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger-concordium-go/session"
)

type fakeAdmin struct {
	devices []DeviceInfo
	opened  []string
	err     error
}

func (a *fakeAdmin) CountDevices() int { return len(a.devices) }

func (a *fakeAdmin) ListDevices() ([]DeviceInfo, error) { return a.devices, a.err }

func (a *fakeAdmin) Connect(i int) (LedgerDevice, error) { return a.Open(a.devices[i].Path) }

func (a *fakeAdmin) Open(path string) (LedgerDevice, error) {
	a.opened = append(a.opened, path)
	return nil, ErrDeviceNotFound
}

func TestProductName(t *testing.T) {
	tests := map[uint16]string{
		0x1011: "Nano S",
		0x4011: "Nano X",
		0x5011: "Nano S Plus",
		0x6011: "Stax",
		0x7015: "Flex",
		0x0001: "Nano S",
		0x0004: "Nano X",
		0x9999: "Ledger (0x9999)",
	}
	for id, name := range tests {
		assert.Equal(t, name, ProductName(id), "0x%04x", id)
	}
}

func TestAdminOptions(t *testing.T) {
	o := newAdminOptions(nil)
	assert.Equal(t, DefaultExchangeTimeout, o.timeout)

	o = newAdminOptions([]AdminOption{WithTimeout(time.Second), WithEmulatorURL("http://speculos:5000")})
	assert.Equal(t, time.Second, o.timeout)
	assert.Equal(t, "http://speculos:5000", o.emulatorURL)

	o = newAdminOptions([]AdminOption{WithTimeout(-1)})
	assert.Equal(t, DefaultExchangeTimeout, o.timeout)
}

func TestSource(t *testing.T) {
	admin := &fakeAdmin{devices: []DeviceInfo{
		{Path: "/dev/hidraw3", Product: "Nano X", ProductID: 0x4011},
	}}
	source := NewSource(admin)

	devices, err := source.Devices()
	require.NoError(t, err)
	assert.Equal(t, []session.DeviceInfo{{Path: "/dev/hidraw3", Product: "Nano X"}}, devices)

	_, err = source.Open(devices[0])
	require.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Equal(t, []string{"/dev/hidraw3"}, admin.opened)

	admin.err = errors.New("hid unavailable")
	_, err = source.Devices()
	require.Error(t, err)
}
