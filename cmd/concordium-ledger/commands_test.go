// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	ledger "github.com/luxfi/ledger-concordium-go"
	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/config"
	"github.com/luxfi/ledger-concordium-go/session"
)

const address = "4EudPR463TiE2yBBJNLFsLHrrhCRB58K4nWjv9Vf6LyphDzYyf"

type fakeDevice struct {
	app      string
	version  string
	commands [][]byte
}

func (d *fakeDevice) Exchange(command []byte) ([]byte, error) {
	d.commands = append(d.commands, command)
	var out []byte
	switch {
	case command[0] == 0xb0:
		out = append(out, 0x01, byte(len(d.app)))
		out = append(out, d.app...)
		out = append(out, byte(len(d.version)))
		out = append(out, d.version...)
	case command[1] == 0x01:
		out = bytes.Repeat([]byte{0x3c}, 32)
	default:
		out = bytes.Repeat([]byte{0x5a}, 64)
	}
	return append(out, 0x90, 0x00), nil
}

func (d *fakeDevice) Close() error { return nil }

type fakeAdmin struct {
	device *fakeDevice
}

func (a *fakeAdmin) CountDevices() int { return 1 }

func (a *fakeAdmin) ListDevices() ([]ledger.DeviceInfo, error) {
	return []ledger.DeviceInfo{{Path: "hid-7", Product: "Nano X", ProductID: 0x4011}}, nil
}

func (a *fakeAdmin) Connect(i int) (ledger.LedgerDevice, error) {
	if i != 0 {
		return nil, ledger.ErrDeviceNotFound
	}
	return a.device, nil
}

func (a *fakeAdmin) Open(path string) (ledger.LedgerDevice, error) { return a.Connect(0) }

func withDevice(t *testing.T, app, version string) *fakeDevice {
	t.Helper()
	device := &fakeDevice{app: app, version: version}
	previous := newAdmin
	newAdmin = func(config.Config) ledger.LedgerAdmin { return &fakeAdmin{device: device} }
	t.Cleanup(func() { newAdmin = previous })
	return device
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), append([]string{"concordium-ledger", "--log-level", "error"}, args...))
	return buf.String(), err
}

func TestAppStructure(t *testing.T) {
	app := newApp()
	require.Equal(t, "concordium-ledger", app.Name)
	require.Len(t, app.Flags, 2)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"devices", "app", "public-key", "sign", "watch", "serve"}, names)
}

func TestCommandFlags(t *testing.T) {
	require.Len(t, DevicesCommand().Flags, 1)
	require.Len(t, PublicKeyCommand().Flags, 3)
	require.Len(t, SignCommand().Flags, 3)
	require.Len(t, ServeCommand().Flags, 1)

	var required []string
	for _, flag := range SignCommand().Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Required {
			required = append(required, f.Name)
		}
	}
	assert.Equal(t, []string{"path"}, required)
}

func TestDevicesCommand(t *testing.T) {
	withDevice(t, "Concordium", "4.1.0")

	out, err := run(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "Nano X\thid-7")

	out, err = run(t, "devices", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"productId": 16401`)
}

func TestAppCommand(t *testing.T) {
	withDevice(t, "Concordium", "4.1.0")
	out, err := run(t, "app")
	require.NoError(t, err)
	assert.Equal(t, "Concordium 4.1.0\n", out)
}

func TestPublicKeyCommand(t *testing.T) {
	device := withDevice(t, "Concordium", "4.1.0")
	out, err := run(t, "public-key", "--path", "0/0/2/0/0", "--silent")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("3c", 32)+"\n", out)

	last := device.commands[len(device.commands)-1]
	assert.Equal(t, []byte{0xe0, 0x01, 0x01, 0x00}, last[:4])

	_, err = run(t, "public-key", "--path", "1/2")
	require.Error(t, err)
}

func TestSignCommand(t *testing.T) {
	device := withDevice(t, "Concordium", "4.1.0")
	tx := fmt.Sprintf(`{"type":"SimpleTransfer","header":{"sender":%q,"nonce":1,"energyAmount":501,"expiry":1700000000},"payload":{"toAddress":%q,"amount":10}}`,
		address, address)

	out, err := run(t, "sign", "--path", "0/0/2/0/0", "--tx", tx)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("5a", 64)+"\n", out)
	require.Len(t, device.commands, 2)
	assert.Equal(t, byte(0x02), device.commands[1][1])
}

func TestSignCommandErrors(t *testing.T) {
	withDevice(t, "BOLOS", "1.6.0")

	_, err := run(t, "sign", "--path", "0/0/2/0/0")
	require.ErrorContains(t, err, "either --file or --tx")

	_, err = run(t, "sign", "--path", "0/0/2/0/0", "--tx", `{"type":"Teleport","payload":{}}`)
	require.Error(t, err)

	tx := fmt.Sprintf(`{"type":"TransferToEncrypted","header":{"sender":%q},"payload":{"amount":1}}`, address)
	_, err = run(t, "sign", "--path", "0/0/2/0/0", "--tx", tx)
	require.ErrorIs(t, err, client.ErrApplicationMismatch)
}

func TestSignCommandOutdated(t *testing.T) {
	withDevice(t, "Concordium", "1.0.0")
	t.Setenv("CONCORDIUM_LEDGER_MIN_VERSION", "2.0.0")

	tx := fmt.Sprintf(`{"type":"TransferToEncrypted","header":{"sender":%q},"payload":{"amount":1}}`, address)
	_, err := run(t, "sign", "--path", "0/0/2/0/0", "--tx", tx)
	require.ErrorIs(t, err, session.ErrApplicationOutdated)
}

func TestPrintStatus(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, session.Status{
		State:  session.AwaitingApplication,
		Device: &session.DeviceInfo{Product: "Stax"},
		Err:    errors.New("dashboard open"),
		At:     at,
	}, false))
	assert.Equal(t, "2025-03-01T12:00:00Z awaiting_application Stax: dashboard open\n", buf.String())

	buf.Reset()
	require.NoError(t, printStatus(&buf, session.Status{State: session.Connected, At: at}, true))
	assert.Contains(t, buf.String(), `"state":"connected"`)
}
