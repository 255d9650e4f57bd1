//go:build !ledger_mock && !ledger_zemu
// +build !ledger_mock,!ledger_zemu

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/hid"
)

const (
	VendorLedger         = 0x2c97
	UsagePageLedgerNanoS = 0xffa0
)

var (
	ErrDeviceClosed = errors.New("ledger: device closed")
	ErrTimeout      = errors.New("ledger: timeout reading from device")
)

type LedgerAdminHID struct {
	timeout time.Duration
}

// hidPort is the packet interface of an opened HID device.
type hidPort interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

type LedgerDeviceHID struct {
	device  hidPort
	timeout time.Duration

	// mu serializes exchanges.
	mu          sync.Mutex
	readOnce    sync.Once
	readChannel chan []byte
	done        chan struct{}
	closeOnce   sync.Once
}

func NewLedgerAdmin(opts ...AdminOption) LedgerAdmin {
	o := newAdminOptions(opts)
	return &LedgerAdminHID{timeout: o.timeout}
}

// isLedgerDevice selects the APDU interface of a Ledger. Some platforms
// report an empty usage page, so interface 0 of a known product also counts.
func isLedgerDevice(d hid.DeviceInfo) bool {
	if d.VendorID != VendorLedger {
		return false
	}
	if d.UsagePage == UsagePageLedgerNanoS {
		return true
	}
	_, known := products[uint8(d.ProductID>>8)]
	return known && d.Interface == 0
}

func (admin *LedgerAdminHID) enumerate() []hid.DeviceInfo {
	var devices []hid.DeviceInfo
	for _, d := range hid.Enumerate(VendorLedger, 0) {
		if isLedgerDevice(d) {
			devices = append(devices, d)
		}
	}
	if len(devices) == 0 {
		log().Debug("no devices: Ledger locked, or another program holds the device")
	}
	return devices
}

func logDeviceInfo(d hid.DeviceInfo) {
	log().Debugw("ledger device",
		"path", d.Path,
		"vendorID", fmt.Sprintf("%04x", d.VendorID),
		"productID", fmt.Sprintf("%04x", d.ProductID),
		"release", fmt.Sprintf("%x", d.Release),
		"serial", d.Serial,
		"manufacturer", d.Manufacturer,
		"product", d.Product,
		"usagePage", fmt.Sprintf("%x", d.UsagePage),
		"interface", d.Interface,
	)
}

func (admin *LedgerAdminHID) CountDevices() int {
	return len(admin.enumerate())
}

func (admin *LedgerAdminHID) ListDevices() ([]DeviceInfo, error) {
	devices := admin.enumerate()
	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		logDeviceInfo(d)
		out = append(out, DeviceInfo{
			Path:      d.Path,
			Product:   ProductName(d.ProductID),
			ProductID: d.ProductID,
			Serial:    d.Serial,
		})
	}
	return out, nil
}

func (admin *LedgerAdminHID) Connect(deviceIndex int) (LedgerDevice, error) {
	devices := admin.enumerate()
	if deviceIndex < 0 || deviceIndex >= len(devices) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrDeviceNotFound, deviceIndex, len(devices))
	}
	return admin.open(devices[deviceIndex])
}

func (admin *LedgerAdminHID) Open(path string) (LedgerDevice, error) {
	for _, d := range admin.enumerate() {
		if d.Path == path {
			return admin.open(d)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
}

func (admin *LedgerAdminHID) open(info hid.DeviceInfo) (LedgerDevice, error) {
	device, err := info.Open()
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", info.Path, err)
	}
	return newLedgerDeviceHID(device, admin.timeout), nil
}

func newLedgerDeviceHID(device hidPort, timeout time.Duration) *LedgerDeviceHID {
	return &LedgerDeviceHID{
		device:      device,
		timeout:     timeout,
		readChannel: make(chan []byte),
		done:        make(chan struct{}),
	}
}

func (ledger *LedgerDeviceHID) write(buffer []byte) error {
	for written := 0; written < len(buffer); {
		n, err := ledger.device.Write(buffer[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

func (ledger *LedgerDeviceHID) read() <-chan []byte {
	ledger.readOnce.Do(func() {
		go ledger.readLoop()
	})
	return ledger.readChannel
}

// readLoop forwards packets until the device fails or is closed.
func (ledger *LedgerDeviceHID) readLoop() {
	defer close(ledger.readChannel)
	for {
		buffer := make([]byte, PacketSize)
		n, err := ledger.device.Read(buffer)
		if err != nil {
			return
		}
		select {
		case ledger.readChannel <- buffer[:n]:
		case <-ledger.done:
			return
		}
	}
}

func (ledger *LedgerDeviceHID) Exchange(command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("ledger: command shorter than 5 bytes")
	}
	select {
	case <-ledger.done:
		return nil, ErrDeviceClosed
	default:
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	log().Debugf("[HID] => %x", command)
	packets, err := WrapCommandAPDU(Channel, command, PacketSize)
	if err != nil {
		return nil, err
	}
	for _, packet := range packets {
		if err := ledger.write(packet); err != nil {
			return nil, fmt.Errorf("ledger: write: %w", err)
		}
	}

	response, err := ledger.response()
	if err != nil {
		// A late or out of sequence response would be read as the answer to
		// the next command, so the device cannot be used any more.
		if !errors.Is(err, ErrDeviceClosed) {
			if cerr := ledger.Close(); cerr != nil {
				log().Debugw("closing device", "error", cerr)
			}
		}
		return nil, err
	}
	log().Debugf("[HID] <= %x", response)
	return response, nil
}

func (ledger *LedgerDeviceHID) response() ([]byte, error) {
	packets := ledger.read()
	assembler := NewResponseAssembler(Channel)
	timer := time.NewTimer(ledger.timeout)
	defer timer.Stop()

	for {
		select {
		case packet, ok := <-packets:
			if !ok {
				return nil, ErrDeviceClosed
			}
			done, err := assembler.Add(packet)
			if err != nil {
				return nil, err
			}
			if done {
				response := assembler.Response()
				if len(response) < 2 {
					return nil, fmt.Errorf("ledger: response too short: %d bytes", len(response))
				}
				return response, nil
			}
		case <-ledger.done:
			return nil, ErrDeviceClosed
		case <-timer.C:
			return nil, ErrTimeout
		}
	}
}

func (ledger *LedgerDeviceHID) Close() error {
	var err error
	ledger.closeOnce.Do(func() {
		close(ledger.done)
		err = ledger.device.Close()
	})
	return err
}
