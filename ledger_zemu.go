//go:build ledger_zemu
// +build ledger_zemu

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	EmulatorURLEnv     = "LEDGER_EMULATOR_URL"
	DefaultEmulatorURL = "http://127.0.0.1:5000"
)

// LedgerAdminZemu talks to a single Speculos emulator through its REST API.
type LedgerAdminZemu struct {
	url    string
	client *http.Client
}

type LedgerDeviceZemu struct {
	url    string
	client *http.Client
	closed bool
}

func NewLedgerAdmin(opts ...AdminOption) LedgerAdmin {
	o := newAdminOptions(opts)
	url := o.emulatorURL
	if url == "" {
		url = os.Getenv(EmulatorURLEnv)
	}
	if url == "" {
		url = DefaultEmulatorURL
	}
	return &LedgerAdminZemu{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: o.timeout},
	}
}

// reachable probes the emulator without sending a command.
func (admin *LedgerAdminZemu) reachable() bool {
	probe := &http.Client{Timeout: 5 * time.Second}
	resp, err := probe.Get(admin.url + "/")
	if err != nil {
		log().Debugw("emulator not reachable", "url", admin.url, "error", err)
		return false
	}
	resp.Body.Close()
	return true
}

func (admin *LedgerAdminZemu) CountDevices() int {
	if admin.reachable() {
		return 1
	}
	return 0
}

func (admin *LedgerAdminZemu) ListDevices() ([]DeviceInfo, error) {
	if !admin.reachable() {
		return nil, nil
	}
	return []DeviceInfo{{Path: admin.url, Product: "Ledger Emulator"}}, nil
}

func (admin *LedgerAdminZemu) Connect(deviceIndex int) (LedgerDevice, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("%w: index %d", ErrDeviceNotFound, deviceIndex)
	}
	return admin.Open(admin.url)
}

func (admin *LedgerAdminZemu) Open(path string) (LedgerDevice, error) {
	if path != admin.url {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	}
	return &LedgerDeviceZemu{url: admin.url, client: admin.client}, nil
}

type zemuMessage struct {
	Data string `json:"data"`
}

func (ledger *LedgerDeviceZemu) Exchange(command []byte) ([]byte, error) {
	if ledger.closed {
		return nil, errors.New("ledger: emulator device closed")
	}
	if len(command) < 5 {
		return nil, errors.New("ledger: command shorter than 5 bytes")
	}
	log().Debugf("[ZEMU] => %x", command)

	body, err := json.Marshal(zemuMessage{Data: hex.EncodeToString(command)})
	if err != nil {
		return nil, err
	}
	resp, err := ledger.client.Post(ledger.url+"/apdu", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ledger: emulator: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ledger: emulator: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out zemuMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ledger: emulator response: %w", err)
	}
	response, err := hex.DecodeString(out.Data)
	if err != nil {
		return nil, fmt.Errorf("ledger: emulator response: %w", err)
	}
	if len(response) < 2 {
		return nil, fmt.Errorf("ledger: response too short: %d bytes", len(response))
	}
	log().Debugf("[ZEMU] <= %x", response)
	return response, nil
}

func (ledger *LedgerDeviceZemu) Close() error {
	ledger.closed = true
	return nil
}
