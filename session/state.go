// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package session

import (
	"encoding/json"
	"time"

	"github.com/luxfi/ledger-concordium-go/protocol"
)

// State classifies the attached device.
type State int

const (
	Disconnected State = iota
	// AwaitingApplication means a device is attached but another application,
	// or the dashboard, is open.
	AwaitingApplication
	// Outdated means the Concordium application is older than required.
	Outdated
	Connected
	Error
)

var stateNames = [...]string{
	Disconnected:        "disconnected",
	AwaitingApplication: "awaiting_application",
	Outdated:            "outdated",
	Connected:           "connected",
	Error:               "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DeviceInfo describes an attached device.
type DeviceInfo struct {
	Path    string `json:"path"`
	Product string `json:"product"`
}

// Status is a snapshot published on every transition.
type Status struct {
	State   State             `json:"state"`
	Device  *DeviceInfo       `json:"device,omitempty"`
	App     *protocol.AppInfo `json:"app,omitempty"`
	Session string            `json:"session,omitempty"`
	Err     error             `json:"-"`
	At      time.Time         `json:"at"`
}

// MarshalJSON adds the error text, which error values do not carry by
// themselves.
func (s Status) MarshalJSON() ([]byte, error) {
	type plain Status
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(s)}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}
