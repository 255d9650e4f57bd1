// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package protocol implements the multi-frame exchanges of the Concordium
// Ledger application: device queries and one signing flow per transaction
// and update kind.
package protocol

import (
	"errors"

	"go.uber.org/zap"

	"github.com/luxfi/ledger-concordium-go/transport"
)

// CLA is the class byte of every Concordium instruction.
const CLA byte = 0xe0

// Instruction codes understood by the Concordium application.
const (
	InsVerifyAddress                   byte = 0x00
	InsGetPublicKey                    byte = 0x01
	InsSignTransfer                    byte = 0x02
	InsSignTransferWithSchedule        byte = 0x03
	InsSignCredentialDeployment        byte = 0x04
	InsExportPrivateKeySeed            byte = 0x05
	InsSignUpdateExchangeRate          byte = 0x06
	InsSignEncryptedTransfer           byte = 0x10
	InsSignTransferToEncrypted         byte = 0x11
	InsSignTransferToPublic            byte = 0x12
	InsSignAddBaker                    byte = 0x13
	InsSignConfigureDelegation         byte = 0x17
	InsSignConfigureBaker              byte = 0x18
	InsSignPublicInfoForIP             byte = 0x20
	InsSignUpdateProtocol              byte = 0x21
	InsSignUpdateTransactionFeeDist    byte = 0x22
	InsSignUpdateGASRewards            byte = 0x23
	InsSignUpdateFoundationAccount     byte = 0x24
	InsSignUpdateMintDistribution      byte = 0x25
	InsSignUpdateElectionDifficulty    byte = 0x26
	InsSignUpdateBakerStakeThreshold   byte = 0x27
	InsSignUpdateKeysWithRoot          byte = 0x28
	InsSignUpdateKeysWithLevel1        byte = 0x29
	InsSignUpdateLevel2KeysWithRoot    byte = 0x2a
	InsSignUpdateLevel2KeysWithLevel1  byte = 0x2b
	InsSignAddAnonymityRevoker         byte = 0x2c
	InsSignAddIdentityProvider         byte = 0x2d
	InsSignUpdateCredentials           byte = 0x31
	InsSignTransferWithMemo            byte = 0x32
	InsSignEncryptedTransferWithMemo   byte = 0x33
	InsSignTransferWithScheduleAndMemo byte = 0x34
	InsSignRegisterData                byte = 0x35
	InsSignUpdateCooldown              byte = 0x40
	InsSignUpdatePoolParameters        byte = 0x41
	InsSignUpdateTimeParameters        byte = 0x42
	InsSignUpdateTimeoutParameters     byte = 0x43
	InsSignUpdateMinBlockTime          byte = 0x44
	InsSignUpdateBlockEnergyLimit      byte = 0x45
	InsSignUpdateFinalizationCommittee byte = 0x46
	InsSignUpdateValidatorScore        byte = 0x47
	InsSignCreatePLT                   byte = 0x48
)

// The dashboard answers the application identity query on its own class.
const (
	CLAAppInfo byte = 0xb0
	InsAppInfo byte = 0x01
)

var (
	ErrUnsupportedTransactionKind = errors.New("protocol: unsupported transaction kind")
	ErrMalformedResponse          = errors.New("protocol: malformed device response")
	ErrMissingProof               = errors.New("protocol: transaction carries no proof")
)

// StatusFunc receives short human readable progress messages, for example
// to tell the user to look at the device.
type StatusFunc func(status string)

// Protocol drives the frame sequences over one Transport. Calls must not
// overlap; the device client serializes them.
type Protocol struct {
	transport transport.Transport
	logger    *zap.Logger
	status    StatusFunc
}

type Option func(*Protocol)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Protocol) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStatus installs a progress callback.
func WithStatus(fn StatusFunc) Option {
	return func(p *Protocol) { p.status = fn }
}

func New(t transport.Transport, opts ...Option) *Protocol {
	p := &Protocol{transport: t, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Protocol) report(status string) {
	if p.status != nil {
		p.status(status)
	}
}
