// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package types

import (
	"fmt"
	"math"

	"github.com/luxfi/ledger-concordium-go/wire"
)

// Transaction is anything the device can be asked to sign: an account
// transaction, a chain update instruction, a credential deployment or the
// public information sent to an identity provider.
type Transaction interface {
	isTransaction()
}

// AccountHeaderSize is the serialized size of an AccountHeader.
const AccountHeaderSize = 60

// AccountHeader is the header shared by every account transaction.
type AccountHeader struct {
	Sender wire.Address `json:"sender"`
	Nonce  uint64       `json:"nonce"`
	Energy uint64       `json:"energyAmount"`
	Expiry uint64       `json:"expiry"`
}

// Serialize encodes the header for a payload of payloadSize bytes.
func (h AccountHeader) Serialize(payloadSize uint32) []byte {
	return wire.NewWriter(AccountHeaderSize).
		Write(h.Sender[:]).
		Uint64(h.Nonce).
		Uint64(h.Energy).
		Uint32(payloadSize).
		Uint64(h.Expiry).
		Bytes()
}

// AccountPayload is the kind specific part of an account transaction.
type AccountPayload interface {
	Kind() TransactionKind
	// Serialize returns the payload including its leading kind byte.
	Serialize() ([]byte, error)
	isAccountPayload()
}

type AccountTransaction struct {
	Header  AccountHeader
	Payload AccountPayload
}

func (AccountTransaction) isTransaction() {}

// SerializeHeader encodes the header with the payload size filled in.
func (t AccountTransaction) SerializeHeader() ([]byte, error) {
	payload, err := t.Payload.Serialize()
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("types: payload of %d bytes is too large", len(payload))
	}
	return t.Header.Serialize(uint32(len(payload))), nil
}
