// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package types

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/ledger-concordium-go/wire"
)

// SchemeEd25519 is the only verification key scheme accepted by the chain.
const SchemeEd25519 uint8 = 0

// VerifyKey is a signature scheme tag followed by a 32 byte public key.
type VerifyKey struct {
	Scheme uint8   `json:"schemeId"`
	Key    Bytes32 `json:"verifyKey"`
}

// VerifyKeySize is the serialized size of a VerifyKey.
const VerifyKeySize = 33

func (k VerifyKey) Serialize() []byte {
	return wire.NewWriter(VerifyKeySize).Byte(k.Scheme).Write(k.Key[:]).Bytes()
}

// IndexedKey is a credential key with its position in the key map.
type IndexedKey struct {
	Index uint8 `json:"index"`
	VerifyKey
}

func (k IndexedKey) Serialize() []byte {
	return wire.Concat([]byte{k.Index}, k.VerifyKey.Serialize())
}

// CredentialPublicKeys holds the keys of a credential, ordered by index.
type CredentialPublicKeys struct {
	Keys      []IndexedKey `json:"keys"`
	Threshold uint8        `json:"threshold"`
}

// ArData is the share of the IdCredPub encrypted for one anonymity revoker.
type ArData struct {
	ArIdentity        uint32  `json:"arIdentity"`
	EncIDCredPubShare Bytes96 `json:"encIdCredPubShare"`
}

type YearMonth struct {
	Year  uint16 `json:"year"`
	Month uint8  `json:"month"`
}

func (y YearMonth) Serialize() []byte {
	return wire.NewWriter(3).Uint16(y.Year).Byte(y.Month).Bytes()
}

// Attribute is a revealed identity attribute.
type Attribute struct {
	Tag   uint8  `json:"tag"`
	Value string `json:"value"`
}

type Policy struct {
	ValidTo            YearMonth   `json:"validTo"`
	CreatedAt          YearMonth   `json:"createdAt"`
	RevealedAttributes []Attribute `json:"revealedAttributes"`
}

// CredentialDeploymentInfo is an unsigned credential. Keys, anonymity
// revoker data and attributes must be given in ascending key order.
type CredentialDeploymentInfo struct {
	PublicKeys          CredentialPublicKeys `json:"credentialPublicKeys"`
	CredID              Bytes48              `json:"credId"`
	IPIdentity          uint32               `json:"ipIdentity"`
	RevocationThreshold uint8                `json:"revocationThreshold"`
	ArData              []ArData             `json:"arData"`
	Policy              Policy               `json:"policy"`
	Proofs              HexBytes             `json:"proofs"`
}

var ErrCredentialTooLarge = errors.New("types: credential exceeds encodable size")

// Validate checks every count fits the width of its prefix.
func (c CredentialDeploymentInfo) Validate() error {
	switch {
	case len(c.PublicKeys.Keys) > math.MaxUint8:
		return fmt.Errorf("%w: %d keys", ErrCredentialTooLarge, len(c.PublicKeys.Keys))
	case len(c.ArData) > math.MaxUint16:
		return fmt.Errorf("%w: %d anonymity revokers", ErrCredentialTooLarge, len(c.ArData))
	case len(c.Policy.RevealedAttributes) > math.MaxUint16:
		return fmt.Errorf("%w: %d attributes", ErrCredentialTooLarge, len(c.Policy.RevealedAttributes))
	case uint64(len(c.Proofs)) > math.MaxUint32:
		return fmt.Errorf("%w: %d proof bytes", ErrCredentialTooLarge, len(c.Proofs))
	}
	for _, attr := range c.Policy.RevealedAttributes {
		if len(attr.Value) > math.MaxUint8 {
			return fmt.Errorf("%w: attribute %d has %d bytes", ErrCredentialTooLarge, attr.Tag, len(attr.Value))
		}
	}
	return nil
}

func (c CredentialDeploymentInfo) Serialize() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w := wire.NewWriter(256 + len(c.Proofs)).Byte(byte(len(c.PublicKeys.Keys)))
	for _, key := range c.PublicKeys.Keys {
		w.Write(key.Serialize())
	}
	w.Byte(c.PublicKeys.Threshold).
		Write(c.CredID[:]).
		Uint32(c.IPIdentity).
		Byte(c.RevocationThreshold).
		Uint16(uint16(len(c.ArData)))
	for _, ar := range c.ArData {
		w.Uint32(ar.ArIdentity).Write(ar.EncIDCredPubShare[:])
	}
	w.Write(c.Policy.ValidTo.Serialize()).
		Write(c.Policy.CreatedAt.Serialize()).
		Uint16(uint16(len(c.Policy.RevealedAttributes)))
	for _, attr := range c.Policy.RevealedAttributes {
		w.Byte(attr.Tag).Byte(byte(len(attr.Value))).Write([]byte(attr.Value))
	}
	w.Uint32(uint32(len(c.Proofs))).Write(c.Proofs)
	return w.Bytes(), nil
}

// CredentialDeployment asks the device to sign a credential either for a new
// account expiring at NewAccountExpiry, or for ExistingAccount when set.
type CredentialDeployment struct {
	Credential       CredentialDeploymentInfo `json:"credential"`
	NewAccountExpiry uint64                   `json:"expiry,omitempty"`
	ExistingAccount  *wire.Address            `json:"address,omitempty"`
}

func (CredentialDeployment) isTransaction() {}

// PublicInfoForIP is the information an identity provider receives when an
// identity is requested.
type PublicInfoForIP struct {
	IDCredPub  Bytes48              `json:"idCredPub"`
	RegID      Bytes48              `json:"regId"`
	PublicKeys CredentialPublicKeys `json:"publicKeys"`
}

func (PublicInfoForIP) isTransaction() {}
