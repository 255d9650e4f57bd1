// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Purpose and CoinType prefix every path sent to the device.
	Purpose  uint32 = 1105
	CoinType uint32 = 0
)

// Subtree identifiers, the first caller-supplied path component.
const (
	SubtreeAccount    uint32 = 0
	SubtreeGovernance uint32 = 1
	SubtreePairing    uint32 = 2
)

// Governance key purposes, the second component of a governance path.
const (
	GovernanceRoot   uint32 = 0
	GovernanceLevel1 uint32 = 1
	GovernanceLevel2 uint32 = 2
)

// accountCredentialSubtree selects the credential signing keys below an identity.
const accountCredentialSubtree uint32 = 2

const maxPathLength = 253

var ErrInvalidPath = errors.New("wire: invalid derivation path")

// EncodePath serializes a derivation path as
//
//	len(indices)+2 | purpose | coin type | indices...
//
// where every component is a big-endian uint32. The purpose and coin type
// are injected here and must not be part of indices.
func EncodePath(indices []uint32) ([]byte, error) {
	if len(indices) > maxPathLength {
		return nil, fmt.Errorf("%w: %d components", ErrInvalidPath, len(indices))
	}
	if len(indices) > 0 {
		switch indices[0] {
		case SubtreeAccount, SubtreePairing:
		case SubtreeGovernance:
			if len(indices) != 3 {
				return nil, fmt.Errorf("%w: governance path needs 3 components, got %d", ErrInvalidPath, len(indices))
			}
		default:
			return nil, fmt.Errorf("%w: unknown subtree %d", ErrInvalidPath, indices[0])
		}
	}

	out := make([]byte, 1, 1+4*(len(indices)+2))
	out[0] = byte(len(indices) + 2)
	out = binary.BigEndian.AppendUint32(out, Purpose)
	out = binary.BigEndian.AppendUint32(out, CoinType)
	for _, index := range indices {
		out = binary.BigEndian.AppendUint32(out, index)
	}
	return out, nil
}

// AccountPath returns the path of the signing key for a credential of an identity.
func AccountPath(identity, credential, signatureIndex uint32) []uint32 {
	return []uint32{SubtreeAccount, identity, accountCredentialSubtree, credential, signatureIndex}
}

// GovernancePath returns the path of a governance key.
func GovernancePath(purpose, keyIndex uint32) []uint32 {
	return []uint32{SubtreeGovernance, purpose, keyIndex}
}

// PairingPath returns the path of the key used to pair the device with a wallet.
func PairingPath() []uint32 {
	return []uint32{SubtreePairing}
}

// ParsePath reads a path written as "0/3/2/1/0". A leading "m/" and the
// "1105/0" prefix are accepted and dropped.
func ParsePath(s string) ([]uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "m/")
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	parts := strings.Split(s, "/")
	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q", ErrInvalidPath, part)
		}
		indices = append(indices, uint32(v))
	}
	if len(indices) >= 2 && indices[0] == Purpose && indices[1] == CoinType {
		indices = indices[2:]
	}
	if _, err := EncodePath(indices); err != nil {
		return nil, err
	}
	return indices, nil
}
