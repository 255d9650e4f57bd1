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

// KeySet names the governance key set replaced by a key update.
type KeySet uint8

const (
	KeySetRoot KeySet = iota
	KeySetLevel1
	KeySetLevel2V0
	KeySetLevel2V1
)

var (
	ErrInvalidKeyUpdate     = errors.New("types: key set cannot be updated by this update type")
	ErrAccessStructureCount = errors.New("types: wrong number of access structures")
	ErrTooManyKeys          = errors.New("types: more than 65535 keys")
)

// KeyUpdateTag returns the inner discriminant of a key update. Root updates
// number the key sets from root, level 1 updates from level 1.
func KeyUpdateTag(parent UpdateType, set KeySet) (byte, error) {
	switch parent {
	case UpdateRootKeys:
		if set <= KeySetLevel2V1 {
			return byte(set), nil
		}
	case UpdateLevel1Keys:
		if set >= KeySetLevel1 && set <= KeySetLevel2V1 {
			return byte(set - KeySetLevel1), nil
		}
	}
	return 0, fmt.Errorf("%w: %s update of key set %d", ErrInvalidKeyUpdate, parent, set)
}

func serializeKeys(w *wire.Writer, keys []VerifyKey) error {
	if len(keys) > math.MaxUint16 {
		return ErrTooManyKeys
	}
	w.Uint16(uint16(len(keys)))
	for _, key := range keys {
		w.Write(key.Serialize())
	}
	return nil
}

// HigherLevelKeyUpdate replaces the root or level 1 keys.
type HigherLevelKeyUpdate struct {
	Parent    UpdateType  `json:"parent"`
	KeySet    KeySet      `json:"keySet"`
	Keys      []VerifyKey `json:"keys"`
	Threshold uint16      `json:"threshold"`
}

func (p HigherLevelKeyUpdate) UpdateType() UpdateType { return p.Parent }
func (HigherLevelKeyUpdate) isUpdatePayload()         {}

// Tag returns the key update discriminant, validating that the key set is a
// higher level one.
func (p HigherLevelKeyUpdate) Tag() (byte, error) {
	if p.KeySet != KeySetRoot && p.KeySet != KeySetLevel1 {
		return 0, fmt.Errorf("%w: key set %d is not a higher level set", ErrInvalidKeyUpdate, p.KeySet)
	}
	return KeyUpdateTag(p.Parent, p.KeySet)
}

func (p HigherLevelKeyUpdate) Serialize() ([]byte, error) {
	tag, err := p.Tag()
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter(5 + VerifyKeySize*len(p.Keys)).Byte(tag)
	if err := serializeKeys(w, p.Keys); err != nil {
		return nil, err
	}
	return w.Uint16(p.Threshold).Bytes(), nil
}

// AccessStructure authorizes a subset of the level 2 keys, by index, for one
// kind of update.
type AccessStructure struct {
	KeyIndices []uint16 `json:"authorizedKeys"`
	Threshold  uint16   `json:"threshold"`
}

func (a AccessStructure) Serialize() ([]byte, error) {
	if len(a.KeyIndices) > math.MaxUint16 {
		return nil, ErrTooManyKeys
	}
	w := wire.NewWriter(4 + 2*len(a.KeyIndices)).Uint16(uint16(len(a.KeyIndices)))
	for _, index := range a.KeyIndices {
		w.Uint16(index)
	}
	return w.Uint16(a.Threshold).Bytes(), nil
}

// AccessStructureNames lists the level 2 access structures in wire order.
// Version 0 authorizations use the first 12, version 1 all of them.
var AccessStructureNames = []string{
	"emergency",
	"protocol",
	"electionDifficulty",
	"euroPerEnergy",
	"microCCDPerEuro",
	"foundationAccount",
	"mintDistribution",
	"transactionFeeDistribution",
	"gasRewards",
	"poolParameters",
	"addAnonymityRevoker",
	"addIdentityProvider",
	"cooldownParameters",
	"timeParameters",
}

const (
	AccessStructuresV0 = 12
	AccessStructuresV1 = 14
)

// AuthorizationKeysUpdate replaces the level 2 keys and their access
// structures. KeySet must be KeySetLevel2V0 or KeySetLevel2V1.
type AuthorizationKeysUpdate struct {
	Parent           UpdateType        `json:"parent"`
	KeySet           KeySet            `json:"keySet"`
	Keys             []VerifyKey       `json:"keys"`
	AccessStructures []AccessStructure `json:"accessStructures"`
}

func (p AuthorizationKeysUpdate) UpdateType() UpdateType { return p.Parent }
func (AuthorizationKeysUpdate) isUpdatePayload()         {}

// Tag returns the key update discriminant and checks the number of access
// structures matches the authorization version.
func (p AuthorizationKeysUpdate) Tag() (byte, error) {
	want := 0
	switch p.KeySet {
	case KeySetLevel2V0:
		want = AccessStructuresV0
	case KeySetLevel2V1:
		want = AccessStructuresV1
	default:
		return 0, fmt.Errorf("%w: key set %d is not a level 2 set", ErrInvalidKeyUpdate, p.KeySet)
	}
	if len(p.AccessStructures) != want {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrAccessStructureCount, len(p.AccessStructures), want)
	}
	return KeyUpdateTag(p.Parent, p.KeySet)
}

func (p AuthorizationKeysUpdate) Serialize() ([]byte, error) {
	tag, err := p.Tag()
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter(3 + VerifyKeySize*len(p.Keys)).Byte(tag)
	if err := serializeKeys(w, p.Keys); err != nil {
		return nil, err
	}
	for _, structure := range p.AccessStructures {
		encoded, err := structure.Serialize()
		if err != nil {
			return nil, err
		}
		w.Write(encoded)
	}
	return w.Bytes(), nil
}
