// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"math"

	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

// sendKeys sends the update prefix with the key update tag and key count,
// then one frame per key.
func (e *exchange) sendKeys(prefix []byte, tag byte, keys []types.VerifyKey) error {
	if len(keys) > math.MaxUint16 {
		return types.ErrTooManyKeys
	}
	if err := e.send(0, 0, prefix, []byte{tag}, wire.Uint16(uint16(len(keys)))); err != nil {
		return err
	}
	for _, key := range keys {
		if err := e.send(1, 0, key.Serialize()); err != nil {
			return err
		}
	}
	return nil
}

// SignHigherLevelKeyUpdate signs a replacement of the root or level 1 keys.
// The instruction is chosen by the key set that signs the update.
func (p *Protocol) SignHigherLevelKeyUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.HigherLevelKeyUpdate) ([]byte, error) {
	tag, err := payload.Tag()
	if err != nil {
		return nil, err
	}
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	ins, name := InsSignUpdateKeysWithRoot, "root keys update"
	if payload.KeySet == types.KeySetLevel1 {
		name = "level 1 keys update"
	}
	if payload.Parent == types.UpdateLevel1Keys {
		ins = InsSignUpdateKeysWithLevel1
	}
	e := p.begin(ctx, ins, name)
	if err := e.sendKeys(prefix, tag, payload.Keys); err != nil {
		return nil, err
	}
	if err := e.send(2, 0, wire.Uint16(payload.Threshold)); err != nil {
		return nil, err
	}
	return e.signature()
}

// SignAuthorizationKeysUpdate signs a replacement of the level 2 keys and
// their access structures. Each access structure is sent as its size, its
// key indices in batches and its threshold; the threshold of the last one is
// answered with the signature.
func (p *Protocol) SignAuthorizationKeysUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AuthorizationKeysUpdate) ([]byte, error) {
	tag, err := payload.Tag()
	if err != nil {
		return nil, err
	}
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	ins := InsSignUpdateLevel2KeysWithRoot
	if payload.Parent == types.UpdateLevel1Keys {
		ins = InsSignUpdateLevel2KeysWithLevel1
	}
	e := p.begin(ctx, ins, "level 2 keys update")
	if err := e.sendKeys(prefix, tag, payload.Keys); err != nil {
		return nil, err
	}
	for _, structure := range payload.AccessStructures {
		if len(structure.KeyIndices) > math.MaxUint16 {
			return nil, types.ErrTooManyKeys
		}
		if err := e.send(2, 0, wire.Uint16(uint16(len(structure.KeyIndices)))); err != nil {
			return nil, err
		}
		for _, batch := range wire.Batch(structure.KeyIndices, wire.KeyIndicesPerFrame) {
			w := wire.NewWriter(2 * len(batch))
			for _, index := range batch {
				w.Uint16(index)
			}
			if err := e.send(3, 0, w.Bytes()); err != nil {
				return nil, err
			}
		}
		if err := e.send(4, 0, wire.Uint16(structure.Threshold)); err != nil {
			return nil, err
		}
	}
	return e.signature()
}
