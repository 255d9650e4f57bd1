// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"fmt"
	"math"

	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

func (p *Protocol) SignAddBaker(ctx context.Context, path []uint32, header types.AccountHeader, payload types.AddBaker) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignAddBaker, "add baker")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind()), payload.SerializeKeys()); err != nil {
		return nil, err
	}
	if err := e.send(1, 0, payload.SerializeProofsAndStake()); err != nil {
		return nil, err
	}
	return e.signature()
}

// SignConfigureDelegation sends the whole payload in one frame; it never
// exceeds 21 bytes.
func (p *Protocol) SignConfigureDelegation(ctx context.Context, path []uint32, header types.AccountHeader, payload types.ConfigureDelegation) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	body, err := payload.Serialize()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignConfigureDelegation, "configure delegation")
	if err := e.send(0, 0, prefix, body); err != nil {
		return nil, err
	}
	return e.signature()
}

// SignConfigureBaker sends only the steps whose fields are present. The
// response to whichever frame goes last carries the signature.
func (p *Protocol) SignConfigureBaker(ctx context.Context, path []uint32, header types.AccountHeader, payload types.ConfigureBaker) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	if payload.MetadataURL != nil && len(*payload.MetadataURL) > math.MaxUint16 {
		return nil, fmt.Errorf("protocol: metadata url of %d bytes is too long", len(*payload.MetadataURL))
	}

	e := p.begin(ctx, InsSignConfigureBaker, "configure baker")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind()), wire.Uint16(payload.Bitmap())); err != nil {
		return nil, err
	}
	if stake := payload.SerializeStakeAndKeys(); len(stake) > 0 {
		if err := e.send(1, 0, stake); err != nil {
			return nil, err
		}
	}
	if payload.Keys != nil {
		if err := e.send(2, 0, payload.Keys.SerializeProofs()); err != nil {
			return nil, err
		}
	}
	if payload.MetadataURL != nil {
		url := []byte(*payload.MetadataURL)
		if err := e.send(3, 0, wire.Uint16(uint16(len(url)))); err != nil {
			return nil, err
		}
		if err := e.stream(4, 0, url); err != nil {
			return nil, err
		}
	}
	if commissions := payload.SerializeCommissions(); len(commissions) > 0 {
		if err := e.send(5, 0, commissions); err != nil {
			return nil, err
		}
	}
	return e.signature()
}
