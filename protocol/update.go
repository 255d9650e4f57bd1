// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

// singleFrameUpdates maps the update types whose payload fits in one frame
// after the path and header to their instruction.
var singleFrameUpdates = map[types.UpdateType]byte{
	types.UpdateEuroPerEnergy:              InsSignUpdateExchangeRate,
	types.UpdateMicroCCDPerEuro:            InsSignUpdateExchangeRate,
	types.UpdateTransactionFeeDistribution: InsSignUpdateTransactionFeeDist,
	types.UpdateGASRewards:                 InsSignUpdateGASRewards,
	types.UpdateGASRewardsCPV2:             InsSignUpdateGASRewards,
	types.UpdateFoundationAccount:          InsSignUpdateFoundationAccount,
	types.UpdateMintDistributionCPV1:       InsSignUpdateMintDistribution,
	types.UpdateElectionDifficulty:         InsSignUpdateElectionDifficulty,
	types.UpdateBakerStakeThreshold:        InsSignUpdateBakerStakeThreshold,
	types.UpdateCooldownParameters:         InsSignUpdateCooldown,
	types.UpdateTimeParameters:             InsSignUpdateTimeParameters,
	types.UpdateTimeoutParameters:          InsSignUpdateTimeoutParameters,
	types.UpdateMinBlockTime:               InsSignUpdateMinBlockTime,
	types.UpdateBlockEnergyLimit:           InsSignUpdateBlockEnergyLimit,
	types.UpdateFinalizationCommittee:      InsSignUpdateFinalizationCommittee,
	types.UpdateValidatorScore:             InsSignUpdateValidatorScore,
}

// SignChainParameterUpdate signs an update whose payload is sent in a single
// frame together with the path, header and update type.
func (p *Protocol) SignChainParameterUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.UpdatePayload) ([]byte, error) {
	ins, ok := singleFrameUpdates[payload.UpdateType()]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a single frame update", ErrUnsupportedTransactionKind, payload.UpdateType())
	}
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	body, err := payload.Serialize()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, ins, payload.UpdateType().String()+" update")
	if err := e.send(0, 0, prefix, body); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignPoolParameters(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.PoolParameters) ([]byte, error) {
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignUpdatePoolParameters, "pool parameters update")
	if err := e.send(0, 0, prefix, payload.SerializePassiveCommissions()); err != nil {
		return nil, err
	}
	if err := e.send(1, 0, payload.SerializeBoundsAndCapital()); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignProtocolUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.ProtocolUpdate) ([]byte, error) {
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	inner := payload.SerializeInner()

	e := p.begin(ctx, InsSignUpdateProtocol, "protocol update")
	if err := e.send(0, 0, prefix, wire.Uint64(uint64(len(inner)))); err != nil {
		return nil, err
	}
	for _, text := range []string{payload.Message, payload.SpecificationURL} {
		if err := e.send(1, 0, wire.Uint64(uint64(len(text)))); err != nil {
			return nil, err
		}
		if err := e.stream(2, 0, []byte(text)); err != nil {
			return nil, err
		}
	}
	if err := e.send(3, 0, payload.SpecificationHash[:]); err != nil {
		return nil, err
	}
	if err := e.streamTerminal(4, 0, payload.AuxiliaryData); err != nil {
		return nil, err
	}
	return e.signature()
}

// sendDescription sends each text of d as a length frame under p1 followed by
// its content under p1+1.
func (e *exchange) sendDescription(p1 byte, d types.Description) error {
	for _, text := range d.Fields() {
		if err := e.send(p1, 0, wire.Uint32(uint32(len(text)))); err != nil {
			return err
		}
		if err := e.stream(p1+1, 0, []byte(text)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Protocol) SignAddIdentityProvider(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AddIdentityProvider) ([]byte, error) {
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	info, err := payload.SerializeInfo()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignAddIdentityProvider, "add identity provider")
	if err := e.send(0, 0, prefix, wire.Uint32(uint32(len(info))), wire.Uint32(payload.IPIdentity)); err != nil {
		return nil, err
	}
	if err := e.sendDescription(1, payload.Description); err != nil {
		return nil, err
	}
	if err := e.stream(3, 0, payload.VerifyKey); err != nil {
		return nil, err
	}
	if err := e.send(4, 0, payload.CdiVerifyKey[:]); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignAddAnonymityRevoker(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AddAnonymityRevoker) ([]byte, error) {
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	info, err := payload.SerializeInfo()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignAddAnonymityRevoker, "add anonymity revoker")
	if err := e.send(0, 0, prefix, wire.Uint32(uint32(len(info))), wire.Uint32(payload.ArIdentity)); err != nil {
		return nil, err
	}
	if err := e.sendDescription(1, payload.Description); err != nil {
		return nil, err
	}
	if err := e.send(3, 0, payload.PublicKey[:]); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignCreatePLT(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.CreatePLT) ([]byte, error) {
	prefix, err := updatePrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	details, err := payload.SerializeDetails()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignCreatePLT, "create token")
	if err := e.send(0, 0, prefix); err != nil {
		return nil, err
	}
	if err := e.send(1, 0, details); err != nil {
		return nil, err
	}
	if err := e.streamTerminal(2, 0, payload.InitializationParameters); err != nil {
		return nil, err
	}
	return e.signature()
}
