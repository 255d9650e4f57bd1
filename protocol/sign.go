// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ledger-concordium-go/types"
)

// Sign runs the signing flow matching the concrete type of tx and returns
// the 64 byte signature.
func (p *Protocol) Sign(ctx context.Context, tx types.Transaction, path []uint32) ([]byte, error) {
	switch tx := tx.(type) {
	case types.AccountTransaction:
		return p.signAccountTransaction(ctx, tx, path)
	case types.UpdateInstruction:
		return p.signUpdateInstruction(ctx, tx, path)
	case types.CredentialDeployment:
		return p.SignCredentialDeployment(ctx, path, tx)
	case types.PublicInfoForIP:
		return p.SignPublicInfoForIP(ctx, path, tx)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedTransactionKind, tx)
	}
}

func (p *Protocol) signAccountTransaction(ctx context.Context, tx types.AccountTransaction, path []uint32) ([]byte, error) {
	h := tx.Header
	switch payload := tx.Payload.(type) {
	case types.SimpleTransfer:
		return p.SignSimpleTransfer(ctx, path, h, payload)
	case types.SimpleTransferWithMemo:
		return p.SignSimpleTransferWithMemo(ctx, path, h, payload)
	case types.TransferWithSchedule:
		return p.SignTransferWithSchedule(ctx, path, h, payload)
	case types.TransferWithScheduleAndMemo:
		return p.SignTransferWithScheduleAndMemo(ctx, path, h, payload)
	case types.TransferToEncrypted:
		return p.SignTransferToEncrypted(ctx, path, h, payload)
	case types.EncryptedTransfer:
		return p.SignEncryptedTransfer(ctx, path, h, payload)
	case types.EncryptedTransferWithMemo:
		return p.SignEncryptedTransferWithMemo(ctx, path, h, payload)
	case types.TransferToPublic:
		return p.SignTransferToPublic(ctx, path, h, payload)
	case types.AddBaker:
		return p.SignAddBaker(ctx, path, h, payload)
	case types.ConfigureDelegation:
		return p.SignConfigureDelegation(ctx, path, h, payload)
	case types.ConfigureBaker:
		return p.SignConfigureBaker(ctx, path, h, payload)
	case types.RegisterData:
		return p.SignRegisterData(ctx, path, h, payload)
	case types.UpdateCredentials:
		return p.SignUpdateCredentials(ctx, path, h, payload)
	default:
		return nil, fmt.Errorf("%w: account payload %T", ErrUnsupportedTransactionKind, tx.Payload)
	}
}

func (p *Protocol) signUpdateInstruction(ctx context.Context, u types.UpdateInstruction, path []uint32) ([]byte, error) {
	h := u.Header
	switch payload := u.Payload.(type) {
	case types.EuroPerEnergy, types.MicroCCDPerEuro,
		types.TransactionFeeDistribution, types.GASRewards, types.GASRewardsV1,
		types.FoundationAccount, types.MintDistribution, types.ElectionDifficulty,
		types.BakerStakeThreshold, types.CooldownParameters, types.TimeParameters,
		types.TimeoutParameters, types.MinBlockTime, types.BlockEnergyLimit,
		types.FinalizationCommitteeParameters, types.ValidatorScoreParameters:
		return p.SignChainParameterUpdate(ctx, path, h, u.Payload)
	case types.PoolParameters:
		return p.SignPoolParameters(ctx, path, h, payload)
	case types.ProtocolUpdate:
		return p.SignProtocolUpdate(ctx, path, h, payload)
	case types.AddIdentityProvider:
		return p.SignAddIdentityProvider(ctx, path, h, payload)
	case types.AddAnonymityRevoker:
		return p.SignAddAnonymityRevoker(ctx, path, h, payload)
	case types.CreatePLT:
		return p.SignCreatePLT(ctx, path, h, payload)
	case types.HigherLevelKeyUpdate:
		return p.SignHigherLevelKeyUpdate(ctx, path, h, payload)
	case types.AuthorizationKeysUpdate:
		return p.SignAuthorizationKeysUpdate(ctx, path, h, payload)
	default:
		return nil, fmt.Errorf("%w: update payload %T", ErrUnsupportedTransactionKind, u.Payload)
	}
}
