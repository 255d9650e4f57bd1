// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package client

import (
	"context"

	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/types"
)

// Account transactions.

func (c *Client) SignSimpleTransfer(ctx context.Context, path []uint32, header types.AccountHeader, payload types.SimpleTransfer) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignSimpleTransfer(ctx, path, header, payload) })
}

func (c *Client) SignSimpleTransferWithMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.SimpleTransferWithMemo) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignSimpleTransferWithMemo(ctx, path, header, payload) })
}

func (c *Client) SignTransferWithSchedule(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferWithSchedule) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignTransferWithSchedule(ctx, path, header, payload) })
}

func (c *Client) SignTransferWithScheduleAndMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferWithScheduleAndMemo) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignTransferWithScheduleAndMemo(ctx, path, header, payload) })
}

func (c *Client) SignTransferToEncrypted(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferToEncrypted) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignTransferToEncrypted(ctx, path, header, payload) })
}

func (c *Client) SignEncryptedTransfer(ctx context.Context, path []uint32, header types.AccountHeader, payload types.EncryptedTransfer) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignEncryptedTransfer(ctx, path, header, payload) })
}

func (c *Client) SignEncryptedTransferWithMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.EncryptedTransferWithMemo) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignEncryptedTransferWithMemo(ctx, path, header, payload) })
}

func (c *Client) SignTransferToPublic(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferToPublic) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignTransferToPublic(ctx, path, header, payload) })
}

func (c *Client) SignAddBaker(ctx context.Context, path []uint32, header types.AccountHeader, payload types.AddBaker) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignAddBaker(ctx, path, header, payload) })
}

func (c *Client) SignConfigureDelegation(ctx context.Context, path []uint32, header types.AccountHeader, payload types.ConfigureDelegation) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignConfigureDelegation(ctx, path, header, payload) })
}

func (c *Client) SignConfigureBaker(ctx context.Context, path []uint32, header types.AccountHeader, payload types.ConfigureBaker) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignConfigureBaker(ctx, path, header, payload) })
}

func (c *Client) SignRegisterData(ctx context.Context, path []uint32, header types.AccountHeader, payload types.RegisterData) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignRegisterData(ctx, path, header, payload) })
}

func (c *Client) SignUpdateCredentials(ctx context.Context, path []uint32, header types.AccountHeader, payload types.UpdateCredentials) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignUpdateCredentials(ctx, path, header, payload) })
}

// Update instructions.

// SignChainParameterUpdate signs one of the updates that fit a single frame,
// such as exchange rates, reward fractions and timing parameters.
func (c *Client) SignChainParameterUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.UpdatePayload) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) {
		return p.SignChainParameterUpdate(ctx, path, header, payload)
	})
}

func (c *Client) SignPoolParameters(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.PoolParameters) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignPoolParameters(ctx, path, header, payload) })
}

func (c *Client) SignProtocolUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.ProtocolUpdate) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignProtocolUpdate(ctx, path, header, payload) })
}

func (c *Client) SignAddIdentityProvider(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AddIdentityProvider) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignAddIdentityProvider(ctx, path, header, payload) })
}

func (c *Client) SignAddAnonymityRevoker(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AddAnonymityRevoker) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignAddAnonymityRevoker(ctx, path, header, payload) })
}

func (c *Client) SignCreatePLT(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.CreatePLT) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignCreatePLT(ctx, path, header, payload) })
}

func (c *Client) SignHigherLevelKeyUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.HigherLevelKeyUpdate) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignHigherLevelKeyUpdate(ctx, path, header, payload) })
}

func (c *Client) SignAuthorizationKeysUpdate(ctx context.Context, path []uint32, header types.UpdateHeader, payload types.AuthorizationKeysUpdate) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignAuthorizationKeysUpdate(ctx, path, header, payload) })
}

// Credentials and identities.

func (c *Client) SignCredentialDeployment(ctx context.Context, path []uint32, tx types.CredentialDeployment) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignCredentialDeployment(ctx, path, tx) })
}

func (c *Client) SignPublicInfoForIP(ctx context.Context, path []uint32, info types.PublicInfoForIP) ([]byte, error) {
	return run(ctx, c, func(p *protocol.Protocol) ([]byte, error) { return p.SignPublicInfoForIP(ctx, path, info) })
}
