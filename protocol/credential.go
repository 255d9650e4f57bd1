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

// Steps of a credential block, carried in p2.
const (
	credStepKeyCount byte = iota
	credStepKey
	credStepCredential
	credStepArData
	credStepPolicy
	credStepAttributeTag
	credStepAttributeValue
	credStepProofLength
	credStepProofs
)

// sendCredential streams one credential under p1, using p2 for its own
// steps. When index is set it prefixes the key count, as required when
// adding a credential to an existing account.
func (e *exchange) sendCredential(p1 byte, index *uint8, cred types.CredentialDeploymentInfo) error {
	first := []byte{byte(len(cred.PublicKeys.Keys))}
	if index != nil {
		first = []byte{*index, byte(len(cred.PublicKeys.Keys))}
	}
	if err := e.send(p1, credStepKeyCount, first); err != nil {
		return err
	}
	for _, key := range cred.PublicKeys.Keys {
		if err := e.send(p1, credStepKey, key.Serialize()); err != nil {
			return err
		}
	}

	credential := wire.NewWriter(58).
		Byte(cred.PublicKeys.Threshold).
		Write(cred.CredID[:]).
		Uint32(cred.IPIdentity).
		Byte(cred.RevocationThreshold).
		Uint16(uint16(len(cred.ArData)))
	if err := e.send(p1, credStepCredential, credential.Bytes()); err != nil {
		return err
	}
	for _, ar := range cred.ArData {
		if err := e.send(p1, credStepArData, wire.Uint32(ar.ArIdentity), ar.EncIDCredPubShare[:]); err != nil {
			return err
		}
	}

	policy := cred.Policy
	if err := e.send(p1, credStepPolicy, policy.ValidTo.Serialize(), policy.CreatedAt.Serialize(),
		wire.Uint16(uint16(len(policy.RevealedAttributes)))); err != nil {
		return err
	}
	for _, attr := range policy.RevealedAttributes {
		if err := e.send(p1, credStepAttributeTag, []byte{attr.Tag, byte(len(attr.Value))}); err != nil {
			return err
		}
		if err := e.stream(p1, credStepAttributeValue, []byte(attr.Value)); err != nil {
			return err
		}
	}

	if err := e.send(p1, credStepProofLength, wire.Uint32(uint32(len(cred.Proofs)))); err != nil {
		return err
	}
	return e.stream(p1, credStepProofs, cred.Proofs)
}

// checkCredential validates a credential before its exchange starts.
func checkCredential(cred types.CredentialDeploymentInfo) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	if len(cred.Proofs) == 0 {
		return ErrMissingProof
	}
	return nil
}

func (p *Protocol) SignUpdateCredentials(ctx context.Context, path []uint32, header types.AccountHeader, payload types.UpdateCredentials) ([]byte, error) {
	if len(payload.NewCredentials) > math.MaxUint8 || len(payload.RemoveCredIDs) > math.MaxUint8 {
		return nil, fmt.Errorf("protocol: at most 255 credentials can be added or removed")
	}
	for _, added := range payload.NewCredentials {
		if err := checkCredential(added.Credential); err != nil {
			return nil, err
		}
	}
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignUpdateCredentials, "update credentials")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind()), []byte{byte(len(payload.NewCredentials))}); err != nil {
		return nil, err
	}
	for _, added := range payload.NewCredentials {
		index := added.Index
		if err := e.sendCredential(1, &index, added.Credential); err != nil {
			return nil, err
		}
	}
	if err := e.send(2, 0, []byte{byte(len(payload.RemoveCredIDs))}); err != nil {
		return nil, err
	}
	for _, id := range payload.RemoveCredIDs {
		if err := e.send(3, 0, id[:]); err != nil {
			return nil, err
		}
	}
	if err := e.send(4, 0, []byte{payload.NewThreshold}); err != nil {
		return nil, err
	}
	return e.signature()
}

// SignCredentialDeployment signs a credential for a new account, or for an
// existing one when tx.ExistingAccount is set.
func (p *Protocol) SignCredentialDeployment(ctx context.Context, path []uint32, tx types.CredentialDeployment) ([]byte, error) {
	if err := checkCredential(tx.Credential); err != nil {
		return nil, err
	}
	encodedPath, err := wire.EncodePath(path)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignCredentialDeployment, "credential deployment")
	if err := e.send(0, 0, encodedPath); err != nil {
		return nil, err
	}
	if err := e.sendCredential(1, nil, tx.Credential); err != nil {
		return nil, err
	}
	if tx.ExistingAccount != nil {
		account := *tx.ExistingAccount
		err = e.send(2, 0, []byte{1}, account[:])
	} else {
		err = e.send(2, 0, []byte{0}, wire.Uint64(tx.NewAccountExpiry))
	}
	if err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignPublicInfoForIP(ctx context.Context, path []uint32, info types.PublicInfoForIP) ([]byte, error) {
	if len(info.PublicKeys.Keys) > math.MaxUint8 {
		return nil, fmt.Errorf("protocol: %d keys do not fit a credential", len(info.PublicKeys.Keys))
	}
	encodedPath, err := wire.EncodePath(path)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignPublicInfoForIP, "identity provider information")
	if err := e.send(0, 0, encodedPath, info.IDCredPub[:], info.RegID[:]); err != nil {
		return nil, err
	}
	if err := e.send(1, 0, []byte{byte(len(info.PublicKeys.Keys))}); err != nil {
		return nil, err
	}
	for _, key := range info.PublicKeys.Keys {
		if err := e.send(2, 0, key.VerifyKey.Serialize()); err != nil {
			return nil, err
		}
	}
	if err := e.send(3, 0, []byte{info.PublicKeys.Threshold}); err != nil {
		return nil, err
	}
	return e.signature()
}
