// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownType = errors.New("types: unknown transaction type")

// Envelope is the JSON form of a Transaction:
//
//	{"type": "SimpleTransfer", "header": {...}, "payload": {...}}
//
// Account transactions carry an AccountHeader, update instructions an
// UpdateHeader. Credential deployments and identity provider information
// have no header.
type Envelope struct {
	Type    string          `json:"type"`
	Header  json.RawMessage `json:"header,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type decodeFunc func(header, payload json.RawMessage) (Transaction, error)

func account[P AccountPayload](header, payload json.RawMessage) (Transaction, error) {
	var tx AccountTransaction
	if err := json.Unmarshal(header, &tx.Header); err != nil {
		return nil, fmt.Errorf("types: decode account header: %w", err)
	}
	var p P
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("types: decode payload: %w", err)
	}
	tx.Payload = p
	return tx, nil
}

func update[P UpdatePayload](header, payload json.RawMessage) (Transaction, error) {
	var tx UpdateInstruction
	if err := json.Unmarshal(header, &tx.Header); err != nil {
		return nil, fmt.Errorf("types: decode update header: %w", err)
	}
	var p P
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("types: decode payload: %w", err)
	}
	tx.Payload = p
	return tx, nil
}

func standalone[T Transaction](_, payload json.RawMessage) (Transaction, error) {
	var tx T
	if err := json.Unmarshal(payload, &tx); err != nil {
		return nil, fmt.Errorf("types: decode payload: %w", err)
	}
	return tx, nil
}

var decoders = map[string]decodeFunc{
	"SimpleTransfer":              account[SimpleTransfer],
	"SimpleTransferWithMemo":      account[SimpleTransferWithMemo],
	"TransferWithSchedule":        account[TransferWithSchedule],
	"TransferWithScheduleAndMemo": account[TransferWithScheduleAndMemo],
	"TransferToEncrypted":         account[TransferToEncrypted],
	"EncryptedTransfer":           account[EncryptedTransfer],
	"EncryptedTransferWithMemo":   account[EncryptedTransferWithMemo],
	"TransferToPublic":            account[TransferToPublic],
	"AddBaker":                    account[AddBaker],
	"ConfigureDelegation":         account[ConfigureDelegation],
	"ConfigureBaker":              account[ConfigureBaker],
	"RegisterData":                account[RegisterData],
	"UpdateCredentials":           account[UpdateCredentials],

	"EuroPerEnergy":                   update[EuroPerEnergy],
	"MicroCCDPerEuro":                 update[MicroCCDPerEuro],
	"TransactionFeeDistribution":      update[TransactionFeeDistribution],
	"GASRewards":                      update[GASRewards],
	"GASRewardsV1":                    update[GASRewardsV1],
	"FoundationAccount":               update[FoundationAccount],
	"MintDistribution":                update[MintDistribution],
	"ElectionDifficulty":              update[ElectionDifficulty],
	"BakerStakeThreshold":             update[BakerStakeThreshold],
	"CooldownParameters":              update[CooldownParameters],
	"PoolParameters":                  update[PoolParameters],
	"TimeParameters":                  update[TimeParameters],
	"TimeoutParameters":               update[TimeoutParameters],
	"MinBlockTime":                    update[MinBlockTime],
	"BlockEnergyLimit":                update[BlockEnergyLimit],
	"FinalizationCommitteeParameters": update[FinalizationCommitteeParameters],
	"ValidatorScoreParameters":        update[ValidatorScoreParameters],
	"ProtocolUpdate":                  update[ProtocolUpdate],
	"AddIdentityProvider":             update[AddIdentityProvider],
	"AddAnonymityRevoker":             update[AddAnonymityRevoker],
	"CreatePLT":                       update[CreatePLT],
	"HigherLevelKeyUpdate":            update[HigherLevelKeyUpdate],
	"AuthorizationKeysUpdate":         update[AuthorizationKeysUpdate],

	"CredentialDeployment": standalone[CredentialDeployment],
	"PublicInfoForIP":      standalone[PublicInfoForIP],
}

// DecodeTransaction parses the JSON Envelope of a transaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("types: decode envelope: %w", err)
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return decode(env.Header, env.Payload)
}
