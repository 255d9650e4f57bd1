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

// UpdateHeaderSize is the serialized size of an UpdateHeader.
const UpdateHeaderSize = 28

// UpdateHeader precedes every update instruction. PayloadSize counts the
// serialized payload plus its update type byte and must be set before
// serializing.
type UpdateHeader struct {
	SequenceNumber uint64 `json:"sequenceNumber"`
	EffectiveTime  uint64 `json:"effectiveTime"`
	Timeout        uint64 `json:"timeout"`
	PayloadSize    uint32 `json:"payloadSize,omitempty"`
}

func (h UpdateHeader) Serialize() []byte {
	if h.PayloadSize == 0 {
		panic("types: update header serialized without a payload size")
	}
	return wire.NewWriter(UpdateHeaderSize).
		Uint64(h.SequenceNumber).
		Uint64(h.EffectiveTime).
		Uint64(h.Timeout).
		Uint32(h.PayloadSize).
		Bytes()
}

// UpdatePayload is the type specific part of an update instruction.
type UpdatePayload interface {
	UpdateType() UpdateType
	// Serialize returns the payload without the update type byte.
	Serialize() ([]byte, error)
	isUpdatePayload()
}

type UpdateInstruction struct {
	Header  UpdateHeader
	Payload UpdatePayload
}

func (UpdateInstruction) isTransaction() {}

// SerializeHeader encodes the header with the payload size derived from the payload.
func (u UpdateInstruction) SerializeHeader() ([]byte, error) {
	payload, err := u.Payload.Serialize()
	if err != nil {
		return nil, err
	}
	if uint64(len(payload))+1 > math.MaxUint32 {
		return nil, fmt.Errorf("types: update payload of %d bytes is too large", len(payload))
	}
	header := u.Header
	header.PayloadSize = uint32(len(payload) + 1)
	return header.Serialize(), nil
}

// ExchangeRate is a positive rational number.
type ExchangeRate struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

func (r ExchangeRate) Serialize() ([]byte, error) {
	return wire.NewWriter(16).Uint64(r.Numerator).Uint64(r.Denominator).Bytes(), nil
}

type EuroPerEnergy struct{ ExchangeRate }

func (EuroPerEnergy) UpdateType() UpdateType { return UpdateEuroPerEnergy }
func (EuroPerEnergy) isUpdatePayload()       {}

type MicroCCDPerEuro struct{ ExchangeRate }

func (MicroCCDPerEuro) UpdateType() UpdateType { return UpdateMicroCCDPerEuro }
func (MicroCCDPerEuro) isUpdatePayload()       {}

// TransactionFeeDistribution fractions are in thousandths of a percent.
type TransactionFeeDistribution struct {
	Baker      uint32 `json:"baker"`
	GASAccount uint32 `json:"gasAccount"`
}

func (TransactionFeeDistribution) UpdateType() UpdateType { return UpdateTransactionFeeDistribution }
func (TransactionFeeDistribution) isUpdatePayload()       {}

func (p TransactionFeeDistribution) Serialize() ([]byte, error) {
	return wire.NewWriter(8).Uint32(p.Baker).Uint32(p.GASAccount).Bytes(), nil
}

// GASRewards is the reward distribution of chain parameter versions 0 and 1.
type GASRewards struct {
	Baker             uint32 `json:"baker"`
	FinalizationProof uint32 `json:"finalizationProof"`
	AccountCreation   uint32 `json:"accountCreation"`
	ChainUpdate       uint32 `json:"chainUpdate"`
}

func (GASRewards) UpdateType() UpdateType { return UpdateGASRewards }
func (GASRewards) isUpdatePayload()       {}

func (p GASRewards) Serialize() ([]byte, error) {
	return wire.NewWriter(16).
		Uint32(p.Baker).
		Uint32(p.FinalizationProof).
		Uint32(p.AccountCreation).
		Uint32(p.ChainUpdate).
		Bytes(), nil
}

// GASRewardsV1 drops the finalization proof reward (chain parameters version 2).
type GASRewardsV1 struct {
	Baker           uint32 `json:"baker"`
	AccountCreation uint32 `json:"accountCreation"`
	ChainUpdate     uint32 `json:"chainUpdate"`
}

func (GASRewardsV1) UpdateType() UpdateType { return UpdateGASRewardsCPV2 }
func (GASRewardsV1) isUpdatePayload()       {}

func (p GASRewardsV1) Serialize() ([]byte, error) {
	return wire.NewWriter(12).Uint32(p.Baker).Uint32(p.AccountCreation).Uint32(p.ChainUpdate).Bytes(), nil
}

type FoundationAccount struct {
	Address wire.Address `json:"address"`
}

func (FoundationAccount) UpdateType() UpdateType { return UpdateFoundationAccount }
func (FoundationAccount) isUpdatePayload()       {}

func (p FoundationAccount) Serialize() ([]byte, error) {
	return wire.Concat(p.Address[:]), nil
}

// MintDistribution is the chain parameter version 1 mint distribution.
type MintDistribution struct {
	BakingReward       uint32 `json:"bakingReward"`
	FinalizationReward uint32 `json:"finalizationReward"`
}

func (MintDistribution) UpdateType() UpdateType { return UpdateMintDistributionCPV1 }
func (MintDistribution) isUpdatePayload()       {}

func (p MintDistribution) Serialize() ([]byte, error) {
	return wire.NewWriter(8).Uint32(p.BakingReward).Uint32(p.FinalizationReward).Bytes(), nil
}

type ElectionDifficulty struct {
	Difficulty uint32 `json:"electionDifficulty"`
}

func (ElectionDifficulty) UpdateType() UpdateType { return UpdateElectionDifficulty }
func (ElectionDifficulty) isUpdatePayload()       {}

func (p ElectionDifficulty) Serialize() ([]byte, error) {
	return wire.Uint32(p.Difficulty), nil
}

type BakerStakeThreshold struct {
	Threshold uint64 `json:"threshold"`
}

func (BakerStakeThreshold) UpdateType() UpdateType { return UpdateBakerStakeThreshold }
func (BakerStakeThreshold) isUpdatePayload()       {}

func (p BakerStakeThreshold) Serialize() ([]byte, error) {
	return wire.Uint64(p.Threshold), nil
}

type CooldownParameters struct {
	PoolOwnerCooldown uint64 `json:"poolOwnerCooldown"`
	DelegatorCooldown uint64 `json:"delegatorCooldown"`
}

func (CooldownParameters) UpdateType() UpdateType { return UpdateCooldownParameters }
func (CooldownParameters) isUpdatePayload()       {}

func (p CooldownParameters) Serialize() ([]byte, error) {
	return wire.NewWriter(16).Uint64(p.PoolOwnerCooldown).Uint64(p.DelegatorCooldown).Bytes(), nil
}

// CommissionRates are in thousandths of a percent.
type CommissionRates struct {
	Finalization uint32 `json:"finalization"`
	Baking       uint32 `json:"baking"`
	Transaction  uint32 `json:"transaction"`
}

type CommissionRange struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

type CommissionBounds struct {
	Finalization CommissionRange `json:"finalization"`
	Baking       CommissionRange `json:"baking"`
	Transaction  CommissionRange `json:"transaction"`
}

type PoolParameters struct {
	PassiveCommissions   CommissionRates  `json:"passiveCommissions"`
	CommissionBounds     CommissionBounds `json:"commissionBounds"`
	MinimumEquityCapital uint64           `json:"minimumEquityCapital"`
	CapitalBound         uint32           `json:"capitalBound"`
	LeverageBound        ExchangeRate     `json:"leverageBound"`
}

func (PoolParameters) UpdateType() UpdateType { return UpdatePoolParameters }
func (PoolParameters) isUpdatePayload()       {}

// SerializePassiveCommissions encodes the passive delegation commission rates.
func (p PoolParameters) SerializePassiveCommissions() []byte {
	c := p.PassiveCommissions
	return wire.NewWriter(12).Uint32(c.Finalization).Uint32(c.Baking).Uint32(c.Transaction).Bytes()
}

// SerializeBoundsAndCapital encodes commission bounds, equity, capital and leverage bounds.
func (p PoolParameters) SerializeBoundsAndCapital() []byte {
	b := p.CommissionBounds
	return wire.NewWriter(52).
		Uint32(b.Finalization.Min).Uint32(b.Finalization.Max).
		Uint32(b.Baking.Min).Uint32(b.Baking.Max).
		Uint32(b.Transaction.Min).Uint32(b.Transaction.Max).
		Uint64(p.MinimumEquityCapital).
		Uint32(p.CapitalBound).
		Uint64(p.LeverageBound.Numerator).
		Uint64(p.LeverageBound.Denominator).
		Bytes()
}

func (p PoolParameters) Serialize() ([]byte, error) {
	return wire.Concat(p.SerializePassiveCommissions(), p.SerializeBoundsAndCapital()), nil
}

// MintRate is Mantissa * 10^-Exponent.
type MintRate struct {
	Mantissa uint32 `json:"mantissa"`
	Exponent uint8  `json:"exponent"`
}

type TimeParameters struct {
	RewardPeriodLength uint64   `json:"rewardPeriodLength"`
	MintPerPayday      MintRate `json:"mintPerPayday"`
}

func (TimeParameters) UpdateType() UpdateType { return UpdateTimeParameters }
func (TimeParameters) isUpdatePayload()       {}

func (p TimeParameters) Serialize() ([]byte, error) {
	return wire.NewWriter(13).
		Uint64(p.RewardPeriodLength).
		Uint32(p.MintPerPayday.Mantissa).
		Byte(p.MintPerPayday.Exponent).
		Bytes(), nil
}

type TimeoutParameters struct {
	TimeoutBase     uint64       `json:"timeoutBase"`
	TimeoutIncrease ExchangeRate `json:"timeoutIncrease"`
	TimeoutDecrease ExchangeRate `json:"timeoutDecrease"`
}

func (TimeoutParameters) UpdateType() UpdateType { return UpdateTimeoutParameters }
func (TimeoutParameters) isUpdatePayload()       {}

func (p TimeoutParameters) Serialize() ([]byte, error) {
	return wire.NewWriter(40).
		Uint64(p.TimeoutBase).
		Uint64(p.TimeoutIncrease.Numerator).
		Uint64(p.TimeoutIncrease.Denominator).
		Uint64(p.TimeoutDecrease.Numerator).
		Uint64(p.TimeoutDecrease.Denominator).
		Bytes(), nil
}

// MinBlockTime is in milliseconds.
type MinBlockTime struct {
	Duration uint64 `json:"minBlockTime"`
}

func (MinBlockTime) UpdateType() UpdateType { return UpdateMinBlockTime }
func (MinBlockTime) isUpdatePayload()       {}

func (p MinBlockTime) Serialize() ([]byte, error) { return wire.Uint64(p.Duration), nil }

type BlockEnergyLimit struct {
	Limit uint64 `json:"blockEnergyLimit"`
}

func (BlockEnergyLimit) UpdateType() UpdateType { return UpdateBlockEnergyLimit }
func (BlockEnergyLimit) isUpdatePayload()       {}

func (p BlockEnergyLimit) Serialize() ([]byte, error) { return wire.Uint64(p.Limit), nil }

type FinalizationCommitteeParameters struct {
	MinimumFinalizers               uint32 `json:"minimumFinalizers"`
	MaximumFinalizers               uint32 `json:"maximumFinalizers"`
	FinalizerRelativeStakeThreshold uint32 `json:"finalizerRelativeStakeThreshold"`
}

func (FinalizationCommitteeParameters) UpdateType() UpdateType { return UpdateFinalizationCommittee }
func (FinalizationCommitteeParameters) isUpdatePayload()       {}

func (p FinalizationCommitteeParameters) Serialize() ([]byte, error) {
	return wire.NewWriter(12).
		Uint32(p.MinimumFinalizers).
		Uint32(p.MaximumFinalizers).
		Uint32(p.FinalizerRelativeStakeThreshold).
		Bytes(), nil
}

type ValidatorScoreParameters struct {
	MaximumMissedRounds uint64 `json:"maxMissedRounds"`
}

func (ValidatorScoreParameters) UpdateType() UpdateType { return UpdateValidatorScore }
func (ValidatorScoreParameters) isUpdatePayload()       {}

func (p ValidatorScoreParameters) Serialize() ([]byte, error) {
	return wire.Uint64(p.MaximumMissedRounds), nil
}

// ProtocolUpdate announces a new protocol version.
type ProtocolUpdate struct {
	Message           string   `json:"message"`
	SpecificationURL  string   `json:"specificationUrl"`
	SpecificationHash Bytes32  `json:"specificationHash"`
	AuxiliaryData     HexBytes `json:"auxiliaryData"`
}

func (ProtocolUpdate) UpdateType() UpdateType { return UpdateProtocol }
func (ProtocolUpdate) isUpdatePayload()       {}

// SerializeInner encodes the update without its own length prefix.
func (p ProtocolUpdate) SerializeInner() []byte {
	return wire.NewWriter(48+len(p.Message)+len(p.SpecificationURL)+len(p.AuxiliaryData)).
		Uint64(uint64(len(p.Message))).
		Write([]byte(p.Message)).
		Uint64(uint64(len(p.SpecificationURL))).
		Write([]byte(p.SpecificationURL)).
		Write(p.SpecificationHash[:]).
		Write(p.AuxiliaryData).
		Bytes()
}

func (p ProtocolUpdate) Serialize() ([]byte, error) {
	inner := p.SerializeInner()
	return wire.Concat(wire.Uint64(uint64(len(inner))), inner), nil
}

// Description names an identity provider or anonymity revoker.
type Description struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Fields returns the texts in the order they are serialized.
func (d Description) Fields() []string {
	return []string{d.Name, d.URL, d.Description}
}

func (d Description) Serialize() ([]byte, error) {
	w := wire.NewWriter(12 + len(d.Name) + len(d.URL) + len(d.Description))
	for _, text := range d.Fields() {
		if uint64(len(text)) > math.MaxUint32 {
			return nil, errors.New("types: description text too long")
		}
		w.Uint32(uint32(len(text))).Write([]byte(text))
	}
	return w.Bytes(), nil
}

type AddIdentityProvider struct {
	IPIdentity   uint32      `json:"ipIdentity"`
	Description  Description `json:"ipDescription"`
	VerifyKey    HexBytes    `json:"ipVerifyKey"`
	CdiVerifyKey Bytes32     `json:"ipCdiVerifyKey"`
}

func (AddIdentityProvider) UpdateType() UpdateType { return UpdateAddIdentityProvider }
func (AddIdentityProvider) isUpdatePayload()       {}

// SerializeInfo encodes the identity provider information without length prefix.
func (p AddIdentityProvider) SerializeInfo() ([]byte, error) {
	description, err := p.Description.Serialize()
	if err != nil {
		return nil, err
	}
	if uint64(len(p.VerifyKey)) > math.MaxUint32 {
		return nil, errors.New("types: identity provider verify key too long")
	}
	return wire.NewWriter(44+len(description)+len(p.VerifyKey)).
		Uint32(p.IPIdentity).
		Write(description).
		Uint32(uint32(len(p.VerifyKey))).
		Write(p.VerifyKey).
		Write(p.CdiVerifyKey[:]).
		Bytes(), nil
}

func (p AddIdentityProvider) Serialize() ([]byte, error) {
	info, err := p.SerializeInfo()
	if err != nil {
		return nil, err
	}
	return wire.Concat(wire.Uint32(uint32(len(info))), info), nil
}

type AddAnonymityRevoker struct {
	ArIdentity  uint32      `json:"arIdentity"`
	Description Description `json:"arDescription"`
	PublicKey   Bytes96     `json:"arPublicKey"`
}

func (AddAnonymityRevoker) UpdateType() UpdateType { return UpdateAddAnonymityRevoker }
func (AddAnonymityRevoker) isUpdatePayload()       {}

// SerializeInfo encodes the anonymity revoker information without length prefix.
func (p AddAnonymityRevoker) SerializeInfo() ([]byte, error) {
	description, err := p.Description.Serialize()
	if err != nil {
		return nil, err
	}
	return wire.NewWriter(100+len(description)).
		Uint32(p.ArIdentity).
		Write(description).
		Write(p.PublicKey[:]).
		Bytes(), nil
}

func (p AddAnonymityRevoker) Serialize() ([]byte, error) {
	info, err := p.SerializeInfo()
	if err != nil {
		return nil, err
	}
	return wire.Concat(wire.Uint32(uint32(len(info))), info), nil
}

// CreatePLT creates a protocol level token.
type CreatePLT struct {
	TokenSymbol              string   `json:"tokenSymbol"`
	TokenModule              Bytes32  `json:"tokenModule"`
	Decimals                 uint8    `json:"decimals"`
	InitializationParameters HexBytes `json:"initializationParameters"`
}

func (CreatePLT) UpdateType() UpdateType { return UpdateCreatePLT }
func (CreatePLT) isUpdatePayload()       {}

// SerializeDetails encodes everything up to and including the length of the
// initialization parameters.
func (p CreatePLT) SerializeDetails() ([]byte, error) {
	if len(p.TokenSymbol) > math.MaxUint8 {
		return nil, errors.New("types: token symbol longer than 255 bytes")
	}
	if uint64(len(p.InitializationParameters)) > math.MaxUint32 {
		return nil, errors.New("types: initialization parameters too long")
	}
	return wire.NewWriter(38+len(p.TokenSymbol)).
		Byte(byte(len(p.TokenSymbol))).
		Write([]byte(p.TokenSymbol)).
		Write(p.TokenModule[:]).
		Byte(p.Decimals).
		Uint32(uint32(len(p.InitializationParameters))).
		Bytes(), nil
}

func (p CreatePLT) Serialize() ([]byte, error) {
	details, err := p.SerializeDetails()
	if err != nil {
		return nil, err
	}
	return wire.Concat(details, p.InitializationParameters), nil
}
