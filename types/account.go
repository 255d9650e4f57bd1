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

// EncryptedAmountSize is the size of an encrypted amount.
const EncryptedAmountSize = 192

var (
	ErrEmptySchedule = errors.New("types: schedule has no release points")
	ErrLongSchedule  = errors.New("types: schedule has more than 255 release points")
	ErrLongProof     = errors.New("types: proof exceeds 65535 bytes")
	ErrLongData      = errors.New("types: register data exceeds 256 bytes")
)

// MaxRegisterDataSize bounds RegisterData payloads.
const MaxRegisterDataSize = 256

type SimpleTransfer struct {
	To     wire.Address `json:"toAddress"`
	Amount uint64       `json:"amount"`
}

func (SimpleTransfer) Kind() TransactionKind { return KindSimpleTransfer }
func (SimpleTransfer) isAccountPayload()     {}

func (p SimpleTransfer) Serialize() ([]byte, error) {
	return wire.NewWriter(41).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Uint64(p.Amount).
		Bytes(), nil
}

type SimpleTransferWithMemo struct {
	To     wire.Address `json:"toAddress"`
	Memo   string       `json:"memo"`
	Amount uint64       `json:"amount"`
}

func (SimpleTransferWithMemo) Kind() TransactionKind { return KindSimpleTransferWithMemo }
func (SimpleTransferWithMemo) isAccountPayload()     {}

func (p SimpleTransferWithMemo) Serialize() ([]byte, error) {
	memo, err := wire.EncodeMemo(p.Memo)
	if err != nil {
		return nil, err
	}
	return wire.NewWriter(43+len(memo)).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Uint16(uint16(len(memo))).
		Write(memo).
		Uint64(p.Amount).
		Bytes(), nil
}

// SchedulePoint releases Amount at Timestamp (milliseconds since the epoch).
type SchedulePoint struct {
	Timestamp uint64 `json:"timestamp"`
	Amount    uint64 `json:"amount"`
}

// SchedulePointSize is the serialized size of a SchedulePoint.
const SchedulePointSize = 16

func (s SchedulePoint) Serialize() []byte {
	return wire.NewWriter(SchedulePointSize).Uint64(s.Timestamp).Uint64(s.Amount).Bytes()
}

func checkSchedule(schedule []SchedulePoint) error {
	if len(schedule) == 0 {
		return ErrEmptySchedule
	}
	if len(schedule) > math.MaxUint8 {
		return ErrLongSchedule
	}
	return nil
}

type TransferWithSchedule struct {
	To       wire.Address    `json:"toAddress"`
	Schedule []SchedulePoint `json:"schedule"`
}

func (TransferWithSchedule) Kind() TransactionKind { return KindTransferWithSchedule }
func (TransferWithSchedule) isAccountPayload()     {}

// SerializeBase encodes the kind, receiver and number of release points.
func (p TransferWithSchedule) SerializeBase() ([]byte, error) {
	if err := checkSchedule(p.Schedule); err != nil {
		return nil, err
	}
	return wire.NewWriter(34).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Byte(byte(len(p.Schedule))).
		Bytes(), nil
}

func (p TransferWithSchedule) Serialize() ([]byte, error) {
	base, err := p.SerializeBase()
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter(len(base) + SchedulePointSize*len(p.Schedule)).Write(base)
	for _, point := range p.Schedule {
		w.Write(point.Serialize())
	}
	return w.Bytes(), nil
}

type TransferWithScheduleAndMemo struct {
	To       wire.Address    `json:"toAddress"`
	Memo     string          `json:"memo"`
	Schedule []SchedulePoint `json:"schedule"`
}

func (TransferWithScheduleAndMemo) Kind() TransactionKind { return KindTransferWithScheduleAndMemo }
func (TransferWithScheduleAndMemo) isAccountPayload()     {}

// SerializeBase encodes the kind, receiver and number of release points.
// The memo is not part of it; the device receives it in a separate step.
func (p TransferWithScheduleAndMemo) SerializeBase() ([]byte, error) {
	if err := checkSchedule(p.Schedule); err != nil {
		return nil, err
	}
	return wire.NewWriter(34).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Byte(byte(len(p.Schedule))).
		Bytes(), nil
}

func (p TransferWithScheduleAndMemo) Serialize() ([]byte, error) {
	if err := checkSchedule(p.Schedule); err != nil {
		return nil, err
	}
	memo, err := wire.EncodeMemo(p.Memo)
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter(36 + len(memo) + SchedulePointSize*len(p.Schedule)).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Uint16(uint16(len(memo))).
		Write(memo).
		Byte(byte(len(p.Schedule)))
	for _, point := range p.Schedule {
		w.Write(point.Serialize())
	}
	return w.Bytes(), nil
}

type TransferToEncrypted struct {
	Amount uint64 `json:"amount"`
}

func (TransferToEncrypted) Kind() TransactionKind { return KindTransferToEncrypted }
func (TransferToEncrypted) isAccountPayload()     {}

func (p TransferToEncrypted) Serialize() ([]byte, error) {
	return wire.NewWriter(9).Byte(byte(p.Kind())).Uint64(p.Amount).Bytes(), nil
}

// EncryptedTransfer moves an encrypted amount between shielded balances.
type EncryptedTransfer struct {
	To              wire.Address `json:"toAddress"`
	RemainingAmount Bytes192     `json:"remainingEncryptedAmount"`
	TransferAmount  Bytes192     `json:"transferAmount"`
	Index           uint64       `json:"index"`
	Proof           HexBytes     `json:"proof"`
}

func (EncryptedTransfer) Kind() TransactionKind { return KindEncryptedTransfer }
func (EncryptedTransfer) isAccountPayload()     {}

func (p EncryptedTransfer) Serialize() ([]byte, error) {
	if len(p.Proof) > math.MaxUint16 {
		return nil, ErrLongProof
	}
	return wire.NewWriter(1+32+2*EncryptedAmountSize+10+len(p.Proof)).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Write(p.RemainingAmount[:]).
		Write(p.TransferAmount[:]).
		Uint64(p.Index).
		Uint16(uint16(len(p.Proof))).
		Write(p.Proof).
		Bytes(), nil
}

type EncryptedTransferWithMemo struct {
	To              wire.Address `json:"toAddress"`
	Memo            string       `json:"memo"`
	RemainingAmount Bytes192     `json:"remainingEncryptedAmount"`
	TransferAmount  Bytes192     `json:"transferAmount"`
	Index           uint64       `json:"index"`
	Proof           HexBytes     `json:"proof"`
}

func (EncryptedTransferWithMemo) Kind() TransactionKind { return KindEncryptedTransferWithMemo }
func (EncryptedTransferWithMemo) isAccountPayload()     {}

func (p EncryptedTransferWithMemo) Serialize() ([]byte, error) {
	if len(p.Proof) > math.MaxUint16 {
		return nil, ErrLongProof
	}
	memo, err := wire.EncodeMemo(p.Memo)
	if err != nil {
		return nil, err
	}
	return wire.NewWriter(1+32+2+len(memo)+2*EncryptedAmountSize+10+len(p.Proof)).
		Byte(byte(p.Kind())).
		Write(p.To[:]).
		Uint16(uint16(len(memo))).
		Write(memo).
		Write(p.RemainingAmount[:]).
		Write(p.TransferAmount[:]).
		Uint64(p.Index).
		Uint16(uint16(len(p.Proof))).
		Write(p.Proof).
		Bytes(), nil
}

// TransferToPublic moves an amount from the shielded to the public balance.
type TransferToPublic struct {
	RemainingAmount Bytes192 `json:"remainingEncryptedAmount"`
	Amount          uint64   `json:"transferAmount"`
	Index           uint64   `json:"index"`
	Proof           HexBytes `json:"proof"`
}

func (TransferToPublic) Kind() TransactionKind { return KindTransferToPublic }
func (TransferToPublic) isAccountPayload()     {}

// SerializeData encodes the remaining amount, amount and aggregation index.
func (p TransferToPublic) SerializeData() []byte {
	return wire.NewWriter(EncryptedAmountSize + 16).
		Write(p.RemainingAmount[:]).
		Uint64(p.Amount).
		Uint64(p.Index).
		Bytes()
}

func (p TransferToPublic) Serialize() ([]byte, error) {
	if len(p.Proof) > math.MaxUint16 {
		return nil, ErrLongProof
	}
	return wire.NewWriter(1+EncryptedAmountSize+18+len(p.Proof)).
		Byte(byte(p.Kind())).
		Write(p.SerializeData()).
		Uint16(uint16(len(p.Proof))).
		Write(p.Proof).
		Bytes(), nil
}

// AddBaker registers the sender account as a baker.
type AddBaker struct {
	ElectionVerifyKey    Bytes32 `json:"electionVerifyKey"`
	SignatureVerifyKey   Bytes32 `json:"signatureVerifyKey"`
	AggregationVerifyKey Bytes96 `json:"aggregationVerifyKey"`
	ProofSignature       Bytes64 `json:"proofSig"`
	ProofElection        Bytes64 `json:"proofElection"`
	ProofAggregation     Bytes64 `json:"proofAggregation"`
	BakingStake          uint64  `json:"bakingStake"`
	RestakeEarnings      bool    `json:"restakeEarnings"`
}

func (AddBaker) Kind() TransactionKind { return KindAddBaker }
func (AddBaker) isAccountPayload()     {}

// SerializeKeys encodes the three verification keys.
func (p AddBaker) SerializeKeys() []byte {
	return wire.Concat(p.ElectionVerifyKey[:], p.SignatureVerifyKey[:], p.AggregationVerifyKey[:])
}

// SerializeProofsAndStake encodes the key proofs, stake and restake flag.
func (p AddBaker) SerializeProofsAndStake() []byte {
	return wire.NewWriter(3*64+9).
		Write(p.ProofSignature[:]).
		Write(p.ProofElection[:]).
		Write(p.ProofAggregation[:]).
		Uint64(p.BakingStake).
		Bool(p.RestakeEarnings).
		Bytes()
}

func (p AddBaker) Serialize() ([]byte, error) {
	return wire.Concat([]byte{byte(p.Kind())}, p.SerializeKeys(), p.SerializeProofsAndStake()), nil
}

// DelegationTarget is either passive delegation or a specific baker pool.
type DelegationTarget struct {
	Passive bool   `json:"passive"`
	BakerID uint64 `json:"bakerId,omitempty"`
}

func (d DelegationTarget) serialize(w *wire.Writer) {
	if d.Passive {
		w.Byte(0)
		return
	}
	w.Byte(1).Uint64(d.BakerID)
}

// ConfigureDelegation changes the delegation of the sender. Nil fields are
// left unchanged and omitted from the bitmap.
type ConfigureDelegation struct {
	Capital          *uint64           `json:"stake,omitempty"`
	RestakeEarnings  *bool             `json:"restakeEarnings,omitempty"`
	DelegationTarget *DelegationTarget `json:"delegationTarget,omitempty"`
}

func (ConfigureDelegation) Kind() TransactionKind { return KindConfigureDelegation }
func (ConfigureDelegation) isAccountPayload()     {}

func (p ConfigureDelegation) Bitmap() uint16 {
	var bitmap uint16
	if p.Capital != nil {
		bitmap |= 1 << 0
	}
	if p.RestakeEarnings != nil {
		bitmap |= 1 << 1
	}
	if p.DelegationTarget != nil {
		bitmap |= 1 << 2
	}
	return bitmap
}

func (p ConfigureDelegation) Serialize() ([]byte, error) {
	w := wire.NewWriter(21).Byte(byte(p.Kind())).Uint16(p.Bitmap())
	if p.Capital != nil {
		w.Uint64(*p.Capital)
	}
	if p.RestakeEarnings != nil {
		w.Bool(*p.RestakeEarnings)
	}
	if p.DelegationTarget != nil {
		p.DelegationTarget.serialize(w)
	}
	return w.Bytes(), nil
}

// OpenStatus controls whether a baker pool accepts delegators.
type OpenStatus uint8

const (
	OpenForAll OpenStatus = iota
	ClosedForNew
	ClosedForAll
)

// BakerKeys are the baker's verification keys with their ownership proofs.
type BakerKeys struct {
	ElectionVerifyKey    Bytes32 `json:"electionVerifyKey"`
	ProofElection        Bytes64 `json:"proofElection"`
	SignatureVerifyKey   Bytes32 `json:"signatureVerifyKey"`
	ProofSignature       Bytes64 `json:"proofSig"`
	AggregationVerifyKey Bytes96 `json:"aggregationVerifyKey"`
	ProofAggregation     Bytes64 `json:"proofAggregation"`
}

func (k BakerKeys) SerializeKeys() []byte {
	return wire.Concat(k.ElectionVerifyKey[:], k.SignatureVerifyKey[:], k.AggregationVerifyKey[:])
}

func (k BakerKeys) SerializeProofs() []byte {
	return wire.Concat(k.ProofElection[:], k.ProofSignature[:], k.ProofAggregation[:])
}

// ConfigureBaker adds, updates or removes the sender's baker. Nil fields are
// left unchanged and omitted from the bitmap.
type ConfigureBaker struct {
	Capital                      *uint64     `json:"stake,omitempty"`
	RestakeEarnings              *bool       `json:"restakeEarnings,omitempty"`
	OpenForDelegation            *OpenStatus `json:"openForDelegation,omitempty"`
	Keys                         *BakerKeys  `json:"keys,omitempty"`
	MetadataURL                  *string     `json:"metadataUrl,omitempty"`
	TransactionFeeCommission     *uint32     `json:"transactionFeeCommission,omitempty"`
	BakingRewardCommission       *uint32     `json:"bakingRewardCommission,omitempty"`
	FinalizationRewardCommission *uint32     `json:"finalizationRewardCommission,omitempty"`
}

func (ConfigureBaker) Kind() TransactionKind { return KindConfigureBaker }
func (ConfigureBaker) isAccountPayload()     {}

func (p ConfigureBaker) Bitmap() uint16 {
	var bitmap uint16
	set := func(bit uint, present bool) {
		if present {
			bitmap |= 1 << bit
		}
	}
	set(0, p.Capital != nil)
	set(1, p.RestakeEarnings != nil)
	set(2, p.OpenForDelegation != nil)
	set(3, p.Keys != nil)
	set(4, p.MetadataURL != nil)
	set(5, p.TransactionFeeCommission != nil)
	set(6, p.BakingRewardCommission != nil)
	set(7, p.FinalizationRewardCommission != nil)
	return bitmap
}

// SerializeStakeAndKeys encodes capital, restake flag, open status and
// verification keys, each only when present.
func (p ConfigureBaker) SerializeStakeAndKeys() []byte {
	w := wire.NewWriter(170)
	if p.Capital != nil {
		w.Uint64(*p.Capital)
	}
	if p.RestakeEarnings != nil {
		w.Bool(*p.RestakeEarnings)
	}
	if p.OpenForDelegation != nil {
		w.Byte(byte(*p.OpenForDelegation))
	}
	if p.Keys != nil {
		w.Write(p.Keys.SerializeKeys())
	}
	return w.Bytes()
}

// SerializeCommissions encodes the commission rates that are present.
func (p ConfigureBaker) SerializeCommissions() []byte {
	w := wire.NewWriter(12)
	for _, rate := range []*uint32{p.TransactionFeeCommission, p.BakingRewardCommission, p.FinalizationRewardCommission} {
		if rate != nil {
			w.Uint32(*rate)
		}
	}
	return w.Bytes()
}

func (p ConfigureBaker) Serialize() ([]byte, error) {
	w := wire.NewWriter(400).Byte(byte(p.Kind())).Uint16(p.Bitmap())
	if p.Capital != nil {
		w.Uint64(*p.Capital)
	}
	if p.RestakeEarnings != nil {
		w.Bool(*p.RestakeEarnings)
	}
	if p.OpenForDelegation != nil {
		w.Byte(byte(*p.OpenForDelegation))
	}
	if p.Keys != nil {
		w.Write(p.Keys.ElectionVerifyKey[:]).
			Write(p.Keys.ProofElection[:]).
			Write(p.Keys.SignatureVerifyKey[:]).
			Write(p.Keys.ProofSignature[:]).
			Write(p.Keys.AggregationVerifyKey[:]).
			Write(p.Keys.ProofAggregation[:])
	}
	if p.MetadataURL != nil {
		if len(*p.MetadataURL) > math.MaxUint16 {
			return nil, fmt.Errorf("types: metadata url of %d bytes is too long", len(*p.MetadataURL))
		}
		w.Uint16(uint16(len(*p.MetadataURL))).Write([]byte(*p.MetadataURL))
	}
	w.Write(p.SerializeCommissions())
	return w.Bytes(), nil
}

// RegisterData records arbitrary data on chain.
type RegisterData struct {
	Data HexBytes `json:"data"`
}

func (RegisterData) Kind() TransactionKind { return KindRegisterData }
func (RegisterData) isAccountPayload()     {}

func (p RegisterData) Serialize() ([]byte, error) {
	if len(p.Data) > MaxRegisterDataSize {
		return nil, ErrLongData
	}
	return wire.NewWriter(3+len(p.Data)).
		Byte(byte(p.Kind())).
		Uint16(uint16(len(p.Data))).
		Write(p.Data).
		Bytes(), nil
}

// IndexedCredential is a credential added at a given index of an account.
type IndexedCredential struct {
	Index      uint8                    `json:"index"`
	Credential CredentialDeploymentInfo `json:"credential"`
}

// UpdateCredentials adds and removes credentials of the sender account and
// sets its new signature threshold.
type UpdateCredentials struct {
	NewCredentials []IndexedCredential `json:"addedCredentials"`
	RemoveCredIDs  []Bytes48           `json:"removedCredIds"`
	NewThreshold   uint8               `json:"newThreshold"`
}

func (UpdateCredentials) Kind() TransactionKind { return KindUpdateCredentials }
func (UpdateCredentials) isAccountPayload()     {}

func (p UpdateCredentials) Serialize() ([]byte, error) {
	if len(p.NewCredentials) > math.MaxUint8 || len(p.RemoveCredIDs) > math.MaxUint8 {
		return nil, errors.New("types: more than 255 credentials added or removed")
	}
	w := wire.NewWriter(512).Byte(byte(p.Kind())).Byte(byte(len(p.NewCredentials)))
	for _, added := range p.NewCredentials {
		cred, err := added.Credential.Serialize()
		if err != nil {
			return nil, err
		}
		w.Byte(added.Index).Write(cred)
	}
	w.Byte(byte(len(p.RemoveCredIDs)))
	for _, id := range p.RemoveCredIDs {
		w.Write(id[:])
	}
	w.Byte(p.NewThreshold)
	return w.Bytes(), nil
}
