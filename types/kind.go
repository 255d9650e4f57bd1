// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package types

import "fmt"

// TransactionKind is the on-chain discriminant of an account transaction payload.
type TransactionKind uint8

const (
	KindAddBaker                    TransactionKind = 4
	KindSimpleTransfer              TransactionKind = 3
	KindEncryptedTransfer           TransactionKind = 16
	KindTransferToEncrypted         TransactionKind = 17
	KindTransferToPublic            TransactionKind = 18
	KindTransferWithSchedule        TransactionKind = 19
	KindUpdateCredentials           TransactionKind = 20
	KindRegisterData                TransactionKind = 21
	KindSimpleTransferWithMemo      TransactionKind = 22
	KindEncryptedTransferWithMemo   TransactionKind = 23
	KindTransferWithScheduleAndMemo TransactionKind = 24
	KindConfigureBaker              TransactionKind = 25
	KindConfigureDelegation         TransactionKind = 26
)

var transactionKindNames = map[TransactionKind]string{
	KindAddBaker:                    "AddBaker",
	KindSimpleTransfer:              "SimpleTransfer",
	KindEncryptedTransfer:           "EncryptedTransfer",
	KindTransferToEncrypted:         "TransferToEncrypted",
	KindTransferToPublic:            "TransferToPublic",
	KindTransferWithSchedule:        "TransferWithSchedule",
	KindUpdateCredentials:           "UpdateCredentials",
	KindRegisterData:                "RegisterData",
	KindSimpleTransferWithMemo:      "SimpleTransferWithMemo",
	KindEncryptedTransferWithMemo:   "EncryptedTransferWithMemo",
	KindTransferWithScheduleAndMemo: "TransferWithScheduleAndMemo",
	KindConfigureBaker:              "ConfigureBaker",
	KindConfigureDelegation:         "ConfigureDelegation",
}

func (k TransactionKind) String() string {
	if name, ok := transactionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TransactionKind(%d)", uint8(k))
}

// UpdateType is the discriminant byte of a chain update instruction.
type UpdateType uint8

const (
	UpdateProtocol                   UpdateType = 1
	UpdateElectionDifficulty         UpdateType = 2
	UpdateEuroPerEnergy              UpdateType = 3
	UpdateMicroCCDPerEuro            UpdateType = 4
	UpdateFoundationAccount          UpdateType = 5
	UpdateMintDistribution           UpdateType = 6
	UpdateTransactionFeeDistribution UpdateType = 7
	UpdateGASRewards                 UpdateType = 8
	UpdateBakerStakeThreshold        UpdateType = 9
	UpdateRootKeys                   UpdateType = 10
	UpdateLevel1Keys                 UpdateType = 11
	UpdateAddAnonymityRevoker        UpdateType = 12
	UpdateAddIdentityProvider        UpdateType = 13
	UpdateCooldownParameters         UpdateType = 14
	UpdatePoolParameters             UpdateType = 15
	UpdateTimeParameters             UpdateType = 16
	UpdateMintDistributionCPV1       UpdateType = 17
	UpdateGASRewardsCPV2             UpdateType = 18
	UpdateTimeoutParameters          UpdateType = 19
	UpdateMinBlockTime               UpdateType = 20
	UpdateBlockEnergyLimit           UpdateType = 21
	UpdateFinalizationCommittee      UpdateType = 22
	UpdateValidatorScore             UpdateType = 23
	UpdateCreatePLT                  UpdateType = 24
)

var updateTypeNames = map[UpdateType]string{
	UpdateProtocol:                   "Protocol",
	UpdateElectionDifficulty:         "ElectionDifficulty",
	UpdateEuroPerEnergy:              "EuroPerEnergy",
	UpdateMicroCCDPerEuro:            "MicroCCDPerEuro",
	UpdateFoundationAccount:          "FoundationAccount",
	UpdateMintDistribution:           "MintDistribution",
	UpdateTransactionFeeDistribution: "TransactionFeeDistribution",
	UpdateGASRewards:                 "GASRewards",
	UpdateBakerStakeThreshold:        "BakerStakeThreshold",
	UpdateRootKeys:                   "Root",
	UpdateLevel1Keys:                 "Level1",
	UpdateAddAnonymityRevoker:        "AddAnonymityRevoker",
	UpdateAddIdentityProvider:        "AddIdentityProvider",
	UpdateCooldownParameters:         "CooldownParameters",
	UpdatePoolParameters:             "PoolParameters",
	UpdateTimeParameters:             "TimeParameters",
	UpdateMintDistributionCPV1:       "MintDistributionCPV1",
	UpdateGASRewardsCPV2:             "GASRewardsCPV2",
	UpdateTimeoutParameters:          "TimeoutParameters",
	UpdateMinBlockTime:               "MinBlockTime",
	UpdateBlockEnergyLimit:           "BlockEnergyLimit",
	UpdateFinalizationCommittee:      "FinalizationCommittee",
	UpdateValidatorScore:             "ValidatorScore",
	UpdateCreatePLT:                  "CreatePLT",
}

func (u UpdateType) String() string {
	if name, ok := updateTypeNames[u]; ok {
		return name
	}
	return fmt.Sprintf("UpdateType(%d)", uint8(u))
}
