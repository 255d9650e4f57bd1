// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"errors"
	"math"

	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

func kindByte(k types.TransactionKind) []byte { return []byte{byte(k)} }

// SignSimpleTransfer signs a plain transfer in a single frame.
func (p *Protocol) SignSimpleTransfer(ctx context.Context, path []uint32, header types.AccountHeader, payload types.SimpleTransfer) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	body, err := payload.Serialize()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransfer, "simple transfer")
	if err := e.send(0, 0, prefix, body); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignSimpleTransferWithMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.SimpleTransferWithMemo) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	memo, err := wire.EncodeMemo(payload.Memo)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransferWithMemo, "transfer with memo")
	if err := e.send(1, 0, prefix, kindByte(payload.Kind()), payload.To[:], wire.Uint16(uint16(len(memo)))); err != nil {
		return nil, err
	}
	if err := e.stream(2, 0, memo); err != nil {
		return nil, err
	}
	if err := e.send(3, 0, wire.Uint64(payload.Amount)); err != nil {
		return nil, err
	}
	return e.signature()
}

// sendSchedule streams release points in batches; the last batch is answered
// with the signature.
func (e *exchange) sendSchedule(p1 byte, schedule []types.SchedulePoint) error {
	for _, batch := range wire.Batch(schedule, wire.SchedulePointsPerFrame) {
		w := wire.NewWriter(types.SchedulePointSize * len(batch))
		for _, point := range batch {
			w.Write(point.Serialize())
		}
		if err := e.send(p1, 0, w.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Protocol) SignTransferWithSchedule(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferWithSchedule) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	base, err := payload.SerializeBase()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransferWithSchedule, "transfer with schedule")
	if err := e.send(0, 0, prefix, base); err != nil {
		return nil, err
	}
	if err := e.sendSchedule(1, payload.Schedule); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignTransferWithScheduleAndMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferWithScheduleAndMemo) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	base, err := payload.SerializeBase()
	if err != nil {
		return nil, err
	}
	memo, err := wire.EncodeMemo(payload.Memo)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransferWithScheduleAndMemo, "transfer with schedule and memo")
	if err := e.send(2, 0, prefix, base, wire.Uint16(uint16(len(memo)))); err != nil {
		return nil, err
	}
	if err := e.stream(3, 0, memo); err != nil {
		return nil, err
	}
	if err := e.sendSchedule(1, payload.Schedule); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignTransferToEncrypted(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferToEncrypted) ([]byte, error) {
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	body, err := payload.Serialize()
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransferToEncrypted, "transfer to shielded")
	if err := e.send(0, 0, prefix, body); err != nil {
		return nil, err
	}
	return e.signature()
}

// encryptedTail sends the remaining amount, transfer amount, index and proof
// shared by both encrypted transfer flows.
func (e *exchange) encryptedTail(remaining, amount types.Bytes192, index uint64, proof []byte) error {
	if err := e.send(1, 0, remaining[:]); err != nil {
		return err
	}
	if err := e.send(2, 0, amount[:], wire.Uint64(index), wire.Uint16(uint16(len(proof)))); err != nil {
		return err
	}
	return e.stream(3, 0, proof)
}

// checkProof rejects proofs the device cannot be sent: the proof section
// has no empty terminator, and its length travels as a uint16.
func checkProof(proof []byte) error {
	switch {
	case len(proof) == 0:
		return ErrMissingProof
	case len(proof) > math.MaxUint16:
		return types.ErrLongProof
	}
	return nil
}

func (p *Protocol) SignEncryptedTransfer(ctx context.Context, path []uint32, header types.AccountHeader, payload types.EncryptedTransfer) ([]byte, error) {
	if err := checkProof(payload.Proof); err != nil {
		return nil, err
	}
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignEncryptedTransfer, "shielded transfer")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind()), payload.To[:]); err != nil {
		return nil, err
	}
	if err := e.encryptedTail(payload.RemainingAmount, payload.TransferAmount, payload.Index, payload.Proof); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignEncryptedTransferWithMemo(ctx context.Context, path []uint32, header types.AccountHeader, payload types.EncryptedTransferWithMemo) ([]byte, error) {
	if err := checkProof(payload.Proof); err != nil {
		return nil, err
	}
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}
	memo, err := wire.EncodeMemo(payload.Memo)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignEncryptedTransferWithMemo, "shielded transfer with memo")
	if err := e.send(4, 0, prefix, kindByte(payload.Kind()), payload.To[:], wire.Uint16(uint16(len(memo)))); err != nil {
		return nil, err
	}
	if err := e.stream(5, 0, memo); err != nil {
		return nil, err
	}
	if err := e.encryptedTail(payload.RemainingAmount, payload.TransferAmount, payload.Index, payload.Proof); err != nil {
		return nil, err
	}
	return e.signature()
}

func (p *Protocol) SignTransferToPublic(ctx context.Context, path []uint32, header types.AccountHeader, payload types.TransferToPublic) ([]byte, error) {
	if err := checkProof(payload.Proof); err != nil {
		return nil, err
	}
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignTransferToPublic, "transfer to public")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind())); err != nil {
		return nil, err
	}
	if err := e.send(1, 0, payload.SerializeData(), wire.Uint16(uint16(len(payload.Proof)))); err != nil {
		return nil, err
	}
	if err := e.stream(2, 0, payload.Proof); err != nil {
		return nil, err
	}
	return e.signature()
}

var errEmptyData = errors.New("protocol: register data is empty")

func (p *Protocol) SignRegisterData(ctx context.Context, path []uint32, header types.AccountHeader, payload types.RegisterData) ([]byte, error) {
	if len(payload.Data) == 0 {
		return nil, errEmptyData
	}
	prefix, err := accountPrefix(path, header, payload)
	if err != nil {
		return nil, err
	}

	e := p.begin(ctx, InsSignRegisterData, "register data")
	if err := e.send(0, 0, prefix, kindByte(payload.Kind()), wire.Uint16(uint16(len(payload.Data)))); err != nil {
		return nil, err
	}
	if err := e.stream(1, 0, payload.Data); err != nil {
		return nil, err
	}
	return e.signature()
}
