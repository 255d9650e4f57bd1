// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package types

import (
	"encoding/hex"
	"fmt"
)

// HexBytes is a variable length byte string carried as hex text.
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *HexBytes) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("types: invalid hex: %w", err)
	}
	*h = decoded
	return nil
}

// Fixed width byte strings used by keys, proofs and encrypted amounts.
type (
	Bytes32  [32]byte
	Bytes48  [48]byte
	Bytes64  [64]byte
	Bytes96  [96]byte
	Bytes192 [192]byte
)

func (b Bytes32) MarshalText() ([]byte, error)      { return marshalFixed(b[:]) }
func (b *Bytes32) UnmarshalText(text []byte) error  { return unmarshalFixed(text, b[:]) }
func (b Bytes48) MarshalText() ([]byte, error)      { return marshalFixed(b[:]) }
func (b *Bytes48) UnmarshalText(text []byte) error  { return unmarshalFixed(text, b[:]) }
func (b Bytes64) MarshalText() ([]byte, error)      { return marshalFixed(b[:]) }
func (b *Bytes64) UnmarshalText(text []byte) error  { return unmarshalFixed(text, b[:]) }
func (b Bytes96) MarshalText() ([]byte, error)      { return marshalFixed(b[:]) }
func (b *Bytes96) UnmarshalText(text []byte) error  { return unmarshalFixed(text, b[:]) }
func (b Bytes192) MarshalText() ([]byte, error)     { return marshalFixed(b[:]) }
func (b *Bytes192) UnmarshalText(text []byte) error { return unmarshalFixed(text, b[:]) }

func marshalFixed(b []byte) ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func unmarshalFixed(text, dst []byte) error {
	if hex.DecodedLen(len(text)) != len(dst) {
		return fmt.Errorf("types: expected %d hex encoded bytes, got %d characters", len(dst), len(text))
	}
	if _, err := hex.Decode(dst, text); err != nil {
		return fmt.Errorf("types: invalid hex: %w", err)
	}
	return nil
}
