// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// MaxMemoSize bounds the CBOR encoded memo carried by a transfer.
const MaxMemoSize = 256

var ErrMemoTooLong = errors.New("wire: memo exceeds 256 bytes")

// EncodeMemo returns the CBOR text-string encoding of memo.
func EncodeMemo(memo string) ([]byte, error) {
	encoded, err := cbor.Marshal(memo)
	if err != nil {
		return nil, fmt.Errorf("encode memo: %w", err)
	}
	if len(encoded) > MaxMemoSize {
		return nil, ErrMemoTooLong
	}
	return encoded, nil
}
