// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AddressVersion is the base58check version byte of account addresses.
const AddressVersion byte = 1

const AddressLength = 32

var ErrInvalidAddress = errors.New("wire: invalid account address")

// Address is a raw 32 byte account address.
type Address [AddressLength]byte

// DecodeAddress parses a base58check encoded account address.
func DecodeAddress(s string) (Address, error) {
	var a Address
	raw, version, err := base58.CheckDecode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if version != AddressVersion {
		return a, fmt.Errorf("%w: version byte %d", ErrInvalidAddress, version)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// MustDecodeAddress is DecodeAddress for constants and tests.
func MustDecodeAddress(s string) Address {
	a, err := DecodeAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return base58.CheckEncode(a[:], AddressVersion)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}
