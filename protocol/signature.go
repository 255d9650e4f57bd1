// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"errors"
	"fmt"
)

// SignatureSize is the length of an ed25519 signature.
const SignatureSize = 64

var ErrMissingSignature = errors.New("protocol: response does not carry a signature")

// Signature extracts the signature from the response to the final frame of a
// signing flow.
func Signature(resp []byte) ([]byte, error) {
	if len(resp) < SignatureSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrMissingSignature, len(resp))
	}
	sig := make([]byte, SignatureSize)
	copy(sig, resp)
	return sig, nil
}
