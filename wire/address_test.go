// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sequentialAddress = "2wkH4kHMn2WPndf8CxmsoFkX93ouZMJUwTBFSZpDCeNeGWa7dj"

func TestDecodeAddress(t *testing.T) {
	a, err := DecodeAddress(sequentialAddress)
	require.NoError(t, err)
	for i, b := range a {
		require.Equal(t, byte(i), b)
	}
	assert.Equal(t, sequentialAddress, a.String())
}

func TestDecodeAddressWrongVersion(t *testing.T) {
	_, err := DecodeAddress("116qJFWMMHFy3xDdLmvUeyc2S6FrWRhJP51HsvDYdz9fTk5aq")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDecodeAddressBadChecksum(t *testing.T) {
	_, err := DecodeAddress("2wkH4kHMn2WPndf8CxmsoFkX93ouZMJUwTBFSZpDCeNeGWa7dk")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestAddressJSON(t *testing.T) {
	var payload struct {
		To Address `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"to":"`+sequentialAddress+`"}`), &payload))
	assert.Equal(t, byte(31), payload.To[31])

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":"`+sequentialAddress+`"}`, string(out))
}

func TestEncodeMemoShortText(t *testing.T) {
	encoded, err := EncodeMemo("hello")
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x65}, "hello"...), encoded)

	_, err = EncodeMemo(string(make([]byte, 300)))
	require.ErrorIs(t, err, ErrMemoTooLong)
}
