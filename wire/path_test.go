// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePathAccount(t *testing.T) {
	encoded, err := EncodePath(AccountPath(3, 1, 0))
	require.NoError(t, err)

	expected := []byte{
		7,
		0x00, 0x00, 0x04, 0x51,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, expected, encoded)
}

func TestEncodePathDeterministic(t *testing.T) {
	paths := [][]uint32{
		{},
		{0},
		{2},
		{0, 1, 2, 3, 4},
		{1, 0, 7},
		{0, 0xffffffff, 2, 0x80000000, 9},
	}
	for _, path := range paths {
		first, err := EncodePath(path)
		require.NoError(t, err)
		second, err := EncodePath(path)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, byte(len(path)+2), first[0])
		assert.Len(t, first, 1+4*(len(path)+2))
	}
}

func TestEncodePathGovernanceArity(t *testing.T) {
	tests := []struct {
		name  string
		path  []uint32
		valid bool
	}{
		{"three components", []uint32{1, 5, 9}, true},
		{"governance helper", GovernancePath(GovernanceLevel2, 4), true},
		{"too short", []uint32{1, 5}, false},
		{"subtree only", []uint32{1}, false},
		{"too long", []uint32{1, 5, 9, 2}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodePath(tc.path)
			if tc.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestEncodePathUnknownSubtree(t *testing.T) {
	_, err := EncodePath([]uint32{3, 0, 0})
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestEncodePathPairing(t *testing.T) {
	encoded, err := EncodePath(PairingPath())
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0, 0, 0x04, 0x51, 0, 0, 0, 0, 0, 0, 0, 2}, encoded)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want []uint32
	}{
		{"0/3/2/1/0", AccountPath(3, 1, 0)},
		{"m/1105/0/0/3/2/1/0", AccountPath(3, 1, 0)},
		{"1/2/7", GovernancePath(GovernanceLevel2, 7)},
		{" 2 ", PairingPath()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "0/x", "1/2", "9/0", "0/-1", "0/4294967296"} {
		_, err := ParsePath(bad)
		require.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}
