// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestWrapCommandAPDUSinglePacket(t *testing.T) {
	command := []byte{0xe0, 0x01, 0x00, 0x00, 0x00}
	packets, err := WrapCommandAPDU(Channel, command, PacketSize)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	expected := make([]byte, PacketSize)
	copy(expected, []byte{0x01, 0x01, 0x05, 0x00, 0x00, 0x00, 0x05, 0xe0, 0x01, 0x00, 0x00, 0x00})
	assert.Equal(t, expected, packets[0])
}

func TestWrapCommandAPDUMultiplePackets(t *testing.T) {
	command := sequence(200)
	packets, err := WrapCommandAPDU(Channel, command, PacketSize)
	require.NoError(t, err)
	// 57 bytes in the first packet, 59 in each following one
	require.Len(t, packets, 4)

	for i, packet := range packets {
		require.Len(t, packet, PacketSize)
		assert.Equal(t, []byte{0x01, 0x01, 0x05, 0x00, byte(i)}, packet[:5], "packet %d", i)
	}
	assert.Equal(t, []byte{0x00, 200}, packets[0][5:7])
	assert.Equal(t, command[:57], packets[0][7:])
	assert.Equal(t, command[57:116], packets[1][5:])
	assert.Equal(t, command[175:], packets[3][5:5+25])
	assert.Equal(t, make([]byte, PacketSize-30), packets[3][30:])
}

func TestWrapCommandAPDUErrors(t *testing.T) {
	_, err := WrapCommandAPDU(Channel, []byte{1}, 7)
	require.ErrorIs(t, err, ErrPacketSize)

	_, err = WrapCommandAPDU(Channel, make([]byte, 70000), PacketSize)
	require.ErrorIs(t, err, ErrCommandTooLong)
}

func TestUnwrapResponseAPDURoundTrip(t *testing.T) {
	for _, n := range []int{0, 2, 57, 58, 116, 300} {
		response := sequence(n)
		packets, err := WrapCommandAPDU(Channel, response, PacketSize)
		require.NoError(t, err)

		got, err := UnwrapResponseAPDU(Channel, packets)
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, response, got, "length %d", n)
	}
}

func TestUnwrapResponseKeepsTrailingZeros(t *testing.T) {
	response := append(bytes.Repeat([]byte{0}, 32), 0x90, 0x00)
	response = append(response, 0x00)
	packets, err := WrapCommandAPDU(Channel, response, PacketSize)
	require.NoError(t, err)

	got, err := UnwrapResponseAPDU(Channel, packets)
	require.NoError(t, err)
	assert.Equal(t, response, got)
}

func TestResponseAssemblerErrors(t *testing.T) {
	packets, err := WrapCommandAPDU(Channel, sequence(120), PacketSize)
	require.NoError(t, err)

	tests := []struct {
		name    string
		packets [][]byte
		err     error
	}{
		{"short packet", [][]byte{{0x01, 0x01}}, ErrShortPacket},
		{"wrong channel", [][]byte{append([]byte{0x02, 0x02}, packets[0][2:]...)}, ErrUnexpectedChannel},
		{"wrong tag", [][]byte{append([]byte{0x01, 0x01, 0x06}, packets[0][3:]...)}, ErrUnexpectedTag},
		{"out of order", [][]byte{packets[0], packets[2]}, ErrUnexpectedSequence},
		{"incomplete", packets[:2], ErrIncompleteResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnwrapResponseAPDU(Channel, tt.packets)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestResponseAssemblerIncremental(t *testing.T) {
	packets, err := WrapCommandAPDU(Channel, sequence(100), PacketSize)
	require.NoError(t, err)

	a := NewResponseAssembler(Channel)
	assert.Nil(t, a.Response())
	done, err := a.Add(packets[0])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, a.Response())

	done, err = a.Add(packets[1])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, sequence(100), a.Response())
}
