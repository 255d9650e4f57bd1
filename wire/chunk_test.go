// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 254, 255, 256, 510, 511, 1000} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}

		chunks := Chunk(data, MaxFrameData)
		assert.Len(t, chunks, (n+MaxFrameData-1)/MaxFrameData)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), MaxFrameData)
			assert.NotEmpty(t, c)
		}
		assert.True(t, bytes.Equal(data, bytes.Join(chunks, nil)), "length %d", n)
	}
}

func TestChunkDoesNotAlias(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 300)
	chunks := Chunk(data, MaxFrameData)
	require.Len(t, chunks, 2)

	chunks[0] = append(chunks[0], 9)
	assert.Equal(t, byte(1), data[255])
}

func TestBatch(t *testing.T) {
	indices := make([]uint16, 300)
	for i := range indices {
		indices[i] = uint16(i)
	}

	batches := Batch(indices, KeyIndicesPerFrame)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 127)
	assert.Len(t, batches[1], 127)
	assert.Len(t, batches[2], 46)
	assert.Equal(t, uint16(127), batches[1][0])

	assert.Empty(t, Batch([]int{}, SchedulePointsPerFrame))
}
