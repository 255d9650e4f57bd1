// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package wire

// MaxFrameData is the largest data payload the device accepts in one command.
const MaxFrameData = 255

// Element budgets per frame for batched lists.
const (
	SchedulePointsPerFrame = 15
	KeyIndicesPerFrame     = 127
)

// Chunk splits data into consecutive windows of at most size bytes.
// An empty input yields no chunks.
func Chunk(data []byte, size int) [][]byte {
	if size <= 0 {
		panic("wire: chunk size must be positive")
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > 0 {
		n := min(size, len(data))
		chunks = append(chunks, data[:n:n])
		data = data[n:]
	}
	return chunks
}

// Batch groups items into slices of at most n elements, preserving order.
func Batch[T any](items []T, n int) [][]T {
	if n <= 0 {
		panic("wire: batch size must be positive")
	}
	batches := make([][]T, 0, (len(items)+n-1)/n)
	for len(items) > 0 {
		k := min(n, len(items))
		batches = append(batches, items[:k:k])
		items = items[k:]
	}
	return batches
}
