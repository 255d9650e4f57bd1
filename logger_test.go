// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, ParseLevel(" warn"))
	assert.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zap.InfoLevel, ParseLevel(""))
}

func TestSetLogger(t *testing.T) {
	previous := Logger()
	t.Cleanup(func() { SetLogger(previous) })

	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	log().Debugf("[HID] => %x", []byte{0xe0, 0x01})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[HID] => e001", entries[0].Message)

	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(zap.ErrorLevel))
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("warn")
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}
