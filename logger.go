// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var root atomic.Pointer[zap.Logger]

func init() {
	root.Store(newLogger(os.Getenv("LEDGER_LOG_LEVEL")))
}

func newLogger(level string) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel maps debug, info, warn and error to a zap level. Anything else
// is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	}
	return zap.InfoLevel
}

// NewLogger builds a development logger at the given level, the way the
// package logger is built from LEDGER_LOG_LEVEL.
func NewLogger(level string) *zap.Logger {
	return newLogger(level)
}

// SetLogger replaces the package logger. A nil logger silences it.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root.Store(logger)
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return root.Load()
}

func log() *zap.SugaredLogger {
	return root.Load().Sugar()
}
