// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package config holds the settings of the session manager, the device
// layer and the IPC server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "CONCORDIUM_LEDGER_"

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	// Application is the name the device must report.
	Application string `yaml:"application"`
	// MinVersion is the oldest accepted application version, empty for any.
	MinVersion string `yaml:"min_version"`

	PollInterval     time.Duration `yaml:"poll_interval"`
	PresenceInterval time.Duration `yaml:"presence_interval"`
	ResponseTimeout  time.Duration `yaml:"response_timeout"`
	// ExchangeTimeout bounds one device round trip, including the time the
	// user spends reviewing a transaction.
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`

	// EmulatorURL points at a Speculos instance instead of a USB device.
	EmulatorURL string `yaml:"emulator_url"`
	Listen      string `yaml:"listen"`
	Metrics     bool   `yaml:"metrics"`
	LogLevel    string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Application:      "Concordium",
		MinVersion:       "",
		PollInterval:     5 * time.Second,
		PresenceInterval: time.Second,
		ResponseTimeout:  10 * time.Second,
		ExchangeTimeout:  2 * time.Minute,
		Listen:           "127.0.0.1:8089",
		Metrics:          true,
		LogLevel:         "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from CONCORDIUM_LEDGER_* variables.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("APPLICATION", &c.Application)
	str("MIN_VERSION", &c.MinVersion)
	str("EMULATOR_URL", &c.EmulatorURL)
	str("LISTEN", &c.Listen)
	str("LOG_LEVEL", &c.LogLevel)
	if err := dur("POLL_INTERVAL", &c.PollInterval); err != nil {
		return err
	}
	if err := dur("PRESENCE_INTERVAL", &c.PresenceInterval); err != nil {
		return err
	}
	if err := dur("RESPONSE_TIMEOUT", &c.ResponseTimeout); err != nil {
		return err
	}
	if err := dur("EXCHANGE_TIMEOUT", &c.ExchangeTimeout); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(envPrefix + "METRICS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sMETRICS: %w", envPrefix, err)
		}
		c.Metrics = b
	}
	return c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Application == "":
		return fmt.Errorf("%w: application name is empty", ErrInvalid)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
	case c.PresenceInterval <= 0:
		return fmt.Errorf("%w: presence_interval must be positive", ErrInvalid)
	case c.ResponseTimeout <= 0:
		return fmt.Errorf("%w: response_timeout must be positive", ErrInvalid)
	case c.ExchangeTimeout <= 0:
		return fmt.Errorf("%w: exchange_timeout must be positive", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
