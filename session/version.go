// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package session

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrApplicationOutdated = errors.New("session: application version below minimum")
	ErrInvalidVersion      = errors.New("session: invalid application version")
	ErrNotConnected        = errors.New("session: no connected device")
)

// VersionError reports an application older than the required minimum.
type VersionError struct {
	Found    string
	Required string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("session: application version %s is below required %s", e.Found, e.Required)
}

func (e *VersionError) Unwrap() error { return ErrApplicationOutdated }

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// CheckVersion compares two semantic versions given with or without a
// leading "v".
func CheckVersion(found, minimum string) error {
	f, m := canonical(found), canonical(minimum)
	if !semver.IsValid(f) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, found)
	}
	if !semver.IsValid(m) {
		return fmt.Errorf("%w: minimum %q", ErrInvalidVersion, minimum)
	}
	if semver.Compare(f, m) < 0 {
		return &VersionError{Found: found, Required: minimum}
	}
	return nil
}
