// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ledger-concordium-go/wire"
)

const PublicKeySize = 32

// AppInfo identifies the application currently open on the device.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Flags   []byte `json:"flags,omitempty"`
}

// GetAppAndVersion asks the device which application is open. The query is
// answered by the dashboard as well, so it works with any app running.
func (p *Protocol) GetAppAndVersion(ctx context.Context) (AppInfo, error) {
	resp, err := p.transport.Send(ctx, CLAAppInfo, InsAppInfo, 0, 0, nil)
	if err != nil {
		return AppInfo{}, fmt.Errorf("protocol: app and version: %w", err)
	}
	return ParseAppInfo(resp)
}

// ParseAppInfo decodes
//
//	format | nameLen | name | versionLen | version | flagsLen | flags
//
// The flags are optional.
func ParseAppInfo(resp []byte) (AppInfo, error) {
	var info AppInfo
	if len(resp) < 1 {
		return info, fmt.Errorf("%w: empty app info", ErrMalformedResponse)
	}
	rest := resp[1:]

	field := func(what string) ([]byte, error) {
		if len(rest) < 1 {
			return nil, fmt.Errorf("%w: missing %s length", ErrMalformedResponse, what)
		}
		n := int(rest[0])
		if len(rest) < 1+n {
			return nil, fmt.Errorf("%w: %s truncated", ErrMalformedResponse, what)
		}
		v := rest[1 : 1+n]
		rest = rest[1+n:]
		return v, nil
	}

	name, err := field("name")
	if err != nil {
		return info, err
	}
	version, err := field("version")
	if err != nil {
		return info, err
	}
	info.Name = string(name)
	info.Version = string(version)
	if len(rest) > 0 {
		flags, err := field("flags")
		if err != nil {
			return info, err
		}
		info.Flags = append([]byte(nil), flags...)
	}
	return info, nil
}

func (p *Protocol) getPublicKey(ctx context.Context, path []uint32, p1, p2 byte, name string) ([]byte, error) {
	encodedPath, err := wire.EncodePath(path)
	if err != nil {
		return nil, err
	}
	e := p.begin(ctx, InsGetPublicKey, name)
	if err := e.send(p1, p2, encodedPath); err != nil {
		return nil, err
	}
	return e.last, nil
}

// GetPublicKey returns the public key at path after the user confirmed it
// on the device.
func (p *Protocol) GetPublicKey(ctx context.Context, path []uint32) ([]byte, error) {
	resp, err := p.getPublicKey(ctx, path, 0x00, 0x00, "public key request")
	if err != nil {
		return nil, err
	}
	return publicKey(resp)
}

// GetPublicKeySilent returns the public key at path without user interaction.
func (p *Protocol) GetPublicKeySilent(ctx context.Context, path []uint32) ([]byte, error) {
	resp, err := p.getPublicKey(ctx, path, 0x01, 0x00, "public key request")
	if err != nil {
		return nil, err
	}
	return publicKey(resp)
}

func publicKey(resp []byte) ([]byte, error) {
	if len(resp) < PublicKeySize {
		return nil, fmt.Errorf("%w: public key of %d bytes", ErrMalformedResponse, len(resp))
	}
	return append([]byte(nil), resp[:PublicKeySize]...), nil
}

// SignedPublicKey is a public key signed by the key itself.
type SignedPublicKey struct {
	PublicKey []byte `json:"publicKey"`
	Signature []byte `json:"signature"`
}

// GetSignedPublicKey returns the public key at path with a signature over it
// made by the corresponding private key.
func (p *Protocol) GetSignedPublicKey(ctx context.Context, path []uint32) (SignedPublicKey, error) {
	resp, err := p.getPublicKey(ctx, path, 0x00, 0x01, "signed public key request")
	if err != nil {
		return SignedPublicKey{}, err
	}
	key, err := publicKey(resp)
	if err != nil {
		return SignedPublicKey{}, err
	}
	sig, err := Signature(resp[PublicKeySize:])
	if err != nil {
		return SignedPublicKey{}, err
	}
	return SignedPublicKey{PublicKey: key, Signature: sig}, nil
}

// SeedExport selects the secrets returned by ExportPrivateKeySeed.
type SeedExport byte

const (
	ExportPRFKey          SeedExport = 0x01
	ExportPRFKeyAndIDCred SeedExport = 0x02
)

// PrivateKeySeeds are the identity secrets derived on the device.
type PrivateKeySeeds struct {
	PRFKey    []byte `json:"prfKey"`
	IDCredSec []byte `json:"idCredSec,omitempty"`
}

// ExportPrivateKeySeed asks the device to release the key seeds of an
// identity. The user has to approve the export.
func (p *Protocol) ExportPrivateKeySeed(ctx context.Context, identity uint32, what SeedExport) (PrivateKeySeeds, error) {
	var seeds PrivateKeySeeds
	if what != ExportPRFKey && what != ExportPRFKeyAndIDCred {
		return seeds, fmt.Errorf("protocol: unknown seed export mode %d", what)
	}
	e := p.begin(ctx, InsExportPrivateKeySeed, "key seed export request")
	if err := e.send(byte(what), 0x01, wire.Uint32(identity)); err != nil {
		return seeds, err
	}

	want := 32
	if what == ExportPRFKeyAndIDCred {
		want = 64
	}
	if len(e.last) < want {
		return seeds, fmt.Errorf("%w: seed export of %d bytes", ErrMalformedResponse, len(e.last))
	}
	seeds.PRFKey = append([]byte(nil), e.last[:32]...)
	if what == ExportPRFKeyAndIDCred {
		seeds.IDCredSec = append([]byte(nil), e.last[32:64]...)
	}
	return seeds, nil
}

// VerifyAddress shows the address of a credential on the device screen so the
// user can compare it with the one displayed by the wallet.
func (p *Protocol) VerifyAddress(ctx context.Context, identity, credential uint32) error {
	e := p.begin(ctx, InsVerifyAddress, "address verification request")
	return e.send(0, 0, wire.Uint32(identity), wire.Uint32(credential))
}
