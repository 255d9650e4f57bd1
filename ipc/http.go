// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

// Package ipc exposes the device session to other processes as JSON over
// HTTP. Errors carry a stable code next to the human readable message.
package ipc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/protocol"
	"github.com/luxfi/ledger-concordium-go/session"
	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

const maxBodySize = 1 << 20

// Backend is the device session served by the handler. *session.Manager
// implements it.
type Backend interface {
	Status() session.Status
	Client() (*client.Client, error)
	Sign(ctx context.Context, tx types.Transaction, path []uint32) ([]byte, error)
	Reset(ctx context.Context) error
}

type HTTPHandler struct {
	backend Backend
	logger  *zap.Logger
}

type Option func(*HTTPHandler)

func WithLogger(logger *zap.Logger) Option {
	return func(h *HTTPHandler) { h.logger = logger }
}

func NewHTTPHandler(backend Backend, opts ...Option) *HTTPHandler {
	if backend == nil {
		panic("ipc: backend is required")
	}
	h := &HTTPHandler{backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the endpoints on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/state", h.handleState)
	mux.HandleFunc("/app", h.handleApp)
	mux.HandleFunc("/public-key", h.handlePublicKey)
	mux.HandleFunc("/sign", h.handleSign)
	mux.HandleFunc("/verify-address", h.handleVerifyAddress)
	mux.HandleFunc("/export-seed", h.handleExportSeed)
	mux.HandleFunc("/reset", h.handleReset)
}

type appResponseBody struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Flags   string `json:"flags,omitempty"`
}

type publicKeyRequestBody struct {
	Path string `json:"path"`
	// Signed asks the device to sign the key with itself.
	Signed bool `json:"signed"`
	// Silent skips the confirmation screen on the device.
	Silent bool `json:"silent"`
}

type publicKeyResponseBody struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature,omitempty"`
}

type signRequestBody struct {
	Path        string          `json:"path"`
	Transaction json.RawMessage `json:"transaction"`
}

type signResponseBody struct {
	Signature string `json:"signature"`
}

type verifyAddressRequestBody struct {
	Identity   uint32 `json:"identity"`
	Credential uint32 `json:"credential"`
}

type verifyAddressResponseBody struct {
	Verified bool `json:"verified"`
}

type exportSeedRequestBody struct {
	Identity uint32 `json:"identity"`
	// IDCredSec also exports the IdCredSec seed next to the PRF key.
	IDCredSec bool `json:"idCredSec"`
}

type exportSeedResponseBody struct {
	PRFKey    string `json:"prfKey"`
	IDCredSec string `json:"idCredSec,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *HTTPHandler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	h.writeJSON(w, http.StatusOK, h.backend.Status())
}

func (h *HTTPHandler) handleApp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	c, err := h.backend.Client()
	if err != nil {
		h.writeError(w, err)
		return
	}
	info, err := c.AppInfo(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, appResponseBody{
		Name:    info.Name,
		Version: info.Version,
		Flags:   hex.EncodeToString(info.Flags),
	})
}

func (h *HTTPHandler) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var body publicKeyRequestBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	path, err := wire.ParsePath(body.Path)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.backend.Client()
	if err != nil {
		h.writeError(w, err)
		return
	}

	var resp publicKeyResponseBody
	switch {
	case body.Signed:
		signed, err := c.GetSignedPublicKey(r.Context(), path)
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.PublicKey = hex.EncodeToString(signed.PublicKey)
		resp.Signature = hex.EncodeToString(signed.Signature)
	case body.Silent:
		key, err := c.GetPublicKeySilent(r.Context(), path)
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.PublicKey = hex.EncodeToString(key)
	default:
		key, err := c.GetPublicKey(r.Context(), path)
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.PublicKey = hex.EncodeToString(key)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleSign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var body signRequestBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if len(body.Transaction) == 0 {
		h.writeError(w, invalid("transaction is required"))
		return
	}
	path, err := wire.ParsePath(body.Path)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tx, err := types.DecodeTransaction(body.Transaction)
	if err != nil {
		if !errors.Is(err, types.ErrUnknownType) {
			err = &Error{Code: CodeInvalidArgument, Err: err}
		}
		h.writeError(w, err)
		return
	}

	sig, err := h.backend.Sign(r.Context(), tx, path)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("transaction signed", zap.Uint32s("path", path))
	h.writeJSON(w, http.StatusOK, signResponseBody{Signature: hex.EncodeToString(sig)})
}

func (h *HTTPHandler) handleVerifyAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var body verifyAddressRequestBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.backend.Client()
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := c.VerifyAddress(r.Context(), body.Identity, body.Credential); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, verifyAddressResponseBody{Verified: true})
}

func (h *HTTPHandler) handleExportSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var body exportSeedRequestBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.backend.Client()
	if err != nil {
		h.writeError(w, err)
		return
	}

	what := protocol.ExportPRFKey
	if body.IDCredSec {
		what = protocol.ExportPRFKeyAndIDCred
	}
	seeds, err := c.ExportPrivateKeySeed(r.Context(), body.Identity, what)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("key seeds exported", zap.Uint32("identity", body.Identity), zap.Bool("idCredSec", body.IDCredSec))
	h.writeJSON(w, http.StatusOK, exportSeedResponseBody{
		PRFKey:    hex.EncodeToString(seeds.PRFKey),
		IDCredSec: hex.EncodeToString(seeds.IDCredSec),
	})
}

// handleReset drops the current client and queries the device again. The
// outcome is reported through /state.
func (h *HTTPHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.backend.Reset(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, h.backend.Status())
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return invalid("request body is required")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	return nil
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Debug("writing response", zap.Error(err))
	}
}

func (h *HTTPHandler) writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Code:    string(CodeInvalidArgument),
		Message: allowed + " required",
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	code := Classify(err)
	message := err.Error()
	if code == CodeInternal {
		h.logger.Error("request failed", zap.Error(err))
		message = "internal error"
	} else {
		h.logger.Debug("request failed", zap.String("code", string(code)), zap.Error(err))
	}
	h.writeJSON(w, HTTPStatus(code), errorResponse{Code: string(code), Message: message})
}
