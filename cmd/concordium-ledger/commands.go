// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ledger "github.com/luxfi/ledger-concordium-go"
	"github.com/luxfi/ledger-concordium-go/client"
	"github.com/luxfi/ledger-concordium-go/config"
	"github.com/luxfi/ledger-concordium-go/ipc"
	"github.com/luxfi/ledger-concordium-go/session"
	"github.com/luxfi/ledger-concordium-go/transport"
	"github.com/luxfi/ledger-concordium-go/types"
	"github.com/luxfi/ledger-concordium-go/wire"
)

// newAdmin is replaced in tests.
var newAdmin = func(cfg config.Config) ledger.LedgerAdmin {
	return ledger.NewLedgerAdmin(
		ledger.WithTimeout(cfg.ExchangeTimeout),
		ledger.WithEmulatorURL(cfg.EmulatorURL),
	)
}

type env struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}

func setup(cmd *cli.Command) (*env, error) {
	cfg := config.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger := ledger.NewLogger(cfg.LogLevel)
	ledger.SetLogger(logger)

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return &env{cfg: cfg, logger: logger, out: out}, nil
}

// connect opens the first device and checks the open application.
func (e *env) connect(ctx context.Context) (*client.Client, error) {
	device, err := newAdmin(e.cfg).Connect(0)
	if err != nil {
		return nil, err
	}
	c := client.New(
		transport.New(device, transport.WithLogger(e.logger)),
		client.WithLogger(e.logger),
		client.WithStatus(func(msg string) { fmt.Fprintln(os.Stderr, msg) }),
	)

	qctx, cancel := context.WithTimeout(ctx, e.cfg.ResponseTimeout)
	info, err := c.RequireApplication(qctx, e.cfg.Application)
	cancel()
	if err == nil && e.cfg.MinVersion != "" {
		err = session.CheckVersion(info.Version, e.cfg.MinVersion)
	}
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (e *env) manager(reg prometheus.Registerer) *session.Manager {
	opts := []session.Option{
		session.WithApplication(e.cfg.Application),
		session.WithMinVersion(e.cfg.MinVersion),
		session.WithPollInterval(e.cfg.PollInterval),
		session.WithPresenceInterval(e.cfg.PresenceInterval),
		session.WithQueryTimeout(e.cfg.ResponseTimeout),
		session.WithLogger(e.logger),
	}
	if reg != nil {
		opts = append(opts,
			session.WithMetrics(session.NewMetrics(reg)),
			session.WithTransportMetrics(transport.NewMetrics(reg)),
		)
	}
	return session.New(ledger.NewSource(newAdmin(e.cfg)), opts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func DevicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List attached Ledger devices",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output in JSON format",
			},
		},
		Action: runDevicesCommand,
	}
}

func runDevicesCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	devices, err := newAdmin(e.cfg).ListDevices()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if cmd.Bool("json") {
		if devices == nil {
			devices = []ledger.DeviceInfo{}
		}
		return printJSON(e.out, devices)
	}
	if len(devices) == 0 {
		fmt.Fprintln(e.out, "no devices found")
		return nil
	}
	for i, d := range devices {
		fmt.Fprintf(e.out, "%d\t%s\t%s\n", i, d.Product, d.Path)
	}
	return nil
}

func AppCommand() *cli.Command {
	return &cli.Command{
		Name:   "app",
		Usage:  "Show the application open on the device",
		Action: runAppCommand,
	}
}

func runAppCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	device, err := newAdmin(e.cfg).Connect(0)
	if err != nil {
		return err
	}
	c := client.New(transport.New(device, transport.WithLogger(e.logger)), client.WithLogger(e.logger))
	defer c.Close()

	qctx, cancel := context.WithTimeout(ctx, e.cfg.ResponseTimeout)
	defer cancel()
	info, err := c.AppInfo(qctx)
	if err != nil {
		return fmt.Errorf("failed to read application: %w", err)
	}
	fmt.Fprintf(e.out, "%s %s\n", info.Name, info.Version)
	return nil
}

func PublicKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "public-key",
		Usage: "Read a public key from the device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "Key path below 1105/0, for example 0/0/2/0/0",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "signed",
				Usage: "Also return a signature over the key made by the key itself",
			},
			&cli.BoolFlag{
				Name:  "silent",
				Usage: "Do not ask for confirmation on the device",
			},
		},
		Action: runPublicKeyCommand,
	}
}

func runPublicKeyCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	path, err := wire.ParsePath(cmd.String("path"))
	if err != nil {
		return err
	}
	c, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	switch {
	case cmd.Bool("signed"):
		signed, err := c.GetSignedPublicKey(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%x\n%x\n", signed.PublicKey, signed.Signature)
	case cmd.Bool("silent"):
		key, err := c.GetPublicKeySilent(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%x\n", key)
	default:
		key, err := c.GetPublicKey(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%x\n", key)
	}
	return nil
}

func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a transaction given as a JSON envelope",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "Signing key path below 1105/0",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "File holding the transaction envelope, - for stdin",
			},
			&cli.StringFlag{
				Name:  "tx",
				Usage: "Transaction envelope as inline JSON",
			},
		},
		Action: runSignCommand,
	}
}

func readEnvelope(cmd *cli.Command) ([]byte, error) {
	file, inline := cmd.String("file"), cmd.String("tx")
	switch {
	case file == "" && inline == "":
		return nil, errors.New("either --file or --tx must be provided")
	case file != "" && inline != "":
		return nil, errors.New("only one of --file or --tx should be provided")
	case inline != "":
		return []byte(inline), nil
	case file == "-":
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	path, err := wire.ParsePath(cmd.String("path"))
	if err != nil {
		return err
	}
	data, err := readEnvelope(cmd)
	if err != nil {
		return err
	}
	tx, err := types.DecodeTransaction(data)
	if err != nil {
		return err
	}

	c, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	sig, err := c.Sign(ctx, tx, path)
	if err != nil {
		var status *transport.StatusError
		if errors.As(err, &status) && status.Rejected() {
			return fmt.Errorf("signing rejected on device: %w", err)
		}
		return err
	}
	fmt.Fprintln(e.out, hex.EncodeToString(sig))
	return nil
}

func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print device session state changes until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output one JSON object per state change",
			},
		},
		Action: runWatchCommand,
	}
}

func runWatchCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	m := e.manager(nil)
	states, unsubscribe := m.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case s := <-states:
				if err := printStatus(e.out, s, cmd.Bool("json")); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

func printStatus(w io.Writer, s session.Status, asJSON bool) error {
	if asJSON {
		out, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	line := s.At.Format(time.RFC3339) + " " + s.State.String()
	if s.Device != nil {
		line += " " + s.Device.Product
	}
	if s.App != nil {
		line += fmt.Sprintf(" %s %s", s.App.Name, s.App.Version)
	}
	if s.Err != nil {
		line += ": " + s.Err.Error()
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the device session over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address, overrides the config file",
			},
		},
		Action: runServeCommand,
	}
}

func runServeCommand(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String("listen"); addr != "" {
		e.cfg.Listen = addr
	}

	mux := http.NewServeMux()
	var reg prometheus.Registerer
	if e.cfg.Metrics {
		registry := prometheus.NewRegistry()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		reg = registry
	}
	m := e.manager(reg)
	ipc.NewHTTPHandler(m, ipc.WithLogger(e.logger)).Register(mux)

	srv := &http.Server{
		Addr:              e.cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })
	g.Go(func() error {
		e.logger.Info("serving device session", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
