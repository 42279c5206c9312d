// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"scaledesk/cli/internal/auth"
	"scaledesk/cli/internal/backend"
	"scaledesk/cli/internal/config"
	"scaledesk/cli/internal/httperrors"
	"scaledesk/cli/internal/keychain"
	"scaledesk/cli/internal/logging"
	"scaledesk/cli/internal/pipeline"
	"scaledesk/cli/internal/session"
)

var (
	flagServer  string
	flagKeyring string
	flagVerbose bool

	appMu   sync.Mutex
	current *app
)

// app holds the session-layer objects shared by all commands of one invocation.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	store   session.Store
	gateway *auth.Gateway
	client  *pipeline.Client
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagServer != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(flagServer), "/")
	}
	if flagKeyring != "" {
		cfg.KeyringBackend = flagKeyring
	}
	return cfg, nil
}

// getApp builds the app on first use so that commands which never touch the
// keychain do not open it.
func getApp() (*app, error) {
	appMu.Lock()
	defer appMu.Unlock()
	if current != nil {
		return current, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, cfg.LogLevel, flagVerbose || config.Verbose())

	store, err := keychain.Open(keychain.Options{
		Backend:      cfg.KeyringBackend,
		FilePassword: config.GetEnv(config.EnvKeyringPassword, ""),
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	current = newApp(cfg, store, log, &http.Client{Timeout: cfg.Timeout()})
	return current, nil
}

// newApp wires the gateway and the pipeline around store.
func newApp(cfg config.Config, store session.Store, log zerolog.Logger, hc *http.Client) *app {
	api := backend.NewWithClient(cfg.BaseURL, backend.Endpoints{
		Refresh: cfg.RefreshPath,
		Logout:  cfg.LogoutPath,
	}, hc, userAgent())
	gw := auth.NewGateway(api, store, auth.Options{
		LoginPaths: cfg.LoginPaths,
		ProbePath:  cfg.EffectiveProbePath(),
		Logger:     log,
	})
	client := pipeline.New(store, gw, pipeline.Options{
		BaseURL:             cfg.BaseURL,
		HTTPClient:          hc,
		UserAgent:           userAgent(),
		SingleFlightRefresh: cfg.RefreshSingleFlight,
		Logger:              log,
	})
	return &app{cfg: cfg, log: log, store: store, gateway: gw, client: client}
}

// sessionStore is the lazily opened store handed to the command guards.
func sessionStore() (session.Store, error) {
	a, err := getApp()
	if err != nil {
		return nil, err
	}
	return a.store, nil
}

// serverHost names the configured server in error messages.
func serverHost() string {
	appMu.Lock()
	a := current
	appMu.Unlock()
	if a != nil {
		return httperrors.ExtractHostFromURL(a.cfg.BaseURL)
	}
	if cfg, err := loadConfig(); err == nil {
		return httperrors.ExtractHostFromURL(cfg.BaseURL)
	}
	return "server"
}

func userAgent() string { return "scaledesk-cli/" + Version }

// isTransportError reports errors raised before any HTTP response arrived.
func isTransportError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}
