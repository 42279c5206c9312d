// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"scaledesk/cli/internal/xdg"
)

// Backend names accepted by Open in addition to the keyring backend types.
const (
	BackendAuto   = "auto"
	BackendMemory = "memory"
)

// Options controls which keyring backend Open uses.
type Options struct {
	// Backend is "auto", "memory" or one of the keyring backend types
	// ("keychain", "wincred", "secret-service", "kwallet", "keyctl", "pass", "file").
	Backend string
	// FileDir overrides the directory of the encrypted file backend.
	FileDir string
	// FilePassword unlocks the file backend. When empty the user is prompted on
	// the terminal.
	FilePassword string
	Logger       zerolog.Logger
}

// Open opens the OS keyring selected by opts and wraps it in a Manager.
func Open(opts Options) (*Manager, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == BackendMemory {
		return New(keyring.NewArrayKeyring(nil), opts.Logger), nil
	}

	allowed, err := allowedBackends(backend, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		KeyCtlScope:     "user",
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	for _, b := range allowed {
		if b != keyring.FileBackend {
			continue
		}
		dir := opts.FileDir
		if dir == "" {
			state, err := xdg.StateDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(state, "keyring")
		}
		cfg.FileDir = dir
		if opts.FilePassword != "" {
			cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
		} else {
			cfg.FilePasswordFunc = keyring.TerminalPrompt
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" && backend == BackendAuto {
			return nil, fmt.Errorf("macOS Keychain unavailable (%w). Install 'pass' or use --keyring file", err)
		}
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	opts.Logger.Debug().Strs("backends", backendNames(allowed)).Msg("keyring opened")
	return New(ring, opts.Logger), nil
}

// allowedBackends maps a backend name to the ordered list handed to keyring.Open.
// "auto" prefers the native store of the platform and ends with the encrypted file.
func allowedBackends(name, goos string) ([]keyring.BackendType, error) {
	if name == "" || name == BackendAuto {
		switch goos {
		case "darwin":
			return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}, nil
		case "windows":
			return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}, nil
		default:
			return []keyring.BackendType{
				keyring.SecretServiceBackend,
				keyring.KWalletBackend,
				keyring.KeyCtlBackend,
				keyring.PassBackend,
				keyring.FileBackend,
			}, nil
		}
	}

	for _, b := range keyring.AvailableBackends() {
		if string(b) == name {
			return []keyring.BackendType{b}, nil
		}
	}
	return nil, fmt.Errorf("keyring backend %q is not available on %s", name, goos)
}

func backendNames(bs []keyring.BackendType) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, string(b))
	}
	return out
}
