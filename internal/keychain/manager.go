// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe persistence of the scaledesk session in the
// OS keychain/credential store.
//
// The session is stored as three entries under well-known keys (user profile, access
// token, refresh token) in the "scaledesk" service namespace. The Manager treats all
// three as one unit: Get only reports a session when every entry is present, and a
// failed Set is rolled back so that a partial session is never left behind.
//
// Supported backends are whatever github.com/99designs/keyring offers on the host
// (macOS Keychain, Windows Credential Manager, Secret Service, KWallet, keyctl, pass)
// plus an encrypted file fallback and an in-memory ring for tests.
package keychain

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"scaledesk/cli/internal/session"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "scaledesk"

// Keys used for storing the session in the OS keychain.
const (
	KeyUser         = "user"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

var sessionKeys = []string{KeyUser, KeyAccessToken, KeyRefreshToken}

// Manager provides centralized, thread-safe session storage on top of a keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
	log  zerolog.Logger
}

var _ session.Store = (*Manager)(nil)

// New wraps an already opened keyring.
func New(ring keyring.Keyring, log zerolog.Logger) *Manager {
	return &Manager{ring: ring, log: log}
}

// NewMemory returns a Manager backed by an in-process ring. Nothing survives the
// process; use it for tests and for --keyring memory.
func NewMemory() *Manager {
	return New(keyring.NewArrayKeyring(nil), zerolog.Nop())
}

// Set stores a complete session, replacing whatever was stored before.
// Incomplete sessions are refused. If any entry fails to write, every entry is
// removed again so the store falls back to "no session".
func (m *Manager) Set(s session.Session) error {
	if !s.Complete() {
		return errors.New("refusing to store incomplete session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items := []keyring.Item{
		{Key: KeyUser, Data: []byte(s.User), Label: ServiceName + " user profile"},
		{Key: KeyAccessToken, Data: []byte(s.AccessToken), Label: ServiceName + " access token"},
		{Key: KeyRefreshToken, Data: []byte(s.RefreshToken), Label: ServiceName + " refresh token"},
	}
	for _, it := range items {
		if err := m.ring.Set(it); err != nil {
			m.log.Debug().Str("key", it.Key).Err(err).Msg("keychain write failed, rolling back session")
			_ = m.clearLocked()
			return fmt.Errorf("store %s in keychain: %w", it.Key, err)
		}
	}
	m.log.Debug().Msg("session stored in keychain")
	return nil
}

// Get loads the stored session. ok is false when any of the three entries is
// missing or empty.
func (m *Manager) Get() (session.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make(map[string][]byte, len(sessionKeys))
	for _, key := range sessionKeys {
		it, err := m.ring.Get(key)
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		if err != nil {
			return session.Session{}, false, fmt.Errorf("load %s from keychain: %w", key, err)
		}
		if len(it.Data) == 0 {
			return session.Session{}, false, nil
		}
		values[key] = it.Data
	}

	s := session.Session{
		AccessToken:  string(values[KeyAccessToken]),
		RefreshToken: string(values[KeyRefreshToken]),
		User:         append([]byte(nil), values[KeyUser]...),
	}
	if !s.Complete() {
		return session.Session{}, false, nil
	}
	return s, true, nil
}

// Clear removes every session entry. Missing entries are not an error, so Clear
// is safe to call when nothing is stored.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearLocked()
}

func (m *Manager) clearLocked() error {
	var errs []error
	for _, key := range sessionKeys {
		if err := m.ring.Remove(key); err != nil && !isNotFound(err) {
			errs = append(errs, fmt.Errorf("remove %s from keychain: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// isNotFound covers keyring.ErrKeyNotFound and the file backend, which reports a
// missing item as a missing file.
func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}
