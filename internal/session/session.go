// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session defines the authenticated session model shared by the credential
// store, the auth gateway and the request pipeline, together with the read-only
// "is the user signed in" predicate consumed by the command layer.
package session

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Session is the (access token, refresh token, user profile) tuple that represents
// an authenticated identity. Tokens are opaque; the profile is kept as the raw JSON
// the server returned so it round-trips byte for byte.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         json.RawMessage
}

// Complete reports whether every field is set. Only complete sessions are valid
// persisted state.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && hasProfile(s.User)
}

func hasProfile(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Store is durable key/value persistence for the current session.
// Set and Clear are visible to the next Get; Get reports ok=false when no
// complete session is stored.
type Store interface {
	Set(s Session) error
	Get() (Session, bool, error)
	Clear() error
}

// IsAuthenticated reports whether the store holds a complete session.
// Read failures count as signed out.
func IsAuthenticated(store Store) bool {
	if store == nil {
		return false
	}
	s, ok, err := store.Get()
	if err != nil || !ok {
		return false
	}
	return s.Complete()
}

// Profile decodes the stored user record into a generic map for display.
func (s Session) Profile() (map[string]any, error) {
	var out map[string]any
	if !hasProfile(s.User) {
		return out, nil
	}
	if err := json.Unmarshal(s.User, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DisplayName picks a human-readable identifier out of the profile, trying the
// common field names in order and falling back to "user".
func (s Session) DisplayName() string {
	p, err := s.Profile()
	if err != nil || p == nil {
		return "user"
	}
	for _, key := range []string{"username", "email", "name", "user_id", "id"} {
		switch v := p[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return "user"
}
