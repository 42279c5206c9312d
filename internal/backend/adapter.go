// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for the token endpoints of
// the scaledesk API server. It only speaks the wire contract: classifying outcomes
// into the session error taxonomy is left to package auth.
package backend

import (
	"context"
	"encoding/json"
)

// TokenResponse is the body of a successful login call.
type TokenResponse struct {
	Access  string
	Refresh string
	User    json.RawMessage
}

// API defines the token operations the session layer depends on.
// Implementations may call the real HTTP endpoints or provide fakes for tests.
type API interface {
	// ObtainToken posts credentials to one login candidate path.
	ObtainToken(ctx context.Context, path, username, password string) (TokenResponse, error)
	// RefreshToken exchanges a refresh token for a new access token.
	// newRefreshToken is empty unless the server rotated it.
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, newRefreshToken string, err error)
	// Probe issues a GET against path and reports the status code. Diagnostics only.
	Probe(ctx context.Context, path string) (int, error)
	// Logout asks the server to invalidate the refresh token. No-op when the
	// server has no logout endpoint configured.
	Logout(ctx context.Context, refreshToken string) error
}
