// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is display-only metadata read from a JWT access token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the claims of a JWT without verifying its signature.
// Tokens are opaque to the session layer; this is only used to show the user
// when their access token expires. ok is false for tokens that are not JWTs.
func InspectToken(token string) (TokenInfo, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, false
	}
	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, true
}

// Expired reports whether the token carries an exp claim in the past.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
