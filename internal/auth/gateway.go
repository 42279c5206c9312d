// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides the authentication gateway of the CLI: it exchanges a
// username and password for a session, refreshes access tokens and destroys the
// session on logout. Tokens and profile are persisted through a session.Store
// (the OS keychain in production), never held by the gateway itself.
//
// Every server or transport error leaving this package is an *errors.E of one of
// the session kinds, so the command layer never sees raw transport errors. A
// failure to write the local keychain is returned as is.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"scaledesk/cli/internal/backend"
	apperrors "scaledesk/cli/internal/errors"
	"scaledesk/cli/internal/session"
)

// probeTimeout bounds the diagnostic connectivity probe.
const probeTimeout = 5 * time.Second

// Credentials is a username/password pair. It only lives for one login attempt.
type Credentials struct {
	Username string
	Password string
}

// Options configures a Gateway.
type Options struct {
	// LoginPaths are the login endpoint candidates, tried in this order.
	LoginPaths []string
	// ProbePath is fetched for diagnostics when no login candidate answers.
	// Empty means the first login path.
	ProbePath string
	Logger    zerolog.Logger
}

// Gateway performs login, refresh and logout against the API server.
type Gateway struct {
	api        backend.API
	store      session.Store
	candidates []string
	probePath  string
	log        zerolog.Logger
}

// NewGateway constructs a Gateway around a backend API and a session store.
func NewGateway(api backend.API, store session.Store, opts Options) *Gateway {
	probe := opts.ProbePath
	if probe == "" && len(opts.LoginPaths) > 0 {
		probe = opts.LoginPaths[0]
	}
	return &Gateway{
		api:        api,
		store:      store,
		candidates: append([]string(nil), opts.LoginPaths...),
		probePath:  probe,
		log:        opts.Logger,
	}
}

// Login exchanges credentials for a session and persists it before returning.
//
// Candidates are tried in order. A candidate that cannot be reached, or that
// answers 404/405 (wrong path), hands over to the next one. Any other answer is
// authoritative: 2xx is parsed, 401/403 is InvalidCredentials, and every other
// status is EndpointUnreachable. The store is only written on success.
func (g *Gateway) Login(ctx context.Context, username, password string) (session.Session, error) {
	if len(g.candidates) == 0 {
		return session.Session{}, apperrors.New(apperrors.EndpointUnreachable, "no login endpoints configured")
	}

	var lastErr error
	for _, path := range g.candidates {
		g.log.Debug().Str("path", path).Str("username", username).Msg("trying login endpoint")

		resp, err := g.api.ObtainToken(ctx, path, username, password)
		if err == nil {
			return g.persist(path, resp)
		}

		var se *backend.StatusError
		if errors.As(err, &se) {
			switch se.StatusCode {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				g.log.Debug().Str("path", path).Int("status", se.StatusCode).Msg("login endpoint not found, trying next")
				lastErr = err
				continue
			case http.StatusUnauthorized, http.StatusForbidden:
				g.log.Debug().Str("path", path).Int("status", se.StatusCode).Msg("login rejected")
				return session.Session{}, apperrors.Wrap(apperrors.InvalidCredentials, "username or password is incorrect", err)
			default:
				g.log.Debug().Str("path", path).Int("status", se.StatusCode).Msg("login endpoint failed")
				return session.Session{}, apperrors.Wrap(apperrors.EndpointUnreachable,
					fmt.Sprintf("login endpoint %s answered %d", path, se.StatusCode), err)
			}
		}
		if errors.Is(err, backend.ErrMalformed) {
			return session.Session{}, apperrors.Wrap(apperrors.MalformedResponse, "login response has no access token", err)
		}
		if ctx.Err() != nil {
			return session.Session{}, apperrors.Wrap(apperrors.EndpointUnreachable, "login cancelled", err)
		}
		g.log.Debug().Str("path", path).Err(err).Msg("login endpoint unreachable, trying next")
		lastErr = err
	}

	g.probe(ctx)
	return session.Session{}, apperrors.Wrap(apperrors.EndpointUnreachable, "no login endpoint answered", lastErr)
}

func (g *Gateway) persist(path string, resp backend.TokenResponse) (session.Session, error) {
	s := session.Session{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
		User:         resp.User,
	}
	if s.RefreshToken == "" {
		return session.Session{}, apperrors.New(apperrors.MalformedResponse, "login response has no refresh token")
	}
	if !s.Complete() {
		return session.Session{}, apperrors.New(apperrors.MalformedResponse, "login response has no user profile")
	}
	// Keychain failures are local and stay outside the session kinds.
	if err := g.store.Set(s); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}
	g.log.Debug().Str("path", path).Msg("login succeeded, session stored")
	return s, nil
}

// probe checks whether the server is reachable at all. The result is only logged.
func (g *Gateway) probe(ctx context.Context) {
	if g.probePath == "" {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	code, err := g.api.Probe(pctx, g.probePath)
	if err != nil {
		g.log.Debug().Str("path", g.probePath).Err(err).Msg("connectivity probe failed")
		return
	}
	g.log.Debug().Str("path", g.probePath).Int("status", code).Msg("server reachable")
}

// Logout clears the stored session. It never fails and is safe to call when no
// session exists; store errors are only logged.
func (g *Gateway) Logout() {
	if err := g.store.Clear(); err != nil {
		g.log.Warn().Err(err).Msg("failed to clear session from keychain")
		return
	}
	g.log.Debug().Msg("session cleared")
}

// RemoteLogout asks the server to invalidate the stored refresh token. Local state is
// left alone; callers follow up with Logout. Errors are informational only.
func (g *Gateway) RemoteLogout(ctx context.Context) error {
	s, ok, err := g.store.Get()
	if err != nil || !ok {
		return err
	}
	if err := g.api.Logout(ctx, s.RefreshToken); err != nil {
		g.log.Debug().Err(err).Msg("remote logout failed")
		return err
	}
	return nil
}

// Refresh exchanges refreshToken for a new access token. rotated is non-empty when
// the server issued a new refresh token as well.
//
// RefreshRejected means the session cannot be recovered; RefreshUnreachable means
// the call never got a usable answer.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (access, rotated string, err error) {
	if refreshToken == "" {
		return "", "", apperrors.New(apperrors.RefreshRejected, "no refresh token")
	}

	access, rotated, err = g.api.RefreshToken(ctx, refreshToken)
	if err == nil {
		g.log.Debug().Bool("rotated", rotated != "").Msg("access token refreshed")
		return access, rotated, nil
	}

	var se *backend.StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden):
		return "", "", apperrors.Wrap(apperrors.RefreshRejected, "refresh token rejected", err)
	case errors.Is(err, backend.ErrMalformed):
		return "", "", apperrors.Wrap(apperrors.RefreshRejected, "refresh response unusable",
			apperrors.Wrap(apperrors.MalformedResponse, "refresh response has no access token", err))
	default:
		return "", "", apperrors.Wrap(apperrors.RefreshUnreachable, "refresh request failed", err)
	}
}
