// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline sends authenticated API requests on behalf of the command layer.
//
// Every call goes through the same stages: the access token is read fresh from the
// session store and attached as a bearer credential, the request is sent, and the
// response is classified. A 401 triggers at most one refresh-and-retry cycle; when
// that is impossible or fails, the session is cleared and the caller gets a
// SessionExpired error. Every other outcome, including non-auth 4xx/5xx responses
// and transport errors, is handed back untouched.
//
// Concurrent requests that see an expired token refresh independently unless
// Options.SingleFlightRefresh is set, in which case they share one refresh call.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "scaledesk/cli/internal/errors"
	"scaledesk/cli/internal/session"
)

const defaultTimeout = 10 * time.Second

// Authenticator is the part of the auth gateway the pipeline needs.
// *auth.Gateway implements it.
type Authenticator interface {
	Refresh(ctx context.Context, refreshToken string) (access, rotated string, err error)
	Logout()
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	// SingleFlightRefresh coalesces concurrent refreshes of the same refresh token
	// into one call. Off by default: every request refreshes on its own.
	SingleFlightRefresh bool
	Logger              zerolog.Logger
}

// Client is the request-sending primitive exposed to the command layer.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	store     session.Store
	auth      Authenticator
	log       zerolog.Logger

	// persistMu serializes the read-modify-write of the refresh step.
	persistMu sync.Mutex
	// refreshes is nil unless single-flight refresh is enabled.
	refreshes *singleflight.Group
}

// New creates a Client reading credentials from store and refreshing them via auth.
func New(store session.Store, auth Authenticator, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      hc,
		userAgent: opts.UserAgent,
		store:     store,
		auth:      auth,
		log:       opts.Logger,
	}
	if opts.SingleFlightRefresh {
		c.refreshes = &singleflight.Group{}
	}
	return c
}

// Request is one outbound API call. Body is kept as bytes so the request can be
// re-sent after a refresh.
type Request struct {
	Method string
	// Path is relative to the base URL unless it is an absolute http(s) URL.
	Path   string
	Header http.Header
	Body   []byte

	// retried is set once the request has been re-issued after a refresh.
	retried bool
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is the unauthorized response that ended a session.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Do sends req and applies the attach/refresh/retry protocol.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	reqID := uuid.NewString()
	log := c.log.With().Str("request_id", reqID).Str("method", req.Method).Str("path", req.Path).Logger()

	resp, err := c.send(ctx, &req, reqID, c.currentAccessToken())
	if err != nil {
		return nil, err
	}
	if !unauthorized(resp) {
		log.Debug().Int("status", resp.StatusCode).Msg("request done")
		return resp, nil
	}
	return c.refreshAndRetry(ctx, &req, reqID, resp, log)
}

// refreshAndRetry is entered at most once per request.
func (c *Client) refreshAndRetry(ctx context.Context, req *Request, reqID string, resp *Response, log zerolog.Logger) (*Response, error) {
	original := c.statusError(req, resp)
	if req.retried {
		return nil, c.expire(original, "request still unauthorized after refresh", log)
	}

	s, ok, err := c.store.Get()
	if err != nil || !ok || s.RefreshToken == "" {
		return nil, c.expire(original, "request unauthorized and no refresh token stored", log)
	}

	log.Debug().Msg("access token rejected, refreshing")
	access, err := c.refresh(ctx, s.RefreshToken)
	if err != nil && ctx.Err() != nil {
		// The caller gave up; that says nothing about the session.
		log.Debug().Err(err).Msg("request abandoned during refresh")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctx.Err())
	}
	if err != nil {
		log.Debug().Err(err).Msg("refresh failed")
		return nil, c.expire(errors.Join(original, err), "request unauthorized and refresh failed", log)
	}

	req.retried = true
	retry, err := c.send(ctx, req, reqID, access)
	if err != nil {
		return nil, err
	}
	if unauthorized(retry) {
		return nil, c.expire(c.statusError(req, retry), "request still unauthorized after refresh", log)
	}
	log.Debug().Int("status", retry.StatusCode).Msg("request done after refresh")
	return retry, nil
}

// expire clears the session and reports it as unrecoverable.
func (c *Client) expire(cause error, msg string, log zerolog.Logger) error {
	log.Debug().Msg("session expired, logging out")
	c.auth.Logout()
	return apperrors.Wrap(apperrors.SessionExpired, msg, cause)
}

func (c *Client) currentAccessToken() string {
	s, ok, err := c.store.Get()
	if err != nil || !ok {
		return ""
	}
	return s.AccessToken
}

// refresh obtains and persists a new access token, sharing the call between
// concurrent requests when single-flight is enabled.
//
// A shared refresh belongs to no single caller: it runs detached from ctx,
// bounded by the HTTP client timeout, and a caller whose ctx ends stops waiting
// without affecting the others.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if c.refreshes == nil {
		return c.refreshOnce(ctx, refreshToken)
	}
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		return c.refreshOnce(fctx, refreshToken)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.log.Debug().Msg("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refreshTimeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return defaultTimeout
}

func (c *Client) refreshOnce(ctx context.Context, refreshToken string) (string, error) {
	access, rotated, err := c.auth.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	cur, ok, err := c.store.Get()
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if !ok {
		// Logged out while the refresh was in flight; do not bring the session back.
		return "", apperrors.New(apperrors.SessionExpired, "session cleared during refresh")
	}
	if cur.RefreshToken != refreshToken {
		c.log.Debug().Msg("session changed during refresh, keeping the newer one")
		return access, nil
	}

	cur.AccessToken = access
	if rotated != "" {
		cur.RefreshToken = rotated
	}
	if err := c.store.Set(cur); err != nil {
		return "", fmt.Errorf("save refreshed session: %w", err)
	}
	return access, nil
}

// send builds the HTTP request, attaches the bearer token when there is one and
// reads the whole response.
func (c *Client) send(ctx context.Context, req *Request, reqID, accessToken string) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("X-Request-ID", reqID)
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		httpReq.Header.Del("Authorization")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", req.Method, req.Path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) statusError(req *Request, resp *Response) *StatusError {
	return &StatusError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(resp.Body)),
	}
}

func unauthorized(resp *Response) bool { return resp.StatusCode == http.StatusUnauthorized }
