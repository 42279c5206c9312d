package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ObtainToken posts { username, password } to path.
// A 2xx answer is decoded into a TokenResponse; any other status is returned as a
// *StatusError; transport failures are returned as-is.
func (h *HTTP) ObtainToken(ctx context.Context, path, username, password string) (TokenResponse, error) {
	resp, err := h.postJSON(ctx, path, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return TokenResponse{}, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return TokenResponse{}, statusError("obtain-token", resp)
	}

	// Be liberal in what we accept: decode into a map first
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return TokenResponse{}, fmt.Errorf("%w: decode token response: %v", ErrMalformed, err)
	}

	out := TokenResponse{
		Access:  extractAccessToken(raw),
		Refresh: extractRefreshToken(raw),
		User:    extractUser(raw),
	}
	if out.Access == "" {
		return out, fmt.Errorf("%w: no access token in response", ErrMalformed)
	}
	return out, nil
}

// extractUser returns the profile exactly as the server sent it so that it can be
// stored and read back byte for byte.
func extractUser(raw map[string]json.RawMessage) json.RawMessage {
	for _, key := range []string{"user", "profile"} {
		if v, ok := raw[key]; ok {
			trimmed := bytes.TrimSpace(v)
			if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
				continue
			}
			return append(json.RawMessage(nil), v...)
		}
	}
	return nil
}

// Logout posts { refresh } to the logout path when one is configured.
// It invalidates the refresh token server-side; local state is not touched here.
func (h *HTTP) Logout(ctx context.Context, refreshToken string) error {
	if h.endpoints.Logout == "" || refreshToken == "" {
		return nil
	}
	resp, err := h.postJSON(ctx, h.endpoints.Logout, map[string]string{"refresh": refreshToken})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) || resp.StatusCode == http.StatusResetContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return statusError("logout", resp)
}
