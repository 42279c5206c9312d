// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

// RefreshToken calls POST <refresh path> with { refresh } to get a new access token.
// The backend may choose to rotate the refresh token or keep it the same; the
// returned refresh token is empty when it was not rotated.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	resp, err := h.postJSON(ctx, h.endpoints.Refresh, map[string]string{
		"refresh": refreshToken,
	})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", "", statusError("refresh-token", resp)
	}

	var result map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("%w: decode refresh response: %v", ErrMalformed, err)
	}

	// Extract access token (required)
	newAccessToken := extractAccessToken(result)
	if newAccessToken == "" {
		return "", "", fmt.Errorf("%w: no access token in refresh response", ErrMalformed)
	}

	// Extract refresh token (optional - backend may return new one)
	newRefreshToken := extractRefreshToken(result)

	return newAccessToken, newRefreshToken, nil
}

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result map[string]json.RawMessage) string {
	return firstString(result, "access", "access_token", "accessToken", "token")
}

// extractRefreshToken extracts the refresh token from the response payload.
// Returns empty string if no refresh token is present (which is valid - backend may not rotate it).
func extractRefreshToken(result map[string]json.RawMessage) string {
	return firstString(result, "refresh", "refresh_token", "refreshToken")
}

func firstString(result map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := result[k]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err == nil && v != "" {
			return v
		}
	}
	return ""
}
