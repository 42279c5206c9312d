// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI logger and utilities for secure logging and
// error presentation. It includes functions for masking sensitive information in log
// messages and formatting errors for user-friendly display while protecting
// credentials and tokens.
//
// The package helps ensure that passwords, access tokens and refresh tokens are not
// accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|access=|refresh=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reJSONKey  = regexp.MustCompile(`(?i)("(?:password|access|refresh|access_token|refresh_token|token)"\s*:\s*")([^"]*)(")`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONKey.ReplaceAllString(out, "$1***$3")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	// Basic env-like pairs key=VALUE; mask common secret keys
	for _, k := range []string{"SCALEDESK_KEYRING_PASSWORD", "ACCESS_TOKEN", "REFRESH_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}
