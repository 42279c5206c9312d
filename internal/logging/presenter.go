// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	apperrors "scaledesk/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatAuthError renders a session-layer error as a short explanation plus the
// next step the user should take. Unknown errors get a generic message.
func FormatAuthError(err error) string {
	var b strings.Builder

	switch apperrors.KindOf(err) {
	case apperrors.InvalidCredentials:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Invalid username or password"))
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Check your credentials and try again"))
	case apperrors.EndpointUnreachable, apperrors.RefreshUnreachable:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Cannot reach the scaledesk server"))
		b.WriteString("\n")
		b.WriteString("This usually means:\n")
		b.WriteString("  • The server address is wrong (see 'scaledesk config show')\n")
		b.WriteString("  • The server is down or restarting\n")
		b.WriteString("  • A firewall or proxy is blocking the connection\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please try again in a few moments"))
	case apperrors.MalformedResponse:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Unexpected response from the server"))
		b.WriteString("\n")
		b.WriteString("The login endpoint answered without the expected tokens.\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Check that the configured login paths point at the token endpoint"))
	case apperrors.SessionExpired, apperrors.RefreshRejected:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Your session has expired"))
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'scaledesk login' and try again"))
	default:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Request failed"))
	}

	if err != nil {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}
	return b.String()
}

// PresentAuthError displays a formatted session-layer error.
func PresentAuthError(err error) {
	fmt.Println()
	fmt.Println(FormatAuthError(err))
	fmt.Println()
}
