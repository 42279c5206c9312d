// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scaledesk/cli/internal/guard"
	"scaledesk/cli/internal/session"
)

// whoamiCmd shows the account of the stored session. It reads the keychain only;
// token validity is checked by the server on the next API call.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the profile saved at login and when the current
access token expires. It does not contact the server.`,
	PreRunE: guard.Protect(sessionStore),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, ok, err := a.store.Get()
		if err != nil {
			return err
		}
		if !ok {
			return &guard.RedirectError{Command: cmd.Name(), Mode: guard.Protected, To: guard.LoginEntry}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "👤 Current user: %s\n", s.DisplayName())
		if profile, err := s.Profile(); err == nil {
			if email, ok := profile["email"].(string); ok && email != "" && email != s.DisplayName() {
				fmt.Fprintf(out, "   Email: %s\n", email)
			}
		}
		fmt.Fprintf(out, "   Server: %s\n", a.cfg.BaseURL)
		fmt.Fprintf(out, "   Access token: %s\n", describeToken(s.AccessToken, time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// describeToken summarizes the expiry of a JWT access token. Opaque tokens are
// reported as such.
func describeToken(token string, now time.Time) string {
	info, ok := session.InspectToken(token)
	if !ok || info.ExpiresAt.IsZero() {
		return "opaque (expiry unknown)"
	}
	if info.Expired(now) {
		return fmt.Sprintf("expired %s ago (refreshed on next request)", now.Sub(info.ExpiresAt).Round(time.Second))
	}
	return fmt.Sprintf("valid for %s", info.ExpiresAt.Sub(now).Round(time.Second))
}
