// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// It removes the saved session from the keychain, after a best-effort attempt to
// invalidate the refresh token on the server.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session from this machine",
	Long: `The logout command clears the access token, refresh token and cached profile from
the OS keychain. When a logout path is configured, it first asks the server to
invalidate the refresh token (best-effort; an offline server does not block logout).

Running logout without a session is not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := a.gateway.RemoteLogout(ctx); err != nil {
			a.log.Debug().Err(err).Msg("server-side logout skipped")
		}

		// Always clear local credentials regardless of the server response.
		a.gateway.Logout()

		fmt.Fprintln(cmd.OutOrStdout(), "✅ Session removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
