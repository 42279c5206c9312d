// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"scaledesk/cli/internal/auth"
	"scaledesk/cli/internal/guard"
	"scaledesk/cli/internal/terminal"
)

var (
	loginUsername string
	loginPassword string

	// prompter is replaced in tests.
	prompter = terminal.Stdio
)

// loginCmd exchanges a username and password for a session.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with your scaledesk username and password",
	Long: `The login command exchanges your username and password for an access token and a
refresh token and stores them, together with your profile, in the OS keychain.

Credentials not given as flags are prompted for. The password is never stored.
If a session already exists, log out first.`,
	PreRunE: guard.PublicOnlyHook(sessionStore),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		creds, err := readCredentials()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		stop := startInlineSpinner(cmd.OutOrStdout(), "Signing in to "+serverHost(), spinnerFrames, 120*time.Millisecond)
		s, err := a.gateway.Login(ctx, creds.Username, creds.Password)
		stop()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), pterm.Green("✅ Logged in as "+s.DisplayName()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
}

// readCredentials fills whatever the flags left out from the terminal.
func readCredentials() (auth.Credentials, error) {
	creds := auth.Credentials{Username: loginUsername, Password: loginPassword}
	p := prompter()
	if creds.Username == "" {
		u, err := p.Line("Username")
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = u
	}
	if creds.Password == "" {
		pw, err := p.Secret("Password")
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = pw
	}
	return creds, nil
}
