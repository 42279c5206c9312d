// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the scaledesk CLI.
// It implements login, logout and session inspection commands plus a raw API
// caller, all built on the Cobra CLI framework. Commands that need a session are
// guarded and send their requests through the refreshing request pipeline.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "scaledesk/cli/internal/errors"
	"scaledesk/cli/internal/guard"
	"scaledesk/cli/internal/httperrors"
	"scaledesk/cli/internal/logging"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "scaledesk",
	Short:         "scaledesk CLI for the weighbridge management API",
	Long:          `scaledesk signs in to a scale management server, keeps the session in the OS keychain and calls the API on your behalf.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("scaledesk %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		presentError(cmd, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "API server base URL (overrides config and $SCALEDESK_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagKeyring, "keyring", "", "Keyring backend: auto, memory, keychain, wincred, secret-service, kwallet, keyctl, pass, file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// actions names what each command was doing, for network error messages.
var actions = map[string]string{
	"login":  "logging in",
	"logout": "logging out",
	"api":    "calling the API",
	"whoami": "reading the session",
}

// presentError renders err for the user. Guard redirects and session errors get
// short explanations; connectivity failures get troubleshooting hints.
func presentError(cmd *cobra.Command, err error) {
	var re *guard.RedirectError
	if errors.As(err, &re) {
		if re.Mode == guard.Protected {
			pterm.Warning.Println("🔒 You're not logged in yet!")
			pterm.Printf("   Run 'scaledesk %s' to get started.\n", re.To)
			return
		}
		pterm.Info.Println(re.Error())
		return
	}

	action := "running " + cmd.Name()
	if a, ok := actions[cmd.Name()]; ok {
		action = a
	}

	switch apperrors.KindOf(err) {
	case apperrors.EndpointUnreachable, apperrors.RefreshUnreachable:
		httperrors.ShowNetworkError(err, action, serverHost())
	case "":
		if isTransportError(err) {
			httperrors.ShowNetworkError(err, action, serverHost())
			return
		}
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
	default:
		logging.PresentAuthError(err)
	}
}
