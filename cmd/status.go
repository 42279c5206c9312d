// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scaledesk/cli/internal/session"
)

// statusCmd prints whether a complete session is stored. It exits 0 either way so
// scripts can parse the output.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether this machine holds a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		if session.IsAuthenticated(store) {
			fmt.Fprintln(cmd.OutOrStdout(), "authenticated")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "unauthenticated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
