// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a command may run given the current session.
//
// Commands are either protected (they need a session) or public-only (they make
// no sense with one, like login). The decision is a pure function of
// session.IsAuthenticated, which is a local keychain read, so guards never block
// on the network.
package guard

import (
	"fmt"

	"github.com/spf13/cobra"

	"scaledesk/cli/internal/session"
)

// Mode selects which side of the session predicate a command lives on.
type Mode int

const (
	// Protected commands require an authenticated session.
	Protected Mode = iota
	// PublicOnly commands are refused while a session exists.
	PublicOnly
)

const (
	// LoginEntry is where unauthenticated users are sent.
	LoginEntry = "login"
	// Landing is where authenticated users are sent from public-only commands.
	Landing = "whoami"
)

// Decision is the outcome of a guard check. RedirectTo is empty when Allow is set.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Decide evaluates mode against the authentication state.
func Decide(authenticated bool, mode Mode) Decision {
	switch mode {
	case Protected:
		if !authenticated {
			return Decision{RedirectTo: LoginEntry}
		}
	case PublicOnly:
		if authenticated {
			return Decision{RedirectTo: Landing}
		}
	}
	return Decision{Allow: true}
}

// RedirectError is returned by the cobra hooks when a command is refused.
type RedirectError struct {
	Command string
	Mode    Mode
	To      string
}

func (e *RedirectError) Error() string {
	if e.Mode == Protected {
		return fmt.Sprintf("%s requires a session; run 'scaledesk %s' first", e.Command, e.To)
	}
	return fmt.Sprintf("already logged in; run 'scaledesk %s' to see the current account or 'scaledesk logout' to switch", e.To)
}

// StoreFunc resolves the session store lazily, after flags have been parsed.
type StoreFunc func() (session.Store, error)

// Hook returns a cobra PreRunE that enforces mode.
func Hook(mode Mode, store StoreFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := store()
		if err != nil {
			return err
		}
		d := Decide(session.IsAuthenticated(s), mode)
		if d.Allow {
			return nil
		}
		return &RedirectError{Command: cmd.Name(), Mode: mode, To: d.RedirectTo}
	}
}

// Protect is Hook(Protected, store).
func Protect(store StoreFunc) func(*cobra.Command, []string) error { return Hook(Protected, store) }

// PublicOnlyHook is Hook(PublicOnly, store).
func PublicOnlyHook(store StoreFunc) func(*cobra.Command, []string) error {
	return Hook(PublicOnly, store)
}
