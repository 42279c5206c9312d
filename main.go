// Package main is the entry point for the scaledesk CLI application.
// It signs in to a scale management server and calls its API with a refreshing session.
package main

import (
	"scaledesk/cli/cmd"
)

func main() {
	cmd.Execute()
}
