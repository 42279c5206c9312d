// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scaledesk/cli/internal/guard"
	"scaledesk/cli/internal/pipeline"
)

var (
	apiData    string
	apiHeaders []string
)

// apiCmd sends an authenticated request through the pipeline, so an expired
// access token is refreshed and the call retried once without user action.
var apiCmd = &cobra.Command{
	Use:   "api METHOD PATH",
	Short: "Call the scaledesk API with the stored session",
	Long: `The api command sends METHOD PATH to the configured server with the stored
access token and prints the response body. JSON responses are pretty-printed.

--data sets the request body; "@file" reads it from a file and "-" from stdin.
Non-2xx responses are printed and make the command exit non-zero.

Examples:
  scaledesk api GET /api/scale/
  scaledesk api POST /api/weight/ --data '{"scale":1,"net":12500}'`,
	Args:    cobra.ExactArgs(2),
	PreRunE: guard.Protect(sessionStore),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		body, err := readBody(apiData)
		if err != nil {
			return err
		}
		header, err := parseHeaders(apiHeaders)
		if err != nil {
			return err
		}

		resp, err := a.client.Do(cmd.Context(), pipeline.Request{
			Method: strings.ToUpper(args[0]),
			Path:   args[1],
			Header: header,
			Body:   body,
		})
		if err != nil {
			return err
		}

		writeBody(cmd, resp)
		if !resp.OK() {
			return fmt.Errorf("%s %s: server answered %d", strings.ToUpper(args[0]), args[1], resp.StatusCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "Request body (JSON), @file or - for stdin")
	apiCmd.Flags().StringArrayVarP(&apiHeaders, "header", "H", nil, "Extra request header 'Name: value' (repeatable)")
}

func readBody(data string) ([]byte, error) {
	switch {
	case data == "":
		return nil, nil
	case data == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		return []byte(data), nil
	}
}

func parseHeaders(raw []string) (http.Header, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	h := make(http.Header, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", kv)
		}
		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		if name == "Authorization" {
			return nil, fmt.Errorf("the Authorization header is set from the stored session")
		}
		h[name] = append(h[name], strings.TrimSpace(value))
	}
	return h, nil
}

func writeBody(cmd *cobra.Command, resp *pipeline.Response) {
	out := cmd.OutOrStdout()
	if len(resp.Body) == 0 {
		return
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, resp.Body, "", "  ") == nil {
		fmt.Fprintln(out, pretty.String())
		return
	}
	fmt.Fprintln(out, string(resp.Body))
}
