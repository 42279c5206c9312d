// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"time"
)

// Endpoints holds the server paths used outside the login candidate list.
type Endpoints struct {
	Refresh string
	Logout  string
}

// New creates a backend API implementation for baseURL.
// A zero timeout keeps the 10 second default.
func New(baseURL string, endpoints Endpoints, timeout time.Duration) API {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return newHTTP(baseURL, endpoints, &http.Client{Timeout: timeout}, "")
}

// NewWithClient is New with a caller-provided HTTP client. An empty userAgent
// sends DefaultUserAgent.
func NewWithClient(baseURL string, endpoints Endpoints, client *http.Client, userAgent string) API {
	return newHTTP(baseURL, endpoints, client, userAgent)
}
