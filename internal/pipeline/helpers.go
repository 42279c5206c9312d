package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
)

// Get sends an authenticated GET.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Delete sends an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Post sends v as a JSON body.
func (c *Client) Post(ctx context.Context, path string, v any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, v)
}

// Put sends v as a JSON body.
func (c *Client) Put(ctx context.Context, path string, v any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, v)
}

// Patch sends v as a JSON body.
func (c *Client) Patch(ctx context.Context, path string, v any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPatch, path, v)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, v any) (*Response, error) {
	var body []byte
	switch b := v.(type) {
	case nil:
	case []byte:
		body = b
	case json.RawMessage:
		body = b
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	return c.Do(ctx, Request{Method: method, Path: path, Body: body})
}
