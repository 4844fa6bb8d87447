// Package apitest provides test helpers for the minapi framework.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eerhardt/minapi"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from an app.
func NewClient(t testing.TB, a *minapi.App) *Client {
	t.Helper()
	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds an API response with its body fully read.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
	Raw     *http.Response
}

// Text returns the response body as a string.
func (r *Response) Text() string { return string(r.Body) }

// JSON decodes the response body into target.
func (r *Response) JSON(t testing.TB, target any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// Get sends a GET request.
func (c *Client) Get(t testing.TB, path string) *Response {
	t.Helper()
	return c.do(t, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(t testing.TB, path string, body any) *Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, body)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(t testing.TB, path string, body any) *Response {
	t.Helper()
	return c.do(t, http.MethodPut, path, body)
}

// Delete sends a DELETE request.
func (c *Client) Delete(t testing.TB, path string) *Response {
	t.Helper()
	return c.do(t, http.MethodDelete, path, nil)
}

func (c *Client) do(t testing.TB, method, path string, body any) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("close response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    raw,
		Raw:     resp,
	}
}
