// Package transport is the authenticated JSON HTTP client used by remote
// mirrors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/logging"
)

// Client sends JSON requests with a credential applied.
type Client struct {
	http    *http.Client
	auth    Authenticator
	token   string
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// New returns a client applying auth with token. An empty token sends
// requests unauthenticated.
func New(auth Authenticator, token string, opts ...Option) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	c := &Client{
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:    auth,
		token:   token,
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether a credential is configured.
func (c *Client) HasToken() bool { return c.token != "" }

// Do sends req after applying headers and the credential.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.token != "" {
		c.auth.Apply(req, c.token)
	}

	logging.FromContext(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("remote request")
	return c.http.Do(req)
}

// Get sends a GET to url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}

// Send marshals body as JSON and sends it with method to url.
func (c *Client) Send(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapResource("encode", "request", method+" "+url, err)
		}
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(ctx, req)
}

// DecodeResponse closes resp and decodes a 2xx JSON body into target (nil
// skips decoding). Other statuses become an *errors.APIError for remote.
func DecodeResponse(resp *http.Response, remote string, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errors.NewAPIError(remote, resp.StatusCode, apiMessage(body))
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.Path
		}
		return apiErr
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapResource("decode", "response", remote, err)
	}
	return nil
}

// apiMessage pulls {"message": "..."} out of an error body, falling back to
// the raw text.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return string(bytes.TrimSpace(body))
}
