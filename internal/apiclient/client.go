// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the portal's only way to talk to the Inner Circle API.
// It attaches the member's bearer token, classifies failures into *Error and
// never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout applies when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second
	// UserAgent is sent with every request.
	UserAgent = "InnerCirclePortal/1.0"
	// MaxResponseLen bounds JSON response bodies read into memory.
	MaxResponseLen = 1 << 20
)

// Recorder receives one observation per API call.
type Recorder interface {
	ObserveAPICall(endpoint, outcome string, d time.Duration)
}

// UnauthorizedObserver is notified with the caller's context whenever the API
// answers 401, whatever the endpoint.
type UnauthorizedObserver interface {
	OnUnauthorized(ctx context.Context)
}

// UnauthorizedFunc adapts a function to UnauthorizedObserver.
type UnauthorizedFunc func(ctx context.Context)

// OnUnauthorized calls f(ctx).
func (f UnauthorizedFunc) OnUnauthorized(ctx context.Context) { f(ctx) }

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Recorder   Recorder
}

// Client is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	recorder Recorder

	mu        sync.RWMutex
	observers []UnauthorizedObserver
}

// New creates a client for the API rooted at cfg.BaseURL (e.g.
// "https://api.example.com"; the "/api" prefix is added per endpoint).
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base URL must be http or https, got %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{
			Timeout: timeout,
			// The API never redirects; surface a 3xx as a KindHTTP failure.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return &Client{baseURL: base, http: hc, recorder: cfg.Recorder}, nil
}

// OnUnauthorized registers an observer for 401 responses.
func (c *Client) OnUnauthorized(o UnauthorizedObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Client) notifyUnauthorized(ctx context.Context) {
	c.mu.RLock()
	observers := append([]UnauthorizedObserver(nil), c.observers...)
	c.mu.RUnlock()
	for _, o := range observers {
		o.OnUnauthorized(ctx)
	}
}

type tokenKey struct{}

// WithToken returns a context whose API calls carry the bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// endpoint names one API route for logs and metrics.
type endpoint struct {
	name   string
	method string
	path   string
}

func (c *Client) resolve(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

// newRequest builds the outbound request with the common headers.
func (c *Client) newRequest(ctx context.Context, ep endpoint, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, c.resolve(ep.path), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs the request and returns the response when it is 2xx.
// The caller owns the body of a successful response.
func (c *Client) send(ctx context.Context, ep endpoint, body any) (resp *http.Response, err error) {
	begin := time.Now()
	defer func() {
		if c.recorder == nil {
			return
		}
		outcome := "ok"
		if k, ok := KindOf(err); ok {
			outcome = k.String()
		}
		c.recorder.ObserveAPICall(ep.name, outcome, time.Since(begin))
	}()

	req, err := c.newRequest(ctx, ep, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Message: msgRequest, Endpoint: ep.name, Err: err}
	}

	resp, err = c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: msgNetwork, Endpoint: ep.name, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	_ = resp.Body.Close()
	apiErr := newStatusError(ep.name, resp.StatusCode, data)
	if apiErr.Kind == KindUnauthorized {
		c.notifyUnauthorized(ctx)
	}
	return nil, apiErr
}

// do performs a JSON call and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, ep endpoint, body, out any) error {
	resp, err := c.send(ctx, ep, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: msgNetwork, Endpoint: ep.name, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Kind:     KindHTTP,
			Status:   resp.StatusCode,
			Message:  "The server sent a response we could not read.",
			Endpoint: ep.name,
			Data:     data,
			Err:      fmt.Errorf("decoding response: %w", err),
		}
	}
	return nil
}
