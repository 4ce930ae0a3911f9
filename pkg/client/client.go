// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package client is the remote counterpart of the dispatcher: it issues
// calls to an apigate server and decodes failures into *apierr.Wrapped.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/api"
	"github.com/bonitasoft/bonita-engine-sub001/internal/api/middleware"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apis"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes = 16 << 20

// Client calls a remote apigate server. It is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the overall timeout of one call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = newHTTPClient(d)
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u, http: newHTTPClient(0)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) invokeURL(apiName, method string) string {
	path := strings.NewReplacer("{api}", url.PathEscape(apiName), "{method}", url.PathEscape(method)).Replace(api.InvokePath)
	return c.base.String() + path
}

// Invoke calls apiName.method remotely. The result is decoded into out when
// out is non-nil. Every failure is returned as *apierr.Wrapped.
func (c *Client) Invoke(ctx context.Context, sess session.Session, apiName, method string, paramTypes []string, args []any, out any) error {
	req := api.InvokeRequest{ParameterTypes: paramTypes, Args: make([]json.RawMessage, len(args))}
	if sess != nil {
		ref := api.RefOf(sess)
		if ref == nil {
			return apierr.Wrap(apierr.InvalidSession("unknown session type %T", sess))
		}
		req.Session = ref
	}
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return apierr.Wrap(apierr.Unexpected(err, "encode argument %d of %s.%s", i, apiName, method))
		}
		req.Args[i] = raw
	}

	body, err := json.Marshal(req)
	if err != nil {
		return apierr.Wrap(apierr.Unexpected(err, "encode request"))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL(apiName, method), bytes.NewReader(body))
	if err != nil {
		return apierr.Wrap(apierr.Unexpected(err, "build request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id := log.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := log.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(middleware.HeaderCorrelationID, id)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return apierr.Wrap(apierr.Unexpected(err, "call %s.%s", apiName, method))
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded api.InvokeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return apierr.Wrap(apierr.Unexpected(err, "decode response of %s.%s (status %d)", apiName, method, resp.StatusCode))
	}
	if decoded.Error != nil {
		return apierr.FromPayload(*decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return apierr.Wrap(apierr.Unexpected(nil, "%s.%s: unexpected status %d", apiName, method, resp.StatusCode))
	}
	if out == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return apierr.Wrap(apierr.Unexpected(err, "decode result of %s.%s", apiName, method))
	}
	return nil
}

// LoginPlatform opens a platform session.
func (c *Client) LoginPlatform(ctx context.Context, user, password string) (session.PlatformSession, error) {
	var s session.PlatformSession
	err := c.Invoke(ctx, nil, apis.LoginAPIName, "LoginPlatform", []string{"string", "string"}, []any{user, password}, &s)
	return s, err
}

// LoginTenant opens a session on the named tenant.
func (c *Client) LoginTenant(ctx context.Context, tenant, user, password string) (session.TenantSession, error) {
	var s session.TenantSession
	err := c.Invoke(ctx, nil, apis.LoginAPIName, "LoginTenant", []string{"string", "string", "string"}, []any{tenant, user, password}, &s)
	return s, err
}

// Logout closes the session.
func (c *Client) Logout(ctx context.Context, sess session.Session) error {
	return c.Invoke(ctx, nil, apis.LoginAPIName, "Logout", []string{"string"}, []any{sess.SessionID()}, nil)
}
