// Package api talks to the remote course-schedule API. Authenticated calls go
// through Execute, which renews the session once when the access token is
// rejected.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const requestIDHeader = "X-Request-Id"

// ClientOpts configures a Client
type ClientOpts struct {
	BaseURL string

	// Timeout bounds each HTTP round trip; zero leaves it to the transport
	Timeout time.Duration

	// SingleFlight coalesces concurrent refreshes of the same refresh token
	SingleFlight bool

	Logger zerolog.Logger
	Events ports.EventPublisher

	// Transport overrides the HTTP transport, mostly for tests
	Transport http.RoundTripper
}

// Client is the resty-backed implementation of ports.API
type Client struct {
	httpClient *resty.Client
	timeout    time.Duration
	log        zerolog.Logger
	events     ports.EventPublisher
	flight     *singleflight.Group
}

var _ ports.API = (*Client)(nil)

// NewClient creates a new API client
func NewClient(opts ClientOpts) *Client {
	c := &Client{
		timeout: opts.Timeout,
		log:     opts.Logger,
		events:  opts.Events,
	}
	if opts.SingleFlight {
		c.flight = &singleflight.Group{}
	}

	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetHeaders(map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		})
	if opts.Timeout > 0 {
		c.httpClient.SetTimeout(opts.Timeout)
	}
	if opts.Transport != nil {
		c.httpClient.SetTransport(opts.Transport)
	}

	return c
}

// Execute issues req with accessToken as bearer credential and decodes the
// JSON body into out. On a 401 it refreshes the session from store at most
// once and retries the original request at most once. Every failure is a
// *core.RequestError.
func (c *Client) Execute(ctx context.Context, store ports.SessionStore, req ports.Request, accessToken string, out any) error {
	// A reader is drained by the first attempt; keep its bytes for the retry
	if reader, ok := req.Body.(io.Reader); ok {
		body, err := io.ReadAll(reader)
		if err != nil {
			return core.NewTransportError(fmt.Errorf("reading request body: %w", err))
		}
		req.Body = body
	}

	res, err := c.send(ctx, req, accessToken)
	if err != nil {
		c.log.Warn().Err(err).Str("path", req.Path).Msg("request failed before a response")
		return core.NewTransportError(err)
	}

	if res.StatusCode() == http.StatusUnauthorized && accessToken != "" {
		if pair, ok := c.renew(ctx, store, req.Path); ok {
			retry, err := c.send(ctx, req, pair.Access)
			if err != nil {
				c.log.Warn().Err(err).Str("path", req.Path).Msg("retry failed before a response")
				return core.NewTransportError(err)
			}
			res = retry
		}
	}

	return decode(res, out)
}

// renew exchanges the stored refresh token and persists the new pair.
// The pair is only usable when the store accepted both credentials.
func (c *Client) renew(ctx context.Context, store ports.SessionStore, path string) (core.CredentialPair, bool) {
	if store == nil {
		return core.CredentialPair{}, false
	}

	stored, _ := store.Get(ctx)
	if stored.Refresh == "" {
		c.log.Debug().Str("path", path).Msg("access token rejected and no refresh token stored")
		return core.CredentialPair{}, false
	}

	c.log.Debug().Str("path", path).Msg("access token rejected, refreshing session")

	pair, ok := c.Refresh(ctx, stored.Refresh)
	if !ok {
		c.publish(ctx, core.EventRefreshDenied, "refresh endpoint rejected the token")
		return core.CredentialPair{}, false
	}

	if err := store.Set(ctx, pair); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist refreshed session")
		return core.CredentialPair{}, false
	}

	c.publish(ctx, core.EventRefreshed, "")

	return pair, true
}

func (c *Client) send(ctx context.Context, req ports.Request, accessToken string) (*resty.Response, error) {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx)

	if accessToken != "" {
		request.SetAuthToken(accessToken)
	}
	if id := core.RequestID(ctx); id != "" {
		request.SetHeader(requestIDHeader, id)
	}
	if len(req.Header) > 0 {
		request.SetHeaders(req.Header)
	}
	if req.Body != nil {
		request.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	return request.Execute(method, req.Path)
}

func (c *Client) publish(ctx context.Context, eventType core.SessionEventType, reason string) {
	if c.events == nil {
		return
	}

	event := core.SessionEvent{
		Type:      eventType,
		Reason:    reason,
		RequestID: core.RequestID(ctx),
		At:        time.Now().UTC(),
	}
	if err := c.events.PublishSessionEvent(ctx, event); err != nil {
		c.log.Warn().Err(err).Str("event", string(eventType)).Msg("failed to publish session event")
	}
}

// decode turns a response into either a decoded body or a *core.RequestError
func decode(res *resty.Response, out any) error {
	if !res.IsSuccess() {
		reqErr := core.NewStatusError(res.StatusCode())
		var envelope core.ErrorResponse
		if err := json.Unmarshal(res.Body(), &envelope); err == nil && (len(envelope.Errors) > 0 || envelope.Message != "") {
			reqErr.Response = &envelope
		}
		return reqErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(res.Body(), out); err != nil {
		return core.NewDecodeError(res.StatusCode(), err)
	}

	return nil
}
