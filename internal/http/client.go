// Package http implements the request pipeline shared by every service
// client: URL construction, auth decoration, transport, error mapping, and
// the one-shot refresh-and-retry on auth expiry.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/basewire/basewire-go/internal/constants"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// Session decorates outgoing requests with the current credential and
// observes response statuses for the expiry signal.
type Session interface {
	// Decorate attaches auth headers to an outgoing request.
	Decorate(header nethttp.Header)
	// HandleResponse observes a response status and reports whether a
	// refresh-and-retry attempt is worthwhile.
	HandleResponse(statusCode int) bool
}

// Refresher re-establishes an expired credential.
type Refresher func(ctx context.Context) error

// Request describes an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string

	// SkipAuthRefresh suppresses the refresh-and-retry on 401. Set on
	// refresh requests themselves and on calls that must observe the raw
	// status.
	SkipAuthRefresh bool
}

// Response is a completed API response with its body drained.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client is the HTTP pipeline.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	session      Session
	refresher    Refresher
	interceptors *basewire.InterceptorChain
	userAgent    string
	lang         string
	logger       basewire.Logger
	debug        bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug logging.
func WithLogger(logger basewire.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables transient retries (connection errors, 429, 5xx).
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout bounds each request.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLang sets the Accept-Language header.
func WithLang(lang string) Option {
	return func(c *Client) {
		c.lang = lang
	}
}

// WithInterceptors attaches an interceptor chain to the pipeline.
func WithInterceptors(chain *basewire.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a pipeline client for the given base URL. session may
// be nil for unauthenticated use.
func NewClient(baseURL string, session Session, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	// Transient retries are opt-in via WithRetryConfig.
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	// Hand the final response back instead of swallowing it, so 429/5xx
	// statuses map to APIError rather than a transport failure.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetRefresher installs the refresh hook used on auth expiry. It is set
// after construction because the refresher itself issues requests through
// this client.
func (c *Client) SetRefresher(refresher Refresher) {
	c.refresher = refresher
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request through the full pipeline.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	bodyBytes, err := c.marshalBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.doOnce(ctx, req, bodyBytes)
	if err != nil {
		return nil, err
	}

	shouldRefresh := false
	if c.session != nil {
		shouldRefresh = c.session.HandleResponse(resp.StatusCode)
	}

	if shouldRefresh && c.refresher != nil && !req.SkipAuthRefresh {
		refreshErr := c.refresher(ctx)
		if refreshErr != nil {
			if c.logger != nil {
				c.logger.Warn("auth refresh failed", map[string]any{
					"error": refreshErr.Error(),
				})
			}

			// The session stays expired; surface the original 401.
			return c.finalize(req, resp)
		}

		resp, err = c.doOnce(ctx, req, bodyBytes)
		if err != nil {
			return nil, err
		}

		if c.session != nil {
			c.session.HandleResponse(resp.StatusCode)
		}
	}

	return c.finalize(req, resp)
}

func (c *Client) marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	if raw, ok := body.([]byte); ok {
		return raw, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request body: %w", basewire.ErrValidation, err)
	}

	return data, nil
}

// doOnce performs one round trip: build, decorate, send, drain.
func (c *Client) doOnce(ctx context.Context, req *Request, bodyBytes []byte) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", basewire.ErrValidation, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if bodyBytes != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.lang != "" {
		httpReq.Header.Set("Accept-Language", c.lang)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.session != nil {
		c.session.Decorate(httpReq.Header)
	}

	info := &basewire.RequestInfo{
		Method:  req.Method,
		Path:    req.Path,
		Headers: httpReq.Header,
		Body:    bodyBytes,
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, info)
		if err != nil {
			return nil, err
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]any{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.interceptors != nil {
			_ = c.interceptors.ExecuteResponseInterceptors(ctx, info, &basewire.ResponseInfo{Error: err})
		}

		return nil, fmt.Errorf("%w: %w", basewire.ErrNetwork, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", basewire.ErrNetwork, err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]any{
			"method":   req.Method,
			"url":      fullURL,
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteResponseInterceptors(ctx, info, &basewire.ResponseInfo{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Body:       respBody,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// finalize maps non-2xx responses to an APIError. The response is returned
// alongside the error so callers can still inspect it.
func (c *Client) finalize(req *Request, resp *Response) (*Response, error) {
	if resp.StatusCode >= nethttp.StatusOK && resp.StatusCode < nethttp.StatusMultipleChoices {
		return resp, nil
	}

	apiErr := &basewire.APIError{
		URL:    c.baseURL + req.Path,
		Status: resp.StatusCode,
	}

	if len(resp.Body) > 0 {
		// Best effort: a non-JSON error body keeps the generic message.
		_ = json.Unmarshal(resp.Body, apiErr)
	}

	apiErr.Status = resp.StatusCode

	if apiErr.Message == "" {
		apiErr.Message = nethttp.StatusText(resp.StatusCode)
	}

	return resp, apiErr
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}
