// Package apiclient is the single place that knows how to reach the JobPilot
// API: base URL, default headers, bearer authentication and error mapping.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobpilot-admin/pkg/logger"
)

const (
	// HeaderNgrokSkipWarning keeps tunnelled development backends from
	// answering with an HTML interstitial.
	HeaderNgrokSkipWarning = "ngrok-skip-browser-warning"

	contentTypeJSON = "application/json"
)

// Session supplies the bearer token for outgoing calls and is told when the
// API rejects it.
type Session interface {
	AccessToken() string
	HandleUnauthorized(ctx context.Context)
}

// Config configures a Client
type Config struct {
	BaseURL     string // including the /api/v1 prefix
	Timeout     time.Duration
	NgrokHeader bool
	RateLimit   float64 // requests per second, 0 disables pacing
	Burst       int
	Transport   http.RoundTripper
	Logger      *logger.Logger
}

// Client talks to the JobPilot API. A Client bound to a session via
// WithSession shares the transport, headers and limiter of its parent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	limiter    *rate.Limiter
	session    Session
	log        *logger.Logger
	mu         *sync.RWMutex
}

// Request describes one upstream call
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Headers   map[string]string
	Body      interface{} // JSON encoded when set
	Multipart *Form       // takes precedence over Body
}

// Response is a fully read upstream response
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// New creates a client for the configured base URL
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	c := &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    map[string]string{"Accept": contentTypeJSON},
		log:        cfg.Logger,
		mu:         &sync.RWMutex{},
	}
	if cfg.NgrokHeader {
		c.headers[HeaderNgrokSkipWarning] = "true"
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c, nil
}

// WithSession returns a client that authenticates as the given session
func (c *Client) WithSession(s Session) *Client {
	bound := *c
	bound.session = s
	return &bound
}

// SetHeader sets a default header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// BaseURL returns the upstream base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request. Non-2xx answers are returned together with an
// *APIError; network failures yield a *TransportError and no response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
		}
	}

	u := c.buildURL(req.Path, req.Query)

	var (
		body        io.Reader
		stream      io.Closer
		contentType string
	)
	switch {
	case req.Multipart != nil:
		// The boundary comes from the multipart writer; never set it by hand.
		pr, ct := req.Multipart.reader()
		body, stream, contentType = pr, pr, ct
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = contentTypeJSON
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		if stream != nil {
			stream.Close()
		}
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	c.setHeaders(httpReq, req.Headers)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.session != nil {
		if token := c.session.AccessToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		terr := &TransportError{Method: req.Method, Path: req.Path, Err: err}
		c.log.LogUpstreamCall(ctx, req.Method, req.Path, 0, duration, terr)
		return nil, terr
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		terr := &TransportError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("reading response body: %w", err)}
		c.log.LogUpstreamCall(ctx, req.Method, req.Path, httpResp.StatusCode, duration, terr)
		return nil, terr
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Duration:   duration,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			Status:  httpResp.StatusCode,
			Method:  req.Method,
			Path:    req.Path,
			Message: extractMessage(respBody),
			Body:    respBody,
		}
		c.log.LogUpstreamCall(ctx, req.Method, req.Path, httpResp.StatusCode, duration, apiErr)
		if httpResp.StatusCode == http.StatusUnauthorized && c.session != nil {
			c.session.HandleUnauthorized(context.WithoutCancel(ctx))
		}
		return resp, apiErr
	}

	c.log.LogUpstreamCall(ctx, req.Method, req.Path, httpResp.StatusCode, duration, nil)
	return resp, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// SendForm submits a multipart form
func (c *Client) SendForm(ctx context.Context, method, path string, form *Form) (*Response, error) {
	return c.Do(ctx, Request{Method: method, Path: path, Multipart: form})
}

// buildURL joins the base URL, the path and the query string
func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// setHeaders copies default and per-request headers onto the request
func (c *Client) setHeaders(req *http.Request, custom map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range custom {
		req.Header.Set(k, v)
	}
}

// DecodeJSON unmarshals a response body into v
func DecodeJSON(resp *Response, v interface{}) error {
	if resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
